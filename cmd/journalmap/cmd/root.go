// Package cmd implements the journalmap CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/journalmap/journalmap"
	"github.com/journalmap/journalmap/internal/cmd/output"
	"github.com/journalmap/journalmap/pkg/logging"
	"github.com/journalmap/journalmap/pkg/results"
)

var (
	configFile  string
	graphFlag   []string
	dbFlag      []string
	outputFlag  string
	timeoutFlag time.Duration
	verboseFlag bool
	quietFlag   bool

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "journalmap",
	Short: "Open access journal reconciliation CLI",
	Long: `Journalmap reconciles open access journal data across backing stores:
journal records from DOAJ CSV exports held in graph (SPARQL) stores, and
category/area classifications from Scimago JSON exports held in SQLite
databases.

Queries fan out to every configured store and merge the results on shared
ISSN/EISSN identifiers. Configure stores with repeated --graph and --db
flags, a config file, or JOURNALMAP_* environment variables.`,
	PersistentPreRunE: setupLogging,
	SilenceUsage:      true,
}

// Execute runs the root command with signal-aware context.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date
	rootCmd.Version = version

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.journalmap.yaml)")
	rootCmd.PersistentFlags().StringSliceVar(&graphFlag, "graph", nil, "SPARQL endpoint URL for journal data (repeatable)")
	rootCmd.PersistentFlags().StringSliceVar(&dbFlag, "db", nil, "SQLite database path for category data (repeatable)")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "output format: table, json, yaml (default auto-detects)")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 0, "per-store query timeout (default 30s)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "suppress warnings")

	for _, flag := range []string{"graph", "db", "output", "timeout"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(fmt.Sprintf("Failed to bind %s flag: %v", flag, err))
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".journalmap")
		}
	}

	// Load .env before Viper env binding
	_ = godotenv.Load()

	viper.SetEnvPrefix("journalmap")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// Config file is optional
	_ = viper.ReadInConfig()
}

// setupLogging configures the default logger from the verbosity flags.
func setupLogging(cmd *cobra.Command, args []string) error {
	logger := logging.NewConsole()
	switch {
	case verboseFlag:
		logger = logger.Level(zerolog.DebugLevel)
	case quietFlag:
		logger = logger.Level(zerolog.ErrorLevel)
	}
	logging.SetDefault(logger)
	return nil
}

// newJournalMap builds a facade from flags, config file, and environment.
func newJournalMap() (*journalmap.JournalMap, error) {
	opts := []journalmap.Option{
		journalmap.WithLogger(logging.Default()),
	}
	for _, endpoint := range viper.GetStringSlice("graph") {
		opts = append(opts, journalmap.WithGraphEndpoint(endpoint))
	}
	for _, path := range viper.GetStringSlice("db") {
		opts = append(opts, journalmap.WithSQLitePath(path))
	}
	if timeout := viper.GetDuration("timeout"); timeout > 0 {
		opts = append(opts, journalmap.WithHandlerTimeout(timeout))
	}
	return journalmap.New(opts...)
}

// render writes a result table in the selected output format.
func render(table *results.Table) error {
	format, err := output.ParseFormat(viper.GetString("output"))
	if err != nil {
		return err
	}
	return output.NewFormatter(output.DetectFormat(string(format))).Format(os.Stdout, table)
}
