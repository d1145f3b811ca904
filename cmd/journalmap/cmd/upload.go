package cmd

import (
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Load source exports into the configured stores",
}

var uploadJournalsCmd = &cobra.Command{
	Use:   "journals <csv-file>",
	Short: "Load a DOAJ CSV export into every configured graph endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jm, err := newJournalMap()
		if err != nil {
			return err
		}
		defer jm.Close()
		return jm.UploadJournals(cmd.Context(), args[0])
	},
}

var uploadCategoriesCmd = &cobra.Command{
	Use:   "categories <json-file>",
	Short: "Load a Scimago JSON export into every configured SQLite database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jm, err := newJournalMap()
		if err != nil {
			return err
		}
		defer jm.Close()
		return jm.UploadCategories(cmd.Context(), args[0])
	},
}

func init() {
	uploadCmd.AddCommand(uploadJournalsCmd)
	uploadCmd.AddCommand(uploadCategoriesCmd)
	rootCmd.AddCommand(uploadCmd)
}
