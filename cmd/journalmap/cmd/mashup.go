package cmd

import (
	"github.com/spf13/cobra"

	"github.com/journalmap/journalmap/pkg/results"
)

var mashupCmd = &cobra.Command{
	Use:   "mashup",
	Short: "Cross-store queries joining journals with their classifications",
	Long: `Mashup queries join journal records from the graph stores with
category and area assignments from the relational stores. Joins are inner
joins on shared ISSN/EISSN identifiers; journals without a matching
classification are excluded. Empty filter sets are wildcards.`,
}

var (
	mashupCategories []string
	mashupQuartiles  []string
	mashupAreas      []string
	mashupLicenses   []string
)

var mashupQuartileCmd = &cobra.Command{
	Use:   "quartile",
	Short: "Journals in the given categories and quartiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jm, err := newJournalMap()
		if err != nil {
			return err
		}
		defer jm.Close()

		journals, err := jm.Engine().JournalsInCategoriesWithQuartile(
			cmd.Context(), mashupCategories, mashupQuartiles)
		if err != nil {
			return err
		}
		return render(results.Journals(journals))
	},
}

var mashupLicenseCmd = &cobra.Command{
	Use:   "license",
	Short: "Journals in the given areas carrying the given licenses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jm, err := newJournalMap()
		if err != nil {
			return err
		}
		defer jm.Close()

		journals, err := jm.Engine().JournalsInAreasWithLicense(
			cmd.Context(), mashupAreas, mashupLicenses)
		if err != nil {
			return err
		}
		return render(results.Journals(journals))
	},
}

var mashupDiamondCmd = &cobra.Command{
	Use:   "diamond",
	Short: "No-APC journals in the given areas, categories, and quartiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jm, err := newJournalMap()
		if err != nil {
			return err
		}
		defer jm.Close()

		journals, err := jm.Engine().DiamondJournalsInAreasAndCategoriesWithQuartile(
			cmd.Context(), mashupAreas, mashupCategories, mashupQuartiles)
		if err != nil {
			return err
		}
		return render(results.Journals(journals))
	},
}

var mashupUncategorizedCmd = &cobra.Command{
	Use:   "uncategorized",
	Short: "Journals with no category assignment at all",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jm, err := newJournalMap()
		if err != nil {
			return err
		}
		defer jm.Close()

		journals, err := jm.Engine().JournalsWithoutCategory(cmd.Context())
		if err != nil {
			return err
		}
		return render(results.Journals(journals))
	},
}

func init() {
	for _, c := range []*cobra.Command{mashupQuartileCmd, mashupDiamondCmd} {
		c.Flags().StringSliceVar(&mashupCategories, "category", nil, "restrict to any of the given categories")
		c.Flags().StringSliceVar(&mashupQuartiles, "quartile", nil, "restrict to any of the given quartiles")
	}
	mashupLicenseCmd.Flags().StringSliceVar(&mashupAreas, "area", nil, "restrict to any of the given areas")
	mashupLicenseCmd.Flags().StringSliceVar(&mashupLicenses, "license", nil, "restrict to any of the given licenses")
	mashupDiamondCmd.Flags().StringSliceVar(&mashupAreas, "area", nil, "restrict to any of the given areas")

	mashupCmd.AddCommand(mashupQuartileCmd)
	mashupCmd.AddCommand(mashupLicenseCmd)
	mashupCmd.AddCommand(mashupDiamondCmd)
	mashupCmd.AddCommand(mashupUncategorizedCmd)
	rootCmd.AddCommand(mashupCmd)
}
