package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/journalmap/journalmap/pkg/entities"
	"github.com/journalmap/journalmap/pkg/results"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query merged records across the configured stores",
}

var (
	titleFilter     string
	publisherFilter string
	licenseFilter   []string
	apcFilter       bool
	sealFilter      bool

	quartileFilter []string
	areaFilter     []string
	categoryFilter []string
)

var queryJournalsCmd = &cobra.Command{
	Use:   "journals",
	Short: "List merged journals, optionally filtered",
	Long: `List journals merged across every configured graph endpoint.

At most one filter may be given per invocation: --title, --publisher,
--license, --apc, or --seal. Without a filter every journal is listed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jm, err := newJournalMap()
		if err != nil {
			return err
		}
		defer jm.Close()
		engine := jm.Engine()

		filters := 0
		for _, set := range []bool{
			titleFilter != "", publisherFilter != "", len(licenseFilter) > 0, apcFilter, sealFilter,
		} {
			if set {
				filters++
			}
		}
		if filters > 1 {
			return fmt.Errorf("at most one of --title, --publisher, --license, --apc, --seal may be given")
		}

		ctx := cmd.Context()
		var journals []entities.Journal
		switch {
		case titleFilter != "":
			journals, err = engine.JournalsWithTitle(ctx, titleFilter)
		case publisherFilter != "":
			journals, err = engine.JournalsPublishedBy(ctx, publisherFilter)
		case len(licenseFilter) > 0:
			journals, err = engine.JournalsWithLicense(ctx, licenseFilter)
		case apcFilter:
			journals, err = engine.JournalsWithAPC(ctx)
		case sealFilter:
			journals, err = engine.JournalsWithDOAJSeal(ctx)
		default:
			journals, err = engine.AllJournals(ctx)
		}
		if err != nil {
			return err
		}
		return render(results.Journals(journals))
	},
}

var queryCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List merged categories, optionally filtered",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jm, err := newJournalMap()
		if err != nil {
			return err
		}
		defer jm.Close()
		engine := jm.Engine()

		if len(quartileFilter) > 0 && len(areaFilter) > 0 {
			return fmt.Errorf("at most one of --quartile, --area may be given")
		}

		ctx := cmd.Context()
		var categories []entities.Category
		switch {
		case len(quartileFilter) > 0:
			categories, err = engine.CategoriesWithQuartile(ctx, quartileFilter)
		case len(areaFilter) > 0:
			categories, err = engine.CategoriesAssignedToAreas(ctx, areaFilter)
		default:
			categories, err = engine.AllCategories(ctx)
		}
		if err != nil {
			return err
		}
		return render(results.Categories(categories))
	},
}

var queryAreasCmd = &cobra.Command{
	Use:   "areas",
	Short: "List merged areas, optionally filtered by category",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jm, err := newJournalMap()
		if err != nil {
			return err
		}
		defer jm.Close()
		engine := jm.Engine()

		ctx := cmd.Context()
		var areas []entities.Area
		if len(categoryFilter) > 0 {
			areas, err = engine.AreasAssignedToCategories(ctx, categoryFilter)
		} else {
			areas, err = engine.AllAreas(ctx)
		}
		if err != nil {
			return err
		}
		return render(results.Areas(areas))
	},
}

var queryEntityCmd = &cobra.Command{
	Use:   "entity <id>",
	Short: "Look up a journal, category, or area by identifier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jm, err := newJournalMap()
		if err != nil {
			return err
		}
		defer jm.Close()

		entity, err := jm.Engine().EntityByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		switch v := entity.(type) {
		case entities.Journal:
			return render(results.Journals([]entities.Journal{v}))
		case *entities.Journal:
			return render(results.Journals([]entities.Journal{*v}))
		case entities.Category:
			return render(results.Categories([]entities.Category{v}))
		case *entities.Category:
			return render(results.Categories([]entities.Category{*v}))
		case entities.Area:
			return render(results.Areas([]entities.Area{v}))
		case *entities.Area:
			return render(results.Areas([]entities.Area{*v}))
		default:
			return fmt.Errorf("unexpected entity type %T", entity)
		}
	},
}

var queryClassificationsCmd = &cobra.Command{
	Use:   "classifications <journal-id>",
	Short: "List the categories and areas assigned to a journal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jm, err := newJournalMap()
		if err != nil {
			return err
		}
		defer jm.Close()

		categories, areas, err := jm.Engine().ClassificationsForJournal(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := render(results.Categories(categories)); err != nil {
			return err
		}
		return render(results.Areas(areas))
	},
}

func init() {
	queryJournalsCmd.Flags().StringVar(&titleFilter, "title", "", "filter by title fragment, case-insensitive")
	queryJournalsCmd.Flags().StringVar(&publisherFilter, "publisher", "", "filter by publisher fragment, case-insensitive")
	queryJournalsCmd.Flags().StringSliceVar(&licenseFilter, "license", nil, "filter by any of the given licenses")
	queryJournalsCmd.Flags().BoolVar(&apcFilter, "apc", false, "only journals charging an APC")
	queryJournalsCmd.Flags().BoolVar(&sealFilter, "seal", false, "only journals with the DOAJ Seal")

	queryCategoriesCmd.Flags().StringSliceVar(&quartileFilter, "quartile", nil, "filter by any of the given quartiles")
	queryCategoriesCmd.Flags().StringSliceVar(&areaFilter, "area", nil, "only categories assigned to any of the given areas")

	queryAreasCmd.Flags().StringSliceVar(&categoryFilter, "category", nil, "only areas assigned to any of the given categories")

	queryCmd.AddCommand(queryJournalsCmd)
	queryCmd.AddCommand(queryCategoriesCmd)
	queryCmd.AddCommand(queryAreasCmd)
	queryCmd.AddCommand(queryEntityCmd)
	queryCmd.AddCommand(queryClassificationsCmd)
	rootCmd.AddCommand(queryCmd)
}
