package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/aapbridge/internal/collections/application/commands"
	"github.com/felixgeelhaar/aapbridge/internal/collections/application/queries"
	"github.com/felixgeelhaar/aapbridge/internal/collections/domain"
)

var collectionsCmd = &cobra.Command{
	Use:     "collections",
	Aliases: []string{"col"},
	Short:   "Discover and install Automation Hub collections",
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections available on the Automation Hub",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		collections, err := app.ListCollectionsHandler.Handle(cmd.Context(), queries.ListCollectionsQuery{})
		if err != nil {
			return err
		}

		if len(collections) == 0 {
			fmt.Println("No collections found on the Automation Hub.")
			return nil
		}
		for _, col := range collections {
			printCollectionLine(col)
		}
		fmt.Printf("\n%d collections\n", len(collections))
		return nil
	},
}

var collectionsSearchCmd = &cobra.Command{
	Use:   "search <keyword>...",
	Short: "Search hub collections by keyword",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		collections, err := app.SearchCollectionsHandler.Handle(cmd.Context(), queries.SearchCollectionsQuery{Keywords: args})
		if err != nil {
			return err
		}

		if len(collections) == 0 {
			fmt.Printf("No collections match '%s'\n", strings.Join(args, " "))
			return nil
		}
		for _, col := range collections {
			printCollectionLine(col)
		}
		return nil
	},
}

var collectionsShowCmd = &cobra.Command{
	Use:   "show <namespace.name>",
	Short: "Show full details of one collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		spec, err := parseSpec(args[0])
		if err != nil {
			return err
		}

		collection, err := app.GetCollectionHandler.Handle(cmd.Context(), queries.GetCollectionQuery{
			Namespace: spec.Namespace,
			Name:      spec.Name,
		})
		if err != nil {
			return err
		}

		fmt.Println(collection.Detail())
		return nil
	},
}

var collectionsDiscoverCmd = &cobra.Command{
	Use:   "discover [keyword]...",
	Short: "Discover collections and emit a requirements manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		known, _ := cmd.Flags().GetStringSlice("known")
		limit, _ := cmd.Flags().GetInt("limit")

		result, err := app.DiscoverHandler.Handle(cmd.Context(), commands.DiscoverCommand{
			Keywords:         args,
			KnownCollections: known,
			MaxCollections:   limit,
		})
		if err != nil {
			return err
		}

		fmt.Println(result.Content)
		if result.RequirementsYAML != "" {
			fmt.Println("\nRequirements manifest:")
			fmt.Println(result.RequirementsYAML)
		}
		if !result.IsSuccess() {
			return fmt.Errorf("discovery did not succeed: %s", result)
		}
		return nil
	},
}

var collectionsInstallCmd = &cobra.Command{
	Use:   "install <namespace.name[:version]>...",
	Short: "Install collections, preferring the Automation Hub",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		force, _ := cmd.Flags().GetBool("force")

		specs := make([]domain.Spec, 0, len(args))
		for _, arg := range args {
			spec, err := parseSpec(arg)
			if err != nil {
				return err
			}
			specs = append(specs, spec)
		}

		summary, err := app.InstallCollectionsHandler.Handle(cmd.Context(), commands.InstallCollectionsCommand{
			Specs: specs,
			Force: force,
		})
		if err != nil {
			return err
		}

		for _, result := range summary.Results {
			line := fmt.Sprintf("%-10s %s", result.Status, result.Spec.Requirement())
			if result.Message != "" {
				line += " (" + result.Message + ")"
			}
			fmt.Println(line)
		}
		fmt.Printf("\n%d installed, %d skipped, %d failed\n", summary.Succeeded(), summary.Skipped(), summary.Failed())

		if summary.Failed() > 0 {
			return fmt.Errorf("%d collections failed to install", summary.Failed())
		}
		return nil
	},
}

var collectionsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the local collection install history",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		limit, _ := cmd.Flags().GetInt("limit")

		records, err := app.ListInstallRecordsHandler.Handle(cmd.Context(), queries.ListInstallRecordsQuery{Limit: limit})
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("No install history.")
			return nil
		}
		for _, record := range records {
			line := fmt.Sprintf("%s  %-10s %s", record.InstalledAt.Format("2006-01-02 15:04"), record.Status, record.FQCN)
			if record.Version != "" {
				line += ":" + record.Version
			}
			fmt.Println(line)
		}
		return nil
	},
}

// parseSpec parses "namespace.name" or "namespace.name:version".
func parseSpec(arg string) (domain.Spec, error) {
	name := arg
	version := ""
	if idx := strings.Index(arg, ":"); idx >= 0 {
		name = arg[:idx]
		version = arg[idx+1:]
	}

	parts := strings.SplitN(name, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return domain.Spec{}, fmt.Errorf("invalid collection %q: expected namespace.name[:version]", arg)
	}
	return domain.Spec{Namespace: parts[0], Name: parts[1], Version: version}, nil
}

func printCollectionLine(col domain.Collection) {
	line := col.FQCN()
	if col.Version != "" {
		line += " (" + col.Version + ")"
	}
	if col.Description != "" {
		line += " - " + col.Description
	}
	fmt.Println(line)
}

func init() {
	collectionsDiscoverCmd.Flags().StringSlice("known", nil, "FQCNs to exclude from discovery")
	collectionsDiscoverCmd.Flags().Int("limit", 0, "maximum collections to enrich")
	collectionsInstallCmd.Flags().Bool("force", false, "reinstall even when already recorded as installed")
	collectionsHistoryCmd.Flags().Int("limit", 0, "maximum records to show")

	collectionsCmd.AddCommand(
		collectionsListCmd,
		collectionsSearchCmd,
		collectionsShowCmd,
		collectionsDiscoverCmd,
		collectionsInstallCmd,
		collectionsHistoryCmd,
	)
	rootCmd.AddCommand(collectionsCmd)
}
