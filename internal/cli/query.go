package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codemarks/codemarks/internal/config"
	"github.com/codemarks/codemarks/internal/engine"
	"github.com/codemarks/codemarks/pkg/types"
)

var (
	flagQueryRoot string
	flagQueryKind string
)

var queryCmd = &cobra.Command{
	Use:   "query <filter>",
	Short: "Scan and filter annotations by substring",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&flagQueryRoot, "root", ".", "Workspace root to scan")
	queryCmd.Flags().StringVar(&flagQueryKind, "kind", "", "Restrict to one kind (todo, fixme, note, hack, bug)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot([]string{flagQueryRoot})
	if err != nil {
		return err
	}

	var kind types.Kind
	if flagQueryKind != "" {
		kind, err = types.ParseKind(flagQueryKind)
		if err != nil {
			return fmt.Errorf("unknown kind %q: valid kinds are todo, fixme, note, hack, bug", flagQueryKind)
		}
	}

	cfg, err := config.Load(root)
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}

	eng := engine.New(root, cfg)
	defer eng.Dispose()

	if _, err := eng.ScanWorkspace(cmd.Context()); err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	annotations := eng.Query(types.ScopeAll, args[0])
	if kind != "" {
		// Query results may be shared with the store's cache; filter into
		// a fresh slice.
		var filtered []types.Annotation
		for _, ann := range annotations {
			if ann.Kind == kind {
				filtered = append(filtered, ann)
			}
		}
		annotations = filtered
	}

	if len(annotations) == 0 {
		fmt.Println("no matching annotations")
		return nil
	}
	printFlat(annotations)
	return nil
}
