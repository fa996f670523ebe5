package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/codemarks/codemarks/internal/config"
	"github.com/codemarks/codemarks/internal/engine"
	"github.com/codemarks/codemarks/internal/index"
	"github.com/codemarks/codemarks/pkg/types"
)

var (
	flagScanFilter  string
	flagScanGrouped bool
	flagScanStats   bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a source tree once and print every annotation found",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&flagScanFilter, "filter", "", "Only show annotations matching this substring (text, path, or kind)")
	scanCmd.Flags().BoolVar(&flagScanGrouped, "grouped", false, "Group output by annotation kind")
	scanCmd.Flags().BoolVar(&flagScanStats, "stats", false, "Print scan statistics after the listing")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}

	eng := engine.New(root, cfg)
	defer eng.Dispose()

	stats, err := eng.ScanWorkspace(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	annotations := eng.Query(types.ScopeAll, flagScanFilter)
	if flagScanGrouped {
		printGrouped(annotations)
	} else {
		printFlat(annotations)
	}

	if flagScanStats {
		fmt.Printf("\n%d annotations in %d files (%d scanned, %d cached, %d failed) in %v\n",
			stats.Annotations, eng.Statistics().Files,
			stats.FilesScanned, stats.FilesSkipped, stats.FilesFailed, stats.Duration)
	}
	return nil
}

// printFlat writes one tab-aligned row per annotation.
func printFlat(annotations []types.Annotation) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, ann := range annotations {
		fmt.Fprintf(w, "%s:%d:%d\t%s\t%s\n",
			ann.File, ann.Line+1, ann.Column+1, ann.Kind, ann.Text)
	}
	_ = w.Flush()
}

// printGrouped writes a section per kind in display order.
func printGrouped(annotations []types.Annotation) {
	groups := index.GroupByKind(annotations)
	for _, kind := range types.Kinds {
		group := groups[kind]
		if len(group) == 0 {
			continue
		}
		fmt.Printf("%s (%d)\n", kind, len(group))
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, ann := range group {
			fmt.Fprintf(w, "  %s:%d\t%s\n", ann.File, ann.Line+1, ann.Text)
		}
		_ = w.Flush()
	}
}
