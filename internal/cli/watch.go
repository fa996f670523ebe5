package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codemarks/codemarks/internal/config"
	"github.com/codemarks/codemarks/internal/engine"
	"github.com/codemarks/codemarks/internal/watcher"
	"github.com/codemarks/codemarks/pkg/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Scan a source tree and keep reporting annotation counts as files change",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
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
	eng.SetScope(types.ScopeAll)

	if _, err := eng.ScanWorkspace(cmd.Context()); err != nil {
		return fmt.Errorf("initial scan failed: %w", err)
	}

	// Every index mutation reprints the summary line.
	eng.Subscribe(func() {
		stats := eng.Statistics()
		fmt.Printf("\r%d annotations in %d files", stats.Annotations, stats.Files)
	})

	w, err := watcher.New(root, cfg.Scan, eng)
	if err != nil {
		return fmt.Errorf("cannot create watcher: %w", err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("cannot start watcher: %w", err)
	}
	defer func() { _ = w.Stop() }()

	stats := eng.Statistics()
	fmt.Printf("%d annotations in %d files, watching %s (ctrl-c to stop)\n",
		stats.Annotations, stats.Files, root)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	fmt.Println()
	return nil
}
