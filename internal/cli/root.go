// Package cli implements the codemarks command-line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "codemarks",
	Short:        "Index TODO/FIXME/NOTE/HACK/BUG annotations in source trees",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `codemarks discovers structured inline annotations (TODO, FIXME, NOTE,
HACK, BUG) across a source tree, keeps an index of them synchronized with
file changes, and serves scoped, filtered queries over the result.`,
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveRoot turns an optional positional path argument into an absolute
// workspace root, defaulting to the working directory.
func resolveRoot(args []string) (string, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("cannot resolve path %q: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot access %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}
