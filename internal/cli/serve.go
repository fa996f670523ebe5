package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/codemarks/codemarks/internal/mcp"
)

var flagServeWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve [path]",
	Short: "Serve the annotation index over MCP on stdio",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&flagServeWatch, "watch", true, "Keep the index synchronized with file changes while serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	// Stdout carries the MCP protocol; everything else goes to stderr.
	log.SetOutput(os.Stderr)
	log.Printf("codemarks MCP server %s starting for %s...", Version, root)

	server, err := mcp.NewServer(root, flagServeWatch)
	if err != nil {
		return fmt.Errorf("cannot create MCP server: %w", err)
	}

	log.Println("MCP server ready, listening on stdio...")
	return server.Serve(cmd.Context())
}
