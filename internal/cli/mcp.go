package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/mvp-joe/pymap/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for index queries",
	Long: `Start the Model Context Protocol (MCP) server that lets LLM-powered
coding assistants search and navigate the indexed project.

The MCP server:
- Loads the index from the SQLite database
- Exposes the search_definitions, file_dependencies, and project_overview tools
- Reloads automatically when 'pymap index' rewrites the database
- Communicates via stdio (standard MCP transport)

Example:
  pymap mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	rootDir, err := projectRoot()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Startup information goes to stderr; stdout carries the protocol.
	fmt.Fprintf(os.Stderr, "pymap MCP Server\n")
	fmt.Fprintf(os.Stderr, "Project Root: %s\n", rootDir)
	fmt.Fprintf(os.Stderr, "Index Database: %s\n", cfg.DatabasePath(rootDir))
	fmt.Fprintf(os.Stderr, "\n")

	server, err := mcp.NewServer(ctx, rootDir, cfg, Version)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer server.Close()

	// Serve (blocks until shutdown)
	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	return nil
}
