package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/harvest-cli/internal/adapters/driving/mcp"
	"github.com/custodia-labs/harvest-cli/internal/core/services"
)

var mcpStore string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server exposes a query tool over a store built with the index
command. By default it communicates over stdio using JSON-RPC and can
be used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Examples:
  # Stdio mode (default, for Claude Desktop)
  harvest mcp --store ./docs-store

  # HTTP mode (for MCP Inspector, remote access)
  harvest mcp --store ./docs-store --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "harvest": {
        "command": "/path/to/harvest",
        "args": ["mcp", "--store", "/path/to/docs-store"]
      }
    }
  }`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVarP(&mcpStore, "store", "s", "", "store directory (required)")
	mcpCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	_ = mcpCmd.MarkFlagRequired("store")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	cfg := loadConfig()

	embedder, index, chunks, err := openStore(cfg, mcpStore)
	if err != nil {
		return err
	}
	defer func() {
		_ = embedder.Close()
		_ = index.Close()
		_ = chunks.Close()
	}()

	ports := &mcp.Ports{
		Query:     services.NewQueryService(embedder, index, chunks),
		Documents: services.NewDocumentService(chunks),
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
