package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ansa/internal/adapters/driving/mcp"
)

// mcpPort is the --port flag. Zero keeps the server on stdio.
var mcpPort int

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Expose the corpus to AI assistants over the Model Context Protocol.

Without flags the server speaks JSON-RPC over stdio, which is what
Claude Desktop and most MCP clients expect. Pass --port to serve the
same protocol over HTTP instead, for the MCP Inspector web UI or for
clients on another machine.

Examples:
  # stdio (Claude Desktop)
  ansa mcp

  # HTTP on port 8080 (MCP Inspector, remote clients)
  ansa mcp --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "ansa": {
        "command": "/path/to/ansa",
        "args": ["mcp"]
      }
    }
  }`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	server, err := mcp.NewServer(&mcp.Ports{
		Query:        queryService,
		Search:       searchService,
		Document:     documentService,
		Conversation: conversationStore,
	})
	if err != nil {
		return err
	}

	if mcpPort > 0 {
		addr := fmt.Sprintf(":%d", mcpPort)
		cmd.Printf("MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}
	return server.Run(cmd.Context())
}
