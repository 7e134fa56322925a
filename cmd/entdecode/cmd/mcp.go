package cmd

import (
	mcpserver "github.com/msgtext/entdecode/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run MCP server over stdio",
	Long: `Start an MCP (Model Context Protocol) server over stdio.

This lets an MCP client decode character references with the tools
decode_entities, lookup_entity, list_entities and format_feed.

Add to the client config:
  {
    "mcpServers": {
      "entdecode": {
        "command": "entdecode",
        "args": ["mcp"]
      }
    }
  }`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcpserver.Serve(cmd.Context(), Version, cfg.Decode.MaxInputBytes)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
