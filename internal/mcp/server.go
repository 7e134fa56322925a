package mcp

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Tool name constants.
const (
	ToolDecodeEntities = "decode_entities"
	ToolLookupEntity   = "lookup_entity"
	ToolListEntities   = "list_entities"
	ToolFormatFeed     = "format_feed"
)

// Serve creates an MCP server with the character reference tools and serves
// over stdio. It blocks until stdin is closed or the context is cancelled.
// maxInputBytes bounds the text accepted by any tool.
func Serve(ctx context.Context, version string, maxInputBytes int64) error {
	s := newServer(version, maxInputBytes)
	stdio := server.NewStdioServer(s)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

func newServer(version string, maxInputBytes int64) *server.MCPServer {
	s := server.NewMCPServer(
		"entdecode",
		version,
		server.WithToolCapabilities(false),
	)

	h := &handlers{maxInputBytes: maxInputBytes}

	s.AddTool(decodeEntitiesTool(), h.decodeEntities)
	s.AddTool(lookupEntityTool(), h.lookupEntity)
	s.AddTool(listEntitiesTool(), h.listEntities)
	s.AddTool(formatFeedTool(), h.formatFeed)
	return s
}

func decodeEntitiesTool() mcp.Tool {
	return mcp.NewTool(ToolDecodeEntities,
		mcp.WithDescription("Decode HTML character references (&amp;, &eacute;, &#233;, &#xE9;) in text. Returns found=false and a null result when nothing could be decoded."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text containing character references"),
		),
	)
}

func lookupEntityTool() mcp.Tool {
	return mcp.NewTool(ToolLookupEntity,
		mcp.WithDescription("Look up a named character reference (case-sensitive, without '&' and ';') and return its code point."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Reference name, e.g. 'eacute'"),
		),
	)
}

func listEntitiesTool() mcp.Tool {
	return mcp.NewTool(ToolListEntities,
		mcp.WithDescription("List known named character references, optionally filtered by name prefix."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("prefix",
			mcp.Description("Only names starting with this prefix"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results to return (default 50)"),
		),
	)
}

func formatFeedTool() mcp.Tool {
	return mcp.NewTool(ToolFormatFeed,
		mcp.WithDescription("Format an RSS/Atom title or summary for display: decode references, drop inline formatting tags, normalize whitespace."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Feed text"),
		),
		mcp.WithBoolean("keep_returns",
			mcp.Description("Keep line breaks instead of joining lines (default false)"),
		),
	)
}
