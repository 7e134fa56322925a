package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/msgtext/entdecode/internal/entity"
	"github.com/msgtext/entdecode/internal/feed"
)

const maxLimit = 1000

type handlers struct {
	maxInputBytes int64
}

type decodeResult struct {
	Decoded *string `json:"decoded"`
	Found   bool    `json:"found"`
}

type entityResult struct {
	Name      string `json:"name"`
	CodePoint string `json:"code_point"`
	Char      string `json:"char"`
}

// textArg extracts a required string argument and enforces the input limit.
func (h *handlers) textArg(args map[string]any, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok {
		return "", fmt.Errorf("%s parameter is required", key)
	}
	if h.maxInputBytes > 0 && int64(len(v)) > h.maxInputBytes {
		return "", fmt.Errorf("%s too large: %d bytes (max %d)", key, len(v), h.maxInputBytes)
	}
	return v, nil
}

func (h *handlers) decodeEntities(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := h.textArg(req.GetArguments(), "text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var res decodeResult
	if decoded, ok := entity.DecodeString(text); ok {
		res.Decoded = &decoded
		res.Found = true
	}
	return jsonResult(res)
}

func (h *handlers) lookupEntity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := req.GetArguments()["name"].(string)
	name = strings.TrimSuffix(strings.TrimPrefix(name, "&"), ";")
	if name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	r, ok := entity.Lookup(name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown character reference: %q", name)), nil
	}
	return jsonResult(newEntityResult(name, r))
}

func (h *handlers) listEntities(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	prefix, _ := args["prefix"].(string)
	limit := limitArg(args, "limit", 50)

	out := []entityResult{}
	for name, r := range entity.All() {
		if len(out) >= limit {
			break
		}
		if strings.HasPrefix(name, prefix) {
			out = append(out, newEntityResult(name, r))
		}
	}
	return jsonResult(out)
}

func (h *handlers) formatFeed(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	text, err := h.textArg(args, "text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	keep, _ := args["keep_returns"].(bool)
	return mcp.NewToolResultText(feed.FormatString(text, true, !keep)), nil
}

func newEntityResult(name string, r rune) entityResult {
	return entityResult{Name: name, CodePoint: fmt.Sprintf("U+%04X", r), Char: string(r)}
}

// limitArg extracts a non-negative integer limit from a map, with a default.
// JSON numbers arrive as float64. Clamps to maxLimit.
func limitArg(args map[string]any, key string, def int) int {
	v, ok := args[key].(float64)
	if !ok {
		return def
	}
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if math.IsInf(v, 1) || v > float64(maxLimit) {
		return maxLimit
	}
	return int(v)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
