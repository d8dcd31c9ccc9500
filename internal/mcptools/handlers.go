// Package mcptools exposes the time tracking operations as MCP tools over
// the mark3labs server. Handlers translate tool arguments into domain calls
// and render results as JSON text content.
package mcptools

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"toggl-mcp/internal/automation"
	"toggl-mcp/internal/bulk"
	"toggl-mcp/internal/ports"
	"toggl-mcp/internal/resolver"
	"toggl-mcp/internal/search"
	"toggl-mcp/internal/timeconv"
)

// McpServer is the registration surface the handlers need from the server.
type McpServer interface {
	AddTool(tool mcp.Tool, handler server.ToolHandlerFunc)
}

// ToolHandlers holds the dependencies shared by every tool handler. A fresh
// resolution scope is opened per invocation; nothing here carries state
// between calls.
type ToolHandlers struct {
	log      *slog.Logger
	dir      ports.Directory
	mut      ports.Mutator
	resolver *resolver.Resolver
	search   *search.Engine
	bulk     *bulk.Coordinator
	auto     *automation.Engine
	conv     *timeconv.Converter
}

func NewToolHandlers(
	log *slog.Logger,
	dir ports.Directory,
	mut ports.Mutator,
	res *resolver.Resolver,
	se *search.Engine,
	bc *bulk.Coordinator,
	ae *automation.Engine,
	conv *timeconv.Converter,
) *ToolHandlers {
	return &ToolHandlers{
		log:      log,
		dir:      dir,
		mut:      mut,
		resolver: res,
		search:   se,
		bulk:     bc,
		auto:     ae,
		conv:     conv,
	}
}

// RegisterTools registers the full tool catalog on the server.
func (h *ToolHandlers) RegisterTools(s McpServer) {
	h.registerTimeEntryTools(s)
	h.registerProjectTools(s)
	h.registerAutomationTools(s)
}

func jsonResult(data any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func errResult(what string, err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", what, err)), nil
}

// optInt64 reports whether the argument was supplied and returns it as a
// pointer when it was; GetInt alone cannot distinguish absent from zero.
func optInt64(req mcp.CallToolRequest, key string) *int64 {
	if _, ok := req.GetArguments()[key]; !ok {
		return nil
	}
	v := int64(req.GetInt(key, 0))
	return &v
}

func optBool(req mcp.CallToolRequest, key string) *bool {
	if _, ok := req.GetArguments()[key]; !ok {
		return nil
	}
	v := req.GetBool(key, false)
	return &v
}
