package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers the yieldscan MCP tools with the server
func RegisterTools(s *server.MCPServer, handlers *HandlerSet) {
	if handlers == nil {
		handlers = NewHandlerSet(nil)
	}

	// enumerate_routes - route tree and yield routes as JSON
	s.AddTool(mcp.NewTool("enumerate_routes",
		mcp.WithDescription("Enumerate the yield routes of generator functions in Python, C# and Go source"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to a source file or directory to analyze")),
		mcp.WithString("function",
			mcp.Description("Glob on qualified function names, e.g. 'Repo.*' (default: all generators)")),
		mcp.WithNumber("max_routes",
			mcp.Description("Maximum routes per function, 0 = no limit (default: 4096)")),
		mcp.WithBoolean("implicit_else",
			mcp.Description("Keep the fall-through path around an if without else (default: false)")),
		mcp.WithBoolean("show_tree",
			mcp.Description("Include the route tree of each function (default: false)")),
	), handlers.HandleEnumerateRoutes)

	// render_route_tree - diagnostic text dump
	s.AddTool(mcp.NewTool("render_route_tree",
		mcp.WithDescription("Render the route tree and enumerated routes of generator functions as text"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to a source file or directory to analyze")),
		mcp.WithString("function",
			mcp.Description("Glob on qualified function names (default: all generators)")),
	), handlers.HandleRenderRouteTree)
}
