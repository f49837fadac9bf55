package main

import (
	"fmt"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/pflag"

	"github.com/ludo-technologies/yieldscan/internal/logging"
	"github.com/ludo-technologies/yieldscan/internal/version"
	"github.com/ludo-technologies/yieldscan/mcp"
)

const serverName = "yieldscan"

func main() {
	configPath := pflag.StringP("config", "c", "", "Configuration file path (default: discovered from each target path)")
	verbose := pflag.BoolP("verbose", "v", false, "Enable debug logging")
	pflag.Parse()

	// MCP uses stdout for JSON-RPC; logs go to stderr
	logger := logging.NewWriter(os.Stderr, *verbose)
	defer func() { _ = logger.Sync() }()

	server := mcpserver.NewMCPServer(
		serverName,
		version.Short(),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
	)

	mcp.RegisterTools(server, mcp.NewHandlerSet(mcp.NewDependencies(*configPath, logger)))

	logger.Infow("starting MCP server",
		"name", serverName,
		"version", version.Short(),
		"tools", []string{"enumerate_routes", "render_route_tree"},
	)

	// Blocks until the client disconnects
	if err := mcpserver.ServeStdio(server); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
