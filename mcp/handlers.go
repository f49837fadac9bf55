package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ludo-technologies/yieldscan/domain"
	"github.com/ludo-technologies/yieldscan/internal/config"
	"github.com/ludo-technologies/yieldscan/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// HandlerSet exposes MCP tool handlers with shared dependencies.
type HandlerSet struct {
	deps *Dependencies
}

// NewHandlerSet constructs a handler set.
func NewHandlerSet(deps *Dependencies) *HandlerSet {
	if deps == nil {
		deps = NewDependencies("", nil)
	}
	return &HandlerSet{deps: deps}
}

// HandleEnumerateRoutes handles the enumerate_routes tool
func (h *HandlerSet) HandleEnumerateRoutes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, path, errResult := parsePathArgs(request)
	if errResult != nil {
		return errResult, nil
	}

	tracker := config.NewFlagTracker()
	req := baseRequest(path, h.deps.ConfigPath())
	applyFunctionArg(args, &req, tracker)

	if v, ok := args["max_routes"].(float64); ok {
		if v < 0 {
			return mcp.NewToolResultError("max_routes must be >= 0"), nil
		}
		req.MaxRoutes = int(v)
		tracker.Set("max-routes")
	}
	if v, ok := args["implicit_else"].(bool); ok {
		req.ImplicitElse = v
		tracker.Set("implicit-else")
	}
	if v, ok := args["show_tree"].(bool); ok {
		req.ShowTree = v
		tracker.Set("show-tree")
	}

	response, errResult := h.analyze(ctx, path, req, tracker)
	if errResult != nil {
		return errResult, nil
	}

	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// HandleRenderRouteTree handles the render_route_tree tool
func (h *HandlerSet) HandleRenderRouteTree(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, path, errResult := parsePathArgs(request)
	if errResult != nil {
		return errResult, nil
	}

	tracker := config.NewFlagTracker()
	req := baseRequest(path, h.deps.ConfigPath())
	req.ShowDump = true
	applyFunctionArg(args, &req, tracker)

	response, errResult := h.analyze(ctx, path, req, tracker)
	if errResult != nil {
		return errResult, nil
	}
	return mcp.NewToolResultText(service.FormatDumps(response)), nil
}

func (h *HandlerSet) analyze(ctx context.Context, path string, req domain.RouteRequest, tracker *config.FlagTracker) (*domain.RouteResponse, *mcp.CallToolResult) {
	useCase, err := h.deps.BuildRouteUseCase(path, tracker)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("Failed to build use case: %v", err))
	}

	response, err := useCase.Analyze(ctx, req)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("Route analysis failed: %v", err))
	}
	return response, nil
}

func parsePathArgs(request mcp.CallToolRequest) (map[string]interface{}, string, *mcp.CallToolResult) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, "", mcp.NewToolResultError("invalid arguments format")
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, "", mcp.NewToolResultError("path parameter is required and must be a string")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, "", mcp.NewToolResultError(fmt.Sprintf("path does not exist: %s", path))
	}
	return args, path, nil
}

func baseRequest(path, configPath string) domain.RouteRequest {
	return domain.RouteRequest{
		Paths:        []string{path},
		OutputFormat: domain.OutputFormatJSON,
		OutputWriter: io.Discard,
		ConfigPath:   configPath,
	}
}

// applyFunctionArg accepts either a single pattern or an array of patterns
func applyFunctionArg(args map[string]interface{}, req *domain.RouteRequest, tracker *config.FlagTracker) {
	switch v := args["function"].(type) {
	case string:
		if v != "" {
			req.FunctionPatterns = []string{v}
		}
	case []interface{}:
		for _, p := range v {
			if s, ok := p.(string); ok && s != "" {
				req.FunctionPatterns = append(req.FunctionPatterns, s)
			}
		}
	}
	if len(req.FunctionPatterns) > 0 {
		tracker.Set("function")
	}
}
