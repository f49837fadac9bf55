package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ludo-technologies/yieldscan/domain"
	"github.com/ludo-technologies/yieldscan/service"
	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const generatorSource = `def gen(c):
    if c:
        yield "A"
    else:
        yield "B"
    yield "C"

def other():
    yield 1
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func callTool(name string, args map[string]interface{}) mcptypes.CallToolRequest {
	return mcptypes.CallToolRequest{
		Params: mcptypes.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcptypes.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("expected tool result content")
	}
	textContent, ok := result.Content[0].(mcptypes.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return textContent.Text
}

func decodeRoutes(t *testing.T, result *mcptypes.CallToolResult) domain.RouteResponse {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected successful MCP tool result, got error result: %+v", result.Content)
	}
	var response domain.RouteResponse
	if err := json.Unmarshal([]byte(resultText(t, result)), &response); err != nil {
		t.Fatalf("failed to unmarshal route response: %v", err)
	}
	return response
}

func TestHandleEnumerateRoutes(t *testing.T) {
	tempDir := t.TempDir()
	writeFile(t, tempDir, "gen.py", generatorSource)

	handlers := NewHandlerSet(NewTestDependencies(service.NewFileReader(), ""))
	result, err := handlers.HandleEnumerateRoutes(context.Background(), callTool("enumerate_routes", map[string]interface{}{
		"path": tempDir,
	}))
	if err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}

	response := decodeRoutes(t, result)
	if len(response.Functions) != 2 {
		t.Fatalf("expected 2 functions, got %d", len(response.Functions))
	}
	gen := response.Functions[0]
	if gen.Name != "gen" || gen.Status != domain.RouteStatusAnalyzed {
		t.Fatalf("unexpected first function: %s (%s)", gen.Name, gen.Status)
	}
	if len(gen.Routes) != 2 {
		t.Fatalf("expected 2 routes for gen, got %d", len(gen.Routes))
	}
	if gen.Tree != nil {
		t.Error("tree should be omitted unless show_tree is set")
	}
	if response.Summary.TotalRoutes != 3 {
		t.Errorf("expected 3 routes in total, got %d", response.Summary.TotalRoutes)
	}
}

func TestHandleEnumerateRoutes_FunctionAndTree(t *testing.T) {
	tempDir := t.TempDir()
	path := writeFile(t, tempDir, "gen.py", generatorSource)

	handlers := NewHandlerSet(NewTestDependencies(service.NewFileReader(), ""))
	result, err := handlers.HandleEnumerateRoutes(context.Background(), callTool("enumerate_routes", map[string]interface{}{
		"path":      path,
		"function":  "gen",
		"show_tree": true,
	}))
	if err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}

	response := decodeRoutes(t, result)
	if len(response.Functions) != 1 || response.Functions[0].Name != "gen" {
		t.Fatalf("expected only gen, got %+v", response.Functions)
	}
	if response.Functions[0].Tree == nil {
		t.Fatal("expected route tree with show_tree")
	}
	if response.Functions[0].Tree.Kind != "root" {
		t.Errorf("expected root tree node, got %s", response.Functions[0].Tree.Kind)
	}
}

func TestHandleEnumerateRoutes_ArgumentsOverrideConfig(t *testing.T) {
	tempDir := t.TempDir()
	writeFile(t, tempDir, "gen.py", generatorSource)
	writeFile(t, tempDir, ".yieldscan.toml", "[routes]\nmax_routes = 1\n")

	handlers := NewHandlerSet(NewTestDependencies(service.NewFileReader(), ""))

	result, err := handlers.HandleEnumerateRoutes(context.Background(), callTool("enumerate_routes", map[string]interface{}{
		"path":     tempDir,
		"function": "gen",
	}))
	if err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}
	response := decodeRoutes(t, result)
	if got := response.Functions[0].Status; got != domain.RouteStatusTooComplex {
		t.Fatalf("expected config max_routes to apply, got status %s", got)
	}

	result, err = handlers.HandleEnumerateRoutes(context.Background(), callTool("enumerate_routes", map[string]interface{}{
		"path":       tempDir,
		"function":   "gen",
		"max_routes": float64(0),
	}))
	if err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}
	response = decodeRoutes(t, result)
	if got := response.Functions[0].Status; got != domain.RouteStatusAnalyzed {
		t.Fatalf("expected max_routes argument to override config, got status %s", got)
	}
}

func TestHandleEnumerateRoutes_InvalidArguments(t *testing.T) {
	handlers := NewHandlerSet(nil)
	tempDir := t.TempDir()

	tests := []struct {
		name string
		args interface{}
		want string
	}{
		{"not a map", "oops", "invalid arguments format"},
		{"missing path", map[string]interface{}{}, "path parameter is required"},
		{"missing file", map[string]interface{}{"path": filepath.Join(tempDir, "nope.py")}, "path does not exist"},
		{"negative cap", map[string]interface{}{"path": tempDir, "max_routes": float64(-1)}, "max_routes must be >= 0"},
		{"no sources", map[string]interface{}{"path": tempDir}, "no Python, C# or Go files found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := mcptypes.CallToolRequest{
				Params: mcptypes.CallToolParams{Name: "enumerate_routes", Arguments: tt.args},
			}
			result, err := handlers.HandleEnumerateRoutes(context.Background(), request)
			if err != nil {
				t.Fatalf("unexpected handler error: %v", err)
			}
			if !result.IsError {
				t.Fatal("expected error result")
			}
			if text := resultText(t, result); !strings.Contains(text, tt.want) {
				t.Errorf("expected %q in %q", tt.want, text)
			}
		})
	}
}

func TestHandleRenderRouteTree(t *testing.T) {
	tempDir := t.TempDir()
	path := writeFile(t, tempDir, "gen.py", generatorSource)

	handlers := NewHandlerSet(NewTestDependencies(service.NewFileReader(), ""))
	result, err := handlers.HandleRenderRouteTree(context.Background(), callTool("render_route_tree", map[string]interface{}{
		"path":     path,
		"function": []interface{}{"gen"},
	}))
	if err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected successful MCP tool result, got error result: %+v", result.Content)
	}

	text := resultText(t, result)
	if !strings.HasPrefix(text, "== "+path+":1 gen (python)\n") {
		t.Errorf("unexpected dump header: %q", text)
	}
	if !strings.Contains(text, "routes: 2\n") {
		t.Errorf("expected route count in dump: %q", text)
	}
	if strings.Contains(text, "other") {
		t.Errorf("function filter not applied: %q", text)
	}
}

func TestRegisterTools(t *testing.T) {
	s := server.NewMCPServer("yieldscan-test", "0.0.0", server.WithToolCapabilities(true))
	RegisterTools(s, NewHandlerSet(nil))

	message := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(message)
	if err != nil {
		t.Fatalf("failed to marshal tools/list response: %v", err)
	}
	for _, name := range []string{"enumerate_routes", "render_route_tree"} {
		if !strings.Contains(string(data), `"name":"`+name+`"`) {
			t.Errorf("tool %s not listed in %s", name, data)
		}
	}
}
