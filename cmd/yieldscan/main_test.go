package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/yieldscan/domain"
	"github.com/ludo-technologies/yieldscan/internal/version"
)

const genSource = `def gen(c):
    if c:
        yield A
    else:
        return
    yield B
`

func init() {
	color.NoColor = true
}

// runCLI executes the root command in process
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeGen(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "gen.py")
	require.NoError(t, os.WriteFile(path, []byte(genSource), 0o644))
	return dir, path
}

func TestCommandInterfaces(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"routes", "tree", "init", "version"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
		assert.NotEmpty(t, cmd.Short, name)
	}

	routes := NewRoutesCmd()
	for _, flag := range []string{"json", "yaml", "csv", "dot", "output", "function", "show-tree",
		"max-routes", "max-tree-nodes", "implicit-else", "include", "exclude", "recursive",
		"languages", "config", "metrics-file"} {
		assert.NotNil(t, routes.Flags().Lookup(flag), flag)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("verbose"))
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version.Short()+"\n", out)

	out, _, err = runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "yieldscan")

	out, _, err = runCLI(t, "version", "--json")
	require.NoError(t, err)
	var report map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "yieldscan", report["name"])
	assert.Equal(t, version.Short(), report["version"])

	_, _, err = runCLI(t, "version", "--json", "--short")
	assert.Error(t, err)
}

func TestRoutesCommand_Text(t *testing.T) {
	_, path := writeGen(t)

	out, _, err := runCLI(t, "routes", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Generator Route Analysis")
	assert.Contains(t, out, "gen (python) analyzed, 2 routes")
	assert.Contains(t, out, "=> (A, B)")
	assert.Contains(t, out, "[break]")
}

func TestRoutesCommand_JSON(t *testing.T) {
	_, path := writeGen(t)

	out, _, err := runCLI(t, "routes", "--json", "--show-tree", path)
	require.NoError(t, err)

	var resp domain.RouteResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Functions, 1)
	fn := resp.Functions[0]
	assert.Equal(t, "gen", fn.Name)
	assert.Equal(t, domain.RouteStatusAnalyzed, fn.Status)
	assert.Len(t, fn.Routes, 2)
	require.NotNil(t, fn.Tree)
	assert.Equal(t, "root", fn.Tree.Kind)
}

func TestRoutesCommand_OutputFileAndMetrics(t *testing.T) {
	dir, path := writeGen(t)
	report := filepath.Join(dir, "reports", "routes.csv")
	metrics := filepath.Join(dir, "run.prom")

	out, stderr, err := runCLI(t, "routes", "--csv", "-o", report, "--metrics-file", metrics, path)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, stderr, "CSV report generated")

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "file,function,language"))

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "yieldscan_routes_total 2")
}

func TestRoutesCommand_ConfigAndFlags(t *testing.T) {
	dir, path := writeGen(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".yieldscan.toml"), []byte("[routes]\nmax_routes = 1\n"), 0o644))

	out, _, err := runCLI(t, "routes", "--json", path)
	require.NoError(t, err)
	var resp domain.RouteResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, domain.RouteStatusTooComplex, resp.Functions[0].Status)

	// an explicit flag beats the discovered file
	out, _, err = runCLI(t, "routes", "--json", "--max-routes", "0", path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, domain.RouteStatusAnalyzed, resp.Functions[0].Status)
}

func TestRoutesCommand_Errors(t *testing.T) {
	_, path := writeGen(t)

	_, _, err := runCLI(t, "routes", "--json", "--csv", path)
	assert.Error(t, err)

	_, _, err = runCLI(t, "routes")
	assert.Error(t, err)

	_, _, err = runCLI(t, "routes", "--function", "missing", path)
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeAnalysisError, domain.ErrorCode(err))
}

func TestTreeCommand(t *testing.T) {
	_, path := writeGen(t)

	out, _, err := runCLI(t, "tree", path)
	require.NoError(t, err)
	assert.Contains(t, out, "== "+path+":1 gen (python)\n")
	assert.Contains(t, out, "root\n")
	assert.Contains(t, out, "B1 [emit A] (line 3)")
	assert.Contains(t, out, "routes: 2\n")
}

func TestTreeCommand_Lowered(t *testing.T) {
	_, path := writeGen(t)

	out, _, err := runCLI(t, "tree", "--lowered", path)
	require.NoError(t, err)
	assert.Contains(t, out, "== "+path+":1 gen (python)\nlowered:\nFunction #")
	assert.Contains(t, out, "Stop #")
	assert.Contains(t, out, "routes: 2\n")

	out, _, err = runCLI(t, "tree", path)
	require.NoError(t, err)
	assert.NotContains(t, out, "lowered:")
}

func TestInitCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", ".yieldscan.toml")

	out, _, err := runCLI(t, "init", "--config", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration file created")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[routes]")

	_, _, err = runCLI(t, "init", "--config", target)
	assert.Error(t, err, "existing file needs --force")

	_, _, err = runCLI(t, "init", "--config", target, "--force")
	assert.NoError(t, err)
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, domain.NewConfigError("bad config", nil))
	assert.Contains(t, buf.String(), "Error: [CONFIG_ERROR] bad config")
	assert.Contains(t, buf.String(), string(domain.ErrorCategoryConfig))
}

func TestGenerateTimestampedFileName(t *testing.T) {
	name := generateTimestampedFileName("routes", "json")
	assert.True(t, strings.HasPrefix(name, "routes_"))
	assert.True(t, strings.HasSuffix(name, ".json"))
}
