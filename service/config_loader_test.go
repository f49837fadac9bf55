package service

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/yieldscan/domain"
	"github.com/ludo-technologies/yieldscan/internal/config"
)

func TestConfigurationLoader_LoadDefaultConfig(t *testing.T) {
	loader := NewConfigurationLoaderForTarget(t.TempDir())

	req := loader.LoadDefaultConfig()
	require.NotNil(t, req)
	assert.Equal(t, domain.DefaultMaxRoutes, req.MaxRoutes)
	assert.Equal(t, domain.DefaultMaxTreeNodes, req.MaxTreeNodes)
	assert.Equal(t, domain.DefaultOutputFormat, req.OutputFormat)
	assert.True(t, req.Recursive)
	assert.False(t, req.ImplicitElse)
	assert.Equal(t, domain.DefaultExcludePatterns, req.ExcludePatterns)
}

func TestConfigurationLoader_DiscoversTargetConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".yieldscan.toml"), []byte(`
[routes]
max_routes = 12
implicit_else = true

[output]
format = "csv"
`), 0o644))
	sub := filepath.Join(dir, "pkg")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	loader := NewConfigurationLoaderForTarget(sub)
	req := loader.LoadDefaultConfig()
	assert.Equal(t, 12, req.MaxRoutes)
	assert.True(t, req.ImplicitElse)
	assert.Equal(t, domain.OutputFormatCSV, req.OutputFormat)
	assert.Equal(t, filepath.Join(dir, ".yieldscan.toml"), loader.FindDefaultConfigFile())
}

func TestConfigurationLoader_LoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.toml")
	require.NoError(t, os.WriteFile(path, []byte("[routes]\nmax_tree_nodes = 50\n"), 0o644))

	req, err := NewConfigurationLoader().LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 50, req.MaxTreeNodes)
	assert.Equal(t, domain.DefaultMaxRoutes, req.MaxRoutes)

	_, err = NewConfigurationLoader().LoadConfig(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeConfigError, domain.ErrorCode(err))
}

func TestConfigurationLoader_MergeConfig(t *testing.T) {
	loader := NewConfigurationLoader()

	base := &domain.RouteRequest{
		Paths:        []string{"base"},
		OutputFormat: domain.OutputFormatText,
		MaxRoutes:    100,
		MaxTreeNodes: 200,
		Recursive:    true,
	}
	var out bytes.Buffer
	override := &domain.RouteRequest{
		Paths:        []string{"override"},
		OutputFormat: domain.OutputFormatJSON,
		OutputWriter: &out,
		MaxRoutes:    5,
		ShowTree:     true,
	}

	merged := loader.MergeConfig(base, override)
	assert.Equal(t, []string{"override"}, merged.Paths)
	assert.Equal(t, domain.OutputFormatJSON, merged.OutputFormat)
	assert.Same(t, &out, merged.OutputWriter)
	assert.Equal(t, 5, merged.MaxRoutes)
	assert.Equal(t, 200, merged.MaxTreeNodes)
	assert.True(t, merged.ShowTree)
	assert.True(t, merged.Recursive)

	assert.Same(t, base, loader.MergeConfig(base, nil))
	assert.Same(t, override, loader.MergeConfig(nil, override))
}

func TestConfigurationLoader_ValidateConfig(t *testing.T) {
	loader := NewConfigurationLoader()
	assert.NoError(t, loader.ValidateConfig(&domain.RouteRequest{OutputFormat: domain.OutputFormatDOT}))
	assert.Error(t, loader.ValidateConfig(&domain.RouteRequest{OutputFormat: domain.OutputFormatText, MaxRoutes: -1}))
	assert.Error(t, loader.ValidateConfig(&domain.RouteRequest{OutputFormat: "html"}))
}

func TestConfigurationLoaderWithFlags_ExplicitFlagsWin(t *testing.T) {
	base := &domain.RouteRequest{
		OutputFormat:    domain.OutputFormatCSV,
		MaxRoutes:       12,
		MaxTreeNodes:    300,
		ImplicitElse:    true,
		Recursive:       true,
		ExcludePatterns: []string{"vendor/**"},
	}
	override := &domain.RouteRequest{
		Paths:        []string{"src"},
		OutputFormat: domain.OutputFormatText,
		MaxRoutes:    domain.DefaultMaxRoutes,
		MaxTreeNodes: 40,
		ImplicitElse: false,
		Recursive:    true,
	}

	t.Run("untouched flags keep config values", func(t *testing.T) {
		loader := NewConfigurationLoaderWithFlags("", config.NewFlagTracker())
		merged := loader.MergeConfig(base, override)
		assert.Equal(t, []string{"src"}, merged.Paths)
		assert.Equal(t, domain.OutputFormatCSV, merged.OutputFormat)
		assert.Equal(t, 12, merged.MaxRoutes)
		assert.Equal(t, 300, merged.MaxTreeNodes)
		assert.True(t, merged.ImplicitElse)
		assert.Equal(t, []string{"vendor/**"}, merged.ExcludePatterns)
	})

	t.Run("set flags override", func(t *testing.T) {
		tracker := config.NewFlagTrackerWithFlags(map[string]bool{
			"max-tree-nodes": true,
			"implicit-else":  true,
			"json":           true,
		})
		override := *override
		override.OutputFormat = domain.OutputFormatJSON

		loader := NewConfigurationLoaderWithFlags("", tracker)
		merged := loader.MergeConfig(base, &override)
		assert.Equal(t, domain.OutputFormatJSON, merged.OutputFormat)
		assert.Equal(t, 12, merged.MaxRoutes)
		assert.Equal(t, 40, merged.MaxTreeNodes)
		assert.False(t, merged.ImplicitElse)
	})
}
