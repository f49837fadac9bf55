package service

import (
	"path/filepath"

	"github.com/ludo-technologies/yieldscan/domain"
	"github.com/ludo-technologies/yieldscan/internal/config"
)

// ConfigurationLoaderWithFlags wraps configuration loading with explicit flag tracking
type ConfigurationLoaderWithFlags struct {
	loader      *ConfigurationLoaderImpl
	flagTracker *config.FlagTracker
}

// NewConfigurationLoaderWithFlags creates a new configuration loader that tracks explicit flags
func NewConfigurationLoaderWithFlags(targetPath string, tracker *config.FlagTracker) *ConfigurationLoaderWithFlags {
	if tracker == nil {
		tracker = config.NewFlagTracker()
	}
	return &ConfigurationLoaderWithFlags{
		loader:      NewConfigurationLoaderForTarget(targetPath),
		flagTracker: tracker,
	}
}

// LoadConfig loads configuration from the specified path
func (c *ConfigurationLoaderWithFlags) LoadConfig(path string) (*domain.RouteRequest, error) {
	return c.loader.LoadConfig(path)
}

// LoadDefaultConfig loads the discovered or default configuration
func (c *ConfigurationLoaderWithFlags) LoadDefaultConfig() *domain.RouteRequest {
	return c.loader.LoadDefaultConfig()
}

// MergeConfig merges CLI flags into the loaded configuration. Only flags the
// user set override configuration values, so an explicit --implicit-else=false
// beats implicit_else = true in the file while an untouched flag does not.
func (c *ConfigurationLoaderWithFlags) MergeConfig(base *domain.RouteRequest, override *domain.RouteRequest) *domain.RouteRequest {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	merged := *base
	ft := c.flagTracker

	// Paths come from command arguments
	if len(override.Paths) > 0 {
		merged.Paths = override.Paths
	}

	if ft.AnySet("json", "yaml", "csv", "dot") {
		merged.OutputFormat = override.OutputFormat
	}
	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}
	// Output path is derived from --output or output.directory
	if override.OutputPath != "" {
		merged.OutputPath = override.OutputPath
	}
	merged.ShowDump = override.ShowDump || merged.ShowDump
	merged.ShowLowered = override.ShowLowered || merged.ShowLowered

	merged.ShowTree = ft.MergeBool(merged.ShowTree, override.ShowTree, "show-tree")
	merged.FunctionPatterns = ft.MergeStringSlice(merged.FunctionPatterns, override.FunctionPatterns, "function")
	merged.Languages = ft.MergeStringSlice(merged.Languages, override.Languages, "languages")

	merged.MaxRoutes = ft.MergeInt(merged.MaxRoutes, override.MaxRoutes, "max-routes")
	merged.MaxTreeNodes = ft.MergeInt(merged.MaxTreeNodes, override.MaxTreeNodes, "max-tree-nodes")
	merged.ImplicitElse = ft.MergeBool(merged.ImplicitElse, override.ImplicitElse, "implicit-else")

	if override.ConfigPath != "" {
		merged.ConfigPath = override.ConfigPath
	}

	merged.Recursive = ft.MergeBool(merged.Recursive, override.Recursive, "recursive")
	merged.IncludePatterns = ft.MergeStringSlice(merged.IncludePatterns, override.IncludePatterns, "include")
	merged.ExcludePatterns = ft.MergeStringSlice(merged.ExcludePatterns, override.ExcludePatterns, "exclude")

	merged.MetricsPath = ft.MergeString(merged.MetricsPath, override.MetricsPath, "metrics-file")

	return &merged
}

// ValidateConfig validates a configuration request
func (c *ConfigurationLoaderWithFlags) ValidateConfig(req *domain.RouteRequest) error {
	return c.loader.ValidateConfig(req)
}

// FindDefaultConfigFile returns the discovered configuration file, or ""
func (c *ConfigurationLoaderWithFlags) FindDefaultConfigFile() string {
	return c.loader.FindDefaultConfigFile()
}

func dirOf(path string) string {
	return filepath.Dir(path)
}

var _ domain.RouteConfigurationLoader = (*ConfigurationLoaderWithFlags)(nil)
