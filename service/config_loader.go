package service

import (
	"os"

	"github.com/ludo-technologies/yieldscan/domain"
	"github.com/ludo-technologies/yieldscan/internal/config"
)

// ConfigurationLoaderImpl implements the RouteConfigurationLoader interface
type ConfigurationLoaderImpl struct {
	// targetPath anchors config discovery; empty means the working directory
	targetPath string
}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// NewConfigurationLoaderForTarget creates a loader that discovers
// .yieldscan.toml or pyproject.toml walking up from targetPath
func NewConfigurationLoaderForTarget(targetPath string) *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{targetPath: targetPath}
}

// LoadConfig loads configuration from the specified path
func (c *ConfigurationLoaderImpl) LoadConfig(path string) (*domain.RouteRequest, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}
	return c.convertToRouteRequest(cfg), nil
}

// LoadDefaultConfig discovers configuration near the target path, falling
// back to the defaults when none is found or it cannot be loaded
func (c *ConfigurationLoaderImpl) LoadDefaultConfig() *domain.RouteRequest {
	cfg, err := config.LoadConfigWithTarget("", c.targetPath)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	return c.convertToRouteRequest(cfg)
}

// MergeConfig overlays the non-zero values of override on base. Booleans
// cannot be told apart from unset here; ConfigurationLoaderWithFlags handles
// explicit flags.
func (c *ConfigurationLoaderImpl) MergeConfig(base *domain.RouteRequest, override *domain.RouteRequest) *domain.RouteRequest {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	merged := *base

	if len(override.Paths) > 0 {
		merged.Paths = override.Paths
	}
	if override.OutputFormat != "" {
		merged.OutputFormat = override.OutputFormat
	}
	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}
	if override.OutputPath != "" {
		merged.OutputPath = override.OutputPath
	}
	if len(override.FunctionPatterns) > 0 {
		merged.FunctionPatterns = override.FunctionPatterns
	}
	if len(override.Languages) > 0 {
		merged.Languages = override.Languages
	}
	if override.MaxRoutes > 0 {
		merged.MaxRoutes = override.MaxRoutes
	}
	if override.MaxTreeNodes > 0 {
		merged.MaxTreeNodes = override.MaxTreeNodes
	}
	merged.ImplicitElse = merged.ImplicitElse || override.ImplicitElse
	merged.ShowTree = merged.ShowTree || override.ShowTree
	merged.ShowDump = merged.ShowDump || override.ShowDump
	merged.ShowLowered = merged.ShowLowered || override.ShowLowered
	if len(override.IncludePatterns) > 0 {
		merged.IncludePatterns = override.IncludePatterns
	}
	if len(override.ExcludePatterns) > 0 {
		merged.ExcludePatterns = override.ExcludePatterns
	}
	if override.ConfigPath != "" {
		merged.ConfigPath = override.ConfigPath
	}
	if override.MetricsPath != "" {
		merged.MetricsPath = override.MetricsPath
	}

	return &merged
}

// convertToRouteRequest converts internal config to domain request
func (c *ConfigurationLoaderImpl) convertToRouteRequest(cfg *config.Config) *domain.RouteRequest {
	format, ok := domain.ParseOutputFormat(cfg.Output.Format)
	if !ok {
		format = domain.DefaultOutputFormat
	}

	return &domain.RouteRequest{
		OutputFormat:     format,
		OutputWriter:     os.Stdout,
		ShowTree:         cfg.Routes.ShowTree,
		FunctionPatterns: cfg.Routes.FunctionPatterns,
		Languages:        cfg.Input.Languages,
		MaxRoutes:        cfg.Routes.MaxRoutes,
		MaxTreeNodes:     cfg.Routes.MaxTreeNodes,
		ImplicitElse:     cfg.Routes.ImplicitElse,
		Recursive:        cfg.Input.Recursive,
		IncludePatterns:  cfg.Input.IncludePatterns,
		ExcludePatterns:  cfg.Input.ExcludePatterns,
		MaxGoroutines:    cfg.Performance.MaxGoroutines,
		Timeout:          cfg.Performance.Timeout(),
	}
}

// ValidateConfig validates a configuration request
func (c *ConfigurationLoaderImpl) ValidateConfig(req *domain.RouteRequest) error {
	if req.MaxRoutes < 0 {
		return domain.NewConfigError("max routes cannot be negative", nil)
	}
	if req.MaxTreeNodes < 0 {
		return domain.NewConfigError("max tree nodes cannot be negative", nil)
	}
	if req.MaxGoroutines < 0 {
		return domain.NewConfigError("max goroutines cannot be negative", nil)
	}
	if _, ok := domain.ParseOutputFormat(string(req.OutputFormat)); !ok {
		return domain.NewUnsupportedFormatError(string(req.OutputFormat))
	}
	return nil
}

// FindDefaultConfigFile returns the configuration file discovery would use
// for the target path, or "" for defaults
func (c *ConfigurationLoaderImpl) FindDefaultConfigFile() string {
	start := c.targetPath
	if start == "" {
		start = "."
	}
	if info, err := os.Stat(start); err == nil && !info.IsDir() {
		start = dirOf(start)
	}
	return config.NewTomlConfigLoader().FindConfigFile(start)
}

var _ domain.RouteConfigurationLoader = (*ConfigurationLoaderImpl)(nil)
