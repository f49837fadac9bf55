package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"

	"github.com/ludo-technologies/yieldscan/domain"
	"github.com/ludo-technologies/yieldscan/internal/parser"
)

// Config represents the main configuration structure
type Config struct {
	// Routes holds route analysis configuration
	Routes RoutesConfig `mapstructure:"routes" yaml:"routes"`

	// Input holds file collection configuration
	Input InputConfig `mapstructure:"input" yaml:"input"`

	// Output holds output formatting configuration
	Output OutputConfig `mapstructure:"output" yaml:"output"`

	// Performance holds concurrency and timeout configuration
	Performance PerformanceConfig `mapstructure:"performance" yaml:"performance"`
}

// RoutesConfig holds configuration for route tree and route enumeration
type RoutesConfig struct {
	// MaxRoutes caps the accumulated routes of one function
	MaxRoutes int `mapstructure:"max_routes" yaml:"max_routes"`

	// MaxTreeNodes caps the route tree size of one function
	MaxTreeNodes int `mapstructure:"max_tree_nodes" yaml:"max_tree_nodes"`

	// ImplicitElse keeps the fall-through path around an if without else
	ImplicitElse bool `mapstructure:"implicit_else" yaml:"implicit_else"`

	// ShowTree includes the route tree in reports
	ShowTree bool `mapstructure:"show_tree" yaml:"show_tree"`

	// FunctionPatterns restricts analysis to functions whose qualified name
	// matches one of the globs
	FunctionPatterns []string `mapstructure:"function_patterns" yaml:"function_patterns"`
}

// InputConfig holds configuration for collecting source files
type InputConfig struct {
	// IncludePatterns specifies file patterns to include
	IncludePatterns []string `mapstructure:"include_patterns" yaml:"include_patterns"`

	// ExcludePatterns specifies file patterns to exclude
	ExcludePatterns []string `mapstructure:"exclude_patterns" yaml:"exclude_patterns"`

	// Recursive controls whether to analyze directories recursively
	Recursive bool `mapstructure:"recursive" yaml:"recursive"`

	// Languages limits analysis to these languages; empty means all
	Languages []string `mapstructure:"languages" yaml:"languages"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml, csv, dot
	Format string `mapstructure:"format" yaml:"format"`

	// Directory receives timestamped report files for non-text formats
	Directory string `mapstructure:"directory" yaml:"directory"`
}

// PerformanceConfig holds configuration for concurrent analysis
type PerformanceConfig struct {
	// MaxGoroutines bounds concurrent file analysis
	MaxGoroutines int `mapstructure:"max_goroutines" yaml:"max_goroutines"`

	// TimeoutSeconds bounds a whole run
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// Timeout returns the run timeout as a duration
func (p PerformanceConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Routes: RoutesConfig{
			MaxRoutes:        domain.DefaultMaxRoutes,
			MaxTreeNodes:     domain.DefaultMaxTreeNodes,
			ImplicitElse:     false,
			ShowTree:         false,
			FunctionPatterns: []string{},
		},
		Input: InputConfig{
			IncludePatterns: []string{},
			ExcludePatterns: append([]string(nil), domain.DefaultExcludePatterns...),
			Recursive:       true,
			Languages:       []string{},
		},
		Output: OutputConfig{
			Format: string(domain.DefaultOutputFormat),
		},
		Performance: PerformanceConfig{
			MaxGoroutines:  domain.DefaultMaxGoroutines,
			TimeoutSeconds: domain.DefaultTimeoutSeconds,
		},
	}
}

// LoadConfig loads configuration from an explicit file. TOML files go
// through the TOML loader (pyproject.toml reads its [tool.yieldscan] table);
// YAML and JSON files go through viper. An empty path returns the defaults.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	var (
		config *Config
		err    error
	)
	if strings.EqualFold(filepath.Ext(configPath), ".toml") {
		config, err = NewTomlConfigLoader().LoadFile(configPath)
	} else {
		config, err = loadWithViper(configPath)
	}
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// LoadConfigWithTarget loads an explicit configuration file, or discovers
// .yieldscan.toml or pyproject.toml walking up from targetPath
func LoadConfigWithTarget(configPath, targetPath string) (*Config, error) {
	if configPath != "" {
		return LoadConfig(configPath)
	}

	startDir := resolveStartDir(targetPath)
	config, err := NewTomlConfigLoader().LoadConfig(startDir)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func loadWithViper(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config := DefaultConfig()
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return config, nil
}

// resolveStartDir returns the directory discovery starts from
func resolveStartDir(targetPath string) string {
	if targetPath == "" {
		if cwd, err := os.Getwd(); err == nil {
			return cwd
		}
		return "."
	}

	abs, err := filepath.Abs(targetPath)
	if err != nil {
		abs = targetPath
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		return filepath.Dir(abs)
	}
	return abs
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.Routes.MaxRoutes < 0 {
		return fmt.Errorf("routes.max_routes must be >= 0, got %d", c.Routes.MaxRoutes)
	}
	if c.Routes.MaxTreeNodes < 0 {
		return fmt.Errorf("routes.max_tree_nodes must be >= 0, got %d", c.Routes.MaxTreeNodes)
	}
	for _, pattern := range c.Routes.FunctionPatterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid routes.function_patterns entry '%s'", pattern)
		}
	}

	for _, pattern := range append(append([]string(nil), c.Input.IncludePatterns...), c.Input.ExcludePatterns...) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid input pattern '%s'", pattern)
		}
	}
	for _, lang := range c.Input.Languages {
		if _, err := parser.ParseLanguage(lang); err != nil {
			return fmt.Errorf("invalid input.languages entry: %w", err)
		}
	}

	if _, ok := domain.ParseOutputFormat(c.Output.Format); !ok {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml, csv, dot", c.Output.Format)
	}

	if c.Performance.MaxGoroutines < 0 {
		return fmt.Errorf("performance.max_goroutines must be >= 0, got %d", c.Performance.MaxGoroutines)
	}
	if c.Performance.TimeoutSeconds < 0 {
		return fmt.Errorf("performance.timeout_seconds must be >= 0, got %d", c.Performance.TimeoutSeconds)
	}

	return nil
}
