package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// ConfigFileName is the dedicated configuration file name
const ConfigFileName = ".yieldscan.toml"

// YieldscanTomlConfig represents the structure of .yieldscan.toml and of the
// [tool.yieldscan] table in pyproject.toml. Pointer fields detect unset keys.
type YieldscanTomlConfig struct {
	Routes      TomlRoutesConfig      `toml:"routes"`
	Input       TomlInputConfig       `toml:"input"`
	Output      TomlOutputConfig      `toml:"output"`
	Performance TomlPerformanceConfig `toml:"performance"`
}

type TomlRoutesConfig struct {
	MaxRoutes        *int     `toml:"max_routes"`
	MaxTreeNodes     *int     `toml:"max_tree_nodes"`
	ImplicitElse     *bool    `toml:"implicit_else"`
	ShowTree         *bool    `toml:"show_tree"`
	FunctionPatterns []string `toml:"function_patterns"`
}

type TomlInputConfig struct {
	IncludePatterns []string `toml:"include_patterns"`
	ExcludePatterns []string `toml:"exclude_patterns"`
	Recursive       *bool    `toml:"recursive"`
	Languages       []string `toml:"languages"`
}

type TomlOutputConfig struct {
	Format    string `toml:"format"`
	Directory string `toml:"directory"`
}

type TomlPerformanceConfig struct {
	MaxGoroutines  *int `toml:"max_goroutines"`
	TimeoutSeconds *int `toml:"timeout_seconds"`
}

// TomlConfigLoader handles TOML configuration discovery and loading
type TomlConfigLoader struct{}

// NewTomlConfigLoader creates a new TOML configuration loader
func NewTomlConfigLoader() *TomlConfigLoader {
	return &TomlConfigLoader{}
}

// LoadConfig loads configuration with this priority, walking up from startDir:
// 1. .yieldscan.toml (dedicated config file)
// 2. pyproject.toml (with [tool.yieldscan] section)
// 3. defaults
func (l *TomlConfigLoader) LoadConfig(startDir string) (*Config, error) {
	if path, err := findUpwards(startDir, ConfigFileName); err == nil {
		return l.LoadFile(path)
	}

	if path, err := findPyprojectToml(startDir); err == nil {
		return l.LoadFile(path)
	}

	return DefaultConfig(), nil
}

// FindConfigFile returns the file LoadConfig would read, or "" for defaults
func (l *TomlConfigLoader) FindConfigFile(startDir string) string {
	if path, err := findUpwards(startDir, ConfigFileName); err == nil {
		return path
	}
	if path, err := findPyprojectToml(startDir); err == nil {
		return path
	}
	return ""
}

// LoadFile loads a specific TOML file merged over the defaults. A file named
// pyproject.toml is read through its [tool.yieldscan] table.
func (l *TomlConfigLoader) LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var section *YieldscanTomlConfig
	if filepath.Base(path) == "pyproject.toml" {
		var pyproject PyprojectToml
		if err := toml.Unmarshal(data, &pyproject); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		section = &pyproject.Tool.Yieldscan
	} else {
		section = &YieldscanTomlConfig{}
		if err := toml.Unmarshal(data, section); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	config := DefaultConfig()
	l.mergeTomlConfig(config, section)
	return config, nil
}

// mergeTomlConfig merges set values over defaults
func (l *TomlConfigLoader) mergeTomlConfig(defaults *Config, t *YieldscanTomlConfig) {
	// Routes
	if t.Routes.MaxRoutes != nil {
		defaults.Routes.MaxRoutes = *t.Routes.MaxRoutes
	}
	if t.Routes.MaxTreeNodes != nil {
		defaults.Routes.MaxTreeNodes = *t.Routes.MaxTreeNodes
	}
	if t.Routes.ImplicitElse != nil {
		defaults.Routes.ImplicitElse = *t.Routes.ImplicitElse
	}
	if t.Routes.ShowTree != nil {
		defaults.Routes.ShowTree = *t.Routes.ShowTree
	}
	if len(t.Routes.FunctionPatterns) > 0 {
		defaults.Routes.FunctionPatterns = t.Routes.FunctionPatterns
	}

	// Input
	if len(t.Input.IncludePatterns) > 0 {
		defaults.Input.IncludePatterns = t.Input.IncludePatterns
	}
	if t.Input.ExcludePatterns != nil {
		// an explicit empty list clears the default excludes
		defaults.Input.ExcludePatterns = t.Input.ExcludePatterns
	}
	if t.Input.Recursive != nil {
		defaults.Input.Recursive = *t.Input.Recursive
	}
	if len(t.Input.Languages) > 0 {
		defaults.Input.Languages = t.Input.Languages
	}

	// Output
	if t.Output.Format != "" {
		defaults.Output.Format = t.Output.Format
	}
	if t.Output.Directory != "" {
		defaults.Output.Directory = t.Output.Directory
	}

	// Performance
	if t.Performance.MaxGoroutines != nil {
		defaults.Performance.MaxGoroutines = *t.Performance.MaxGoroutines
	}
	if t.Performance.TimeoutSeconds != nil {
		defaults.Performance.TimeoutSeconds = *t.Performance.TimeoutSeconds
	}
}

// GetSupportedConfigFiles returns the list of supported TOML config files
// in order of precedence
func (l *TomlConfigLoader) GetSupportedConfigFiles() []string {
	return []string{
		ConfigFileName,   // dedicated config file (highest priority)
		"pyproject.toml", // with [tool.yieldscan] section
	}
}

// findUpwards walks up the directory tree from startDir looking for name
func findUpwards(startDir, name string) (string, error) {
	dir := startDir
	for {
		configPath := filepath.Join(dir, name)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}

	return "", os.ErrNotExist
}
