package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/pelletier/go-toml/v2"

	"github.com/ludo-technologies/yieldscan/domain"
)

// defaultConfigTmpl contains the embedded default configuration template
//
//go:embed default_config.toml.tmpl
var defaultConfigTmpl string

// DefaultConfigValues holds all values used to render the default config
// template. All values are sourced from the domain package.
type DefaultConfigValues struct {
	MaxRoutes       int
	MaxTreeNodes    int
	ExcludePatterns string
	OutputFormat    string
	MaxGoroutines   int
	TimeoutSeconds  int
}

func newDefaultConfigValues() DefaultConfigValues {
	return DefaultConfigValues{
		MaxRoutes:       domain.DefaultMaxRoutes,
		MaxTreeNodes:    domain.DefaultMaxTreeNodes,
		ExcludePatterns: tomlStringArray(domain.DefaultExcludePatterns),
		OutputFormat:    string(domain.DefaultOutputFormat),
		MaxGoroutines:   domain.DefaultMaxGoroutines,
		TimeoutSeconds:  domain.DefaultTimeoutSeconds,
	}
}

// GenerateDefaultConfigTOML renders the default config template
func GenerateDefaultConfigTOML() (string, error) {
	tmpl, err := template.New("default_config").Parse(defaultConfigTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse default config template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newDefaultConfigValues()); err != nil {
		return "", fmt.Errorf("failed to render default config template: %w", err)
	}
	return buf.String(), nil
}

// LoadDefaultConfigFromTOML parses the rendered default config. It must
// equal DefaultConfig.
func LoadDefaultConfigFromTOML() (*Config, error) {
	configTOML, err := GenerateDefaultConfigTOML()
	if err != nil {
		return nil, err
	}

	var tomlCfg YieldscanTomlConfig
	if err := toml.Unmarshal([]byte(configTOML), &tomlCfg); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	NewTomlConfigLoader().mergeTomlConfig(cfg, &tomlCfg)
	return cfg, nil
}

func tomlStringArray(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, strconv.Quote(v))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
