package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ludo-technologies/yieldscan/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Routes.MaxRoutes != domain.DefaultMaxRoutes {
		t.Errorf("MaxRoutes = %d, want %d", cfg.Routes.MaxRoutes, domain.DefaultMaxRoutes)
	}
	if cfg.Routes.MaxTreeNodes != domain.DefaultMaxTreeNodes {
		t.Errorf("MaxTreeNodes = %d, want %d", cfg.Routes.MaxTreeNodes, domain.DefaultMaxTreeNodes)
	}
	if cfg.Routes.ImplicitElse {
		t.Error("ImplicitElse should default to false")
	}
	if !cfg.Input.Recursive {
		t.Error("Recursive should default to true")
	}
	if cfg.Output.Format != "text" {
		t.Errorf("Format = %q, want text", cfg.Output.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	// defaults must not share the package-level slice
	cfg.Input.ExcludePatterns[0] = "changed"
	if domain.DefaultExcludePatterns[0] == "changed" {
		t.Error("DefaultConfig aliased domain.DefaultExcludePatterns")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"uncapped", func(c *Config) { c.Routes.MaxRoutes = 0; c.Routes.MaxTreeNodes = 0 }, false},
		{"negative max routes", func(c *Config) { c.Routes.MaxRoutes = -1 }, true},
		{"negative max tree nodes", func(c *Config) { c.Routes.MaxTreeNodes = -1 }, true},
		{"bad function pattern", func(c *Config) { c.Routes.FunctionPatterns = []string{"Repo.[items"} }, true},
		{"bad include pattern", func(c *Config) { c.Input.IncludePatterns = []string{"src/[a"} }, true},
		{"known languages", func(c *Config) { c.Input.Languages = []string{"python", "go", "csharp"} }, false},
		{"unknown language", func(c *Config) { c.Input.Languages = []string{"ruby"} }, true},
		{"dot format", func(c *Config) { c.Output.Format = "dot" }, false},
		{"html format", func(c *Config) { c.Output.Format = "html" }, true},
		{"negative goroutines", func(c *Config) { c.Performance.MaxGoroutines = -2 }, true},
		{"negative timeout", func(c *Config) { c.Performance.TimeoutSeconds = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "yieldscan.yaml")
	writeFile(t, path, `
routes:
  max_routes: 64
  implicit_else: true
  function_patterns: ["Repo.*"]
input:
  languages: [python]
output:
  format: json
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Routes.MaxRoutes != 64 {
		t.Errorf("MaxRoutes = %d, want 64", cfg.Routes.MaxRoutes)
	}
	if !cfg.Routes.ImplicitElse {
		t.Error("ImplicitElse should be true")
	}
	if !reflect.DeepEqual(cfg.Routes.FunctionPatterns, []string{"Repo.*"}) {
		t.Errorf("FunctionPatterns = %v", cfg.Routes.FunctionPatterns)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Output.Format)
	}
	// unset keys keep defaults
	if cfg.Routes.MaxTreeNodes != domain.DefaultMaxTreeNodes {
		t.Errorf("MaxTreeNodes = %d, want default", cfg.Routes.MaxTreeNodes)
	}
}

func TestLoadConfig_TOMLAndInvalid(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "custom.toml")
	writeFile(t, good, "[routes]\nmax_tree_nodes = 12\n")
	cfg, err := LoadConfig(good)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Routes.MaxTreeNodes != 12 {
		t.Errorf("MaxTreeNodes = %d, want 12", cfg.Routes.MaxTreeNodes)
	}

	bad := filepath.Join(dir, "bad.toml")
	writeFile(t, bad, "[output]\nformat = \"html\"\n")
	if _, err := LoadConfig(bad); err == nil {
		t.Error("expected validation error for html format")
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	cfg, err = LoadConfig("")
	if err != nil || cfg.Routes.MaxRoutes != domain.DefaultMaxRoutes {
		t.Errorf("empty path should give defaults, got %v, %v", cfg, err)
	}
}

func TestLoadConfigWithTarget(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFileName), "[routes]\nmax_routes = 16\n")
	target := filepath.Join(root, "pkg", "gen.py")
	writeFile(t, target, "def gen():\n    yield 1\n")

	cfg, err := LoadConfigWithTarget("", target)
	if err != nil {
		t.Fatalf("LoadConfigWithTarget failed: %v", err)
	}
	if cfg.Routes.MaxRoutes != 16 {
		t.Errorf("MaxRoutes = %d, want 16 from discovered config", cfg.Routes.MaxRoutes)
	}

	explicit := filepath.Join(root, "other.toml")
	writeFile(t, explicit, "[routes]\nmax_routes = 3\n")
	cfg, err = LoadConfigWithTarget(explicit, target)
	if err != nil {
		t.Fatalf("LoadConfigWithTarget failed: %v", err)
	}
	if cfg.Routes.MaxRoutes != 3 {
		t.Errorf("MaxRoutes = %d, want explicit 3", cfg.Routes.MaxRoutes)
	}
}

func TestPerformanceTimeout(t *testing.T) {
	p := PerformanceConfig{TimeoutSeconds: 2}
	if p.Timeout().Seconds() != 2 {
		t.Errorf("Timeout() = %v, want 2s", p.Timeout())
	}
}
