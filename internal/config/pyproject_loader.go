package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// PyprojectToml represents the parts of pyproject.toml yieldscan reads
type PyprojectToml struct {
	Tool ToolConfig `toml:"tool"`
}

// ToolConfig represents the [tool] section
type ToolConfig struct {
	Yieldscan YieldscanTomlConfig `toml:"yieldscan"`
}

// findPyprojectToml walks up the directory tree to find a pyproject.toml
// that carries a [tool.yieldscan] table
func findPyprojectToml(startDir string) (string, error) {
	dir := startDir
	for {
		path, err := findUpwards(dir, "pyproject.toml")
		if err != nil {
			return "", err
		}
		if hasYieldscanTable(path) {
			return path, nil
		}

		found := filepath.Dir(path)
		parent := filepath.Dir(found)
		if parent == found {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

func hasYieldscanTable(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil || !bytes.Contains(data, []byte("yieldscan")) {
		return false
	}

	var raw map[string]interface{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}
	tool, ok := raw["tool"].(map[string]interface{})
	if !ok {
		return false
	}
	_, ok = tool["yieldscan"]
	return ok
}
