package e2e

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// buildYieldscanBinary builds the CLI into a temp dir and returns its path
func buildYieldscanBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "yieldscan")

	// Build from the project root, one level up from e2e
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/yieldscan")
	projectRoot, err := filepath.Abs("..")
	if err != nil {
		t.Fatalf("Failed to get project root: %v", err)
	}
	cmd.Dir = projectRoot

	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build yieldscan binary: %v\n%s", err, out)
	}
	return binaryPath
}

// createTestSourceFile writes a source file, creating parent directories
func createTestSourceFile(t *testing.T, dir, filename, content string) string {
	t.Helper()

	filePath := filepath.Join(dir, filename)
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", filename, err)
	}
	if err := os.WriteFile(filePath, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", filename, err)
	}
	return filePath
}

// createTestConfigFile creates a .yieldscan.toml that directs non-text
// reports to outputDir
func createTestConfigFile(t *testing.T, testDir, outputDir string) {
	t.Helper()
	configFile := filepath.Join(testDir, ".yieldscan.toml")
	configContent := fmt.Sprintf("[output]\ndirectory = %q\n", outputDir)
	if err := os.WriteFile(configFile, []byte(configContent), 0o644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
}
