package version

import (
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
)

func withBuildInfo(t *testing.T, info *debug.BuildInfo) {
	t.Helper()
	orig, origVersion, origCommit := readBuildInfo, Version, Commit
	t.Cleanup(func() {
		readBuildInfo, Version, Commit = orig, origVersion, origCommit
	})
	readBuildInfo = func() (*debug.BuildInfo, bool) { return info, info != nil }
}

func TestShort(t *testing.T) {
	withBuildInfo(t, nil)

	Version = "dev"
	if got := Short(); got != "dev" {
		t.Errorf("Short() = %q, want dev", got)
	}

	Version = "v1.2.3"
	if got := Short(); got != "v1.2.3" {
		t.Errorf("Short() = %q, want the ldflags version", got)
	}
}

func TestShortFromModuleVersion(t *testing.T) {
	withBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Version: "v0.4.0"}})
	Version = "dev"

	if got := Short(); got != "v0.4.0" {
		t.Errorf("Short() = %q, want module version", got)
	}
}

func TestShortIgnoresDevelModule(t *testing.T) {
	withBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	Version = "dev"

	if got := Short(); got != "dev" {
		t.Errorf("Short() = %q, want dev", got)
	}
}

func TestInfoFormat(t *testing.T) {
	withBuildInfo(t, nil)
	lines := strings.Split(Info(), "\n")

	expectedPrefixes := []string{"yieldscan ", "Commit:", "Built:", "Built by:", "Go:", "OS/Arch:"}
	if len(lines) != len(expectedPrefixes) {
		t.Fatalf("Info() should contain %d lines, got %d", len(expectedPrefixes), len(lines))
	}
	for i, prefix := range expectedPrefixes {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Errorf("line %d should start with %q, got %q", i+1, prefix, lines[i])
		}
	}
}

func TestInfoCommitFromVCS(t *testing.T) {
	withBuildInfo(t, &debug.BuildInfo{Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}}})
	Commit = "unknown"

	info := Info()
	if !strings.Contains(info, "Commit: abc123") {
		t.Errorf("Info() should use the VCS revision, got %q", info)
	}

	expectedArch := runtime.GOOS + "/" + runtime.GOARCH
	if !strings.Contains(info, expectedArch) {
		t.Errorf("Info() should contain OS/Arch %s", expectedArch)
	}
}
