package service

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/yieldscan/domain"
)

func createTestFile(t *testing.T, dirPath, fileName, content string) string {
	t.Helper()
	filePath := filepath.Join(dirPath, fileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
	require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	return filePath
}

func createTestDirectoryStructure(t *testing.T) string {
	tmpDir := t.TempDir()

	createTestFile(t, tmpDir, "gen.py", "def gen():\n    yield 1\n")
	createTestFile(t, tmpDir, "stubs.pyi", "def gen() -> int: ...\n")
	createTestFile(t, tmpDir, "Iter.cs", "class C {}\n")
	createTestFile(t, tmpDir, "seq.go", "package seq\n")
	createTestFile(t, tmpDir, "README.md", "# docs")
	createTestFile(t, tmpDir, "pkg/inner/deep.py", "")
	createTestFile(t, tmpDir, "pkg/inner/Deep.cs", "")

	// skipped
	createTestFile(t, tmpDir, ".hidden.py", "")
	createTestFile(t, tmpDir, ".git/hooks/hook.py", "")
	createTestFile(t, tmpDir, "__pycache__/cached.py", "")
	createTestFile(t, tmpDir, "venv/lib/module.py", "")
	createTestFile(t, tmpDir, "obj/Debug/Gen.cs", "")
	createTestFile(t, tmpDir, "vendor/dep/dep.go", "")

	return tmpDir
}

func relativeAll(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out
}

func TestFileReader_CollectSourceFiles(t *testing.T) {
	root := createTestDirectoryStructure(t)
	reader := NewFileReader()

	tests := []struct {
		name      string
		recursive bool
		include   []string
		exclude   []string
		languages []string
		want      []string
	}{
		{
			name:      "all languages recursive",
			recursive: true,
			exclude:   domain.DefaultExcludePatterns,
			want:      []string{"Iter.cs", "gen.py", "pkg/inner/Deep.cs", "pkg/inner/deep.py", "seq.go", "stubs.pyi"},
		},
		{
			name:      "non-recursive",
			recursive: false,
			exclude:   domain.DefaultExcludePatterns,
			want:      []string{"Iter.cs", "gen.py", "seq.go", "stubs.pyi"},
		},
		{
			name:      "python only",
			recursive: true,
			languages: []string{"python"},
			want:      []string{"gen.py", "pkg/inner/deep.py", "stubs.pyi"},
		},
		{
			name:      "csharp and go",
			recursive: true,
			exclude:   domain.DefaultExcludePatterns,
			languages: []string{"csharp", "go"},
			want:      []string{"Iter.cs", "pkg/inner/Deep.cs", "seq.go"},
		},
		{
			name:      "vendor kept without default excludes",
			recursive: true,
			languages: []string{"go"},
			want:      []string{"seq.go", "vendor/dep/dep.go"},
		},
		{
			name:      "include pattern",
			recursive: true,
			include:   []string{"pkg/**"},
			want:      []string{"pkg/inner/Deep.cs", "pkg/inner/deep.py"},
		},
		{
			name:      "exclude pattern",
			recursive: true,
			exclude:   []string{"pkg/**", "*.pyi", "**/vendor/**"},
			want:      []string{"Iter.cs", "gen.py", "seq.go"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := reader.CollectSourceFiles([]string{root}, tt.recursive, tt.include, tt.exclude, tt.languages)
			require.NoError(t, err)
			assert.Equal(t, tt.want, relativeAll(t, root, files))
		})
	}
}

func TestFileReader_CollectSourceFiles_ExplicitFiles(t *testing.T) {
	root := t.TempDir()
	py := createTestFile(t, root, "a.py", "")
	md := createTestFile(t, root, "notes.md", "")

	reader := NewFileReader()
	files, err := reader.CollectSourceFiles([]string{py, md, py, root}, false, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{py}, files, "unsupported files dropped and duplicates collapsed")
}

func TestFileReader_CollectSourceFiles_Errors(t *testing.T) {
	reader := NewFileReader()

	_, err := reader.CollectSourceFiles([]string{"/path/that/does/not/exist"}, false, nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeFileNotFound, domain.ErrorCode(err))

	_, err = reader.CollectSourceFiles([]string{t.TempDir()}, true, nil, nil, []string{"ruby"})
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeInvalidInput, domain.ErrorCode(err))
}

func TestFileReader_ReadFile(t *testing.T) {
	root := t.TempDir()
	path := createTestFile(t, root, "gen.py", "def gen():\n    yield 1\n")
	reader := NewFileReader()

	content, err := reader.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "def gen():\n    yield 1\n", string(content))

	_, err = reader.ReadFile(filepath.Join(root, "missing.py"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestFileReader_IsSupportedFile(t *testing.T) {
	reader := NewFileReader()

	for path, want := range map[string]bool{
		"gen.py":       true,
		"stubs.pyi":    true,
		"Iter.cs":      true,
		"seq.go":       true,
		"GEN.PY":       true,
		"script.rb":    false,
		"README":       false,
		"archive.py.x": false,
	} {
		assert.Equal(t, want, reader.IsSupportedFile(path), path)
	}
}

func TestFileReader_FileExists(t *testing.T) {
	root := t.TempDir()
	path := createTestFile(t, root, "a.go", "")
	reader := NewFileReader()

	exists, err := reader.FileExists(path)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = reader.FileExists(root)
	require.NoError(t, err)
	assert.False(t, exists, "directories are not files")

	exists, err = reader.FileExists(filepath.Join(root, "missing.go"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFileReader_ValidatePaths(t *testing.T) {
	reader := NewFileReader()
	assert.NoError(t, reader.ValidatePaths([]string{t.TempDir()}))
	assert.Error(t, reader.ValidatePaths([]string{"/path/that/does/not/exist"}))
}

func TestFileReader_shouldSkipDirectory(t *testing.T) {
	reader := NewFileReader()

	for name, want := range map[string]bool{
		"__pycache__":    true,
		"node_modules":   true,
		"venv":           true,
		"mypkg.egg-info": true,
		"obj":            true,
		"bin":            true,
		"src":            false,
		"internal":       false,
		"generators":     false,
	} {
		assert.Equal(t, want, reader.shouldSkipDirectory(name), name)
	}
}
