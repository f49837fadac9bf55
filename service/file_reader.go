package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ludo-technologies/yieldscan/domain"
	"github.com/ludo-technologies/yieldscan/internal/parser"
)

// FileReaderImpl implements the FileReader interface
type FileReaderImpl struct{}

// NewFileReader creates a new file reader service
func NewFileReader() *FileReaderImpl {
	return &FileReaderImpl{}
}

// CollectSourceFiles finds the source files of the requested languages in
// the given paths. Explicit file arguments are kept when their extension is
// supported; directories are walked in lexical order. Each file appears once.
func (f *FileReaderImpl) CollectSourceFiles(paths []string, recursive bool, includePatterns, excludePatterns, languages []string) ([]string, error) {
	allowed, err := languageSet(languages)
	if err != nil {
		return nil, err
	}

	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		key := filepath.Clean(path)
		if !seen[key] {
			seen[key] = true
			files = append(files, path)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, domain.NewFileNotFoundError(path, err)
		}

		if info.IsDir() {
			dirFiles, err := f.collectFromDirectory(path, recursive, includePatterns, excludePatterns, allowed)
			if err != nil {
				return nil, err
			}
			for _, file := range dirFiles {
				add(file)
			}
			continue
		}

		if f.isAllowedFile(path, allowed) && f.shouldIncludeFile(path, includePatterns, excludePatterns) {
			add(path)
		}
	}

	return files, nil
}

// ReadFile reads the content of a file
func (f *FileReaderImpl) ReadFile(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewFileNotFoundError(path, err)
	}
	return content, nil
}

// IsSupportedFile checks if the file extension maps to a supported language
func (f *FileReaderImpl) IsSupportedFile(path string) bool {
	_, ok := parser.LanguageForPath(path)
	return ok
}

// FileExists checks if a file exists
func (f *FileReaderImpl) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

// ValidatePaths validates that all provided paths exist and are accessible
func (f *FileReaderImpl) ValidatePaths(paths []string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return domain.NewFileNotFoundError(path, err)
			}
			return domain.NewInvalidInputError(fmt.Sprintf("cannot access path: %s", path), err)
		}
	}
	return nil
}

func languageSet(languages []string) (map[parser.Language]bool, error) {
	if len(languages) == 0 {
		return nil, nil
	}
	set := make(map[parser.Language]bool, len(languages))
	for _, name := range languages {
		lang, err := parser.ParseLanguage(name)
		if err != nil {
			return nil, domain.NewInvalidInputError("unknown language", err)
		}
		set[lang] = true
	}
	return set, nil
}

// isAllowedFile reports whether path has a supported extension whose
// language is in allowed (every language when allowed is nil)
func (f *FileReaderImpl) isAllowedFile(path string, allowed map[parser.Language]bool) bool {
	lang, ok := parser.LanguageForPath(path)
	if !ok {
		return false
	}
	return allowed == nil || allowed[lang]
}

func (f *FileReaderImpl) collectFromDirectory(dirPath string, recursive bool, includePatterns, excludePatterns []string, allowed map[parser.Language]bool) ([]string, error) {
	var files []string

	walkFunc := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// unreadable entries are skipped
			return nil
		}
		if path == dirPath {
			return nil
		}

		if info.IsDir() {
			if !recursive || strings.HasPrefix(info.Name(), ".") || f.shouldSkipDirectory(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(info.Name(), ".") {
			return nil
		}
		if f.isAllowedFile(path, allowed) && f.shouldIncludeFile(path, includePatterns, excludePatterns) {
			files = append(files, path)
		}
		return nil
	}

	if err := filepath.Walk(dirPath, walkFunc); err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dirPath, err)
	}

	return files, nil
}

// shouldIncludeFile applies exclude patterns first, then include patterns.
// No include patterns means include everything not excluded.
func (f *FileReaderImpl) shouldIncludeFile(path string, includePatterns, excludePatterns []string) bool {
	for _, pattern := range excludePatterns {
		if f.matchesPattern(pattern, path) {
			return false
		}
	}

	if len(includePatterns) == 0 {
		return true
	}

	for _, pattern := range includePatterns {
		if f.matchesPattern(pattern, path) {
			return true
		}
	}
	return false
}

// matchesPattern matches a doublestar pattern against the path, its base
// name, or any trailing run of its directories. "vendor/**" therefore also
// excludes "src/vendor/x.go".
func (f *FileReaderImpl) matchesPattern(pattern, path string) bool {
	slashed := filepath.ToSlash(path)

	if matched, _ := doublestar.Match(pattern, slashed); matched {
		return true
	}
	if matched, _ := doublestar.Match(pattern, filepath.Base(path)); matched {
		return true
	}
	if dir, ok := strings.CutSuffix(pattern, "/**"); ok {
		if matched, _ := doublestar.Match(dir, slashed); matched {
			return true
		}
	}

	if strings.HasPrefix(pattern, "/") {
		return false
	}
	relative := strings.TrimPrefix(slashed, "/")
	if matched, _ := doublestar.Match(pattern, relative); matched {
		return true
	}
	if strings.HasPrefix(pattern, "**/") {
		return false
	}
	matched, _ := doublestar.Match("**/"+pattern, relative)
	return matched
}

// shouldSkipDirectory checks if a directory never holds analyzable sources
func (f *FileReaderImpl) shouldSkipDirectory(dirName string) bool {
	skipDirs := []string{
		"__pycache__",
		"node_modules",
		"venv",
		"env",
		"*.egg-info",
		"bin",
		"obj",
		"testdata",
	}

	dirLower := strings.ToLower(dirName)
	for _, skipDir := range skipDirs {
		if matched, _ := filepath.Match(skipDir, dirLower); matched {
			return true
		}
	}
	return false
}
