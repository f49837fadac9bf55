package app

import "github.com/ludo-technologies/yieldscan/domain"

// ResolveFilePaths resolves the paths of a request to source files.
// When every path already names an existing supported file and no language
// filter is given, the paths are returned unchanged. Otherwise files are
// collected from the paths with the given filters.
func ResolveFilePaths(
	fileReader domain.FileReader,
	paths []string,
	recursive bool,
	includePatterns []string,
	excludePatterns []string,
	languages []string,
) ([]string, error) {
	allFiles := len(languages) == 0
	for _, path := range paths {
		if !allFiles {
			break
		}
		if !fileReader.IsSupportedFile(path) {
			allFiles = false
			break
		}
		// FileExists is true only for regular files
		exists, err := fileReader.FileExists(path)
		if err != nil || !exists {
			allFiles = false
		}
	}

	if allFiles {
		return paths, nil
	}

	files, err := fileReader.CollectSourceFiles(paths, recursive, includePatterns, excludePatterns, languages)
	if err != nil {
		return nil, err
	}
	return files, nil
}
