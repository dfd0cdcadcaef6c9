package fileloader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultFilePattern matches the data files the tool is normally pointed at.
const DefaultFilePattern = "**/*.csv"

// DiscoverDataFiles lists candidate data files under dir whose relative path
// matches pattern (doublestar glob, e.g. "*.csv" or "**/*.csv.gz"). Results
// are sorted for deterministic order and capped at maxFiles when positive.
func DiscoverDataFiles(dir, pattern string, maxFiles int) ([]string, error) {
	if pattern == "" {
		pattern = DefaultFilePattern
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("discover %s: not a directory", dir)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), pattern)
	if err != nil {
		return nil, fmt.Errorf("discover %s with pattern %q: %w", dir, pattern, err)
	}
	sort.Strings(matches)

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		full := filepath.Join(dir, filepath.FromSlash(m))
		fi, err := os.Stat(full)
		if err != nil || fi.IsDir() {
			continue
		}
		files = append(files, full)
		if maxFiles > 0 && len(files) >= maxFiles {
			break
		}
	}
	return files, nil
}
