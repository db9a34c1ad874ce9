package driver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"attrsync/internal/config"
)

// ListFiles expands target into the sorted list of files cfg selects. A
// file named directly is returned as long as its extension matches.
func ListFiles(target string, cfg config.Config) ([]string, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", target, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if !matchesExtension(abs, cfg) {
			return nil, fmt.Errorf("%s: not a %v file", target, cfg.Files.Extensions)
		}
		return []string{abs}, nil
	}

	var files []string
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != abs && (d.Name() == ".git" || d.Name() == "vendor" || cfg.Excluded(path)) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && cfg.Match(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func matchesExtension(path string, cfg config.Config) bool {
	probe := cfg
	probe.Files.Include = nil
	probe.Files.Exclude = nil
	return probe.Match(path)
}
