package diagfmt

import (
	"path/filepath"
	"strings"
)

func formatPath(path string, mode PathMode, base string) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	case PathModeBasename:
		return filepath.Base(path)
	case PathModeRelative, PathModeAuto:
		if base == "" {
			return path
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return path
		}
		rel, err := filepath.Rel(base, abs)
		if err != nil {
			return path
		}
		if mode == PathModeAuto && (rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return path
		}
		return rel
	default:
		return path
	}
}
