package diagfmt

import (
	"attrsync/internal/diag"
	"attrsync/internal/source"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto uses a path relative to BaseDir when the file is below
	// it, the path as given otherwise.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// Report is the diagnostics of one file with the file set their spans refer
// to. FileSet may be empty when the file could not be read; Path is used
// then.
type Report struct {
	Path    string
	Bag     *diag.Bag
	FileSet *source.FileSet
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color bool
	// Context is the number of source lines shown around the primary line.
	Context   int8
	PathMode  PathMode
	BaseDir   string
	Width     uint8 // maximum source line width, 0 means unlimited
	ShowNotes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool
	PathMode         PathMode
	BaseDir          string
	Max              int // output cap, the bags are not touched
	IncludeNotes     bool
}
