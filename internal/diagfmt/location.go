package diagfmt

import (
	"fmt"

	"attrsync/internal/source"
)

type location struct {
	path       string
	file       *source.File
	start, end source.LineCol
}

// locate resolves span within r. Without a matching file only the report
// path is known.
func (r Report) locate(span source.Span, mode PathMode, base string) location {
	loc := location{path: formatPath(r.Path, mode, base)}
	if r.FileSet == nil {
		return loc
	}
	f := r.FileSet.Get(span.File)
	if f == nil {
		return loc
	}
	loc.file = f
	if span.Start == 0 && span.End == 0 {
		return loc
	}
	loc.start, loc.end = r.FileSet.Resolve(span)
	return loc
}

func (l location) String() string {
	if l.file == nil || l.start.Line == 0 {
		return l.path
	}
	return fmt.Sprintf("%s:%d:%d", l.path, l.start.Line, l.start.Col)
}
