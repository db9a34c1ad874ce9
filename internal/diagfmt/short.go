package diagfmt

import (
	"fmt"
	"io"
	"strings"
)

// Short prints one line per diagnostic:
//
//	<path>:<line>:<col>: <severity> <code> <slug>: <message>
func Short(w io.Writer, r Report, opts PrettyOpts) error {
	if r.Bag == nil {
		return nil
	}
	p := newPalette(opts.Color)
	for _, d := range r.Bag.Items() {
		loc := r.locate(d.Primary, opts.PathMode, opts.BaseDir)
		suffix := ""
		switch {
		case d.Fixed:
			suffix = " (fixed)"
		case d.Fixable:
			suffix = " (fixable)"
		}
		_, err := fmt.Fprintf(w, "%s: %s %s %s: %s%s\n",
			loc, p.severity(d.Severity).Sprint(strings.ToLower(d.Severity.String())),
			d.Code.ID(), d.Code.Slug(), d.Message, suffix)
		if err != nil {
			return err
		}
	}
	return nil
}
