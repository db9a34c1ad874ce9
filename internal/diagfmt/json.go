package diagfmt

import (
	"encoding/json"
	"io"

	"attrsync/internal/diag"
)

// LocationJSON is a position in a file.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Slug     string       `json:"slug"`
	Message  string       `json:"message"`
	Fixable  bool         `json:"fixable"`
	Fixed    bool         `json:"fixed"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput is the root of the JSON document.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Fixable     int              `json:"fixable"`
	Fixed       int              `json:"fixed"`
}

func makeLocation(loc location, start, end uint32, includePositions bool) LocationJSON {
	out := LocationJSON{File: loc.path, StartByte: start, EndByte: end}
	if includePositions && loc.start.Line > 0 {
		out.StartLine = loc.start.Line
		out.StartCol = loc.start.Col
		out.EndLine = loc.end.Line
		out.EndCol = loc.end.Col
	}
	return out
}

// BuildDiagnosticsOutput collects the diagnostics of every report without
// serializing them.
func BuildDiagnosticsOutput(reports []Report, opts JSONOpts) DiagnosticsOutput {
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0)}
	for _, r := range reports {
		if r.Bag == nil {
			continue
		}
		for _, d := range r.Bag.Items() {
			if opts.Max > 0 && len(out.Diagnostics) >= opts.Max {
				break
			}
			loc := r.locate(d.Primary, opts.PathMode, opts.BaseDir)
			dj := DiagnosticJSON{
				Severity: d.Severity.String(),
				Code:     d.Code.ID(),
				Slug:     d.Code.Slug(),
				Message:  d.Message,
				Fixable:  d.Fixable,
				Fixed:    d.Fixed,
				Location: makeLocation(loc, d.Primary.Start, d.Primary.End, opts.IncludePositions),
			}
			if d.Fixed {
				out.Fixed++
			} else if d.Fixable {
				out.Fixable++
			}
			if len(d.Notes) > 0 && (opts.IncludeNotes || d.Code == diag.ObsTimings) {
				dj.Notes = make([]NoteJSON, len(d.Notes))
				for j, n := range d.Notes {
					nloc := r.locate(n.Span, opts.PathMode, opts.BaseDir)
					dj.Notes[j] = NoteJSON{
						Message:  n.Msg,
						Location: makeLocation(nloc, n.Span.Start, n.Span.End, opts.IncludePositions),
					}
				}
			}
			out.Diagnostics = append(out.Diagnostics, dj)
		}
	}
	out.Count = len(out.Diagnostics)
	return out
}

// JSON writes the diagnostics of every report as one indented document.
func JSON(w io.Writer, reports []Report, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(reports, opts))
}
