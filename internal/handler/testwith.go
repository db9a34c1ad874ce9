package handler

import (
	"slices"
	"strings"

	"attrsync/internal/attrs"
	"attrsync/internal/diag"
	"attrsync/internal/doccomment"
	"attrsync/internal/op"
	"attrsync/internal/phplit"
)

// dataTable is the payload of a @testWith tag: one row per content line.
// Broken is set when a line failed to decode.
type dataTable struct {
	Rows   []phplit.Value
	Broken bool
}

func (d dataTable) content() string {
	lines := make([]string, len(d.Rows))
	for i, r := range d.Rows {
		lines[i] = r.JSON()
	}
	return strings.Join(lines, "\n")
}

// testWith maps @testWith rows to TestWith and TestWithJson attributes.
// Every attribute carries one row, so the handler diffs rows instead of
// whole records.
func testWith() *Handler {
	const (
		native = AttributeNamespace + "TestWith"
		json   = AttributeNamespace + "TestWithJson"
		tag    = "@testWith"
	)
	return &Handler{
		Name:            "testwith",
		Family:          "testwith",
		Scope:           ScopeMember,
		AttributeNames:  []string{native, json},
		AnnotationNames: []string{tag},
		ParseAttribute: func(ctx *Context, a *attrs.Attribute) (Entry, bool) {
			var row phplit.Value
			if equalFold(a.FQName, json) {
				s, ok := ctx.stringArg(a, 0, "json")
				if !ok {
					return Entry{}, false
				}
				v, err := phplit.DecodeJSON(s)
				if err != nil {
					ctx.invalidArg(a, "json", "is not valid JSON")
					return Entry{}, false
				}
				row = v
			} else {
				v, ok := ctx.literalArg(a, 0, "data")
				if !ok {
					return Entry{}, false
				}
				row = v
			}
			if row.Kind != phplit.Array {
				ctx.invalidArg(a, "data", "must be an array")
				return Entry{}, false
			}
			return Entry{Key: Key(row.JSON()), Payload: row}, true
		},
		ParseAnnotation: func(ctx *Context, t *doccomment.Tag) (Entry, bool) {
			var table dataTable
			for _, line := range strings.Split(t.Content, "\n") {
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				v, err := phplit.DecodeJSON(line)
				if err != nil || v.Kind != phplit.Array {
					ctx.invalidAnnotation(t, "has a row that is not a JSON array: "+line)
					table.Broken = true
					continue
				}
				table.Rows = append(table.Rows, v)
			}
			if len(table.Rows) == 0 && !table.Broken {
				ctx.Report(diag.SevWarning, diag.AnnMissingParameter, t.Span,
					"Annotation {{annotation}} requires at least one data row",
					map[string]string{"annotation": tag})
				return Entry{}, false
			}
			return Entry{Key: Key(table.content()), Payload: table}, true
		},
		FormatAttribute: func(_ *Context, e Entry) (string, []string) {
			switch p := e.Payload.(type) {
			case phplit.Value:
				return native, []string{p.PHP()}
			case dataTable:
				if len(p.Rows) > 0 {
					return native, []string{p.Rows[0].PHP()}
				}
			}
			return native, []string{"[]"}
		},
		FormatAnnotation: func(_ *Context, e Entry) (string, string) {
			switch p := e.Payload.(type) {
			case phplit.Value:
				return tag, p.JSON()
			case dataTable:
				return tag, p.content()
			}
			return tag, ""
		},
		Reconcile: reconcileRows,
	}
}

// reconcileRows diffs individual rows. A tag is removed once all its rows
// exist as attributes, unless one of its rows could not be decoded. With
// retain on, rows missing from the annotation are written back as a single
// edit of the first tag.
func reconcileRows(ctx *Context, h *Handler, in Input, _ DiffFunc) []op.Op {
	var ops []op.Op
	inAttrs := make(map[Key]bool, len(in.Attributes))
	for _, p := range in.Attributes {
		inAttrs[p.Key] = true
	}
	inTags := map[Key]bool{}
	added := map[Key]bool{}
	for _, p := range in.Annotations {
		table := p.Payload.(dataTable)
		var owner *op.Message
		for _, row := range table.Rows {
			k := Key(row.JSON())
			inTags[k] = true
			if inAttrs[k] || added[k] {
				continue
			}
			added[k] = true
			e := Entry{Key: k, Payload: row}
			owner = Deprecated(ctx, h, Parsed{Entry: e, Tag: p.Tag})
			name, params := h.FormatAttribute(ctx, e)
			ops = append(ops, owner, &op.AddAttribute{Msg: owner, Name: name, Params: params})
		}
		if ctx.Retain || table.Broken {
			continue
		}
		if owner == nil {
			owner = Redundant(ctx, h, p)
			ops = append(ops, owner)
		}
		ops = append(ops, &op.RemoveAnnotation{Msg: owner, Target: p.Tag})
	}
	if !ctx.Retain {
		return ops
	}

	var (
		missing []phplit.Value
		first   *op.Message
	)
	for _, p := range in.Attributes {
		row := p.Payload.(phplit.Value)
		if inTags[p.Key] {
			continue
		}
		if !row.IsList() {
			ctx.Report(diag.SevWarning, diag.AnnKeyedRow, p.Attr.Span,
				"Data row {{row}} has string keys and cannot be written as {{annotation}}",
				map[string]string{"row": row.PHP(), "annotation": "@testWith"})
			continue
		}
		inTags[p.Key] = true
		missing = append(missing, row)
		if first == nil {
			first = Missing(ctx, h, p)
		}
	}
	if first == nil {
		return ops
	}
	ops = append(ops, first)
	switch {
	case len(in.Annotations) == 0:
		tag, content := h.FormatAnnotation(ctx, Entry{Payload: dataTable{Rows: missing}})
		ops = append(ops, &op.AddAnnotation{Msg: first, Tag: tag, Content: content})
	case in.Annotations[0].Payload.(dataTable).Broken:
		first.Fixable = false
	default:
		p := in.Annotations[0]
		table := p.Payload.(dataTable)
		rows := append(slices.Clone(table.Rows), missing...)
		tag, content := h.FormatAnnotation(ctx, Entry{Payload: dataTable{Rows: rows}})
		ops = append(ops, &op.ReplaceAnnotation{Msg: first, Target: p.Tag, Tag: tag, Content: content})
	}
	return ops
}
