package handler

import (
	"strings"

	"attrsync/internal/diag"
	"attrsync/internal/doccomment"
	"attrsync/internal/op"
)

// Deprecated reports an annotation that has no attribute yet.
func Deprecated(ctx *Context, h *Handler, p Parsed) *op.Message {
	return &op.Message{
		Severity: diag.SevWarning,
		Code:     diag.AnnDeprecated,
		Span:     p.Tag.Span,
		Fixable:  true,
		Template: "Annotation {{annotation}} is deprecated, use attribute {{attribute}} instead",
		Data: map[string]string{
			"annotation": tagText(p.Tag),
			"attribute":  AttributeText(ctx, h, p.Entry),
		},
	}
}

// Redundant reports an annotation already expressed by an attribute.
func Redundant(ctx *Context, h *Handler, p Parsed) *op.Message {
	return &op.Message{
		Severity: diag.SevWarning,
		Code:     diag.AnnRedundant,
		Span:     p.Tag.Span,
		Fixable:  true,
		Template: "Annotation {{annotation}} duplicates attribute {{attribute}}",
		Data: map[string]string{
			"annotation": tagText(p.Tag),
			"attribute":  AttributeText(ctx, h, p.Entry),
		},
	}
}

// Missing reports an attribute whose annotation is absent while legacy
// annotations are retained.
func Missing(ctx *Context, h *Handler, p Parsed) *op.Message {
	tag, content := h.FormatAnnotation(ctx, p.Entry)
	return &op.Message{
		Severity: diag.SevWarning,
		Code:     diag.AnnMissing,
		Span:     p.Attr.Span,
		Fixable:  true,
		Template: "Attribute {{attribute}} has no matching annotation {{annotation}}",
		Data: map[string]string{
			"attribute":  AttributeText(ctx, h, p.Entry),
			"annotation": strings.TrimSpace(tag + " " + firstLine(content)),
		},
	}
}

// AttributeText renders e as an attribute the way it would be inserted.
func AttributeText(ctx *Context, h *Handler, e Entry) string {
	name, params := h.FormatAttribute(ctx, e)
	s := "#[" + ctx.SpellClass(name)
	if len(params) > 0 {
		s += "(" + strings.Join(params, ", ") + ")"
	}
	return s + "]"
}

func tagText(t *doccomment.Tag) string {
	return strings.TrimSpace(t.Name + " " + firstLine(t.Content))
}

func firstLine(s string) string {
	s = strings.TrimLeft(s, "\n")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
