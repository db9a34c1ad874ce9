package handler

import (
	"strings"

	"attrsync/internal/attrs"
	"attrsync/internal/doccomment"
	"attrsync/internal/phplit"
)

// AttributeNamespace holds every attribute the registry knows.
const AttributeNamespace = `PHPUnit\Framework\Attributes\`

// flag builds a handler for metadata without arguments.
func flag(attr, tag string, scope Scope) *Handler {
	fq := AttributeNamespace + attr
	key := Key(strings.ToLower(attr))
	return &Handler{
		Name:            strings.ToLower(attr),
		Family:          "flag",
		Scope:           scope,
		AttributeNames:  []string{fq},
		AnnotationNames: []string{tag},
		ParseAttribute: func(*Context, *attrs.Attribute) (Entry, bool) {
			return Entry{Key: key}, true
		},
		ParseAnnotation: func(ctx *Context, t *doccomment.Tag) (Entry, bool) {
			if strings.TrimSpace(t.Content) != "" {
				ctx.trailingText(t)
				return Entry{}, false
			}
			return Entry{Key: key}, true
		},
		FormatAttribute: func(*Context, Entry) (string, []string) {
			return fq, nil
		},
		FormatAnnotation: func(*Context, Entry) (string, string) {
			return tag, ""
		},
	}
}

// text builds a handler for metadata holding one free string, written
// verbatim in the annotation. A prose tag may wrap over several lines; its
// value is the lines joined by spaces.
func text(attr, tag, param string, prose bool, scope Scope) *Handler {
	fq := AttributeNamespace + attr
	name := strings.ToLower(attr)
	entry := func(s string) Entry {
		return Entry{Key: Key(name + ":" + s), Payload: s}
	}
	return &Handler{
		Name:            name,
		Family:          "string",
		Scope:           scope,
		AttributeNames:  []string{fq},
		AnnotationNames: []string{tag},
		ParseAttribute: func(ctx *Context, a *attrs.Attribute) (Entry, bool) {
			s, ok := ctx.stringArg(a, 0, param)
			if !ok {
				return Entry{}, false
			}
			return entry(strings.TrimSpace(s)), true
		},
		ParseAnnotation: func(ctx *Context, t *doccomment.Tag) (Entry, bool) {
			read := ctx.annotationText
			if prose {
				read = ctx.annotationProse
			}
			s, ok := read(t)
			if !ok {
				return Entry{}, false
			}
			return entry(s), true
		},
		FormatAttribute: func(_ *Context, e Entry) (string, []string) {
			return fq, []string{phplit.Quote(e.Payload.(string))}
		},
		FormatAnnotation: func(_ *Context, e Entry) (string, string) {
			return tag, e.Payload.(string)
		},
	}
}

// toggle builds a handler for on/off metadata. The annotation spells the
// state as "enabled" or "disabled", the attribute as a boolean argument.
func toggle(attr, tag string, scope Scope) *Handler {
	fq := AttributeNamespace + attr
	name := strings.ToLower(attr)
	entry := func(on bool) Entry {
		return Entry{Key: Key(name + ":" + enabledWord(on)), Payload: on}
	}
	return &Handler{
		Name:            name,
		Family:          "boolean",
		Scope:           scope,
		AttributeNames:  []string{fq},
		AnnotationNames: []string{tag},
		ParseAttribute: func(ctx *Context, a *attrs.Attribute) (Entry, bool) {
			on, ok := ctx.boolArg(a, 0, "enabled")
			if !ok {
				return Entry{}, false
			}
			return entry(on), true
		},
		ParseAnnotation: func(ctx *Context, t *doccomment.Tag) (Entry, bool) {
			s, ok := ctx.annotationText(t)
			if !ok {
				return Entry{}, false
			}
			switch strings.ToLower(s) {
			case "enabled":
				return entry(true), true
			case "disabled":
				return entry(false), true
			}
			ctx.invalidAnnotation(t, "must be enabled or disabled")
			return Entry{}, false
		},
		FormatAttribute: func(_ *Context, e Entry) (string, []string) {
			if e.Payload.(bool) {
				return fq, []string{"true"}
			}
			return fq, []string{"false"}
		},
		FormatAnnotation: func(_ *Context, e Entry) (string, string) {
			return tag, enabledWord(e.Payload.(bool))
		},
	}
}

func enabledWord(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}
