// Package handler holds one strategy record per metadata family. A handler
// names the attributes and doc comment tags it owns, turns both forms into
// comparable keys and formats keys back into either form.
//
// Handlers are immutable and shared by every file of a run; per-declaration
// state travels in a Context.
package handler

import (
	"attrsync/internal/attrs"
	"attrsync/internal/decl"
	"attrsync/internal/doccomment"
	"attrsync/internal/op"
)

// Scope selects the declarations a handler applies to.
type Scope uint8

const (
	// ScopeClass covers classes, interfaces, traits and enums.
	ScopeClass Scope = 1 << iota
	// ScopeMember covers methods.
	ScopeMember

	ScopeBoth = ScopeClass | ScopeMember
)

// Allows reports whether declarations of kind k are in scope.
func (s Scope) Allows(k decl.Kind) bool {
	switch {
	case k.IsClassLike():
		return s&ScopeClass != 0
	case k == decl.Method:
		return s&ScopeMember != 0
	}
	return false
}

// Key is the canonical form of one piece of metadata. Records equal in
// meaning produce equal keys whichever form they were written in.
type Key string

// Entry is a parsed record: its key plus what formatting needs.
type Entry struct {
	Key     Key
	Payload any
}

// Parsed ties an entry to the record it came from. Exactly one of Attr and
// Tag is set.
type Parsed struct {
	Entry
	Attr *attrs.Attribute
	Tag  *doccomment.Tag
}

// Input holds a handler's records for one declaration in source order.
type Input struct {
	Attributes  []Parsed
	Annotations []Parsed
}

// DiffFunc is the default reconciliation, handed to custom Reconcile steps
// so they can delegate the common cases.
type DiffFunc func(ctx *Context, h *Handler, in Input) []op.Op

type Handler struct {
	// Name identifies the handler, Family groups related handlers. Either
	// may be used to disable a handler in the configuration.
	Name   string
	Family string
	Scope  Scope
	// AttributeNames are fully qualified, without a leading backslash.
	AttributeNames  []string
	AnnotationNames []string

	// ParseAttribute and ParseAnnotation return false to drop a record;
	// they report why through the context.
	ParseAttribute  func(ctx *Context, a *attrs.Attribute) (Entry, bool)
	ParseAnnotation func(ctx *Context, t *doccomment.Tag) (Entry, bool)

	// FormatAttribute returns the fully qualified attribute name and its
	// arguments as PHP source. FormatAnnotation returns the tag (with '@')
	// and its content.
	FormatAttribute  func(ctx *Context, e Entry) (name string, params []string)
	FormatAnnotation func(ctx *Context, e Entry) (tag, content string)

	// Reconcile replaces the default diff when set.
	Reconcile func(ctx *Context, h *Handler, in Input, diff DiffFunc) []op.Op
}

// OwnsAttribute reports whether fq names one of the handler's attributes.
func (h *Handler) OwnsAttribute(fq string) bool {
	for _, n := range h.AttributeNames {
		if equalFold(n, fq) {
			return true
		}
	}
	return false
}

// OwnsAnnotation reports whether tag is one of the handler's tags.
func (h *Handler) OwnsAnnotation(tag string) bool {
	for _, n := range h.AnnotationNames {
		if n == tag {
			return true
		}
	}
	return false
}

// Collect parses the records of one declaration that belong to h.
func (h *Handler) Collect(ctx *Context, attributes []attrs.Attribute, tags []doccomment.Tag) Input {
	var in Input
	for i := range attributes {
		a := &attributes[i]
		if !h.OwnsAttribute(a.FQName) {
			continue
		}
		if e, ok := h.ParseAttribute(ctx, a); ok {
			in.Attributes = append(in.Attributes, Parsed{Entry: e, Attr: a})
		}
	}
	for i := range tags {
		t := &tags[i]
		if !h.OwnsAnnotation(t.Name) {
			continue
		}
		if e, ok := h.ParseAnnotation(ctx, t); ok {
			in.Annotations = append(in.Annotations, Parsed{Entry: e, Tag: t})
		}
	}
	return in
}
