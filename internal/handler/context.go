package handler

import (
	"strings"

	"attrsync/internal/attrs"
	"attrsync/internal/decl"
	"attrsync/internal/diag"
	"attrsync/internal/doccomment"
	"attrsync/internal/names"
	"attrsync/internal/op"
	"attrsync/internal/source"
	"attrsync/internal/token"
)

// Context carries what handlers need to know about the declaration being
// reconciled, and collects the diagnostics raised while parsing.
type Context struct {
	Snap     *token.Snapshot
	Resolver *names.Resolver
	Decl     decl.Decl
	// Class is the enclosing class-like declaration of a member.
	Class *decl.Decl
	// Retain keeps the doc comment form next to the attributes.
	Retain bool
	// ClassAttributes and ClassTags are the records of the enclosing class.
	ClassAttributes []attrs.Attribute
	ClassTags       []doccomment.Tag
	// MemberTags are the doc comment tags of every member of a class-like
	// declaration.
	MemberTags []doccomment.Tag

	messages []op.Op
}

// Report records an unfixable diagnostic.
func (c *Context) Report(sev diag.Severity, code diag.Code, span source.Span, template string, data map[string]string) *op.Message {
	m := &op.Message{Severity: sev, Code: code, Span: span, Template: template, Data: data}
	c.messages = append(c.messages, m)
	return m
}

// quiet returns a copy of c whose reports are discarded, for records
// reported elsewhere.
func (c *Context) quiet() *Context {
	q := *c
	q.messages = nil
	return &q
}

// Messages returns and clears the diagnostics reported so far.
func (c *Context) Messages() []op.Op {
	out := c.messages
	c.messages = nil
	return out
}

// ResolveClass resolves a class name written in source at token index at.
func (c *Context) ResolveClass(name string, at int) string {
	return c.Resolver.Resolve(name, at)
}

// AnnotationClass resolves a class name written in a doc comment. Doc
// comment names are always fully qualified.
func (c *Context) AnnotationClass(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), `\`)
}

// SpellClass returns how fq is best written before the declaration.
func (c *Context) SpellClass(fq string) string {
	return c.Resolver.Spell(fq, c.Decl.Anchor)
}

func equalFold(a, b string) bool {
	return names.Equal(a, b)
}

func fold(s string) string {
	return names.Fold(s)
}
