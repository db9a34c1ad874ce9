// Package reconcile compares the attributes and doc comment tags of a
// declaration and returns the operations that bring them in line.
package reconcile

import (
	"fmt"

	"attrsync/internal/attrs"
	"attrsync/internal/decl"
	"attrsync/internal/doccomment"
	"attrsync/internal/handler"
	"attrsync/internal/names"
	"attrsync/internal/op"
	"attrsync/internal/token"
)

type Options struct {
	// Retain keeps doc comment annotations and adds the missing ones.
	Retain   bool
	Registry *handler.Registry
}

// File is a tokenized source file with its declarations.
type File struct {
	Snap     *token.Snapshot
	Resolver *names.Resolver
	Decls    []decl.Decl
}

func NewFile(snap *token.Snapshot) *File {
	return &File{
		Snap:     snap,
		Resolver: names.NewResolver(snap.Tokens),
		Decls:    decl.Scan(snap.Tokens),
	}
}

// Target holds the metadata records of one declaration.
type Target struct {
	Decl       decl.Decl
	Class      *decl.Decl
	Attributes []attrs.Attribute
	// Block is nil when the declaration has no doc comment.
	Block *doccomment.Block
	Tags  []doccomment.Tag

	// ClassAttributes and ClassTags belong to the enclosing class of a
	// member; MemberTags to the members of a class-like declaration.
	ClassAttributes []attrs.Attribute
	ClassTags       []doccomment.Tag
	MemberTags      []doccomment.Tag
}

// Target extracts the records of the i-th declaration.
func (f *File) Target(i int) (*Target, error) {
	d := f.Decls[i]
	t := &Target{Decl: d}
	as, err := attrs.Extract(f.Snap, d.Anchor, f.Resolver)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", d.Kind, d.Name, err)
	}
	t.Attributes = as
	if t.Block, t.Tags, err = f.tags(d); err != nil {
		return nil, err
	}
	if d.Owner >= 0 {
		owner := f.Decls[d.Owner]
		t.Class = &owner
		if t.ClassAttributes, err = attrs.Extract(f.Snap, owner.Anchor, f.Resolver); err != nil {
			return nil, fmt.Errorf("%s %s: %w", owner.Kind, owner.Name, err)
		}
		if _, t.ClassTags, err = f.tags(owner); err != nil {
			return nil, err
		}
	}
	if d.Kind.IsClassLike() {
		for _, m := range f.Decls {
			if m.Owner != i {
				continue
			}
			_, tags, err := f.tags(m)
			if err != nil {
				return nil, err
			}
			t.MemberTags = append(t.MemberTags, tags...)
		}
	}
	return t, nil
}

// tags returns the doc comment of d and its tags; both are nil when d has
// none.
func (f *File) tags(d decl.Decl) (*doccomment.Block, []doccomment.Tag, error) {
	block, ok := doccomment.FindBlock(f.Snap, d.Anchor)
	if !ok {
		return nil, nil, nil
	}
	tags, err := doccomment.Tags(f.Snap, block.Opener)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", d.Kind, d.Name, err)
	}
	return block, tags, nil
}

// Context builds the handler context of the i-th declaration.
func (f *File) Context(i int, t *Target, retain bool) *handler.Context {
	return &handler.Context{
		Snap:            f.Snap,
		Resolver:        f.Resolver,
		Decl:            t.Decl,
		Class:           t.Class,
		Retain:          retain,
		ClassAttributes: t.ClassAttributes,
		ClassTags:       t.ClassTags,
		MemberTags:      t.MemberTags,
	}
}

// Run reconciles the i-th declaration with every handler in scope. The
// result lists, per handler, the diagnostics raised while parsing followed
// by the diff. Declarations no handler applies to yield nothing.
func Run(f *File, i int, opts Options) ([]op.Op, error) {
	reg := opts.Registry
	if reg == nil {
		reg = handler.DefaultRegistry()
	}
	hs := reg.For(f.Decls[i].Kind)
	if len(hs) == 0 {
		return nil, nil
	}
	t, err := f.Target(i)
	if err != nil {
		return nil, err
	}
	if len(t.Attributes) == 0 && len(t.Tags) == 0 && len(t.MemberTags) == 0 {
		return nil, nil
	}
	ctx := f.Context(i, t, opts.Retain)
	var out []op.Op
	for _, h := range hs {
		in := h.Collect(ctx, t.Attributes, t.Tags)
		var ops []op.Op
		if h.Reconcile != nil {
			ops = h.Reconcile(ctx, h, in, Diff)
		} else {
			ops = Diff(ctx, h, in)
		}
		out = append(out, ctx.Messages()...)
		out = append(out, ops...)
	}
	return out, nil
}

// Diff is the default reconciliation. Annotations without an attribute are
// converted, annotations duplicating one are removed, and with Retain set
// attributes without an annotation get one.
func Diff(ctx *handler.Context, h *handler.Handler, in handler.Input) []op.Op {
	var ops []op.Op
	inAttrs := make(map[handler.Key]bool, len(in.Attributes))
	for _, p := range in.Attributes {
		inAttrs[p.Key] = true
	}
	inTags := make(map[handler.Key]bool, len(in.Annotations))
	added := map[handler.Key]*op.Message{}
	for _, p := range in.Annotations {
		inTags[p.Key] = true
		if inAttrs[p.Key] {
			if !ctx.Retain {
				m := handler.Redundant(ctx, h, p)
				ops = append(ops, m, &op.RemoveAnnotation{Msg: m, Target: p.Tag})
			}
			continue
		}
		m, dup := added[p.Key]
		if !dup {
			m = handler.Deprecated(ctx, h, p)
			added[p.Key] = m
			name, params := h.FormatAttribute(ctx, p.Entry)
			ops = append(ops, m, &op.AddAttribute{Msg: m, Name: name, Params: params})
		}
		if !ctx.Retain {
			ops = append(ops, &op.RemoveAnnotation{Msg: m, Target: p.Tag})
		}
	}
	if !ctx.Retain {
		return ops
	}
	for _, p := range in.Attributes {
		if inTags[p.Key] {
			continue
		}
		inTags[p.Key] = true
		m := handler.Missing(ctx, h, p)
		tag, content := h.FormatAnnotation(ctx, p.Entry)
		ops = append(ops, m, &op.AddAnnotation{Msg: m, Tag: tag, Content: content})
	}
	return ops
}
