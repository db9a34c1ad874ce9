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

type coverKind string

const (
	coverClass    coverKind = "class"
	coverTrait    coverKind = "trait"
	coverFunction coverKind = "function"
	coverMethod   coverKind = "method"

	// Annotation forms that only get their meaning from the other tags of
	// the declaration.
	coverDefault coverKind = "default" // @coversDefaultClass \Foo
	coverMember  coverKind = "member"  // @covers ::name
	coverType    coverKind = "type"    // @covers \Foo, class or trait
)

type coverTarget struct {
	Kind   coverKind
	Class  string
	Member string
}

// coverage handles @covers or @uses and their default class tag.
type coverage struct {
	verb       string
	tag        string
	defaultTag string
	// class, trait, function, method
	attrs [4]string
}

func newCoverage(verb, attrPrefix string) *Handler {
	cv := &coverage{
		verb:       verb,
		tag:        "@" + verb,
		defaultTag: "@" + verb + "DefaultClass",
	}
	for i, s := range []string{"Class", "Trait", "Function", "Method"} {
		cv.attrs[i] = AttributeNamespace + attrPrefix + s
	}
	return &Handler{
		Name:             verb,
		Family:           "covers",
		Scope:            ScopeBoth,
		AttributeNames:   cv.attrs[:],
		AnnotationNames:  []string{cv.tag, cv.defaultTag},
		ParseAttribute:   cv.parseAttribute,
		ParseAnnotation:  cv.parseAnnotation,
		FormatAttribute:  cv.formatAttribute,
		FormatAnnotation: cv.formatAnnotation,
		Reconcile:        cv.reconcile,
	}
}

func (cv *coverage) entry(t coverTarget) Entry {
	k := cv.verb + ":" + string(t.Kind) + ":"
	switch t.Kind {
	case coverFunction, coverMember:
		k += fold(t.Member)
	case coverMethod:
		k += fold(t.Class) + "::" + fold(t.Member)
	default:
		k += fold(t.Class)
	}
	return Entry{Key: Key(k), Payload: t}
}

func (cv *coverage) parseAttribute(ctx *Context, a *attrs.Attribute) (Entry, bool) {
	var t coverTarget
	switch {
	case equalFold(a.FQName, cv.attrs[0]):
		cls, ok := ctx.classArg(a, 0, "className")
		if !ok {
			return Entry{}, false
		}
		t = coverTarget{Kind: coverClass, Class: cls}
	case equalFold(a.FQName, cv.attrs[1]):
		cls, ok := ctx.classArg(a, 0, "traitName")
		if !ok {
			return Entry{}, false
		}
		t = coverTarget{Kind: coverTrait, Class: cls}
	case equalFold(a.FQName, cv.attrs[2]):
		fn, ok := ctx.stringArg(a, 0, "functionName")
		if !ok {
			return Entry{}, false
		}
		t = coverTarget{Kind: coverFunction, Member: strings.TrimPrefix(fn, `\`)}
	default:
		cls, ok := ctx.classArg(a, 0, "className")
		if !ok {
			return Entry{}, false
		}
		m, ok := ctx.stringArg(a, 1, "methodName")
		if !ok {
			return Entry{}, false
		}
		t = coverTarget{Kind: coverMethod, Class: cls, Member: m}
	}
	return cv.entry(t), true
}

func (cv *coverage) parseAnnotation(ctx *Context, t *doccomment.Tag) (Entry, bool) {
	s, ok := ctx.annotationWord(t)
	if !ok {
		return Entry{}, false
	}
	if t.Name == cv.defaultTag {
		cls := ctx.AnnotationClass(s)
		if !validClassName(cls) {
			ctx.invalidAnnotation(t, "must name a class")
			return Entry{}, false
		}
		return cv.entry(coverTarget{Kind: coverDefault, Class: cls}), true
	}
	if strings.ContainsAny(s, "<>") {
		ctx.Report(diag.SevWarning, diag.AnnUnsupported, t.Span,
			"Annotation {{annotation}} uses a visibility selector that has no attribute form",
			map[string]string{"annotation": tagText(t)})
		return Entry{}, false
	}
	cls, member, hasMember := strings.Cut(s, "::")
	member = strings.TrimSuffix(member, "()")
	switch {
	case hasMember && !validMethodName(member):
		ctx.invalidAnnotation(t, "must reference a function or method")
		return Entry{}, false
	case hasMember && strings.TrimSpace(cls) == "":
		return cv.entry(coverTarget{Kind: coverMember, Member: member}), true
	}
	fq := ctx.AnnotationClass(cls)
	if !validClassName(fq) {
		ctx.invalidAnnotation(t, "must name a class")
		return Entry{}, false
	}
	if hasMember {
		return cv.entry(coverTarget{Kind: coverMethod, Class: fq, Member: member}), true
	}
	return cv.entry(coverTarget{Kind: coverType, Class: fq}), true
}

func validClassName(fq string) bool {
	if fq == "" {
		return false
	}
	for _, part := range strings.Split(fq, `\`) {
		if !validMethodName(part) {
			return false
		}
	}
	return true
}

func (cv *coverage) formatAttribute(ctx *Context, e Entry) (string, []string) {
	t := e.Payload.(coverTarget)
	switch t.Kind {
	case coverTrait:
		return cv.attrs[1], []string{ctx.classLiteral(t.Class)}
	case coverFunction, coverMember:
		return cv.attrs[2], []string{phplit.Quote(t.Member)}
	case coverMethod:
		return cv.attrs[3], []string{ctx.classLiteral(t.Class), phplit.Quote(t.Member)}
	case coverType:
		if strings.HasSuffix(t.Class, "Trait") {
			return cv.attrs[1], []string{ctx.classLiteral(t.Class)}
		}
	}
	return cv.attrs[0], []string{ctx.classLiteral(t.Class)}
}

func (cv *coverage) formatAnnotation(_ *Context, e Entry) (string, string) {
	t := e.Payload.(coverTarget)
	switch t.Kind {
	case coverDefault:
		return cv.defaultTag, `\` + t.Class
	case coverFunction, coverMember:
		return cv.tag, "::" + t.Member
	case coverMethod:
		return cv.tag, `\` + t.Class + "::" + t.Member
	}
	return cv.tag, `\` + t.Class
}

// reconcile resolves the annotation forms that depend on context before
// diffing. Coverage attributes are only allowed on classes: a class takes
// the attributes its members' tags call for, and a member drops its tags
// once the class carries them.
func (cv *coverage) reconcile(ctx *Context, h *Handler, in Input, diff DiffFunc) []op.Op {
	if ctx.Decl.Kind.IsClassLike() {
		return cv.reconcileClass(ctx, h, in, diff)
	}
	return cv.reconcileMember(ctx, h, in)
}

// resolution holds the tags of one doc comment with their context
// dependent forms resolved.
type resolution struct {
	defaults   []Parsed
	resolved   []Parsed
	bare       map[*doccomment.Tag]bool
	unresolved bool
	// attributes lose the trait entry of a target listed as both
	attributes []Parsed
}

// resolve maps "::name" onto the default class and a bare class name onto
// the class or trait form. inherited is the default class declared by the
// enclosing class; ambiguous is set when it declares several.
func (cv *coverage) resolve(ctx *Context, annotations, attributes []Parsed, inherited string, ambiguous bool) resolution {
	r := resolution{bare: map[*doccomment.Tag]bool{}, attributes: attributes}
	var rest []Parsed
	for _, p := range annotations {
		switch p.Payload.(coverTarget).Kind {
		case coverDefault:
			r.defaults = append(r.defaults, p)
		case coverMember:
			r.bare[p.Tag] = true
			rest = append(rest, p)
		default:
			rest = append(rest, p)
		}
	}
	defaultClass := inherited
	switch {
	case len(r.defaults) == 1:
		defaultClass, ambiguous = r.defaults[0].Payload.(coverTarget).Class, false
	case len(r.defaults) > 1:
		defaultClass, ambiguous = "", true
	}
	for _, p := range rest {
		t := p.Payload.(coverTarget)
		switch t.Kind {
		case coverMember:
			switch {
			case defaultClass != "":
				t = coverTarget{Kind: coverMethod, Class: defaultClass, Member: t.Member}
			case ambiguous:
				r.unresolved = true
				continue
			default:
				t = coverTarget{Kind: coverFunction, Member: t.Member}
			}
		case coverType:
			t, r.attributes = cv.classOrTrait(ctx, t, r.attributes)
		}
		p.Entry = cv.entry(t)
		r.resolved = append(r.resolved, p)
	}
	return r
}

func (cv *coverage) reportDefaults(ctx *Context, r resolution, used bool) {
	if len(r.defaults) > 1 && (len(r.bare) > 0 || used) {
		ctx.Report(diag.SevError, diag.AnnMultipleDefaultTarget, r.defaults[1].Tag.Span,
			"Only one {{annotation}} annotation is allowed per doc comment",
			map[string]string{"annotation": cv.defaultTag})
	}
}

func (cv *coverage) reconcileClass(ctx *Context, h *Handler, in Input, diff DiffFunc) []op.Op {
	r := cv.resolve(ctx, in.Annotations, in.Attributes, "", false)
	membersUseDefault := cv.hasBare(ctx.MemberTags)
	cv.reportDefaults(ctx, r, membersUseDefault)

	var inherited string
	if len(r.defaults) == 1 {
		inherited = r.defaults[0].Payload.(coverTarget).Class
	}
	members := cv.memberAnnotations(ctx, h, r.attributes, inherited, len(r.defaults) > 1)

	input := Input{Attributes: r.attributes, Annotations: r.resolved}
	if ctx.Retain {
		input.Annotations = append(slices.Clone(r.resolved), members...)
	}
	ops := diff(ctx, h, input)
	if !ctx.Retain {
		ops = append(ops, cv.hoist(ctx, h, input, members)...)
	}
	if ctx.Retain || len(r.defaults) == 0 || r.unresolved || membersUseDefault {
		return ops
	}
	// The default class tag goes with the first converted "::name" tag;
	// with none it is reported on its own.
	var owner *op.Message
	for _, o := range ops {
		if rm, ok := o.(*op.RemoveAnnotation); ok && r.bare[rm.Target] {
			owner = rm.Msg
			break
		}
	}
	return append(ops, cv.dropDefaults(r.defaults, owner)...)
}

// memberAnnotations resolves the tags of every member doc comment. Their
// diagnostics are raised when the member itself is reconciled.
func (cv *coverage) memberAnnotations(ctx *Context, h *Handler, attributes []Parsed, inherited string, ambiguous bool) []Parsed {
	quiet := ctx.quiet()
	tags := ctx.MemberTags
	var out []Parsed
	for start := 0; start < len(tags); {
		end := start + 1
		for end < len(tags) && tags[end].Block.Opener == tags[start].Block.Opener {
			end++
		}
		in := h.Collect(quiet, nil, tags[start:end])
		out = append(out, cv.resolve(quiet, in.Annotations, attributes, inherited, ambiguous).resolved...)
		start = end
	}
	return out
}

// hoist adds a class attribute for every member tag whose target the class
// does not cover yet. The member tags stay until the attribute exists.
func (cv *coverage) hoist(ctx *Context, h *Handler, class Input, members []Parsed) []op.Op {
	seen := map[Key]bool{}
	for _, p := range class.Attributes {
		seen[p.Key] = true
	}
	for _, p := range class.Annotations {
		seen[p.Key] = true
	}
	var ops []op.Op
	for _, p := range members {
		if seen[p.Key] {
			continue
		}
		seen[p.Key] = true
		m := Deprecated(ctx, h, p)
		name, params := h.FormatAttribute(ctx, p.Entry)
		ops = append(ops, m, &op.AddAttribute{Msg: m, Name: name, Params: params})
	}
	return ops
}

func (cv *coverage) reconcileMember(ctx *Context, h *Handler, in Input) []op.Op {
	for _, p := range in.Attributes {
		ctx.Report(diag.SevWarning, diag.AnnUnsupported, p.Attr.Span,
			"Attribute {{attribute}} is only allowed on the test class",
			map[string]string{"attribute": p.Attr.Name})
	}
	quiet := ctx.quiet()
	classAttrs := h.Collect(quiet, ctx.ClassAttributes, nil).Attributes
	inherited, ambiguous := cv.inheritedDefault(quiet, h)
	r := cv.resolve(quiet, in.Annotations, classAttrs, inherited, ambiguous)
	cv.reportDefaults(ctx, r, false)
	if ctx.Retain {
		return nil
	}

	onClass := map[Key]bool{}
	for _, p := range r.attributes {
		onClass[p.Key] = true
	}
	var (
		ops     []op.Op
		owner   *op.Message
		removed = map[*doccomment.Tag]bool{}
	)
	for _, p := range r.resolved {
		if !onClass[p.Key] {
			continue
		}
		m := Redundant(ctx, h, p)
		ops = append(ops, m, &op.RemoveAnnotation{Msg: m, Target: p.Tag})
		removed[p.Tag] = true
		if owner == nil && r.bare[p.Tag] {
			owner = m
		}
	}
	if len(r.defaults) == 0 || r.unresolved {
		return ops
	}
	for t := range r.bare {
		if !removed[t] {
			return ops
		}
	}
	return append(ops, cv.dropDefaults(r.defaults, owner)...)
}

// inheritedDefault returns the default class declared by the enclosing
// class, and whether it declares more than one.
func (cv *coverage) inheritedDefault(ctx *Context, h *Handler) (string, bool) {
	var found []string
	for _, p := range h.Collect(ctx, nil, ctx.ClassTags).Annotations {
		if t := p.Payload.(coverTarget); t.Kind == coverDefault {
			found = append(found, t.Class)
		}
	}
	if len(found) == 1 {
		return found[0], false
	}
	return "", len(found) > 1
}

func (cv *coverage) dropDefaults(defaults []Parsed, owner *op.Message) []op.Op {
	var ops []op.Op
	for _, d := range defaults {
		m := owner
		if m == nil {
			m = &op.Message{
				Severity: diag.SevWarning,
				Code:     diag.AnnRedundant,
				Span:     d.Tag.Span,
				Fixable:  true,
				Template: "Annotation {{annotation}} is not used by any {{tag}} annotation",
				Data:     map[string]string{"annotation": tagText(d.Tag), "tag": cv.tag},
			}
			ops = append(ops, m)
		}
		ops = append(ops, &op.RemoveAnnotation{Msg: m, Target: d.Tag})
	}
	return ops
}

// classOrTrait decides what "@covers \Foo" means. An existing attribute
// wins, otherwise a "Trait" suffix selects the trait form. When both
// attributes exist the annotation matches the class one and the trait
// attribute is reported and left out of the diff.
func (cv *coverage) classOrTrait(ctx *Context, t coverTarget, attributes []Parsed) (coverTarget, []Parsed) {
	asClass := coverTarget{Kind: coverClass, Class: t.Class}
	asTrait := coverTarget{Kind: coverTrait, Class: t.Class}
	ci := indexKey(attributes, cv.entry(asClass).Key)
	ti := indexKey(attributes, cv.entry(asTrait).Key)
	switch {
	case ci >= 0 && ti >= 0:
		ctx.Report(diag.SevWarning, diag.AnnDuplicateTarget, attributes[ti].Attr.Span,
			"{{name}} is listed both as a class and as a trait",
			map[string]string{"name": `\` + t.Class})
		return asClass, slices.Delete(slices.Clone(attributes), ti, ti+1)
	case ti >= 0:
		return asTrait, attributes
	case ci >= 0:
		return asClass, attributes
	case strings.HasSuffix(t.Class, "Trait"):
		return asTrait, attributes
	}
	return asClass, attributes
}

func (cv *coverage) hasBare(tags []doccomment.Tag) bool {
	for _, t := range tags {
		line, _, _ := strings.Cut(t.Content, "\n")
		if t.Name == cv.tag && strings.HasPrefix(strings.TrimSpace(line), "::") {
			return true
		}
	}
	return false
}

func indexKey(ps []Parsed, k Key) int {
	for i, p := range ps {
		if p.Key == k {
			return i
		}
	}
	return -1
}
