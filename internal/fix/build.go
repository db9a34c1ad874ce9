package fix

import (
	"fmt"
	"sort"
	"strings"

	"attrsync/internal/attrs"
	"attrsync/internal/decl"
	"attrsync/internal/doccomment"
	"attrsync/internal/names"
	"attrsync/internal/op"
	"attrsync/internal/source"
	"attrsync/internal/token"
)

type Options struct {
	// Resolver spells attribute names; one is built from the snapshot when
	// nil.
	Resolver *names.Resolver
}

// blockEdits collects the changes to one doc comment.
type blockEdits struct {
	block    *doccomment.Block
	removed  map[int]bool
	replaced map[int]*op.ReplaceAnnotation
	added    []*op.AddAnnotation
}

// Build turns the ops of one declaration into a changeset. Edits whose
// message is not fixable are dropped. Attributes are inserted as new groups
// before the existing ones; annotations are added before the doc comment
// closer, or in a new doc comment when there is none.
func Build(snap *token.Snapshot, d decl.Decl, ops []op.Op, opts Options) (*Changeset, error) {
	r := opts.Resolver
	if r == nil {
		r = names.NewResolver(snap.Tokens)
	}
	cs := &Changeset{File: snap.File.ID}

	var (
		attributes []*op.AddAttribute
		additions  []*op.AddAnnotation
		blocks     []*blockEdits
	)
	fixed := map[*op.Message]bool{}
	blockFor := func(b *doccomment.Block) *blockEdits {
		for _, be := range blocks {
			if be.block.Opener == b.Opener {
				return be
			}
		}
		be := &blockEdits{block: b, removed: map[int]bool{}, replaced: map[int]*op.ReplaceAnnotation{}}
		blocks = append(blocks, be)
		return be
	}
	for _, o := range ops {
		if m, ok := o.(*op.Message); ok {
			cs.Messages = append(cs.Messages, m)
			continue
		}
		m := op.Owner(o)
		if m == nil || !m.Fixable {
			continue
		}
		fixed[m] = true
		switch o := o.(type) {
		case *op.AddAttribute:
			attributes = append(attributes, o)
		case *op.AddAnnotation:
			additions = append(additions, o)
		case *op.ReplaceAnnotation:
			blockFor(o.Target.Block).replaced[o.Target.TagIndex] = o
		case *op.RemoveAnnotation:
			blockFor(o.Target.Block).removed[o.Target.TagIndex] = true
		}
	}
	for _, m := range cs.Messages {
		if fixed[m] {
			cs.Fixed = append(cs.Fixed, m)
		}
	}

	// new attributes follow the order of the tags they replace
	sort.SliceStable(attributes, func(i, j int) bool {
		return attributes[i].Msg.Span.Start < attributes[j].Msg.Span.Start
	})

	var newBlock []*op.AddAnnotation
	if len(additions) > 0 {
		if b, ok := doccomment.FindBlock(snap, d.Anchor); ok {
			blockFor(b).added = additions
		} else {
			newBlock = additions
		}
	}

	for _, be := range blocks {
		edits, err := be.edits(snap)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", d.Kind, d.Name, err)
		}
		cs.Edits = append(cs.Edits, edits...)
	}

	if len(attributes) > 0 || len(newBlock) > 0 {
		ins, err := attrs.InsertionPoint(snap, d.Anchor)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", d.Kind, d.Name, err)
		}
		var sb strings.Builder
		if len(newBlock) > 0 {
			sb.WriteString(renderNewBlock(ins, newBlock))
		}
		for _, a := range attributes {
			sb.WriteString("#[" + r.Spell(a.Name, d.Anchor))
			if len(a.Params) > 0 {
				sb.WriteString("(" + strings.Join(a.Params, ", ") + ")")
			}
			sb.WriteString("]")
			sb.WriteString(separator(ins))
		}
		cs.Edits = append(cs.Edits, InsertText(snap.File.ID, ins.Offset, sb.String()))
	}

	sort.SliceStable(cs.Edits, func(i, j int) bool {
		return cs.Edits[i].Span.Start < cs.Edits[j].Span.Start
	})
	return cs, nil
}

// separator follows inserted text so the declaration keeps its place.
func separator(ins attrs.Insertion) string {
	if ins.LineStart {
		return "\n" + ins.Indent
	}
	return " "
}

func renderNewBlock(ins attrs.Insertion, adds []*op.AddAnnotation) string {
	if !ins.LineStart && len(adds) == 1 && !strings.Contains(adds[0].Content, "\n") {
		return "/** " + tagLine(adds[0].Tag, adds[0].Content) + " */ "
	}
	var sb strings.Builder
	sb.WriteString("/**\n")
	for _, a := range adds {
		sb.WriteString(renderTag(ins.Indent+" ", a.Tag, a.Content))
	}
	sb.WriteString(ins.Indent + " */")
	sb.WriteString("\n" + ins.Indent)
	return sb.String()
}

func tagLine(tag, content string) string {
	if content == "" {
		return tag
	}
	return tag + " " + content
}

// renderTag writes a tag as doc comment lines, indent being the text
// before each '*'.
func renderTag(indent, tag, content string) string {
	lines := strings.Split(content, "\n")
	var sb strings.Builder
	sb.WriteString(indent + "* " + tagLine(tag, lines[0]) + "\n")
	for _, l := range lines[1:] {
		sb.WriteString(starLine(indent, l))
	}
	return sb.String()
}

func starLine(indent, text string) string {
	if text == "" {
		return indent + "*\n"
	}
	return indent + "* " + text + "\n"
}

func (be *blockEdits) edits(snap *token.Snapshot) ([]Edit, error) {
	b := be.block
	tags, err := doccomment.Tags(snap, b.Opener)
	if err != nil {
		return nil, err
	}
	toks := snap.Tokens
	content := snap.Content()
	open := int(toks[b.Opener].Span.Start)
	closeStart := int(toks[b.Closer].Span.Start)
	closeEnd := int(toks[b.Closer].Span.End)

	remaining := 0
	for _, t := range tags {
		if !be.removed[t.TagIndex] {
			remaining++
		}
	}
	if remaining == 0 && len(be.added) == 0 && !b.HasDescription {
		start, end := open, closeEnd
		lineEnd := source.LineEnd(content, end)
		if blank(content[source.LineStart(content, start):start]) && blank(content[end:lineEnd]) {
			start, end = source.LineStart(content, start), lineEnd
		} else if end < len(content) && content[end] == ' ' {
			end++
		}
		return []Edit{DeleteSpan(snap, start, end)}, nil
	}

	if b.SingleLine || !be.lineEditable(content, tags, closeStart) {
		return []Edit{ReplaceSpan(snap, open, closeEnd, be.render(snap, tags))}, nil
	}

	var out []Edit
	for _, t := range tags {
		start, end := tagLines(content, t, toks)
		switch {
		case be.removed[t.TagIndex]:
			out = append(out, DeleteSpan(snap, start, end))
		case be.replaced[t.TagIndex] != nil:
			rep := be.replaced[t.TagIndex]
			out = append(out, ReplaceSpan(snap, start, end, renderTag(b.Indent, rep.Tag, rep.Content)))
		}
	}
	if len(be.added) > 0 {
		var sb strings.Builder
		for _, a := range be.added {
			sb.WriteString(renderTag(b.Indent, a.Tag, a.Content))
		}
		out = append(out, InsertText(snap.File.ID, source.LineStart(content, closeStart), sb.String()))
	} else {
		out = append(out, be.trailingBlanks(snap, tags, closeStart)...)
	}
	return out, nil
}

// trailingBlanks deletes the empty "*" lines that removing the last tags
// would leave right before the closer.
func (be *blockEdits) trailingBlanks(snap *token.Snapshot, tags []doccomment.Tag, closeStart int) []Edit {
	content := snap.Content()
	pos := source.LineStart(content, closeStart)
	if !blank(content[pos:closeStart]) {
		return nil
	}
	removedTo := map[int]int{}
	for _, t := range tags {
		if be.removed[t.TagIndex] {
			start, end := tagLines(content, t, snap.Tokens)
			removedTo[end] = start
		}
	}
	var (
		out     []Edit
		removed bool
	)
	for pos > 0 {
		if start, ok := removedTo[pos]; ok {
			pos, removed = start, true
			continue
		}
		start := source.LineStart(content, pos-1)
		if strings.TrimSpace(string(content[start:pos])) != "*" {
			break
		}
		out = append(out, DeleteSpan(snap, start, pos))
		pos = start
	}
	if !removed {
		return nil
	}
	return out
}

// tagLines returns the whole lines holding t, newline included.
func tagLines(content []byte, t doccomment.Tag, toks []token.Token) (int, int) {
	start := source.LineStart(content, int(toks[t.TagIndex].Span.Start))
	end := source.LineEnd(content, int(toks[t.LastIndex].Span.End))
	return start, end
}

// lineEditable reports whether every touched tag owns its lines, and the
// closer sits on a line of its own when tags are added.
func (be *blockEdits) lineEditable(content []byte, tags []doccomment.Tag, closeStart int) bool {
	closeLine := source.LineStart(content, closeStart)
	for _, t := range tags {
		if !be.removed[t.TagIndex] && be.replaced[t.TagIndex] == nil {
			continue
		}
		tagStart := int(t.Span.Start)
		prefix := strings.TrimSpace(string(content[source.LineStart(content, tagStart):tagStart]))
		if prefix != "*" || source.LineEnd(content, int(t.Span.End)) > closeLine {
			return false
		}
	}
	return len(be.added) == 0 || blank(content[closeLine:closeStart])
}

// render rewrites the whole block: description first, then the tags in
// order with removals and replacements applied, then the additions.
func (be *blockEdits) render(snap *token.Snapshot, tags []doccomment.Tag) string {
	type item struct{ tag, content string }
	var items []item
	for _, t := range tags {
		switch {
		case be.removed[t.TagIndex]:
		case be.replaced[t.TagIndex] != nil:
			rep := be.replaced[t.TagIndex]
			items = append(items, item{rep.Tag, rep.Content})
		default:
			items = append(items, item{t.Name, t.Content})
		}
	}
	for _, a := range be.added {
		items = append(items, item{a.Tag, a.Content})
	}
	desc := description(snap, be.block)

	b := be.block
	if b.SingleLine && len(desc) == 0 && len(items) == 1 && !strings.Contains(items[0].content, "\n") {
		return "/** " + tagLine(items[0].tag, items[0].content) + " */"
	}
	if b.SingleLine && len(items) == 0 && len(desc) == 1 {
		return "/** " + desc[0] + " */"
	}
	var sb strings.Builder
	sb.WriteString("/**\n")
	for _, l := range desc {
		sb.WriteString(starLine(b.Indent, l))
	}
	for _, it := range items {
		sb.WriteString(renderTag(b.Indent, it.tag, it.content))
	}
	sb.WriteString(b.Indent + "*/")
	return sb.String()
}

// description returns the text lines preceding the first tag.
func description(snap *token.Snapshot, b *doccomment.Block) []string {
	toks := snap.Tokens
	var (
		lines []string
		cur   string
	)
	for i := b.Opener + 1; i < b.Closer && toks[i].Kind != token.DocTag; i++ {
		tok := toks[i]
		switch {
		case tok.Kind == token.DocString:
			cur += tok.Text
		case tok.Kind == token.DocWhitespace && tok.Text == "\n":
			lines = append(lines, cur)
			cur = ""
		case tok.Kind == token.DocWhitespace && cur != "":
			cur += tok.Text
		}
	}
	lines = append(lines, cur)
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func blank(b []byte) bool {
	return strings.TrimSpace(string(b)) == ""
}
