// Package op defines the operations a reconciliation produces for one
// declaration: diagnostics and the edits that resolve them.
package op

import (
	"fmt"
	"strings"

	"attrsync/internal/diag"
	"attrsync/internal/doccomment"
	"attrsync/internal/source"
)

// Op is one of *Message, *AddAnnotation, *ReplaceAnnotation,
// *RemoveAnnotation or *AddAttribute.
type Op interface {
	isOp()
}

// Message is a diagnostic. Edits pointing at it through their Msg field
// are applied only when Fixable is set.
type Message struct {
	Severity diag.Severity
	Code     diag.Code
	Span     source.Span
	Fixable  bool
	// Template uses {{name}} placeholders filled from Data.
	Template string
	Data     map[string]string
}

// Text returns the template with placeholders substituted.
func (m *Message) Text() string {
	if len(m.Data) == 0 {
		return m.Template
	}
	pairs := make([]string, 0, 2*len(m.Data))
	for k, v := range m.Data {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(m.Template)
}

// Diagnostic converts the message for a diag.Reporter.
func (m *Message) Diagnostic() diag.Diagnostic {
	d := diag.New(m.Severity, m.Code, m.Span, m.Text())
	d.Fixable = m.Fixable
	return d
}

// AddAnnotation appends a tag to the declaration's doc comment, creating
// the comment when there is none.
type AddAnnotation struct {
	Msg     *Message
	Tag     string
	Content string
}

// ReplaceAnnotation rewrites Target in place.
type ReplaceAnnotation struct {
	Msg     *Message
	Target  *doccomment.Tag
	Tag     string
	Content string
}

// RemoveAnnotation deletes Target together with its continuation lines.
type RemoveAnnotation struct {
	Msg    *Message
	Target *doccomment.Tag
}

// AddAttribute inserts a new attribute group before the declaration.
type AddAttribute struct {
	Msg *Message
	// Name is fully qualified, without a leading backslash.
	Name   string
	Params []string
}

func (*Message) isOp()           {}
func (*AddAnnotation) isOp()     {}
func (*ReplaceAnnotation) isOp() {}
func (*RemoveAnnotation) isOp()  {}
func (*AddAttribute) isOp()      {}

// Owner returns the message an edit belongs to, or nil for messages.
func Owner(o Op) *Message {
	switch o := o.(type) {
	case *AddAnnotation:
		return o.Msg
	case *ReplaceAnnotation:
		return o.Msg
	case *RemoveAnnotation:
		return o.Msg
	case *AddAttribute:
		return o.Msg
	}
	return nil
}

// Describe renders an op for debugging and test failure output.
func Describe(o Op) string {
	switch o := o.(type) {
	case *Message:
		return fmt.Sprintf("Message(%s, fixable=%t)", o.Code.Slug(), o.Fixable)
	case *AddAnnotation:
		return fmt.Sprintf("AddAnnotation(%s %q)", o.Tag, o.Content)
	case *ReplaceAnnotation:
		return fmt.Sprintf("ReplaceAnnotation(%s -> %s %q)", o.Target.Name, o.Tag, o.Content)
	case *RemoveAnnotation:
		return fmt.Sprintf("RemoveAnnotation(%s %q)", o.Target.Name, o.Target.Content)
	case *AddAttribute:
		return fmt.Sprintf("AddAttribute(%s(%s))", o.Name, strings.Join(o.Params, ", "))
	}
	return fmt.Sprintf("%T", o)
}

// Messages returns the messages of ops in order.
func Messages(ops []Op) []*Message {
	var out []*Message
	for _, o := range ops {
		if m, ok := o.(*Message); ok {
			out = append(out, m)
		}
	}
	return out
}
