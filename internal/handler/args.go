package handler

import (
	"strings"

	"attrsync/internal/attrs"
	"attrsync/internal/diag"
	"attrsync/internal/doccomment"
	"attrsync/internal/phplit"
)

// arg finds the argument at position pos or named name.
func arg(a *attrs.Attribute, pos int, name string) (attrs.Param, bool) {
	for _, p := range a.Params {
		if p.Name != "" && strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	if pos < len(a.Params) && a.Params[pos].Name == "" {
		return a.Params[pos], true
	}
	return attrs.Param{}, false
}

func (c *Context) missingArg(a *attrs.Attribute, name string) {
	c.Report(diag.SevWarning, diag.AnnMissingParameter, a.Span,
		"Attribute {{attribute}} is missing its {{parameter}} argument",
		map[string]string{"attribute": a.Name, "parameter": name})
}

func (c *Context) invalidArg(a *attrs.Attribute, name, why string) {
	c.Report(diag.SevWarning, diag.AnnInvalidValue, a.Span,
		"Argument {{parameter}} of {{attribute}} {{reason}}",
		map[string]string{"attribute": a.Name, "parameter": name, "reason": why})
}

// literalArg evaluates a constant argument.
func (c *Context) literalArg(a *attrs.Attribute, pos int, name string) (phplit.Value, bool) {
	p, ok := arg(a, pos, name)
	if !ok {
		c.missingArg(a, name)
		return phplit.Value{}, false
	}
	from, to := p.Value(c.Snap.Tokens)
	v, err := phplit.Eval(c.Snap.Tokens, from, to)
	if err != nil {
		c.invalidArg(a, name, "is not a constant literal")
		return phplit.Value{}, false
	}
	return v, true
}

// optionalString returns a string argument, "" when it is absent.
func (c *Context) optionalString(a *attrs.Attribute, pos int, name string) (string, bool) {
	if _, ok := arg(a, pos, name); !ok {
		return "", true
	}
	return c.stringArg(a, pos, name)
}

func (c *Context) stringArg(a *attrs.Attribute, pos int, name string) (string, bool) {
	v, ok := c.literalArg(a, pos, name)
	if !ok {
		return "", false
	}
	if v.Kind != phplit.String {
		c.invalidArg(a, name, "must be a string")
		return "", false
	}
	return v.Str, true
}

func (c *Context) boolArg(a *attrs.Attribute, pos int, name string) (bool, bool) {
	v, ok := c.literalArg(a, pos, name)
	if !ok {
		return false, false
	}
	if v.Kind != phplit.Bool {
		c.invalidArg(a, name, "must be true or false")
		return false, false
	}
	return v.Bool, true
}

// classArg reads a "Foo::class" argument and returns the resolved name.
func (c *Context) classArg(a *attrs.Attribute, pos int, name string) (string, bool) {
	p, ok := arg(a, pos, name)
	if !ok {
		c.missingArg(a, name)
		return "", false
	}
	from, to := p.Value(c.Snap.Tokens)
	idx, ok := phplit.ClassRef(c.Snap.Tokens, from, to)
	if !ok {
		c.Report(diag.SevWarning, diag.AnnNonStaticClass, p.Span,
			"Argument {{parameter}} of {{attribute}} must be a static class reference (Foo::class)",
			map[string]string{"attribute": a.Name, "parameter": name})
		return "", false
	}
	fq := c.ResolveClass(c.Snap.Tokens[idx].Text, idx)
	switch fold(fq) {
	case "self", "static", "parent":
		c.Report(diag.SevWarning, diag.AnnNonStaticClass, p.Span,
			"Argument {{parameter}} of {{attribute}} must name a class, not {{name}}",
			map[string]string{"attribute": a.Name, "parameter": name, "name": fq})
		return "", false
	}
	return fq, true
}

// classLiteral formats a class reference argument.
func (c *Context) classLiteral(fq string) string {
	return c.SpellClass(fq) + "::class"
}

// annotationText returns the trimmed text of the tag line; an empty tag is
// reported. A value continued on the following lines is reported as
// unsupported, since converting the tag would drop those lines.
func (c *Context) annotationText(t *doccomment.Tag) (string, bool) {
	line, rest, _ := strings.Cut(t.Content, "\n")
	if strings.TrimSpace(rest) != "" {
		c.Report(diag.SevWarning, diag.AnnUnsupported, t.Span,
			"Annotation {{annotation}} continues on the following lines and cannot be converted",
			map[string]string{"annotation": t.Name})
		return "", false
	}
	s := strings.TrimSpace(line)
	if s == "" {
		c.missingValue(t)
		return "", false
	}
	return s, true
}

// annotationProse returns the tag text with its lines joined by single
// spaces, for tags holding free text.
func (c *Context) annotationProse(t *doccomment.Tag) (string, bool) {
	var parts []string
	for _, l := range strings.Split(t.Content, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			parts = append(parts, l)
		}
	}
	if len(parts) == 0 {
		c.missingValue(t)
		return "", false
	}
	return strings.Join(parts, " "), true
}

// annotationWord returns the single word of a tag naming one target. Text
// after the word is reported, since converting the tag would drop it.
func (c *Context) annotationWord(t *doccomment.Tag) (string, bool) {
	s, ok := c.annotationText(t)
	if !ok {
		return "", false
	}
	fields := strings.Fields(s)
	if len(fields) > 1 {
		c.trailingText(t)
		return "", false
	}
	return fields[0], true
}

func (c *Context) trailingText(t *doccomment.Tag) {
	c.Report(diag.SevWarning, diag.AnnUnsupported, t.Span,
		"Annotation {{annotation}} carries text after its value that would be lost",
		map[string]string{"annotation": t.Name})
}

func (c *Context) missingValue(t *doccomment.Tag) {
	c.Report(diag.SevWarning, diag.AnnMissingParameter, t.Span,
		"Annotation {{annotation}} requires a value",
		map[string]string{"annotation": t.Name})
}

func (c *Context) invalidAnnotation(t *doccomment.Tag, why string) {
	c.Report(diag.SevWarning, diag.AnnInvalidValue, t.Span,
		"Annotation {{annotation}} {{reason}}",
		map[string]string{"annotation": t.Name + " " + strings.TrimSpace(t.Content), "reason": why})
}
