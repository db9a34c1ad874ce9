package handler

import (
	"strings"

	"attrsync/internal/attrs"
	"attrsync/internal/doccomment"
	"attrsync/internal/phplit"
)

// methodRef points at a method. An empty Class means the declaring class.
type methodRef struct {
	Class  string
	Method string
}

func (m methodRef) key() string {
	return fold(m.Class) + "::" + fold(m.Method)
}

// annotation renders the reference the way a doc comment spells it.
func (m methodRef) annotation() string {
	if m.Class == "" {
		return m.Method
	}
	return `\` + m.Class + "::" + m.Method
}

// parseMethodRef reads "method", "method()" or "Class::method" from a doc
// comment. self and static refer to the declaring class.
func (c *Context) parseMethodRef(t *doccomment.Tag, s string) (methodRef, bool) {
	var ref methodRef
	if i := strings.Index(s, "::"); i >= 0 {
		ref.Class = c.AnnotationClass(s[:i])
		s = s[i+2:]
		switch fold(ref.Class) {
		case "self", "static":
			ref.Class = ""
		case "", "parent":
			c.invalidAnnotation(t, "must reference a class by name")
			return methodRef{}, false
		}
	}
	ref.Method = strings.TrimSuffix(strings.TrimSpace(s), "()")
	if !validMethodName(ref.Method) {
		c.invalidAnnotation(t, "must reference a method")
		return methodRef{}, false
	}
	return ref, true
}

func validMethodName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b == '_', b >= 0x80, b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z':
		case b >= '0' && b <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func firstField(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}

// dataProvider maps @dataProvider to DataProvider or DataProviderExternal.
func dataProvider() *Handler {
	const (
		local    = AttributeNamespace + "DataProvider"
		external = AttributeNamespace + "DataProviderExternal"
		tag      = "@dataProvider"
	)
	entry := func(ref methodRef) Entry {
		return Entry{Key: Key("dataprovider:" + ref.key()), Payload: ref}
	}
	return &Handler{
		Name:            "dataprovider",
		Family:          "dataprovider",
		Scope:           ScopeMember,
		AttributeNames:  []string{local, external},
		AnnotationNames: []string{tag},
		ParseAttribute: func(ctx *Context, a *attrs.Attribute) (Entry, bool) {
			var ref methodRef
			pos := 0
			if equalFold(a.FQName, external) {
				cls, ok := ctx.classArg(a, 0, "className")
				if !ok {
					return Entry{}, false
				}
				ref.Class = cls
				pos = 1
			}
			m, ok := ctx.stringArg(a, pos, "methodName")
			if !ok {
				return Entry{}, false
			}
			ref.Method = m
			return entry(ref), true
		},
		ParseAnnotation: func(ctx *Context, t *doccomment.Tag) (Entry, bool) {
			s, ok := ctx.annotationWord(t)
			if !ok {
				return Entry{}, false
			}
			ref, ok := ctx.parseMethodRef(t, s)
			if !ok {
				return Entry{}, false
			}
			return entry(ref), true
		},
		FormatAttribute: func(ctx *Context, e Entry) (string, []string) {
			ref := e.Payload.(methodRef)
			if ref.Class == "" {
				return local, []string{phplit.Quote(ref.Method)}
			}
			return external, []string{ctx.classLiteral(ref.Class), phplit.Quote(ref.Method)}
		},
		FormatAnnotation: func(_ *Context, e Entry) (string, string) {
			return tag, e.Payload.(methodRef).annotation()
		},
	}
}

// cloneMode is how a dependency's result is passed on.
type cloneMode string

const (
	cloneNone    cloneMode = ""
	cloneDeep    cloneMode = "deep"
	cloneShallow cloneMode = "shallow"
)

// dependency is the target of a @depends tag. OnClass depends on every
// test of Class.
type dependency struct {
	methodRef
	OnClass bool
	Clone   cloneMode
}

func (d dependency) key() string {
	if d.OnClass {
		return string(d.Clone) + ":" + fold(d.Class) + "::class"
	}
	return string(d.Clone) + ":" + d.methodRef.key()
}

type dependsVariant struct {
	attr     string
	clone    cloneMode
	external bool
	onClass  bool
}

var dependsVariants = []dependsVariant{
	{"Depends", cloneNone, false, false},
	{"DependsUsingDeepClone", cloneDeep, false, false},
	{"DependsUsingShallowClone", cloneShallow, false, false},
	{"DependsExternal", cloneNone, true, false},
	{"DependsExternalUsingDeepClone", cloneDeep, true, false},
	{"DependsExternalUsingShallowClone", cloneShallow, true, false},
	{"DependsOnClass", cloneNone, false, true},
	{"DependsOnClassUsingDeepClone", cloneDeep, false, true},
	{"DependsOnClassUsingShallowClone", cloneShallow, false, true},
}

// depends maps @depends to the nine Depends* attributes.
func depends() *Handler {
	const tag = "@depends"
	names := make([]string, len(dependsVariants))
	for i, v := range dependsVariants {
		names[i] = AttributeNamespace + v.attr
	}
	entry := func(d dependency) Entry {
		return Entry{Key: Key("depends:" + d.key()), Payload: d}
	}
	return &Handler{
		Name:            "depends",
		Family:          "depends",
		Scope:           ScopeMember,
		AttributeNames:  names,
		AnnotationNames: []string{tag},
		ParseAttribute: func(ctx *Context, a *attrs.Attribute) (Entry, bool) {
			var v dependsVariant
			for i, n := range names {
				if equalFold(n, a.FQName) {
					v = dependsVariants[i]
				}
			}
			d := dependency{Clone: v.clone, OnClass: v.onClass}
			pos := 0
			if v.external || v.onClass {
				cls, ok := ctx.classArg(a, 0, "className")
				if !ok {
					return Entry{}, false
				}
				d.Class = cls
				pos = 1
			}
			if !v.onClass {
				m, ok := ctx.stringArg(a, pos, "methodName")
				if !ok {
					return Entry{}, false
				}
				d.Method = m
			}
			return entry(d), true
		},
		ParseAnnotation: func(ctx *Context, t *doccomment.Tag) (Entry, bool) {
			s, ok := ctx.annotationText(t)
			if !ok {
				return Entry{}, false
			}
			fields := strings.Fields(s)
			var d dependency
			switch fields[0] {
			case "clone":
				d.Clone = cloneDeep
				fields = fields[1:]
			case "shallowClone":
				d.Clone = cloneShallow
				fields = fields[1:]
			case "!clone", "!shallowClone":
				fields = fields[1:]
			}
			if len(fields) == 0 {
				ctx.invalidAnnotation(t, "must name a dependency")
				return Entry{}, false
			}
			if len(fields) > 1 {
				ctx.trailingText(t)
				return Entry{}, false
			}
			target := fields[0]
			if cls, ok := strings.CutSuffix(target, "::class"); ok {
				d.Class = ctx.AnnotationClass(cls)
				if d.Class == "" {
					ctx.invalidAnnotation(t, "must reference a class by name")
					return Entry{}, false
				}
				d.OnClass = true
				return entry(d), true
			}
			ref, ok := ctx.parseMethodRef(t, target)
			if !ok {
				return Entry{}, false
			}
			d.methodRef = ref
			return entry(d), true
		},
		FormatAttribute: func(ctx *Context, e Entry) (string, []string) {
			d := e.Payload.(dependency)
			for _, v := range dependsVariants {
				if v.clone != d.Clone || v.onClass != d.OnClass || v.external != (d.Class != "" && !d.OnClass) {
					continue
				}
				name := AttributeNamespace + v.attr
				switch {
				case v.onClass:
					return name, []string{ctx.classLiteral(d.Class)}
				case v.external:
					return name, []string{ctx.classLiteral(d.Class), phplit.Quote(d.Method)}
				}
				return name, []string{phplit.Quote(d.Method)}
			}
			return AttributeNamespace + "Depends", []string{phplit.Quote(d.Method)}
		},
		FormatAnnotation: func(_ *Context, e Entry) (string, string) {
			d := e.Payload.(dependency)
			prefix := ""
			switch d.Clone {
			case cloneDeep:
				prefix = "clone "
			case cloneShallow:
				prefix = "shallowClone "
			}
			if d.OnClass {
				return tag, prefix + `\` + d.Class + "::class"
			}
			return tag, prefix + d.annotation()
		},
	}
}
