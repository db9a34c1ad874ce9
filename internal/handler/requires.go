package handler

import (
	"regexp"
	"strings"

	"attrsync/internal/attrs"
	"attrsync/internal/diag"
	"attrsync/internal/doccomment"
	"attrsync/internal/phplit"
)

type requirement struct {
	// Kind is the lower-case @requires keyword, or "method".
	Kind string
	Args []string
}

func (r requirement) key() Key {
	args := make([]string, len(r.Args))
	for i, a := range r.Args {
		switch r.Kind {
		case "extension", "function", "method":
			args[i] = fold(a)
		default:
			args[i] = a
		}
	}
	return Key("requires:" + r.Kind + ":" + strings.Join(args, "\x00"))
}

var versionOp = regexp.MustCompile(`^(<=|>=|==|!=|<>|<|>|=|lt|le|gt|ge|eq|ne)\s*(.+)$`)

var versionOpSymbol = map[string]string{
	"lt": "<", "le": "<=", "gt": ">", "ge": ">=", "eq": "==", "=": "==", "ne": "!=", "<>": "!=",
}

// normalizeVersion rewrites a version requirement as "<op> <version>".
// A bare version means ">=". Composer constraints (^, ~, ranges) are kept
// as written.
func normalizeVersion(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if m := versionOp.FindStringSubmatch(s); m != nil {
		op := m[1]
		if sym, ok := versionOpSymbol[op]; ok {
			op = sym
		}
		return op + " " + strings.TrimSpace(m[2])
	}
	if s[0] >= '0' && s[0] <= '9' && !strings.ContainsAny(s, " |,") {
		return ">= " + s
	}
	return s
}

type requiresVariant struct {
	attr   string
	kind   string
	params []string
}

var requiresVariants = []requiresVariant{
	{"RequiresPhp", "php", []string{"versionRequirement"}},
	{"RequiresPhpunit", "phpunit", []string{"versionRequirement"}},
	{"RequiresPhpExtension", "extension", []string{"extension", "versionRequirement"}},
	{"RequiresFunction", "function", []string{"functionName"}},
	{"RequiresMethod", "method", []string{"className", "methodName"}},
	{"RequiresOperatingSystem", "os", []string{"regularExpression"}},
	{"RequiresOperatingSystemFamily", "osfamily", []string{"operatingSystemFamily"}},
	{"RequiresSetting", "setting", []string{"setting", "value"}},
}

// requires maps every @requires form to its Requires* attribute.
func requires() *Handler {
	const tag = "@requires"
	names := make([]string, len(requiresVariants))
	for i, v := range requiresVariants {
		names[i] = AttributeNamespace + v.attr
	}
	entry := func(r requirement) Entry {
		return Entry{Key: r.key(), Payload: r}
	}
	return &Handler{
		Name:            "requires",
		Family:          "requires",
		Scope:           ScopeBoth,
		AttributeNames:  names,
		AnnotationNames: []string{tag},
		ParseAttribute: func(ctx *Context, a *attrs.Attribute) (Entry, bool) {
			var v requiresVariant
			for i, n := range names {
				if equalFold(n, a.FQName) {
					v = requiresVariants[i]
				}
			}
			r := requirement{Kind: v.kind}
			switch v.kind {
			case "php", "phpunit":
				s, ok := ctx.stringArg(a, 0, v.params[0])
				if !ok {
					return Entry{}, false
				}
				r.Args = []string{normalizeVersion(s)}
			case "extension":
				ext, ok := ctx.stringArg(a, 0, v.params[0])
				if !ok {
					return Entry{}, false
				}
				ver, ok := ctx.optionalString(a, 1, v.params[1])
				if !ok {
					return Entry{}, false
				}
				r.Args = []string{ext, normalizeVersion(ver)}
			case "method":
				cls, ok := ctx.classArg(a, 0, v.params[0])
				if !ok {
					return Entry{}, false
				}
				m, ok := ctx.stringArg(a, 1, v.params[1])
				if !ok {
					return Entry{}, false
				}
				r.Args = []string{cls, m}
			default:
				for i, p := range v.params {
					s, ok := ctx.stringArg(a, i, p)
					if !ok {
						return Entry{}, false
					}
					r.Args = append(r.Args, s)
				}
			}
			return entry(r), true
		},
		ParseAnnotation: func(ctx *Context, t *doccomment.Tag) (Entry, bool) {
			s, ok := ctx.annotationText(t)
			if !ok {
				return Entry{}, false
			}
			word, rest := cutWord(s)
			r := requirement{Kind: strings.ToLower(word)}
			switch r.Kind {
			case "php", "phpunit":
				if rest == "" {
					ctx.invalidAnnotation(t, "must give a version")
					return Entry{}, false
				}
				r.Args = []string{normalizeVersion(rest)}
			case "extension":
				ext, ver := cutWord(rest)
				if ext == "" {
					ctx.invalidAnnotation(t, "must name an extension")
					return Entry{}, false
				}
				r.Args = []string{ext, normalizeVersion(ver)}
			case "function":
				fn := firstField(rest)
				if cls, m, ok := strings.Cut(fn, "::"); ok {
					r.Kind = "method"
					r.Args = []string{ctx.AnnotationClass(cls), m}
					break
				}
				if fn == "" {
					ctx.invalidAnnotation(t, "must name a function")
					return Entry{}, false
				}
				r.Args = []string{strings.TrimPrefix(fn, `\`)}
			case "os", "osfamily":
				if rest == "" {
					ctx.invalidAnnotation(t, "must give an operating system")
					return Entry{}, false
				}
				r.Args = []string{rest}
			case "setting":
				k, v := cutWord(rest)
				if k == "" {
					ctx.invalidAnnotation(t, "must name a setting")
					return Entry{}, false
				}
				r.Args = []string{k, v}
			default:
				ctx.Report(diag.SevWarning, diag.AnnUnsupported, t.Span,
					"Annotation {{annotation}} has no attribute form",
					map[string]string{"annotation": tagText(t)})
				return Entry{}, false
			}
			return entry(r), true
		},
		FormatAttribute: func(ctx *Context, e Entry) (string, []string) {
			r := e.Payload.(requirement)
			var v requiresVariant
			for _, cand := range requiresVariants {
				if cand.kind == r.Kind {
					v = cand
				}
			}
			name := AttributeNamespace + v.attr
			switch r.Kind {
			case "method":
				return name, []string{ctx.classLiteral(r.Args[0]), phplit.Quote(r.Args[1])}
			case "extension":
				if r.Args[1] == "" {
					return name, []string{phplit.Quote(r.Args[0])}
				}
			}
			params := make([]string, len(r.Args))
			for i, a := range r.Args {
				params[i] = phplit.Quote(a)
			}
			return name, params
		},
		FormatAnnotation: func(_ *Context, e Entry) (string, string) {
			r := e.Payload.(requirement)
			switch r.Kind {
			case "php":
				return tag, "PHP " + r.Args[0]
			case "phpunit":
				return tag, "PHPUnit " + r.Args[0]
			case "method":
				return tag, `function \` + r.Args[0] + "::" + r.Args[1]
			case "os":
				return tag, "OS " + r.Args[0]
			case "osfamily":
				return tag, "OSFAMILY " + r.Args[0]
			}
			return tag, strings.TrimSpace(r.Kind + " " + strings.Join(r.Args, " "))
		},
	}
}

// cutWord splits s at its first run of blanks.
func cutWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}
