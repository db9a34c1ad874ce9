// Package names resolves class names the way PHP does at compile time:
// through the active namespace and the "use" imports of the file.
//
// A Resolver is built once per token snapshot and threaded explicitly
// through extraction and formatting; it holds no global state.
package names

import (
	"strings"

	"golang.org/x/text/cases"

	"attrsync/internal/locate"
	"attrsync/internal/token"
)

// Fold case-folds a class or member name for comparisons and keys.
// PHP class, function and method names are case-insensitive.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Equal reports whether two names refer to the same symbol.
func Equal(a, b string) bool {
	return Fold(strings.TrimPrefix(a, `\`)) == Fold(strings.TrimPrefix(b, `\`))
}

type alias struct {
	name   string // as written in the import
	target string
}

type scope struct {
	start     int    // token index where the scope begins
	namespace string // without leading or trailing backslash
	aliases   map[string]alias
	order     []string // folded alias names in import order
}

type Resolver struct {
	scopes []scope
}

// NewResolver scans namespace declarations and class imports.
func NewResolver(toks []token.Token) *Resolver {
	r := &Resolver{scopes: []scope{{start: 0, aliases: map[string]alias{}}}}
	depth := 0
	importDepth := 0
	for i := 0; i < len(toks); i++ {
		switch toks[i].Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
		case token.KwNamespace:
			j := locate.SkipTrivia(toks, i+1)
			if j >= len(toks) || (!toks[j].Kind.IsName() && toks[j].Kind != token.LBrace && toks[j].Kind != token.Semicolon) {
				continue
			}
			ns := ""
			if toks[j].Kind.IsName() {
				ns = strings.TrimPrefix(toks[j].Text, `\`)
				j = locate.SkipTrivia(toks, j+1)
			}
			if j < len(toks) && toks[j].Kind == token.LBrace {
				importDepth = depth + 1
			} else {
				importDepth = depth
			}
			r.scopes = append(r.scopes, scope{start: i, namespace: ns, aliases: map[string]alias{}})
		case token.KwUse:
			if depth != importDepth {
				continue // trait use inside a class body
			}
			i = r.scanUse(toks, i)
		}
	}
	return r
}

// scanUse records the imports of one use statement and returns the index of
// its last token.
func (r *Resolver) scanUse(toks []token.Token, i int) int {
	sc := &r.scopes[len(r.scopes)-1]
	j := locate.SkipTrivia(toks, i+1)
	if j >= len(toks) {
		return i
	}
	if toks[j].Kind == token.KwFunction || toks[j].Kind == token.KwConst {
		for j < len(toks) && toks[j].Kind != token.Semicolon {
			j++
		}
		return j
	}
	if toks[j].Kind == token.LParen {
		return i // closure
	}

	prefix := ""
	for j < len(toks) && toks[j].Kind != token.Semicolon {
		switch {
		case toks[j].Kind.IsName():
			name := strings.TrimPrefix(toks[j].Text, `\`)
			k := locate.SkipTrivia(toks, j+1)
			if k < len(toks) && toks[k].Kind == token.NsSeparator {
				// group prefix: use A\B\{C, D}
				prefix = name + `\`
				j = k + 1
				continue
			}
			full := prefix + name
			alias := full[strings.LastIndex(full, `\`)+1:]
			if k < len(toks) && toks[k].Kind == token.KwAs {
				a := locate.SkipTrivia(toks, k+1)
				if a < len(toks) && toks[a].Kind.IsName() {
					alias = toks[a].Text
					k = a + 1
				}
			}
			sc.add(alias, full)
			j = k
		case toks[j].Kind == token.RBrace:
			prefix = ""
			j++
		default:
			j++
		}
	}
	return j
}

func (sc *scope) add(name, full string) {
	key := Fold(name)
	if _, ok := sc.aliases[key]; !ok {
		sc.order = append(sc.order, key)
	}
	sc.aliases[key] = alias{name: name, target: full}
}

func (r *Resolver) scopeAt(at int) *scope {
	for i := len(r.scopes) - 1; i > 0; i-- {
		if r.scopes[i].start <= at {
			return &r.scopes[i]
		}
	}
	return &r.scopes[0]
}

// Namespace returns the namespace active at token index at.
func (r *Resolver) Namespace(at int) string {
	return r.scopeAt(at).namespace
}

// Resolve returns the fully qualified form of a class name written at token
// index at, without the leading backslash. self, static and parent are
// returned unchanged.
func (r *Resolver) Resolve(name string, at int) string {
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, `\`) {
		return name[1:]
	}
	sc := r.scopeAt(at)
	first, rest, qualified := strings.Cut(name, `\`)
	if qualified && strings.EqualFold(first, "namespace") {
		return join(sc.namespace, rest)
	}
	if !qualified {
		switch Fold(name) {
		case "self", "static", "parent":
			return name
		}
	}
	if a, ok := sc.aliases[Fold(first)]; ok {
		if qualified {
			return a.target + `\` + rest
		}
		return a.target
	}
	return join(sc.namespace, name)
}

// Spell returns the shortest spelling of the fully qualified name fq valid
// at token index at: an imported alias, an alias of an enclosing namespace,
// a name relative to the current namespace, or the fully qualified form.
func (r *Resolver) Spell(fq string, at int) string {
	fq = strings.TrimPrefix(fq, `\`)
	sc := r.scopeAt(at)
	candidates := make([]string, 0, 4)
	for _, key := range sc.order {
		a := sc.aliases[key]
		switch {
		case Equal(a.target, fq):
			candidates = append(candidates, a.name)
		case len(fq) > len(a.target) && Equal(fq[:len(a.target)], a.target) && fq[len(a.target)] == '\\':
			candidates = append(candidates, a.name+fq[len(a.target):])
		}
	}
	if sc.namespace != "" && len(fq) > len(sc.namespace) && Equal(fq[:len(sc.namespace)], sc.namespace) && fq[len(sc.namespace)] == '\\' {
		candidates = append(candidates, fq[len(sc.namespace)+1:])
	} else if sc.namespace == "" {
		candidates = append(candidates, fq)
	}

	best := `\` + fq
	for _, c := range candidates {
		if len(c) < len(best) && Equal(r.Resolve(c, at), fq) {
			best = c
		}
	}
	return best
}

func join(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + `\` + name
}
