package decl

import (
	"attrsync/internal/locate"
	"attrsync/internal/token"
)

// Scan lists the named declarations of a file in source order. Function and
// method bodies are skipped, so closures and anonymous classes are never
// reported.
func Scan(toks []token.Token) []Decl {
	var out []Decl
	type open struct {
		decl  int
		close int
	}
	var classes []open

	owner := func(i int) int {
		for len(classes) > 0 && classes[len(classes)-1].close < i {
			classes = classes[:len(classes)-1]
		}
		if len(classes) == 0 {
			return -1
		}
		return classes[len(classes)-1].decl
	}
	// inBody reports whether toks[i] sits directly in the innermost class body.
	inBody := func(i int) bool {
		if owner(i) < 0 {
			return false
		}
		return EnclosingClass(toks, i) == out[classes[len(classes)-1].decl].Anchor
	}

	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		switch tok.Kind {
		case token.KwClass, token.KwInterface, token.KwTrait, token.KwEnum:
			if prev := locate.PrevSignificant(toks, i); prev >= 0 && toks[prev].Kind == token.KwNew {
				continue
			}
			name := locate.SkipTrivia(toks, i+1)
			if name >= len(toks) || toks[name].Kind != token.Name {
				continue
			}
			kind, _ := Classify(toks, i)
			body := findBody(toks, name+1)
			d := Decl{Kind: kind, Anchor: i, NameIndex: name, Name: toks[name].Text, Owner: owner(i), Body: body}
			out = append(out, d)
			if body >= 0 && toks[body].Match > body {
				classes = append(classes, open{decl: len(out) - 1, close: toks[body].Match})
			}
			i = name

		case token.KwFunction:
			if afterUse(toks, i) {
				continue
			}
			name := locate.SkipTrivia(toks, i+1)
			if name < len(toks) && toks[name].Kind == token.Amp {
				name = locate.SkipTrivia(toks, name+1)
			}
			if name >= len(toks) || !toks[name].Kind.IsName() && !toks[name].Kind.IsKeyword() {
				continue // closure
			}
			kind := Function
			if inBody(i) {
				kind = Method
			}
			body := findBody(toks, name+1)
			out = append(out, Decl{Kind: kind, Anchor: i, NameIndex: name, Name: toks[name].Text, Owner: owner(i), Body: body})
			switch {
			case body >= 0 && toks[body].Match > body:
				i = toks[body].Match
			case body < 0:
				i = skipParams(toks, name+1)
			}

		case token.KwConst:
			if afterUse(toks, i) || len(classes) > 0 && !inBody(i) {
				continue
			}
			name := constName(toks, i)
			if name < 0 {
				continue
			}
			out = append(out, Decl{Kind: Constant, Anchor: i, NameIndex: name, Name: toks[name].Text, Owner: owner(i), Body: -1})

		case token.Variable:
			if !inBody(i) {
				continue
			}
			if prev := locate.PrevSignificant(toks, i); prev >= 0 && toks[prev].Kind == token.Comma {
				continue
			}
			out = append(out, Decl{Kind: Property, Anchor: i, NameIndex: i, Name: tok.Text[1:], Owner: owner(i), Body: -1})

		case token.KwUse:
			// trait adaptation blocks hold no declarations
			if inBody(i) {
				for i < len(toks) && toks[i].Kind != token.Semicolon && toks[i].Kind != token.LBrace {
					i++
				}
				if i < len(toks) && toks[i].Kind == token.LBrace && toks[i].Match > i {
					i = toks[i].Match
				}
			}
		}
	}
	return out
}

// afterUse reports "use function" and "use const" imports.
func afterUse(toks []token.Token, i int) bool {
	prev := locate.PrevSignificant(toks, i)
	return prev >= 0 && toks[prev].Kind == token.KwUse
}

// findBody returns the "{" opening the body of the declaration whose header
// starts at from, or -1 when a ";" ends it first. Parenthesised groups are
// skipped.
func findBody(toks []token.Token, from int) int {
	for i := from; i < len(toks); i++ {
		switch toks[i].Kind {
		case token.LParen, token.LBracket, token.AttributeOpen:
			if toks[i].Match > i {
				i = toks[i].Match
			}
		case token.LBrace:
			return i
		case token.Semicolon, token.RBrace:
			return -1
		}
	}
	return -1
}

// skipParams returns the index of the token ending an abstract declaration.
func skipParams(toks []token.Token, from int) int {
	for i := from; i < len(toks); i++ {
		switch toks[i].Kind {
		case token.LParen:
			if toks[i].Match > i {
				i = toks[i].Match
			}
		case token.Semicolon:
			return i
		}
	}
	return len(toks) - 1
}

// constName returns the name token of "const [type] NAME =".
func constName(toks []token.Token, kw int) int {
	name := -1
	for i := kw + 1; i < len(toks); i++ {
		switch {
		case toks[i].Kind == token.Assign:
			return name
		case toks[i].Kind == token.Name || toks[i].Kind.IsKeyword():
			name = i
		case toks[i].Kind == token.Semicolon:
			return -1
		}
	}
	return -1
}
