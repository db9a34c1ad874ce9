// Package decl finds and classifies the declarations metadata can attach to.
package decl

import (
	"errors"
	"fmt"

	"attrsync/internal/locate"
	"attrsync/internal/token"
)

// ErrUnsupportedDeclaration is returned for anchors that are not a class,
// interface, trait, enum, function, method, property or constant.
var ErrUnsupportedDeclaration = errors.New("unsupported declaration")

type Kind uint8

const (
	Invalid Kind = iota
	Class
	Interface
	Trait
	Enum
	Function
	Method
	Property
	Constant
)

var kindNames = [...]string{
	Invalid: "invalid", Class: "class", Interface: "interface", Trait: "trait",
	Enum: "enum", Function: "function", Method: "method", Property: "property",
	Constant: "constant",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsClassLike reports whether k declares a type with a body of members.
func (k Kind) IsClassLike() bool {
	return k >= Class && k <= Enum
}

// IsMember reports whether k lives inside a class-like body.
func (k Kind) IsMember() bool {
	return k >= Method
}

// Decl is one declaration in a token snapshot.
type Decl struct {
	Kind Kind
	// Anchor is the keyword token, or the variable token of a property.
	Anchor int
	// NameIndex is the token holding the declared name, -1 if anonymous.
	NameIndex int
	Name      string
	// Owner is the index in the Scan result of the enclosing class-like
	// declaration, -1 for top-level declarations.
	Owner int
	// Body is the opening brace of a class-like or function body, -1 if none.
	Body int
}

// ModifierSet returns the skip set describing what may precede the anchor.
func (k Kind) ModifierSet() token.KindSet {
	switch k {
	case Class:
		return locate.ClassModifiers
	case Interface, Trait, Enum:
		return locate.InterfaceModifiers
	case Function:
		return locate.FunctionModifiers
	case Method:
		return locate.MemberModifiers
	case Property:
		return locate.PropertyModifiers
	case Constant:
		return locate.ConstModifiers
	}
	return locate.Preamble
}

// Classify returns the kind of the declaration anchored at toks[anchor].
func Classify(toks []token.Token, anchor int) (Kind, error) {
	if anchor < 0 || anchor >= len(toks) {
		return Invalid, fmt.Errorf("%w: anchor %d out of range", ErrUnsupportedDeclaration, anchor)
	}
	switch toks[anchor].Kind {
	case token.KwClass:
		return Class, nil
	case token.KwInterface:
		return Interface, nil
	case token.KwTrait:
		return Trait, nil
	case token.KwEnum:
		return Enum, nil
	case token.KwFunction:
		if EnclosingClass(toks, anchor) >= 0 {
			return Method, nil
		}
		return Function, nil
	case token.Variable:
		if EnclosingClass(toks, anchor) >= 0 {
			return Property, nil
		}
	case token.KwConst:
		return Constant, nil
	}
	return Invalid, fmt.Errorf("%w: %s %q", ErrUnsupportedDeclaration, toks[anchor].Kind, toks[anchor].Text)
}

var classKeywords = token.NewSet(token.KwClass, token.KwInterface, token.KwTrait, token.KwEnum)

// classHeader covers "Foo extends Bar implements Baz, Qux" and enum backing types.
var classHeader = locate.Trivia.With(
	token.Name, token.NameQualified, token.NameFullyQualified, token.NameRelative,
	token.KwExtends, token.KwImplements, token.Comma, token.Colon,
)

// EnclosingClass returns the anchor of the class-like declaration whose body
// directly contains toks[i], or -1.
func EnclosingClass(toks []token.Token, i int) int {
	for j := i - 1; j >= 0; j-- {
		switch toks[j].Kind {
		case token.RBrace:
			if toks[j].Match >= 0 && toks[j].Match < j {
				j = toks[j].Match
			}
		case token.LBrace:
			return bodyOwner(toks, j)
		}
	}
	return -1
}

// bodyOwner returns the class keyword owning the body opened at brace, or -1.
func bodyOwner(toks []token.Token, brace int) int {
	start := locate.FindStartOfRun(toks, classHeader, brace-1, locate.Unbounded)
	kw := start - 1
	if kw < 0 || !classKeywords.Has(toks[kw].Kind) {
		return -1
	}
	if prev := locate.PrevSignificant(toks, kw); prev >= 0 && toks[prev].Kind == token.KwNew {
		return -1
	}
	return kw
}
