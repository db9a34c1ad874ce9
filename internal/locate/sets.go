package locate

import "attrsync/internal/token"

var (
	// Trivia is whitespace and plain comments.
	Trivia = token.NewSet(token.Whitespace, token.Comment)

	// DocComment covers every token of a doc comment.
	DocComment = token.NewSet(
		token.DocOpen, token.DocClose, token.DocStar,
		token.DocWhitespace, token.DocTag, token.DocString,
	)

	// Attributes covers attribute groups; groups are jumped as a whole.
	Attributes = token.NewSet(token.AttributeOpen, token.AttributeClose)

	// Preamble is what may precede any declaration: trivia, doc comments
	// and attribute groups.
	Preamble = Trivia.Union(DocComment).Union(Attributes)

	visibility = token.NewSet(token.KwPublic, token.KwProtected, token.KwPrivate)

	// types covers property and constant type declarations, including
	// nullable, union, intersection and DNF forms.
	types = token.NewSet(
		token.Name, token.NameQualified, token.NameFullyQualified, token.NameRelative,
		token.KwArray, token.KwStatic, token.Question, token.Pipe, token.Amp,
		token.LParen, token.RParen,
	)

	// ClassModifiers precede "class".
	ClassModifiers = Preamble.With(token.KwAbstract, token.KwFinal, token.KwReadonly)

	// InterfaceModifiers precede "interface", "trait" and "enum".
	InterfaceModifiers = Preamble

	// FunctionModifiers precede a top-level "function".
	FunctionModifiers = Preamble

	// MemberModifiers precede a method's "function".
	MemberModifiers = Preamble.Union(visibility).With(
		token.KwStatic, token.KwAbstract, token.KwFinal,
	)

	// PropertyModifiers precede a property variable.
	PropertyModifiers = Preamble.Union(visibility).Union(types).With(
		token.KwStatic, token.KwReadonly, token.KwVar,
	)

	// ConstModifiers precede "const" inside a class body.
	ConstModifiers = Preamble.Union(visibility).With(token.KwFinal)
)
