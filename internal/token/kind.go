package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF
	// OpenTag is "<?php" or "<?".
	OpenTag
	// CloseTag is "?>".
	CloseTag
	// InlineHTML is any text outside PHP tags.
	InlineHTML
	// Whitespace is a run of spaces, tabs and newlines.
	Whitespace
	// Comment is a "//", "#" or "/* */" comment.
	Comment

	// DocOpen opens a documentation comment ("/**").
	DocOpen
	// DocClose closes a documentation comment ("*/").
	DocClose
	// DocStar is the leading "*" of a doc comment line.
	DocStar
	// DocWhitespace is whitespace inside a doc comment.
	DocWhitespace
	// DocTag is an "@name" tag inside a doc comment.
	DocTag
	// DocString is any other text inside a doc comment, up to the end of line.
	DocString

	// AttributeOpen opens an attribute group ("#[").
	AttributeOpen
	// AttributeClose is the "]" closing an attribute group.
	AttributeClose

	// Variable is "$name".
	Variable
	// Name is an unqualified identifier.
	Name
	// NameQualified is "Foo\Bar".
	NameQualified
	// NameFullyQualified is "\Foo\Bar".
	NameFullyQualified
	// NameRelative is "namespace\Foo".
	NameRelative
	// StringLit is a single or double quoted string without interpolation.
	StringLit
	// IntLit is an integer literal.
	IntLit
	// FloatLit is a floating point literal.
	FloatLit

	// KwAbstract represents the 'abstract' keyword.
	KwAbstract
	KwFinal
	KwReadonly
	KwPublic
	KwProtected
	KwPrivate
	KwStatic
	KwVar
	KwClass
	KwInterface
	KwTrait
	KwEnum
	KwFunction
	KwFn
	KwConst
	KwNamespace
	KwUse
	KwAs
	KwNew
	KwExtends
	KwImplements
	KwArray
	KwCase

	// LParen represents the left parenthesis token.
	LParen // (
	RParen // )
	LBracket // [
	RBracket // ]
	LBrace // {
	RBrace // }
	Comma // ,
	Semicolon // ;
	Colon // :
	DoubleColon // ::
	DoubleArrow // =>
	Arrow // ->
	NsSeparator // \ on its own
	Question // ?
	Pipe // |
	Amp // &
	Minus // -
	Plus // +
	Assign // =
	Dot // .
	Ellipsis // ...
	// Other is any operator the engine does not care about.
	Other

	kindCount
)

var kindNames = [...]string{
	Invalid: "Invalid", EOF: "EOF", OpenTag: "OpenTag", CloseTag: "CloseTag",
	InlineHTML: "InlineHTML", Whitespace: "Whitespace", Comment: "Comment",
	DocOpen: "DocOpen", DocClose: "DocClose", DocStar: "DocStar",
	DocWhitespace: "DocWhitespace", DocTag: "DocTag", DocString: "DocString",
	AttributeOpen: "AttributeOpen", AttributeClose: "AttributeClose",
	Variable: "Variable", Name: "Name", NameQualified: "NameQualified",
	NameFullyQualified: "NameFullyQualified", NameRelative: "NameRelative",
	StringLit: "StringLit", IntLit: "IntLit", FloatLit: "FloatLit",
	KwAbstract: "abstract", KwFinal: "final", KwReadonly: "readonly", KwPublic: "public",
	KwProtected: "protected", KwPrivate: "private", KwStatic: "static", KwVar: "var",
	KwClass: "class", KwInterface: "interface", KwTrait: "trait", KwEnum: "enum",
	KwFunction: "function", KwFn: "fn", KwConst: "const", KwNamespace: "namespace",
	KwUse: "use", KwAs: "as", KwNew: "new", KwExtends: "extends",
	KwImplements: "implements", KwArray: "array", KwCase: "case",
	LParen: "(", RParen: ")", LBracket: "[", RBracket: "]", LBrace: "{", RBrace: "}",
	Comma: ",", Semicolon: ";", Colon: ":", DoubleColon: "::", DoubleArrow: "=>",
	Arrow: "->", NsSeparator: "\\", Question: "?", Pipe: "|", Amp: "&", Minus: "-",
	Plus: "+", Assign: "=", Dot: ".", Ellipsis: "...", Other: "Other",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsKeyword reports whether k is one of the keyword kinds.
func (k Kind) IsKeyword() bool {
	return k >= KwAbstract && k <= KwCase
}

// IsName reports whether k is any form of (possibly qualified) name.
func (k Kind) IsName() bool {
	switch k {
	case Name, NameQualified, NameFullyQualified, NameRelative:
		return true
	}
	return false
}

// IsDoc reports whether k belongs to a documentation comment.
func (k Kind) IsDoc() bool {
	return k >= DocOpen && k <= DocString
}
