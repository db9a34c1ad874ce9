package token

import "strings"

var keywords = map[string]Kind{
	"abstract":   KwAbstract,
	"final":      KwFinal,
	"readonly":   KwReadonly,
	"public":     KwPublic,
	"protected":  KwProtected,
	"private":    KwPrivate,
	"static":     KwStatic,
	"var":        KwVar,
	"class":      KwClass,
	"interface":  KwInterface,
	"trait":      KwTrait,
	"enum":       KwEnum,
	"function":   KwFunction,
	"fn":         KwFn,
	"const":      KwConst,
	"namespace":  KwNamespace,
	"use":        KwUse,
	"as":         KwAs,
	"new":        KwNew,
	"extends":    KwExtends,
	"implements": KwImplements,
	"array":      KwArray,
	"case":       KwCase,
}

// LookupKeyword returns the keyword kind for ident. PHP keywords are
// case-insensitive.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[strings.ToLower(ident)]
	return k, ok
}
