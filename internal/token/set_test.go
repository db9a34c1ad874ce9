package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"attrsync/internal/token"
)

func TestKindSet(t *testing.T) {
	s := token.NewSet(token.Whitespace, token.KwPublic, token.Other)
	assert.True(t, s.Has(token.Whitespace))
	assert.True(t, s.Has(token.Other))
	assert.False(t, s.Has(token.Comment))

	s = s.Without(token.KwPublic).With(token.Comment)
	assert.False(t, s.Has(token.KwPublic))
	assert.True(t, s.Has(token.Comment))

	u := token.NewSet(token.DocClose).Union(s)
	assert.True(t, u.Has(token.DocClose))
	assert.True(t, u.Has(token.Comment))
}

func TestLookupKeywordIsCaseInsensitive(t *testing.T) {
	for lexeme, want := range map[string]token.Kind{
		"function": token.KwFunction,
		"FUNCTION": token.KwFunction,
		"Public":   token.KwPublic,
		"class":    token.KwClass,
	} {
		got, ok := token.LookupKeyword(lexeme)
		assert.True(t, ok, lexeme)
		assert.Equal(t, want, got, lexeme)
	}
	_, ok := token.LookupKeyword("DataProvider")
	assert.False(t, ok)
}
