package lexer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attrsync/internal/diag"
	"attrsync/internal/lexer"
	"attrsync/internal/source"
	"attrsync/internal/token"
)

func tokenize(t *testing.T, src string) (*token.Snapshot, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("test.php", []byte(src)))
	bag := diag.NewBag(0)
	snap := lexer.Tokenize(f, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
	return snap, bag
}

// significant drops whitespace so expectations stay readable.
func significant(snap *token.Snapshot) []token.Token {
	out := make([]token.Token, 0, len(snap.Tokens))
	for _, tok := range snap.Tokens {
		if tok.Kind == token.Whitespace || tok.Kind == token.DocWhitespace {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func kindsAndTexts(toks []token.Token) []string {
	out := make([]string, 0, len(toks))
	for _, tok := range toks {
		out = append(out, tok.Kind.String()+" "+tok.Text)
	}
	return out
}

func TestTokenizeIsLossless(t *testing.T) {
	src := "<html>\n<?php\nnamespace App\\Tests;\n\nuse PHPUnit\\Framework\\Attributes as A;\n" +
		"/**\n * @covers \\Foo\n */\n#[A\\Small, Group('x')]\nfinal class FooTest extends \\TestCase {\n" +
		"    // comment\n    /* block */\n    public function testX(): void { $a = [1, 2.5, 'a' => \"b\\\"c\"]; }\n}\n?>\ntail"
	snap, bag := tokenize(t, src)
	require.Equal(t, 0, bag.Len())

	var sb strings.Builder
	for _, tok := range snap.Tokens {
		sb.WriteString(tok.Text)
		assert.Equal(t, tok.Text, snap.File.Text(tok.Span), "span of %s", tok.Kind)
	}
	assert.Equal(t, src, sb.String())
	assert.Equal(t, token.EOF, snap.Tokens[len(snap.Tokens)-1].Kind)
}

func TestAttributeGroupsArePaired(t *testing.T) {
	snap, _ := tokenize(t, "<?php #[Foo([1, [2]]), Bar] class A {}")
	toks := snap.Tokens
	open := -1
	for i, tok := range toks {
		if tok.Kind == token.AttributeOpen {
			open = i
			break
		}
	}
	require.NotEqual(t, -1, open)
	closer := toks[open].Match
	require.Greater(t, closer, open)
	assert.Equal(t, token.AttributeClose, toks[closer].Kind)
	assert.Equal(t, "]", toks[closer].Text)
	assert.Equal(t, open, toks[closer].Match)

	inner := 0
	for _, tok := range toks[open+1 : closer] {
		if tok.Kind == token.RBracket {
			inner++
		}
		assert.NotEqual(t, token.AttributeClose, tok.Kind)
	}
	assert.Equal(t, 2, inner)
}

func TestDocCommentSplitting(t *testing.T) {
	snap, _ := tokenize(t, "<?php\n/**\n * Summary line.  \n * @dataProvider provideFoo\n * @testWith [1, 2]\n *           [3, \"a\"]\n */\n")
	got := kindsAndTexts(significant(snap))
	assert.Equal(t, []string{
		"OpenTag <?php",
		"DocOpen /**",
		"DocStar *",
		"DocString Summary line.",
		"DocStar *",
		"DocTag @dataProvider",
		"DocString provideFoo",
		"DocStar *",
		"DocTag @testWith",
		"DocString [1, 2]",
		"DocStar *",
		"DocString [3, \"a\"]",
		"DocClose */",
		"EOF ",
	}, got)

	for _, tok := range snap.Tokens {
		if tok.Kind == token.DocWhitespace && strings.Contains(tok.Text, "\n") {
			assert.Equal(t, "\n", tok.Text)
		}
	}
	open := significant(snap)[1]
	assert.Equal(t, token.DocClose, snap.Tokens[open.Match].Kind)
}

func TestSingleLineDocComment(t *testing.T) {
	snap, _ := tokenize(t, "<?php /** @test */ function a() {}")
	got := kindsAndTexts(significant(snap))
	assert.Equal(t, []string{"OpenTag <?php", "DocOpen /**", "DocTag @test", "DocClose */"}, got[:4])
}

func TestDocOpenNeedsWhitespace(t *testing.T) {
	snap, _ := tokenize(t, "<?php /***/ /**x*/ /** a */")
	got := kindsAndTexts(significant(snap))
	assert.Equal(t, []string{
		"OpenTag <?php", "Comment /***/", "Comment /**x*/",
		"DocOpen /**", "DocString a", "DocClose */", "EOF ",
	}, got)
}

func TestMidLineAtIsNotATag(t *testing.T) {
	snap, _ := tokenize(t, "<?php /** see foo@example.com\n * @ not-a-tag */")
	for _, tok := range snap.Tokens {
		assert.NotEqual(t, token.DocTag, tok.Kind, tok.Text)
	}
}

func TestNamesAndKeywords(t *testing.T) {
	snap, _ := tokenize(t, "<?php Foo\\Bar \\Baz namespace\\Qux FINAL Foo::class $x->function")
	got := kindsAndTexts(significant(snap))
	assert.Equal(t, []string{
		"OpenTag <?php",
		"NameQualified Foo\\Bar",
		"NameFullyQualified \\Baz",
		"NameRelative namespace\\Qux",
		"final FINAL",
		"Name Foo",
		":: ::",
		"Name class",
		"Variable $x",
		"-> ->",
		"Name function",
		"EOF ",
	}, got)
}

func TestNumbers(t *testing.T) {
	snap, _ := tokenize(t, "<?php 0x1F 0b10 1_000 1.5 .5 1e-3 7.")
	got := kindsAndTexts(significant(snap)[1:])
	assert.Equal(t, []string{
		"IntLit 0x1F", "IntLit 0b10", "IntLit 1_000", "FloatLit 1.5",
		"FloatLit .5", "FloatLit 1e-3", "FloatLit 7.", "EOF ",
	}, got)
}

func TestHeredocIsOneToken(t *testing.T) {
	snap, bag := tokenize(t, "<?php $a = <<<EOT\n  #[NotAnAttribute]\n  EOT;\n")
	require.Equal(t, 0, bag.Len())
	for _, tok := range snap.Tokens {
		assert.NotEqual(t, token.AttributeOpen, tok.Kind)
	}
}

func TestLineNumbers(t *testing.T) {
	snap, _ := tokenize(t, "<?php\n\n/**\n * @test\n */\nfunction a() {}")
	for _, tok := range snap.Tokens {
		assert.Equal(t, snap.File.LineOf(tok.Span.Start), tok.Line, "%s %q", tok.Kind, tok.Text)
	}
}

func TestErrorsAreReported(t *testing.T) {
	cases := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"comment", "<?php /* open", diag.LexUnterminatedComment},
		{"doc", "<?php /** open", diag.LexUnterminatedComment},
		{"string", "<?php 'open", diag.LexUnterminatedString},
		{"unmatched", "<?php )", diag.LexUnbalancedDelimiter},
		{"unclosed", "<?php #[Foo", diag.LexUnbalancedDelimiter},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, bag := tokenize(t, tc.src)
			require.Equal(t, 1, bag.Len())
			assert.Equal(t, tc.code, bag.Items()[0].Code)
			assert.True(t, bag.HasErrors())
		})
	}
}
