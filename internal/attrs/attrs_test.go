package attrs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attrsync/internal/attrs"
	"attrsync/internal/lexer"
	"attrsync/internal/names"
	"attrsync/internal/source"
	"attrsync/internal/token"
)

func snapshot(t *testing.T, src string) (*token.Snapshot, *names.Resolver) {
	t.Helper()
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("attrs.php", []byte(src)))
	snap := lexer.Tokenize(f, lexer.Options{})
	return snap, names.NewResolver(snap.Tokens)
}

func anchor(t *testing.T, snap *token.Snapshot, k token.Kind, text string) int {
	t.Helper()
	for i, tok := range snap.Tokens {
		if tok.Is(k, text) {
			return i
		}
	}
	t.Fatalf("no %s %q", k, text)
	return -1
}

const testFile = `<?php
namespace App\Tests;

use PHPUnit\Framework\Attributes\DataProvider;
use PHPUnit\Framework\Attributes as PA;

#[PA\CoversClass(\App\Foo::class)]
final class FooTest
{
    /** @dataProvider other */
    #[DataProvider('provideA'), PA\Group(name: 'slow')]
    #[\PHPUnit\Framework\Attributes\TestWith([1, [2, 3]], 'first')]
    public static function testA(): void {}

    public function testNone(): void {}

    #[PA\Before]
    protected ?int $prop = null;

    #[Deprecated]
    final public const LIMIT = 1;
}
`

func TestExtractMethod(t *testing.T) {
	snap, r := snapshot(t, testFile)
	fn := anchor(t, snap, token.Name, "testA") - 2
	require.Equal(t, token.KwFunction, snap.Tokens[fn].Kind)

	got, err := attrs.Extract(snap, fn, r)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "DataProvider", got[0].Name)
	assert.Equal(t, `PHPUnit\Framework\Attributes\DataProvider`, got[0].FQName)
	require.Len(t, got[0].Params, 1)
	assert.Equal(t, "'provideA'", got[0].Params[0].Text)
	assert.True(t, got[0].InMultiGroup)

	assert.Equal(t, `PHPUnit\Framework\Attributes\Group`, got[1].FQName)
	assert.Equal(t, "name: 'slow'", got[1].Params[0].Text)
	assert.Equal(t, "name", got[1].Params[0].Name)
	from, to := got[1].Params[0].Value(snap.Tokens)
	assert.Equal(t, "'slow'", snap.Text(from, to))
	assert.Equal(t, got[0].Group, got[1].Group)

	assert.Equal(t, `PHPUnit\Framework\Attributes\TestWith`, got[2].FQName)
	assert.False(t, got[2].InMultiGroup)
	require.Len(t, got[2].Params, 2)
	assert.Equal(t, "[1, [2, 3]]", got[2].Params[0].Text)
	assert.Equal(t, "'first'", got[2].Params[1].Text)
	assert.Equal(t, "#[\\PHPUnit\\Framework\\Attributes\\TestWith([1, [2, 3]], 'first')]", snap.File.Text(got[2].Group))
	assert.Equal(t, "\\PHPUnit\\Framework\\Attributes\\TestWith([1, [2, 3]], 'first')", snap.File.Text(got[2].Span))
}

func TestExtractOtherDeclarations(t *testing.T) {
	snap, r := snapshot(t, testFile)

	cls, err := attrs.Extract(snap, anchor(t, snap, token.KwClass, ""), r)
	require.NoError(t, err)
	require.Len(t, cls, 1)
	assert.Equal(t, `PHPUnit\Framework\Attributes\CoversClass`, cls[0].FQName)
	assert.Equal(t, `\App\Foo::class`, cls[0].Params[0].Text)

	none, err := attrs.Extract(snap, anchor(t, snap, token.Name, "testNone")-2, r)
	require.NoError(t, err)
	assert.Empty(t, none)

	prop, err := attrs.Extract(snap, anchor(t, snap, token.Variable, "$prop"), r)
	require.NoError(t, err)
	require.Len(t, prop, 1)
	assert.Equal(t, "PA\\Before", prop[0].Name)
	assert.Empty(t, prop[0].Params)

	cst, err := attrs.Extract(snap, anchor(t, snap, token.KwConst, ""), r)
	require.NoError(t, err)
	require.Len(t, cst, 1)
	assert.Equal(t, `App\Tests\Deprecated`, cst[0].FQName)
}

func TestExtractUnsupported(t *testing.T) {
	snap, r := snapshot(t, testFile)
	_, err := attrs.Extract(snap, anchor(t, snap, token.KwNamespace, ""), r)
	assert.ErrorIs(t, err, attrs.ErrUnsupportedDeclaration)
}

func TestSplitTopLevel(t *testing.T) {
	snap, _ := snapshot(t, "<?php f(a, [b, c], (d, e), , g /* x */ ,)")
	lp := anchor(t, snap, token.LParen, "")
	parts := attrs.SplitTopLevel(snap.Tokens, lp+1, snap.Tokens[lp].Match-1)
	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		texts = append(texts, snap.Text(p[0], p[1]))
	}
	assert.Equal(t, []string{"a", "[b, c]", "(d, e)", "g"}, texts)
}

func TestInsertionPoint(t *testing.T) {
	snap, _ := snapshot(t, testFile)

	ins, err := attrs.InsertionPoint(snap, anchor(t, snap, token.Name, "testA")-2)
	require.NoError(t, err)
	assert.Equal(t, "    ", ins.Indent)
	assert.True(t, ins.LineStart)
	assert.Equal(t, "#[DataProvider", string(snap.Content()[ins.Offset:ins.Offset+14]))

	ins, err = attrs.InsertionPoint(snap, anchor(t, snap, token.Name, "testNone")-2)
	require.NoError(t, err)
	assert.Equal(t, "public function testNone", string(snap.Content()[ins.Offset:ins.Offset+24]))

	one, _ := snapshot(t, "<?php /** doc */ final class A {}")
	ins, err = attrs.InsertionPoint(one, anchor(t, one, token.KwClass, ""))
	require.NoError(t, err)
	assert.False(t, ins.LineStart)
	assert.Equal(t, "final", string(one.Content()[ins.Offset:ins.Offset+5]))
}
