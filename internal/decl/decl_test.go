package decl_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attrsync/internal/decl"
	"attrsync/internal/lexer"
	"attrsync/internal/source"
	"attrsync/internal/token"
)

func lex(t *testing.T, src string) []token.Token {
	t.Helper()
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("decl.php", []byte(src)))
	return lexer.Tokenize(f, lexer.Options{}).Tokens
}

const src = `<?php
namespace App;

use function strlen;
use const PHP_EOL;

function helper(): void {}

abstract class FooTest extends TestCase implements A, B
{
    use SomeTrait { foo as protected bar; }

    final public const int LIMIT = 3;
    protected ?Foo $a = null, $b;

    abstract protected function provide(): array;

    public function testX(int $p): void
    {
        $x = new class {
            public function inner() {}
        };
        $f = function ($y) use ($x) {};
    }
}

interface I { public function m(); }
trait T { public static $s; }
enum E: string { case A = 'a'; public function label() {} }
`

func TestScan(t *testing.T) {
	toks := lex(t, src)
	decls := decl.Scan(toks)

	type row struct {
		Kind  decl.Kind
		Name  string
		Owner string
	}
	got := make([]row, 0, len(decls))
	for _, d := range decls {
		owner := ""
		if d.Owner >= 0 {
			owner = decls[d.Owner].Name
		}
		got = append(got, row{d.Kind, d.Name, owner})
	}
	assert.Equal(t, []row{
		{decl.Function, "helper", ""},
		{decl.Class, "FooTest", ""},
		{decl.Constant, "LIMIT", "FooTest"},
		{decl.Property, "a", "FooTest"},
		{decl.Method, "provide", "FooTest"},
		{decl.Method, "testX", "FooTest"},
		{decl.Interface, "I", ""},
		{decl.Method, "m", "I"},
		{decl.Trait, "T", ""},
		{decl.Property, "s", "T"},
		{decl.Enum, "E", ""},
		{decl.Method, "label", "E"},
	}, got)
}

func TestClassify(t *testing.T) {
	toks := lex(t, src)
	for _, d := range decl.Scan(toks) {
		kind, err := decl.Classify(toks, d.Anchor)
		require.NoError(t, err)
		assert.Equal(t, d.Kind, kind, d.Name)
	}

	for i, tok := range toks {
		if tok.Kind == token.KwNamespace {
			_, err := decl.Classify(toks, i)
			assert.True(t, errors.Is(err, decl.ErrUnsupportedDeclaration))
		}
	}
	_, err := decl.Classify(toks, len(toks))
	assert.ErrorIs(t, err, decl.ErrUnsupportedDeclaration)
}

func TestKindHelpers(t *testing.T) {
	assert.True(t, decl.Enum.IsClassLike())
	assert.False(t, decl.Method.IsClassLike())
	assert.True(t, decl.Property.IsMember())
	assert.Equal(t, "method", decl.Method.String())
	assert.True(t, decl.Class.ModifierSet().Has(token.KwFinal))
	assert.False(t, decl.Interface.ModifierSet().Has(token.KwFinal))
}
