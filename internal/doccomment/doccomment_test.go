package doccomment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attrsync/internal/doccomment"
	"attrsync/internal/lexer"
	"attrsync/internal/source"
	"attrsync/internal/token"
)

func snapshot(t *testing.T, src string) *token.Snapshot {
	t.Helper()
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("doc.php", []byte(src)))
	return lexer.Tokenize(f, lexer.Options{})
}

func nth(t *testing.T, snap *token.Snapshot, k token.Kind, n int) int {
	t.Helper()
	for i, tok := range snap.Tokens {
		if tok.Kind == k {
			if n == 0 {
				return i
			}
			n--
		}
	}
	t.Fatalf("no %s", k)
	return -1
}

const src = `<?php
class FooTest
{
    /**
     * Checks things.
     *
     * @dataProvider provideFoo
     * @testWith [1, 2]
     *           [3, "a"]
     * @covers
     *     \Foo\Bar
     * @test
     */
    #[Small]
    // trailing comment
    final public function testA() {}

    /** @group fast */
    public function testB() {}

    /** @internal */
    private $x = 1;
    public function testC() {}
}
`

func TestFindBlockAndTags(t *testing.T) {
	snap := snapshot(t, src)
	fn := nth(t, snap, token.KwFunction, 0)
	block, ok := doccomment.FindBlock(snap, fn)
	require.True(t, ok)
	assert.Equal(t, token.DocOpen, snap.Tokens[block.Opener].Kind)
	assert.Equal(t, "     ", block.Indent)
	assert.False(t, block.SingleLine)
	assert.True(t, block.HasDescription)

	tags, err := doccomment.Tags(snap, block.Opener)
	require.NoError(t, err)

	type row struct{ Name, Content string }
	got := make([]row, 0, len(tags))
	for _, tag := range tags {
		got = append(got, row{tag.Name, tag.Content})
		assert.Equal(t, block.Opener, tag.Block.Opener)
	}
	assert.Equal(t, []row{
		{"@dataProvider", "provideFoo"},
		{"@testWith", "[1, 2]\n[3, \"a\"]"},
		{"@covers", "\n\\Foo\\Bar"},
		{"@test", ""},
	}, got)

	assert.Equal(t, "@testWith [1, 2]\n     *           [3, \"a\"]", snap.File.Text(tags[1].Span))
	assert.Equal(t, "@test", snap.File.Text(tags[3].Span))
}

func TestSingleLineBlock(t *testing.T) {
	snap := snapshot(t, src)
	fn := nth(t, snap, token.KwFunction, 1)
	block, ok := doccomment.FindBlock(snap, fn)
	require.True(t, ok)
	assert.True(t, block.SingleLine)
	assert.False(t, block.HasDescription)
	assert.Equal(t, "     ", block.Indent)

	tags, err := doccomment.Tags(snap, block.Opener)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "fast", tags[0].Content)
}

func TestAdjacencyIsStrict(t *testing.T) {
	snap := snapshot(t, src)
	_, ok := doccomment.FindBlock(snap, nth(t, snap, token.KwFunction, 2))
	assert.False(t, ok, "a property sits between the doc comment and testC")

	_, ok = doccomment.FindBlock(snap, nth(t, snap, token.Variable, 0))
	assert.True(t, ok)

	_, ok = doccomment.FindBlock(snap, nth(t, snap, token.KwClass, 0))
	assert.False(t, ok)
}

func TestTagsRejectsNonDocAnchor(t *testing.T) {
	snap := snapshot(t, src)
	_, err := doccomment.Tags(snap, nth(t, snap, token.KwClass, 0))
	assert.ErrorIs(t, err, doccomment.ErrNotDocComment)
}

func TestIndentFallsBackToOpenerLine(t *testing.T) {
	snap := snapshot(t, "<?php\n\t/** @test */\n\tfunction a() {}\n")
	assert.Equal(t, "\t ", doccomment.Indent(snap, nth(t, snap, token.DocOpen, 0)))
}
