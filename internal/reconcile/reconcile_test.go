package reconcile_test

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"attrsync/internal/decl"
	"attrsync/internal/handler"
	"attrsync/internal/lexer"
	"attrsync/internal/op"
	"attrsync/internal/reconcile"
	"attrsync/internal/source"
)

type scenario struct {
	Name   string   `yaml:"name"`
	Decl   string   `yaml:"decl"`
	Retain bool     `yaml:"retain"`
	Source string   `yaml:"source"`
	Want   []string `yaml:"want"`
}

func loadScenarios(t *testing.T) []scenario {
	t.Helper()
	data, err := os.ReadFile("testdata/scenarios.yaml")
	require.NoError(t, err)
	var out []scenario
	require.NoError(t, yaml.Unmarshal(data, &out))
	require.NotEmpty(t, out)
	return out
}

func newFile(t *testing.T, src string) *reconcile.File {
	t.Helper()
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("FooTest.php", []byte(src)))
	return reconcile.NewFile(lexer.Tokenize(f, lexer.Options{}))
}

func declIndex(t *testing.T, f *reconcile.File, name string) int {
	t.Helper()
	for i, d := range f.Decls {
		if d.Name == name {
			return i
		}
	}
	t.Fatalf("no declaration %q", name)
	return -1
}

func TestScenarios(t *testing.T) {
	for _, sc := range loadScenarios(t) {
		t.Run(sc.Name, func(t *testing.T) {
			f := newFile(t, sc.Source)
			ops, err := reconcile.Run(f, declIndex(t, f, sc.Decl), reconcile.Options{Retain: sc.Retain})
			require.NoError(t, err)

			got := make([]string, 0, len(ops))
			for _, o := range ops {
				got = append(got, op.Describe(o))
			}
			if diff := cmp.Diff(sc.Want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("ops mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// Every edit belongs to a message emitted before it, and messages without a
// fix carry no edits.
func TestEditsFollowTheirMessage(t *testing.T) {
	for _, sc := range loadScenarios(t) {
		f := newFile(t, sc.Source)
		ops, err := reconcile.Run(f, declIndex(t, f, sc.Decl), reconcile.Options{Retain: sc.Retain})
		require.NoError(t, err)

		seen := map[*op.Message]bool{}
		for _, o := range ops {
			if m, ok := o.(*op.Message); ok {
				seen[m] = true
				continue
			}
			owner := op.Owner(o)
			require.NotNil(t, owner, sc.Name)
			assert.True(t, seen[owner], "%s: %s precedes its message", sc.Name, op.Describe(o))
			assert.True(t, owner.Fixable, "%s: %s belongs to an unfixable message", sc.Name, op.Describe(o))
		}
	}
}

func TestRetainNeverRemoves(t *testing.T) {
	for _, sc := range loadScenarios(t) {
		f := newFile(t, sc.Source)
		ops, err := reconcile.Run(f, declIndex(t, f, sc.Decl), reconcile.Options{Retain: true})
		require.NoError(t, err)
		for _, o := range ops {
			_, removes := o.(*op.RemoveAnnotation)
			assert.False(t, removes, "%s: %s", sc.Name, op.Describe(o))
		}
	}
}

func TestDisabledHandlersAreSkipped(t *testing.T) {
	f := newFile(t, `<?php
final class FooTest
{
    /**
     * @group slow
     * @test
     */
    public function testFoo(): void {}
}
`)
	reg := handler.DefaultRegistry().Without("group")
	ops, err := reconcile.Run(f, declIndex(t, f, "testFoo"), reconcile.Options{Registry: reg})
	require.NoError(t, err)
	require.Len(t, ops, 3)
	assert.Equal(t, `AddAttribute(PHPUnit\Framework\Attributes\Test())`, op.Describe(ops[1]))
}

func TestTargetAndContext(t *testing.T) {
	f := newFile(t, `<?php
/**
 * @coversDefaultClass \Foo
 */
final class FooTest
{
    /** @covers ::a */
    public function testA(): void {}

    /** @covers ::b */
    public function testB(): void {}

    private $plain;
}
`)
	cls := declIndex(t, f, "FooTest")
	target, err := f.Target(cls)
	require.NoError(t, err)
	require.NotNil(t, target.Block)
	require.Len(t, target.Tags, 1)
	assert.Nil(t, target.Class)

	ctx := f.Context(cls, target, false)
	assert.Len(t, ctx.MemberTags, 2)
	assert.Empty(t, ctx.ClassTags)

	m := declIndex(t, f, "testB")
	mt, err := f.Target(m)
	require.NoError(t, err)
	require.NotNil(t, mt.Class)
	assert.Equal(t, decl.Class, mt.Class.Kind)
	mctx := f.Context(m, mt, true)
	assert.Len(t, mctx.ClassTags, 1)
	assert.True(t, mctx.Retain)

	ops, err := reconcile.Run(f, declIndex(t, f, "plain"), reconcile.Options{})
	require.NoError(t, err)
	assert.Empty(t, ops)
}
