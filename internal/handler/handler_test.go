package handler_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attrsync/internal/decl"
	"attrsync/internal/diag"
	"attrsync/internal/handler"
	"attrsync/internal/lexer"
	"attrsync/internal/op"
	"attrsync/internal/reconcile"
	"attrsync/internal/source"
)

// phpSource places a doc comment tag and/or an attribute on a test method,
// or on the class when classLevel is set.
func phpSource(classLevel bool, tag, content, attr string) string {
	var meta strings.Builder
	indent := "    "
	if classLevel {
		indent = ""
	}
	if tag != "" {
		lines := strings.Split(strings.TrimSpace(tag+" "+content), "\n")
		fmt.Fprintf(&meta, "%s/**\n", indent)
		for _, l := range lines {
			fmt.Fprintf(&meta, "%s * %s\n", indent, l)
		}
		fmt.Fprintf(&meta, "%s */\n", indent)
	}
	if attr != "" {
		fmt.Fprintf(&meta, "%s#[%s]\n", indent, attr)
	}
	head := "<?php\nnamespace App\\Tests;\n\nuse PHPUnit\\Framework\\Attributes as PA;\n\n"
	if classLevel {
		return head + meta.String() + "final class FooTest\n{\n    public function testIt(): void {}\n}\n"
	}
	return head + "final class FooTest\n{\n" + meta.String() + "    public function testIt(): void {}\n}\n"
}

type parsed struct {
	h   *handler.Handler
	e   handler.Entry
	ctx *handler.Context
	msg []op.Op
}

// parseOne collects the single record of the declaration across the
// default registry.
func parseOne(t *testing.T, src string, classLevel bool) parsed {
	t.Helper()
	fs := source.NewFileSet()
	snap := lexer.Tokenize(fs.Get(fs.AddVirtual("FooTest.php", []byte(src))), lexer.Options{})
	f := reconcile.NewFile(snap)
	idx := -1
	for i, d := range f.Decls {
		if (classLevel && d.Kind == decl.Class) || (!classLevel && d.Name == "testIt") {
			idx = i
		}
	}
	require.GreaterOrEqual(t, idx, 0)
	target, err := f.Target(idx)
	require.NoError(t, err)
	ctx := f.Context(idx, target, false)

	var out parsed
	out.ctx = ctx
	found := 0
	for _, h := range handler.DefaultRegistry().For(target.Decl.Kind) {
		in := h.Collect(ctx, target.Attributes, target.Tags)
		for _, p := range append(in.Attributes, in.Annotations...) {
			out.h, out.e = h, p.Entry
			found++
		}
	}
	out.msg = ctx.Messages()
	if len(out.msg) == 0 {
		require.Equal(t, 1, found, "records in\n%s", src)
	}
	return out
}

var crossForm = []struct {
	class      bool
	tag, text  string
	attr       string
	wantAttr   string
	wantAnnot  string
}{
	{false, "@test", "", "PA\\Test", "#[PA\\Test]", "@test"},
	{false, "@group", "slow", "PA\\Group('slow')", "#[PA\\Group('slow')]", "@group slow"},
	{false, "@ticket", "GH-12", "PA\\Ticket(text: 'GH-12')", "#[PA\\Ticket('GH-12')]", "@ticket GH-12"},
	{false, "@testdox", "It does things", "PA\\TestDox('It does things')", "#[PA\\TestDox('It does things')]", "@testdox It does things"},
	{false, "@backupGlobals", "enabled", "PA\\BackupGlobals(true)", "#[PA\\BackupGlobals(true)]", "@backupGlobals enabled"},
	{false, "@backupStaticAttributes", "disabled", "PA\\BackupStaticProperties(false)", "#[PA\\BackupStaticProperties(false)]", "@backupStaticAttributes disabled"},
	{false, "@dataProvider", "provideRows", "PA\\DataProvider('provideRows')", "#[PA\\DataProvider('provideRows')]", "@dataProvider provideRows"},
	{false, "@dataProvider", "\\App\\Providers::rows", "PA\\DataProviderExternal(\\App\\Providers::class, 'rows')", "#[PA\\DataProviderExternal(\\App\\Providers::class, 'rows')]", "@dataProvider \\App\\Providers::rows"},
	{false, "@depends", "testOne", "PA\\Depends('testOne')", "#[PA\\Depends('testOne')]", "@depends testOne"},
	{false, "@depends", "clone testOne", "PA\\DependsUsingDeepClone('testOne')", "#[PA\\DependsUsingDeepClone('testOne')]", "@depends clone testOne"},
	{false, "@depends", "shallowClone \\App\\OtherTest::testTwo", "PA\\DependsExternalUsingShallowClone(\\App\\OtherTest::class, 'testTwo')", "#[PA\\DependsExternalUsingShallowClone(\\App\\OtherTest::class, 'testTwo')]", "@depends shallowClone \\App\\OtherTest::testTwo"},
	{false, "@depends", "\\App\\OtherTest::class", "PA\\DependsOnClass(\\App\\OtherTest::class)", "#[PA\\DependsOnClass(\\App\\OtherTest::class)]", "@depends \\App\\OtherTest::class"},
	{false, "@covers", "\\App\\Foo::bar", "PA\\CoversMethod(\\App\\Foo::class, 'bar')", "#[PA\\CoversMethod(\\App\\Foo::class, 'bar')]", "@covers \\App\\Foo::bar"},
	{false, "@uses", "\\App\\Foo::bar", "PA\\UsesMethod(\\App\\Foo::class, 'bar')", "#[PA\\UsesMethod(\\App\\Foo::class, 'bar')]", "@uses \\App\\Foo::bar"},
	{false, "@requires", "PHP 8.1", "PA\\RequiresPhp('>= 8.1')", "#[PA\\RequiresPhp('>= 8.1')]", "@requires PHP >= 8.1"},
	{false, "@requires", "PHPUnit >= 10", "PA\\RequiresPhpunit('10')", "#[PA\\RequiresPhpunit('>= 10')]", "@requires PHPUnit >= 10"},
	{false, "@requires", "extension mysqli", "PA\\RequiresPhpExtension('mysqli')", "#[PA\\RequiresPhpExtension('mysqli')]", "@requires extension mysqli"},
	{false, "@requires", "function \\App\\Foo::bar", "PA\\RequiresMethod(\\App\\Foo::class, 'bar')", "#[PA\\RequiresMethod(\\App\\Foo::class, 'bar')]", "@requires function \\App\\Foo::bar"},
	{false, "@requires", "OS Linux", "PA\\RequiresOperatingSystem('Linux')", "#[PA\\RequiresOperatingSystem('Linux')]", "@requires OS Linux"},
	{false, "@requires", "setting date.timezone UTC", "PA\\RequiresSetting('date.timezone', 'UTC')", "#[PA\\RequiresSetting('date.timezone', 'UTC')]", "@requires setting date.timezone UTC"},
	{false, "@testWith", `[1, "a"]`, "PA\\TestWith([1, 'a'])", "#[PA\\TestWith([1, 'a'])]", `@testWith [1, "a"]`},
	{false, "@testWith", `[1, "a"]`, `PA\TestWithJson('[1,"a"]')`, "#[PA\\TestWith([1, 'a'])]", `@testWith [1, "a"]`},
	{true, "@small", "", "PA\\Small", "#[PA\\Small]", "@small"},
	{true, "@coversNothing", "", "PA\\CoversNothing", "#[PA\\CoversNothing]", "@coversNothing"},
	{true, "@runTestsInSeparateProcesses", "", "PA\\RunTestsInSeparateProcesses", "#[PA\\RunTestsInSeparateProcesses]", "@runTestsInSeparateProcesses"},
}

func TestCrossFormKeys(t *testing.T) {
	for _, tc := range crossForm {
		t.Run(tc.tag+" "+tc.text, func(t *testing.T) {
			fromTag := parseOne(t, phpSource(tc.class, tc.tag, tc.text, ""), tc.class)
			fromAttr := parseOne(t, phpSource(tc.class, "", "", tc.attr), tc.class)
			require.Empty(t, fromTag.msg)
			require.Empty(t, fromAttr.msg)
			assert.Same(t, fromTag.h, fromAttr.h)
			assert.Equal(t, fromTag.e.Key, fromAttr.e.Key)

			assert.Equal(t, tc.wantAttr, handler.AttributeText(fromTag.ctx, fromTag.h, fromTag.e))
			assert.Equal(t, tc.wantAttr, handler.AttributeText(fromAttr.ctx, fromAttr.h, fromAttr.e))
			tag, content := fromAttr.h.FormatAnnotation(fromAttr.ctx, fromAttr.e)
			assert.Equal(t, tc.wantAnnot, strings.TrimSpace(tag+" "+content))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, tc := range crossForm {
		t.Run(tc.tag+" "+tc.text, func(t *testing.T) {
			orig := parseOne(t, phpSource(tc.class, tc.tag, tc.text, ""), tc.class)

			tag, content := orig.h.FormatAnnotation(orig.ctx, orig.e)
			again := parseOne(t, phpSource(tc.class, tag, content, ""), tc.class)
			assert.Equal(t, orig.e.Key, again.e.Key)

			attr := strings.TrimSuffix(strings.TrimPrefix(handler.AttributeText(orig.ctx, orig.h, orig.e), "#["), "]")
			viaAttr := parseOne(t, phpSource(tc.class, "", "", attr), tc.class)
			assert.Equal(t, orig.e.Key, viaAttr.e.Key)
		})
	}
}

func TestMultiRowTestWith(t *testing.T) {
	p := parseOne(t, phpSource(false, "@testWith", "[1, 2]\n[3, \"a\"]", ""), false)
	require.Empty(t, p.msg)
	assert.Equal(t, handler.Key("[1, 2]\n[3, \"a\"]"), p.e.Key)
	tag, content := p.h.FormatAnnotation(p.ctx, p.e)
	assert.Equal(t, "@testWith", tag)
	assert.Equal(t, "[1, 2]\n[3, \"a\"]", content)
}

func TestParseDiagnostics(t *testing.T) {
	cases := []struct {
		name      string
		tag, text string
		attr      string
		code      diag.Code
	}{
		{"toggle word", "@backupGlobals", "maybe", "", diag.AnnInvalidValue},
		{"empty group", "@group", "", "", diag.AnnMissingParameter},
		{"visibility selector", "@covers", "\\App\\Foo::<public>", "", diag.AnnUnsupported},
		{"unknown requirement", "@requires", "nonsense here", "", diag.AnnUnsupported},
		{"bad provider", "@dataProvider", "not-a-method", "", diag.AnnInvalidValue},
		{"string class", "", "", "PA\\DataProviderExternal('App\\Foo', 'rows')", diag.AnnNonStaticClass},
		{"self class", "", "", "PA\\CoversClass(self::class)", diag.AnnNonStaticClass},
		{"missing argument", "", "", "PA\\Group()", diag.AnnMissingParameter},
		{"constant argument", "", "", "PA\\DataProvider(self::NAME)", diag.AnnInvalidValue},
		{"toggle type", "", "", "PA\\BackupGlobals('yes')", diag.AnnInvalidValue},
		{"json row", "", "", "PA\\TestWithJson('{bad')", diag.AnnInvalidValue},
		{"wrapped provider", "@dataProvider", "provideFoo\nfor the edge cases", "", diag.AnnUnsupported},
		{"provider with trailing text", "@dataProvider", "provideFoo and more", "", diag.AnnUnsupported},
		{"flag with text", "@test", "extra", "", diag.AnnUnsupported},
		{"wrapped group", "@group", "slow\nand more", "", diag.AnnUnsupported},
		{"wrapped depends", "@depends", "testOne\ntestTwo", "", diag.AnnUnsupported},
		{"wrapped covers", "@covers", "\\App\\Foo\n\\App\\Bar", "", diag.AnnUnsupported},
		{"wrapped requirement", "@requires", "PHP 8.1\nand more", "", diag.AnnUnsupported},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := parseOne(t, phpSource(false, tc.tag, tc.text, tc.attr), false)
			require.Len(t, p.msg, 1)
			m := p.msg[0].(*op.Message)
			assert.Equal(t, tc.code, m.Code)
			assert.False(t, m.Fixable)
		})
	}
}

func TestWrappedTestDoxJoinsLines(t *testing.T) {
	wrapped := parseOne(t, phpSource(false, "@testdox", "Checks that the widget\n    handles empty input", ""), false)
	single := parseOne(t, phpSource(false, "", "", "PA\\TestDox('Checks that the widget handles empty input')"), false)
	require.Empty(t, wrapped.msg)
	require.Empty(t, single.msg)
	assert.Equal(t, single.e.Key, wrapped.e.Key)
	assert.Equal(t, "PA\\TestDox('Checks that the widget handles empty input')",
		handler.AttributeText(wrapped.ctx, wrapped.h, wrapped.e))
}

func TestNormalizeVersionForms(t *testing.T) {
	for _, text := range []string{"PHP 8.1", "PHP >= 8.1", "PHP >=8.1", "PHP ge 8.1"} {
		p := parseOne(t, phpSource(false, "@requires", text, ""), false)
		tag, content := p.h.FormatAnnotation(p.ctx, p.e)
		assert.Equal(t, "@requires PHP >= 8.1", tag+" "+content, text)
	}
}

func TestRegistry(t *testing.T) {
	reg := handler.DefaultRegistry()

	h, ok := reg.Lookup("DataProvider")
	require.True(t, ok)
	assert.Equal(t, "dataprovider", h.Name)
	assert.True(t, reg.Known("covers"))
	assert.False(t, reg.Known("nope"))

	seen := map[string]string{}
	for _, h := range reg.Handlers() {
		for _, n := range h.AttributeNames {
			require.NotContains(t, seen, n, "attribute %s owned twice", n)
			seen[n] = h.Name
		}
	}

	without := reg.Without("covers", "testdox")
	_, ok = without.Lookup("covers")
	assert.False(t, ok)
	_, ok = without.Lookup("uses")
	assert.False(t, ok, "family names disable every member")
	_, ok = without.Lookup("testdox")
	assert.False(t, ok)
	assert.Len(t, without.Handlers(), len(reg.Handlers())-3)
	assert.NotEqual(t, reg.Fingerprint(), without.Fingerprint())

	for _, h := range reg.For(decl.Class) {
		assert.NotEqual(t, "test", h.Name)
	}
	assert.Empty(t, reg.For(decl.Property))
}

func TestScopeAllows(t *testing.T) {
	assert.True(t, handler.ScopeClass.Allows(decl.Enum))
	assert.False(t, handler.ScopeClass.Allows(decl.Method))
	assert.True(t, handler.ScopeMember.Allows(decl.Method))
	assert.False(t, handler.ScopeMember.Allows(decl.Function))
	assert.True(t, handler.ScopeBoth.Allows(decl.Trait))
}
