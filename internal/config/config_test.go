package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attrsync/internal/handler"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	want := writeConfig(t, root, "max_passes = 3\n")
	nested := filepath.Join(root, "tests", "Unit")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	file := filepath.Join(nested, "FooTest.php")
	require.NoError(t, os.WriteFile(file, []byte("<?php\n"), 0o600))

	for _, start := range []string{nested, file} {
		got, ok, err := Find(start)
		require.NoError(t, err)
		require.True(t, ok, start)
		assert.Equal(t, want, got)
	}
}

func TestDiscoverWithoutFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxPasses, cfg.MaxPasses)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, []string{".php"}, cfg.Files.Extensions)
	assert.Empty(t, cfg.Path)
}

func TestLoadKeepsDefaultsForAbsentKeys(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
retain_legacy = true

[families]
disable = ["testdox", "covers"]

[files]
include = ["tests"]
exclude = ["tests/fixtures"]

[cache]
dir = ".cache/attrsync"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.RetainLegacy)
	assert.Equal(t, DefaultMaxPasses, cfg.MaxPasses)
	assert.Equal(t, []string{".php"}, cfg.Files.Extensions)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, filepath.Join(dir, ".cache", "attrsync"), cfg.Cache.Dir)
	assert.Equal(t, dir, cfg.Root)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"syntax", "max_passes = \n", "failed to parse TOML"},
		{"unknown key", "retain = true\n", `unknown key "retain"`},
		{"zero passes", "max_passes = 0\n", "max_passes must be at least 1"},
		{"empty extensions", "[files]\nextensions = []\n", "extensions must not be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.body)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateFamilies(t *testing.T) {
	reg := handler.DefaultRegistry()
	cfg := Default()
	cfg.Families.Disable = []string{"TestDox", "covers", "flag"}
	require.NoError(t, cfg.Validate(reg))

	cfg.Families.Disable = []string{"nope"}
	err := cfg.Validate(reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown family "nope"`)
}

func TestRegistryDropsDisabled(t *testing.T) {
	reg := handler.DefaultRegistry()
	cfg := Default()
	cfg.Families.Disable = []string{"testdox"}
	filtered := cfg.Registry(reg)
	_, ok := filtered.Lookup("testdox")
	assert.False(t, ok)
	_, ok = filtered.Lookup("group")
	assert.True(t, ok)
	assert.Len(t, filtered.Handlers(), len(reg.Handlers())-1)
}

func TestFingerprint(t *testing.T) {
	reg := handler.DefaultRegistry()
	a := Default()
	b := Default()
	assert.Equal(t, a.Fingerprint(reg), b.Fingerprint(reg))

	b.RetainLegacy = true
	assert.NotEqual(t, a.Fingerprint(reg), b.Fingerprint(reg))

	c := Default()
	c.Families.Disable = []string{"Covers", "testdox"}
	d := Default()
	d.Families.Disable = []string{"testdox", "covers"}
	assert.Equal(t, c.Fingerprint(reg), d.Fingerprint(reg))
	assert.NotEqual(t, a.Fingerprint(reg), c.Fingerprint(reg))
}

func TestMatch(t *testing.T) {
	root := filepath.FromSlash("/project")
	cfg := Default()
	cfg.Root = root
	cfg.Files.Include = []string{"tests"}
	cfg.Files.Exclude = []string{"tests/fixtures", "*Stub.php"}

	tests := []struct {
		path string
		want bool
	}{
		{"tests/Unit/FooTest.php", true},
		{"tests/Unit/FooTest.PHP", true},
		{"tests/Unit/notes.txt", false},
		{"src/Foo.php", false},
		{"tests/fixtures/Broken.php", false},
		{"tests/Unit/ClockStub.php", false},
		{"testsuite/FooTest.php", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			abs := filepath.Join(root, filepath.FromSlash(tt.path))
			assert.Equal(t, tt.want, cfg.Match(abs))
		})
	}
	assert.True(t, cfg.Excluded(filepath.Join(root, "tests", "fixtures")))
}
