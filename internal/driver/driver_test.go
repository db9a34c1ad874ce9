package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"attrsync/internal/config"
	"attrsync/internal/diag"
	"attrsync/internal/fix"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const defaultClassSource = `<?php
namespace App\Tests;

/**
 * @coversDefaultClass \App\Foo
 */
final class FooTest
{
    /**
     * @covers ::bar
     */
    public function testBar(): void {}
}
`

const flagSource = `<?php
final class FooTest
{
    /**
     * @test
     */
    public function itWorks(): void {}
}
`

const cleanSource = `<?php
final class FooTest
{
    #[\PHPUnit\Framework\Attributes\Test]
    public function itWorks(): void {}
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func codes(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestFixReachesFixedPoint(t *testing.T) {
	path := writeFile(t, t.TempDir(), "FooTest.php", defaultClassSource)
	opts := Options{Mode: ModeFix, Config: config.Default()}

	res, err := ProcessFile(context.Background(), path, opts)
	require.NoError(t, err)
	assert.True(t, res.Written)
	assert.Equal(t, 4, res.Passes)
	assert.False(t, res.Bag.HasErrors())
	assert.Zero(t, res.Bag.CountFixable())

	out := readFile(t, path)
	assert.NotContains(t, out, "@covers")
	assert.NotContains(t, out, "/**")
	assert.Contains(t, out, `Attributes\CoversMethod(`)
	assert.Contains(t, out, `Foo::class, 'bar')]`)

	again, err := ProcessFile(context.Background(), path, opts)
	require.NoError(t, err)
	assert.False(t, again.Changed())
	assert.False(t, again.Written)
	assert.Equal(t, 1, again.Passes)
	assert.Zero(t, again.Bag.Len())
}

func TestFixedDiagnosticsAreMarked(t *testing.T) {
	path := writeFile(t, t.TempDir(), "FooTest.php", flagSource)
	res, err := ProcessFile(context.Background(), path, Options{Mode: ModeFix, Config: config.Default()})
	require.NoError(t, err)
	require.Equal(t, 1, res.Bag.Len())
	d := res.Bag.Items()[0]
	assert.Equal(t, diag.AnnDeprecated, d.Code)
	assert.True(t, d.Fixable)
	assert.True(t, d.Fixed)
}

func TestCheckDoesNotWrite(t *testing.T) {
	path := writeFile(t, t.TempDir(), "FooTest.php", flagSource)
	res, err := ProcessFile(context.Background(), path, Options{Mode: ModeCheck, Config: config.Default()})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Passes)
	assert.False(t, res.Changed())
	assert.Equal(t, []diag.Code{diag.AnnDeprecated}, codes(res.Bag))
	assert.Equal(t, 1, res.Bag.CountFixable())
	assert.Equal(t, flagSource, readFile(t, path))
}

func TestDryRunComputesOutputOnly(t *testing.T) {
	path := writeFile(t, t.TempDir(), "FooTest.php", flagSource)
	res, err := ProcessFile(context.Background(), path, Options{Mode: ModeDryRun, Config: config.Default()})
	require.NoError(t, err)
	assert.True(t, res.Changed())
	assert.False(t, res.Written)
	assert.Contains(t, string(res.Output), "#[PHPUnit\\Framework\\Attributes\\Test]")
	assert.Equal(t, flagSource, readFile(t, path))
}

func TestPassLimit(t *testing.T) {
	path := writeFile(t, t.TempDir(), "FooTest.php", flagSource)
	cfg := config.Default()
	cfg.MaxPasses = 1
	res, err := ProcessFile(context.Background(), path, Options{Mode: ModeFix, Config: cfg})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Passes)
	assert.Contains(t, codes(res.Bag), diag.EngPassLimit)
	assert.True(t, res.Written)
}

func TestRetainAddsMissingAnnotations(t *testing.T) {
	path := writeFile(t, t.TempDir(), "FooTest.php", cleanSource)
	cfg := config.Default()
	cfg.RetainLegacy = true
	res, err := ProcessFile(context.Background(), path, Options{Mode: ModeFix, Config: cfg})
	require.NoError(t, err)
	assert.True(t, res.Written)
	out := readFile(t, path)
	assert.Contains(t, out, "@test")
	assert.Contains(t, out, "#[\\PHPUnit\\Framework\\Attributes\\Test]")
}

func TestCRLFAndBOMArePreserved(t *testing.T) {
	src := "\xEF\xBB\xBF" + strings.ReplaceAll(flagSource, "\n", "\r\n")
	path := writeFile(t, t.TempDir(), "FooTest.php", src)
	res, err := ProcessFile(context.Background(), path, Options{Mode: ModeFix, Config: config.Default()})
	require.NoError(t, err)
	require.True(t, res.Written)

	out := readFile(t, path)
	assert.True(t, strings.HasPrefix(out, "\xEF\xBB\xBF<?php\r\n"))
	assert.NotContains(t, strings.ReplaceAll(out, "\r\n", ""), "\n")
	assert.Contains(t, out, "#[PHPUnit\\Framework\\Attributes\\Test]\r\n")
}

func TestMissingFileIsReported(t *testing.T) {
	res, err := ProcessFile(context.Background(), filepath.Join(t.TempDir(), "Nope.php"), Options{Config: config.Default()})
	require.NoError(t, err)
	assert.Equal(t, []diag.Code{diag.IOLoadFileError}, codes(res.Bag))
}

func TestWriteBackDetectsConcurrentChange(t *testing.T) {
	path := writeFile(t, t.TempDir(), "FooTest.php", "<?php // edited\n")
	err := writeBack(path, []byte("<?php\n"), []byte("<?php // fixed\n"))
	var ce *fix.ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "<?php\n", ce.Expected)
	assert.Equal(t, "<?php // edited\n", ce.Actual)
	assert.Equal(t, "<?php // edited\n", readFile(t, path))
}

func TestCacheSkipsCleanFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "FooTest.php", cleanSource)
	cache, err := OpenDiskCache(filepath.Join(dir, ".cache"), "attrsync")
	require.NoError(t, err)
	opts := Options{Mode: ModeCheck, Config: config.Default(), Cache: cache}

	first, err := ProcessFile(context.Background(), path, opts)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Zero(t, first.Bag.Len())

	second, err := ProcessFile(context.Background(), path, opts)
	require.NoError(t, err)
	assert.True(t, second.Cached)

	opts.Config.RetainLegacy = true
	third, err := ProcessFile(context.Background(), path, opts)
	require.NoError(t, err)
	assert.False(t, third.Cached, "a config change invalidates the entry")
	assert.Equal(t, []diag.Code{diag.AnnMissing}, codes(third.Bag))
}

func TestCacheIgnoresDirtyFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "FooTest.php", flagSource)
	cache, err := OpenDiskCache(filepath.Join(dir, ".cache"), "attrsync")
	require.NoError(t, err)

	for range 2 {
		res, err := ProcessFile(context.Background(), path, Options{Mode: ModeCheck, Config: config.Default(), Cache: cache})
		require.NoError(t, err)
		assert.False(t, res.Cached)
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(evt Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
}

func TestRunProcessesEveryFile(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, name := range []string{"ATest.php", "BTest.php", "CTest.php", "DTest.php"} {
		files = append(files, writeFile(t, dir, name, flagSource))
	}
	files = append(files, writeFile(t, dir, "ETest.php", cleanSource))
	sink := &recordingSink{}

	results, sum, err := Run(context.Background(), files, Options{Mode: ModeFix, Config: config.Default(), Jobs: 2, Progress: sink})
	require.NoError(t, err)
	require.Len(t, results, len(files))
	for i, r := range results {
		assert.Equal(t, files[i], r.Path)
	}
	assert.Equal(t, 5, sum.Files)
	assert.Equal(t, 4, sum.Changed)
	assert.Equal(t, 4, sum.Written)
	assert.Zero(t, sum.Errors)
	assert.Zero(t, sum.Fixable)

	done := 0
	for _, e := range sink.events {
		if e.Status == StatusDone {
			done++
		}
	}
	assert.Equal(t, len(files), done)
}

func TestRunStopsOnCancel(t *testing.T) {
	path := writeFile(t, t.TempDir(), "FooTest.php", flagSource)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := Run(ctx, []string{path}, Options{Config: config.Default()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tests/Unit/ATest.php", cleanSource)
	writeFile(t, dir, "tests/Unit/notes.md", "x")
	writeFile(t, dir, "tests/fixtures/Broken.php", "<?php")
	writeFile(t, dir, "vendor/lib/VTest.php", cleanSource)
	writeFile(t, dir, "src/Foo.php", "<?php")

	cfg := config.Default()
	cfg.Root = dir
	cfg.Files.Include = []string{"tests"}
	cfg.Files.Exclude = []string{"tests/fixtures"}

	files, err := ListFiles(dir, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "tests", "Unit", "ATest.php")}, files)

	_, err = ListFiles(filepath.Join(dir, "tests", "Unit", "notes.md"), cfg)
	assert.Error(t, err)
}
