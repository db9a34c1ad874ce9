// Package config loads .attrsync.toml project settings.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"attrsync/internal/handler"
)

// FileName is the configuration file looked up by Find.
const FileName = ".attrsync.toml"

// DefaultMaxPasses bounds the fix loop when the config does not set max_passes.
const DefaultMaxPasses = 5

// Config mirrors .attrsync.toml.
type Config struct {
	RetainLegacy bool     `toml:"retain_legacy"`
	MaxPasses    int      `toml:"max_passes"`
	Families     Families `toml:"families"`
	Files        Files    `toml:"files"`
	Cache        Cache    `toml:"cache"`

	// Path is the file the config was loaded from, empty for defaults.
	Path string `toml:"-"`
	// Root is the directory include/exclude patterns are relative to.
	Root string `toml:"-"`
}

type Families struct {
	Disable []string `toml:"disable"`
}

type Files struct {
	Include    []string `toml:"include"`
	Exclude    []string `toml:"exclude"`
	Extensions []string `toml:"extensions"`
}

type Cache struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		MaxPasses: DefaultMaxPasses,
		Files:     Files{Extensions: []string{".php"}},
		Cache:     Cache{Enabled: true},
	}
}

// Find walks up from startDir to locate .attrsync.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the config governing target. Without a config file
// the defaults are returned, rooted at target's directory.
func Discover(target string) (Config, error) {
	path, ok, err := Find(target)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		cfg := Default()
		root, err := filepath.Abs(target)
		if err != nil {
			return Config{}, fmt.Errorf("failed to resolve %q: %w", target, err)
		}
		if info, err := os.Stat(root); err == nil && !info.IsDir() {
			root = filepath.Dir(root)
		}
		cfg.Root = root
		return cfg, nil
	}
	return Load(path)
}

// Load reads one config file. Keys absent from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if meta.IsDefined("max_passes") && cfg.MaxPasses < 1 {
		return Config{}, fmt.Errorf("%s: max_passes must be at least 1", path)
	}
	if meta.IsDefined("files", "extensions") && len(cfg.Files.Extensions) == 0 {
		return Config{}, fmt.Errorf("%s: [files].extensions must not be empty", path)
	}
	for i, ext := range cfg.Files.Extensions {
		ext = strings.TrimSpace(ext)
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Files.Extensions[i] = ext
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	cfg.Path = abs
	cfg.Root = filepath.Dir(abs)
	if cfg.Cache.Dir != "" && !filepath.IsAbs(cfg.Cache.Dir) {
		cfg.Cache.Dir = filepath.Join(cfg.Root, cfg.Cache.Dir)
	}
	return cfg, nil
}

// Validate rejects family names the registry does not know.
func (c Config) Validate(reg *handler.Registry) error {
	for _, name := range c.Families.Disable {
		if !reg.Known(name) {
			return fmt.Errorf("%s: [families].disable: unknown family %q", c.source(), name)
		}
	}
	return nil
}

// Registry returns reg without the disabled families.
func (c Config) Registry(reg *handler.Registry) *handler.Registry {
	if len(c.Families.Disable) == 0 {
		return reg
	}
	return reg.Without(c.Families.Disable...)
}

// Fingerprint identifies every setting that changes engine output. It is
// combined with file contents to key the disk cache.
func (c Config) Fingerprint(reg *handler.Registry) string {
	h := sha256.New()
	disabled := slices.Clone(c.Families.Disable)
	for i := range disabled {
		disabled[i] = strings.ToLower(disabled[i])
	}
	slices.Sort(disabled)
	_, _ = h.Write([]byte("retain=" + strconv.FormatBool(c.RetainLegacy) + "\n"))
	_, _ = h.Write([]byte("passes=" + strconv.Itoa(c.MaxPasses) + "\n"))
	_, _ = h.Write([]byte("disable=" + strings.Join(disabled, ",") + "\n"))
	_, _ = h.Write([]byte("handlers=" + c.Registry(reg).Fingerprint() + "\n"))
	return hex.EncodeToString(h.Sum(nil))
}

// Match reports whether path (absolute, or relative to Root) is a file the
// config asks to process.
func (c Config) Match(path string) bool {
	if !c.hasExtension(path) {
		return false
	}
	rel := c.relative(path)
	if len(c.Files.Include) > 0 && !slices.ContainsFunc(c.Files.Include, func(p string) bool { return underPattern(rel, p) }) {
		return false
	}
	return !c.Excluded(path)
}

// Excluded reports whether path falls under an exclude pattern. Directory
// walks use it to prune whole subtrees.
func (c Config) Excluded(path string) bool {
	rel := c.relative(path)
	return slices.ContainsFunc(c.Files.Exclude, func(p string) bool { return underPattern(rel, p) })
}

func (c Config) hasExtension(path string) bool {
	exts := c.Files.Extensions
	if len(exts) == 0 {
		exts = []string{".php"}
	}
	ext := filepath.Ext(path)
	return slices.ContainsFunc(exts, func(e string) bool { return strings.EqualFold(e, ext) })
}

func (c Config) relative(path string) string {
	if c.Root == "" || !filepath.IsAbs(path) {
		return filepath.ToSlash(filepath.Clean(path))
	}
	rel, err := filepath.Rel(c.Root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (c Config) source() string {
	if c.Path == "" {
		return FileName
	}
	return c.Path
}

// underPattern matches rel against a directory prefix or a glob.
func underPattern(rel, pattern string) bool {
	pattern = strings.TrimSuffix(filepath.ToSlash(filepath.Clean(pattern)), "/")
	if pattern == "." || pattern == "" {
		return true
	}
	if rel == pattern || strings.HasPrefix(rel, pattern+"/") {
		return true
	}
	if ok, err := filepath.Match(pattern, rel); err == nil && ok {
		return true
	}
	if ok, err := filepath.Match(pattern, filepath.Base(rel)); err == nil && ok {
		return true
	}
	return false
}
