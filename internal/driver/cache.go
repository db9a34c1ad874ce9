package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Increment when the payload layout changes.
const diskCacheSchemaVersion uint16 = 1

// Digest is a sha256 over a file's content and the config fingerprint.
type Digest [32]byte

// CacheKey combines the raw file content with the settings fingerprint.
func CacheKey(content []byte, fingerprint string) Digest {
	h := sha256.New()
	_, _ = h.Write(content)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(fingerprint))
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// DiskCache remembers files that were clean under a given configuration.
// Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the msgpack record stored per key.
type DiskPayload struct {
	Schema  uint16
	Path    string
	Clean   bool
	Checked int64 // unix seconds
}

// OpenDiskCache opens the cache under dir, or under the user cache
// directory for app when dir is empty.
func OpenDiskCache(dir, app string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, app)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "files", hexKey[:2], hexKey+".mp")
}

// Put writes payload atomically.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	payload.Schema = diskCacheSchemaVersion
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads the payload for key. A payload of another schema counts as a
// miss.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return out.Schema == diskCacheSchemaVersion, nil
}

// MarkClean records that the content under key produced no diagnostics.
func (c *DiskCache) MarkClean(key Digest, path string) error {
	return c.Put(key, &DiskPayload{Path: path, Clean: true, Checked: time.Now().Unix()})
}

// IsClean reports whether key was recorded as clean.
func (c *DiskCache) IsClean(key Digest) (bool, error) {
	var p DiskPayload
	ok, err := c.Get(key, &p)
	if err != nil || !ok {
		return false, err
	}
	return p.Clean, nil
}

// DropAll invalidates the cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}
