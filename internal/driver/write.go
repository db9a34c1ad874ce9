package driver

import (
	"bytes"
	"os"
	"path/filepath"

	"attrsync/internal/fix"
	"attrsync/internal/source"
)

// writeBack replaces the file with content unless it no longer holds
// original. The write goes through a temp file and a rename.
func writeBack(path string, original, content []byte) (err error) {
	// #nosec G304 -- path is provided by the caller
	current, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if !bytes.Equal(current, original) {
		return &fix.ConflictError{
			Span:     source.Span{},
			Reason:   "file changed on disk since it was read",
			Expected: string(original),
			Actual:   string(current),
		}
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), ".attrsync-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if _, err = f.Write(content); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Chmod(info.Mode().Perm()); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
