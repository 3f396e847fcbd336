// Package fileutil provides atomic file operations over a billy.Filesystem.
//
// Unit output goes through an osfs rooted at the output directory in
// production and through memfs in tests.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"
)

// ErrSymlinkNotSupported indicates symlinks are not supported for this operation.
var ErrSymlinkNotSupported = errors.New("symlinks are not supported")

// syncer is implemented by files backed by the operating system.
type syncer interface {
	Sync() error
}

// WriteFile writes data to name atomically: the content goes to a temp file
// in the same directory which is then renamed over name. Parent directories
// are created as needed. perm is subject to the process umask on disk.
func WriteFile(fs billy.Filesystem, name string, data []byte, perm os.FileMode) error {
	dir := path.Dir(name)
	if dir != "." {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create parent directories: %w", err)
		}
	}

	tmpName := path.Join(dir, ".tmp-"+uuid.NewString())
	tmp, err := fs.OpenFile(tmpName, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	// Ensure cleanup on any failure
	success := false
	defer func() {
		if !success {
			tmp.Close()
			fs.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if s, ok := tmp.(syncer); ok {
		if err := s.Sync(); err != nil {
			return fmt.Errorf("sync temp file: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := fs.Rename(tmpName, name); err != nil {
		return fmt.Errorf("rename to destination: %w", err)
	}

	success = true
	return nil
}

// CopyFile copies src to dst within fs, atomically and keeping permissions.
// Returns ErrSymlinkNotSupported if src is a symlink.
func CopyFile(fs billy.Filesystem, src, dst string) error {
	info, err := fs.Lstat(src)
	if err != nil {
		return err // Return unwrapped to preserve os.IsNotExist compatibility
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("%s: %w", src, ErrSymlinkNotSupported)
	}

	f, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	return WriteFile(fs, dst, data, info.Mode().Perm())
}

// ReadFile returns the content of name, or nil and false if it does not exist.
func ReadFile(fs billy.Filesystem, name string) ([]byte, bool, error) {
	data, err := util.ReadFile(fs, name)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Diff returns a unified diff turning old into new, labelled with name.
// Identical content yields an empty string.
func Diff(name string, old, new []byte) (string, error) {
	from, to := "a/"+name, "b/"+name
	if old == nil {
		from = "/dev/null"
	}
	if new == nil {
		to = "/dev/null"
	}

	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(old),
		B:        splitLines(new),
		FromFile: from,
		ToFile:   to,
		Context:  3,
	})
}

// splitLines splits data for diffing. Empty content has no lines at all.
func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	return difflib.SplitLines(string(data))
}
