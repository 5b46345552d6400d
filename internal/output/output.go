// Package output is the filesystem side of generation: wiping the output
// tree, creating directories and writing files atomically. Every failure is
// returned as an *Error so callers decide whether it is fatal.
package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Op names the filesystem operation that failed.
type Op string

const (
	OpRemove Op = "remove"
	OpMkdir  Op = "mkdir"
	OpWrite  Op = "write"
)

// ErrUnsafeRoot is returned by Guard for directories that must never be wiped.
var ErrUnsafeRoot = errors.New("refusing to clear a filesystem root, home or working directory")

// Error is a failed filesystem operation.
type Error struct {
	Op   Op
	Path string
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("output: %s %s: %v", e.Op, e.Path, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// FS is the set of filesystem operations the generator needs.
type FS interface {
	RemoveAll(path string) error
	MkdirAll(path string) error
	WriteFile(path string, data []byte) error
}

// Disk implements FS on the local filesystem.
type Disk struct {
	FileMode os.FileMode // zero means 0o644
	DirMode  os.FileMode // zero means 0o755
}

var _ FS = Disk{}

// RemoveAll deletes path and everything below it. A missing path is not an error.
func (d Disk) RemoveAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return &Error{Op: OpRemove, Path: path, Err: err}
	}
	return nil
}

// MkdirAll creates path and any missing parents.
func (d Disk) MkdirAll(path string) error {
	mode := d.DirMode
	if mode == 0 {
		mode = 0o755
	}
	if err := os.MkdirAll(path, mode); err != nil {
		return &Error{Op: OpMkdir, Path: path, Err: err}
	}
	return nil
}

// WriteFile writes data to path through a temporary file in the same
// directory and a rename, so readers never see a partial file. The parent
// directory must exist.
func (d Disk) WriteFile(path string, data []byte) error {
	mode := d.FileMode
	if mode == 0 {
		mode = 0o644
	}
	if err := writeFileAtomic(path, data, mode); err != nil {
		return &Error{Op: OpWrite, Path: path, Err: err}
	}
	return nil
}

func writeFileAtomic(path string, content []byte, mode os.FileMode) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-swagger2request-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	success := false
	defer func() {
		if tmpFile != nil {
			tmpFile.Close()
		}
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Chmod(mode); err != nil {
		return fmt.Errorf("set file permissions: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	tmpFile = nil

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	success = true
	return nil
}

// Guard rejects output roots whose removal would destroy more than generated
// code: a filesystem root, the user's home directory, the working directory
// or any directory containing one of them.
func Guard(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return &Error{Op: OpRemove, Path: root, Err: err}
	}
	abs = filepath.Clean(abs)
	unsafe := abs == filepath.Dir(abs)
	if home, err := os.UserHomeDir(); err == nil && contains(abs, home) {
		unsafe = true
	}
	if wd, err := os.Getwd(); err == nil && contains(abs, wd) {
		unsafe = true
	}
	if unsafe {
		return &Error{Op: OpRemove, Path: abs, Err: ErrUnsafeRoot}
	}
	return nil
}

// contains reports whether dir is parent or dir itself.
func contains(parent, dir string) bool {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(parent, dir)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
