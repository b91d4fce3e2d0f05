// Package scratch materializes a byte stream into a uniquely named
// temporary file whose lifetime is bounded by a callback.
package scratch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Prefix starts every scratch file name.
const Prefix = "vidmeta-"

// File is a materialized temporary file.
type File struct {
	path string
	size int64
	once sync.Once
	err  error
}

// Path returns the directory given to Materialize joined with the
// generated name. It is relative when that directory is.
func (f *File) Path() string { return f.path }

// Size returns the number of bytes written.
func (f *File) Size() int64 { return f.size }

// Remove deletes the file. Safe to call more than once; a file that is
// already gone is not an error.
func (f *File) Remove() error {
	f.once.Do(func() {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			f.err = fmt.Errorf("remove scratch file: %w", err)
		}
	})
	return f.err
}

// Materialize copies r into <dir>/vidmeta-<uuid><ext>. An empty dir uses
// os.TempDir. ext may be given with or without its leading dot. On any
// failure the partial file is removed.
func Materialize(r io.Reader, dir, ext string) (*File, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	path := filepath.Join(dir, Prefix+uuid.NewString()+ext)

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create scratch file: %w", err)
	}
	n, err := io.Copy(out, r)
	if err == nil {
		err = out.Sync()
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("write scratch file: %w", err)
	}
	return &File{path: path, size: n}, nil
}

// With materializes r, calls fn with the file, and removes it on every exit
// path including a panic in fn. The callback error and the removal error
// are joined.
func With(r io.Reader, dir, ext string, fn func(f *File) error) (err error) {
	f, err := Materialize(r, dir, ext)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := f.Remove(); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()
	return fn(f)
}
