// Package fileio opens the source of a run and writes its target through a
// temporary file, so a failed or cancelled run never leaves a partial
// target behind and the source may be overwritten in place.
package fileio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fieldOfView/ArcWelderLib/config"
)

// Source is an open source file.
type Source struct {
	*os.File
	Size int64
}

// Open opens path for reading. A missing file is a config.ErrMissingSource
// error.
func Open(path string) (*Source, error) {
	if path == "" {
		return nil, config.NewError(config.ErrMissingSource, "source", nil, "no source file given")
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, config.NewError(config.ErrMissingSource, "source", path, "file does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		f.Close()
		return nil, config.NewError(config.ErrMissingSource, "source", path, "is a directory")
	}
	return &Source{File: f, Size: info.Size()}, nil
}

// Size returns the size of the file at path.
func Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// DefaultTarget names the output of a run when none is given: the source
// with suffix inserted before the extension, or the source itself when
// suffix is empty.
func DefaultTarget(source, suffix string) string {
	if suffix == "" {
		return source
	}
	ext := filepath.Ext(source)
	return strings.TrimSuffix(source, ext) + suffix + ext
}

// SameFile reports whether a and b name the same file. A target that does
// not exist yet is never the same as the source.
func SameFile(a, b string) bool {
	ia, err := os.Stat(a)
	if err != nil {
		return false
	}
	ib, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ia, ib)
}

// Target is a buffered temporary file that becomes the target path on
// Commit.
type Target struct {
	f    *os.File
	w    *bufio.Writer
	path string

	// Replaces is set when the target is the source file.
	Replaces bool
}

var _ io.Writer = &Target{}

// Create opens a temporary file next to path.
func Create(source, path string) (*Target, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create target directory: %w", err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	return &Target{
		f:        f,
		w:        bufio.NewWriterSize(f, 64*1024),
		path:     path,
		Replaces: SameFile(source, path),
	}, nil
}

func (t *Target) Write(p []byte) (int, error) {
	return t.w.Write(p)
}

// Path returns the final path of the target.
func (t *Target) Path() string { return t.path }

// TempPath returns the path written to until Commit.
func (t *Target) TempPath() string { return t.f.Name() }

// Commit flushes and closes the temporary file and renames it over the
// target.
func (t *Target) Commit() error {
	tmp := t.f.Name()
	if err := t.w.Flush(); err != nil {
		t.f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write target: %w", err)
	}
	if err := t.f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, t.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Abort removes the temporary file. The target is left untouched.
func (t *Target) Abort() error {
	t.f.Close()
	if err := os.Remove(t.f.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove temp file: %w", err)
	}
	return nil
}
