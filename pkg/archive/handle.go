package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Handle is the container file as seen by an engine. The file is opened on
// the first call to File and the result, error included, is reused.
type Handle struct {
	fs     afero.Fs
	path   string
	file   *lazy[afero.File]
	closed bool
}

func newHandle(fs afero.Fs, path string, flag int, perm os.FileMode) *Handle {
	return &Handle{
		fs:   fs,
		path: path,
		file: newLazy(func() (afero.File, error) {
			return fs.OpenFile(path, flag, perm)
		}),
	}
}

// Path returns the container path.
func (h *Handle) Path() string {
	return h.path
}

// Fs returns the filesystem the container lives on.
func (h *Handle) Fs() afero.Fs {
	return h.fs
}

// File opens the container on first use.
func (h *Handle) File() (afero.File, error) {
	if h.closed {
		return nil, invalidOperation("handle for %s is closed", h.path)
	}
	f, err := h.file.get()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", h.path, err)
	}
	return f, nil
}

// Opened reports whether the file has been opened.
func (h *Handle) Opened() bool {
	_, ok := h.file.peek()
	return ok
}

// Size returns the current size of the container file, opening it if needed.
func (h *Handle) Size() (int64, error) {
	f, err := h.File()
	if err != nil {
		return 0, err
	}
	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", h.path, err)
	}
	return info.Size(), nil
}

// TempFile creates a scratch file next to the container. The caller owns it.
func (h *Handle) TempFile(pattern string) (afero.File, error) {
	f, err := afero.TempFile(h.fs, filepath.Dir(h.path), pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file for %s: %w", h.path, err)
	}
	return f, nil
}

// Close closes the file if it was opened. A never-opened handle stays
// unopened. Further calls are no-ops.
func (h *Handle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true

	f, ok := h.file.peek()
	if !ok {
		return nil
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", h.path, err)
	}
	return nil
}
