package sinks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
)

// ErrUnsafePath is returned for entry keys that would escape the sink root.
var ErrUnsafePath = errors.New("unsafe path")

type FolderSink struct {
	fs afero.Fs
}

func NewFolderSink(fs afero.Fs) *FolderSink {
	return &FolderSink{fs: fs}
}

// NewFolderSinkFromPath creates path on fs and returns a sink rooted there.
func NewFolderSinkFromPath(fs afero.Fs, path string) (*FolderSink, error) {
	cleanPath := filepath.Clean(path)

	if err := fs.MkdirAll(cleanPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", cleanPath, err)
	}

	return NewFolderSink(afero.NewBasePathFs(fs, cleanPath)), nil
}

func (s *FolderSink) Name() string {
	return fmt.Sprintf("folder(%s)", s.fs.Name())
}

func (s *FolderSink) Kind() string {
	return "folder"
}

func (s *FolderSink) Write(ctx context.Context, path string, data io.Reader) (err error) {
	local := filepath.FromSlash(path)
	if !filepath.IsLocal(local) {
		return fmt.Errorf("%w: %q", ErrUnsafePath, path)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	dir := filepath.Dir(local)
	if dir != "" && dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	f, err := s.fs.Create(local)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if _, err = io.Copy(f, data); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}

	return nil
}

func (s *FolderSink) Close(ctx context.Context) error {
	return nil
}

var _ Sink = (*FolderSink)(nil)
