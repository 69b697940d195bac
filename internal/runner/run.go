// Package runner carries out the archivekit commands over an archive
// factory.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"

	v1 "github.com/infracollect/archivekit/apis/v1"
	"github.com/infracollect/archivekit/internal/config"
	"github.com/infracollect/archivekit/internal/sinks"
	"github.com/infracollect/archivekit/pkg/archive"
	"github.com/infracollect/archivekit/pkg/archive/backends"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

type Runner struct {
	logger  *zap.Logger
	fs      afero.Fs
	factory *archive.Factory
	backend archive.Backend
}

// New creates a runner opening containers on fs with the backend and
// compression of cfg.
func New(logger *zap.Logger, fs afero.Fs, cfg v1.Config) *Runner {
	return &Runner{
		logger: logger,
		fs:     fs,
		factory: backends.NewFactory(
			archive.WithFs(fs),
			archive.WithLogger(logger.Named("archive")),
			archive.WithOptions(config.Options(cfg)),
		),
		backend: config.Backend(cfg),
	}
}

// Backend returns the backend containers are opened with.
func (r *Runner) Backend() archive.Backend {
	return r.backend
}

// List returns the entry keys of the container at path.
func (r *Runner) List(archivePath string) (keys []string, err error) {
	a, err := r.factory.OpenReadOnly(archivePath, r.backend)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, a.Close())
	}()

	entries, err := a.Entries()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", archivePath, err)
	}

	return lo.Map(entries, func(e archive.Entry, _ int) string { return e.Key() }), nil
}

// Cat copies the content of entry key to w.
func (r *Runner) Cat(archivePath, key string, w io.Writer) (err error) {
	a, err := r.factory.OpenReadOnly(archivePath, r.backend)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.Close())
	}()

	entry, err := a.Entry(key)
	if err != nil {
		return err
	}
	if !entry.Exists() {
		return fmt.Errorf("%w: entry %q in %s", archive.ErrNotFound, key, archivePath)
	}

	rc, err := entry.Open()
	if err != nil {
		return fmt.Errorf("failed to open entry %q: %w", key, err)
	}
	defer func() {
		err = errors.Join(err, rc.Close())
	}()

	if _, err := io.Copy(w, rc); err != nil {
		return fmt.Errorf("failed to read entry %q: %w", key, err)
	}
	return nil
}

// Add writes the files of src into the container at archivePath, creating it when
// needed. Each file is stored under its slash separated path. Existing
// entries with the same key are replaced.
func (r *Runner) Add(ctx context.Context, archivePath string, src afero.Fs, files []string) (err error) {
	keys := make([]string, 0, len(files))
	for _, file := range files {
		if !filepath.IsLocal(file) {
			return fmt.Errorf("%w: %q is not a local path", archive.ErrInvalidArgument, file)
		}
		keys = append(keys, filepath.ToSlash(filepath.Clean(file)))
	}

	a, err := r.factory.OpenWrite(archivePath, r.backend)
	if err != nil {
		return err
	}
	sink := sinks.NewContainerSink(a)
	defer func() {
		err = errors.Join(err, sink.Close(ctx))
	}()

	for i, file := range files {
		if err := r.addFile(ctx, sink, src, file, keys[i]); err != nil {
			return err
		}
	}

	r.logger.Info("added files", zap.String("path", archivePath), zap.Int("count", len(files)), zap.Stringer("mode", a.Mode()))
	return nil
}

func (r *Runner) addFile(ctx context.Context, sink sinks.Sink, src afero.Fs, file, key string) (err error) {
	f, err := src.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", file, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	return sink.Write(ctx, key, f)
}

// Export writes the entries of the container at archivePath matching any of
// patterns (all entries when patterns is empty) to sink. Patterns use
// path.Match syntax. The sink is closed whether or not the export succeeds.
// It returns the number of entries exported.
func (r *Runner) Export(ctx context.Context, archivePath string, sink sinks.Sink, patterns []string) (int, error) {
	return r.export(ctx, archivePath, r.backend, sink, patterns)
}

func (r *Runner) export(ctx context.Context, archivePath string, backend archive.Backend, sink sinks.Sink, patterns []string) (n int, err error) {
	defer func() {
		if cerr := sink.Close(ctx); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close sink: %w", cerr))
		}
	}()

	for _, pattern := range patterns {
		if _, err := path.Match(pattern, ""); err != nil {
			return 0, fmt.Errorf("%w: bad pattern %q: %v", archive.ErrInvalidArgument, pattern, err)
		}
	}

	a, err := r.factory.OpenReadOnly(archivePath, backend)
	if err != nil {
		return 0, err
	}
	defer func() {
		err = errors.Join(err, a.Close())
	}()

	entries, err := a.Entries()
	if err != nil {
		return 0, fmt.Errorf("failed to list %s: %w", archivePath, err)
	}

	selected := lo.Filter(entries, func(e archive.Entry, _ int) bool {
		return matchesAny(e.Key(), patterns)
	})

	for _, entry := range selected {
		if err := exportEntry(ctx, entry, sink); err != nil {
			return n, err
		}
		n++
	}

	r.logger.Info("exported entries", zap.String("path", archivePath), zap.Int("count", n), zap.String("sink", sink.Name()))
	return n, nil
}

func exportEntry(ctx context.Context, entry archive.Entry, sink sinks.Sink) (err error) {
	rc, err := entry.Open()
	if err != nil {
		return fmt.Errorf("failed to open entry %q: %w", entry.Key(), err)
	}
	defer func() {
		err = errors.Join(err, rc.Close())
	}()

	if err := sink.Write(ctx, entry.Key(), rc); err != nil {
		return fmt.Errorf("failed to export entry %q: %w", entry.Key(), err)
	}
	return nil
}

// Repack copies every entry of the container at src, opened with from, into
// a new container at dst using the runner backend and compression. dst must
// not exist or be empty. When the copy fails dst is removed.
func (r *Runner) Repack(ctx context.Context, src string, from archive.Backend, dst string) (n int, err error) {
	if filepath.Clean(src) == filepath.Clean(dst) {
		return 0, fmt.Errorf("%w: source and destination are the same container", archive.ErrInvalidArgument)
	}
	if info, err := r.fs.Stat(dst); err == nil && info.Size() > 0 {
		return 0, fmt.Errorf("%w: destination %s already exists", archive.ErrInvalidArgument, dst)
	}

	out, err := r.factory.OpenWrite(dst, r.backend)
	if err != nil {
		return 0, err
	}

	n, err = r.export(ctx, src, from, sinks.NewContainerSink(out), nil)
	if err != nil {
		if rerr := r.fs.Remove(dst); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
			err = errors.Join(err, fmt.Errorf("failed to remove %s: %w", dst, rerr))
		}
		return n, err
	}
	return n, nil
}

func matchesAny(key string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	return lo.SomeBy(patterns, func(pattern string) bool {
		ok, _ := path.Match(pattern, key)
		return ok
	})
}
