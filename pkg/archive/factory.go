package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Extension is the only container extension the factory accepts. It is
// compared case-insensitively.
const Extension = ".zip"

// IsSupported reports whether path carries the container extension.
func IsSupported(path string) bool {
	return strings.EqualFold(filepath.Ext(path), Extension)
}

// Factory opens archives. It is the only place a backend engine is chosen.
type Factory struct {
	registry *Registry
	fs       afero.Fs
	logger   *zap.Logger
	opts     Options
	perm     os.FileMode
}

type FactoryOption func(*Factory)

// WithFs sets the filesystem containers are opened on. Defaults to the OS.
func WithFs(fs afero.Fs) FactoryOption {
	return func(f *Factory) {
		f.fs = fs
	}
}

func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithOptions sets the compression options handed to engines.
func WithOptions(opts Options) FactoryOption {
	return func(f *Factory) {
		f.opts = opts
	}
}

// WithFileMode sets the permissions of newly created containers.
func WithFileMode(perm os.FileMode) FactoryOption {
	return func(f *Factory) {
		f.perm = perm
	}
}

func NewFactory(registry *Registry, opts ...FactoryOption) *Factory {
	f := &Factory{
		registry: registry,
		fs:       afero.NewOsFs(),
		logger:   zap.NewNop(),
		opts:     DefaultOptions(),
		perm:     0o644,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// OpenReadOnly is shorthand for Open(path, OpenReadOnly, backend).
func (f *Factory) OpenReadOnly(path string, backend Backend) (Archive, error) {
	return f.Open(path, OpenReadOnly, backend)
}

// OpenWrite is shorthand for Open(path, OpenWrite, backend).
func (f *Factory) OpenWrite(path string, backend Backend) (Archive, error) {
	return f.Open(path, OpenWrite, backend)
}

// Open validates path and backend, then opens the container with the mode
// implied by access and the state of the file:
//
//   - OpenReadOnly: the container must exist. The file is opened lazily.
//   - OpenWrite on a missing or zero-length file: a fresh write-only container.
//   - OpenWrite on a non-empty file: a read-write update of the container.
func (f *Factory) Open(path string, access Access, backend Backend) (Archive, error) {
	if !IsSupported(path) {
		return nil, fmt.Errorf("%w: %s (expected %s)", ErrUnsupportedFormat, path, Extension)
	}
	if access != OpenReadOnly && access != OpenWrite {
		return nil, fmt.Errorf("%w: unknown access %s", ErrInvalidArgument, access)
	}
	if err := f.opts.Validate(); err != nil {
		return nil, err
	}

	engine, err := f.registry.Engine(backend, f.logger.Named(string(backend)), f.opts.WithDefaults())
	if err != nil {
		return nil, err
	}

	logger := f.logger.With(zap.String("path", path), zap.String("backend", string(backend)))
	logger.Debug("opening archive", zap.Stringer("access", access))

	if access == OpenReadOnly {
		return f.openRead(logger, path, backend, engine)
	}
	return f.openWrite(logger, path, backend, engine)
}

func (f *Factory) openRead(logger *zap.Logger, path string, backend Backend, engine Engine) (Archive, error) {
	info, err := f.fs.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidArgument, path)
	}

	handle := newHandle(f.fs, path, os.O_RDONLY, 0)
	session := newLazy(func() (Session, error) {
		s, err := engine.OpenRead(handle)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s for reading: %w", path, err)
		}
		if err := checkCapabilities(ModeRead, s); err != nil {
			return nil, errors.Join(err, s.Close())
		}
		return s, nil
	})

	return newContainer(logger, path, ModeRead, backend, handle, session), nil
}

func (f *Factory) openWrite(logger *zap.Logger, path string, backend Backend, engine Engine) (Archive, error) {
	info, err := f.fs.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return f.create(logger, path, backend, engine)
	case err != nil:
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	case info.IsDir():
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidArgument, path)
	case info.Size() == 0:
		// A zero-length file is a leftover of an interrupted create, not a
		// container.
		logger.Debug("removing empty container stub")
		if err := f.fs.Remove(path); err != nil {
			return nil, fmt.Errorf("failed to remove empty container %s: %w", path, err)
		}
		return f.create(logger, path, backend, engine)
	default:
		return f.update(logger, path, backend, engine)
	}
}

func (f *Factory) create(logger *zap.Logger, path string, backend Backend, engine Engine) (Archive, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := f.fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create parent directory for %s: %w", path, err)
		}
	}

	handle := newHandle(f.fs, path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, f.perm)
	return f.start(logger, path, ModeWrite, backend, handle, engine.OpenCreate)
}

func (f *Factory) update(logger *zap.Logger, path string, backend Backend, engine Engine) (Archive, error) {
	handle := newHandle(f.fs, path, os.O_RDWR, 0)
	return f.start(logger, path, ModeReadWrite, backend, handle, engine.OpenUpdate)
}

// start opens the handle and the engine session eagerly so that write
// archives fail at open time rather than on first use.
func (f *Factory) start(logger *zap.Logger, path string, mode Mode, backend Backend, handle *Handle, open func(*Handle) (Session, error)) (Archive, error) {
	if _, err := handle.File(); err != nil {
		return nil, err
	}

	s, err := open(handle)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to open %s as %s: %w", path, mode, err), handle.Close())
	}
	if err := checkCapabilities(mode, s); err != nil {
		return nil, errors.Join(err, s.Close(), handle.Close())
	}

	logger.Debug("archive opened", zap.Stringer("mode", mode))
	return newContainer(logger, path, mode, backend, handle, resolved(s)), nil
}
