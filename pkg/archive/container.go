package archive

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// container implements Archive on top of any engine Session.
type container struct {
	path    string
	mode    Mode
	backend Backend
	handle  *Handle
	session *lazy[Session]
	logger  *zap.Logger
	closed  bool

	// keys already begun on a write-only archive, or written in this session
	// on a read-write one, and the write-only entry whose record currently
	// receives bytes.
	begun  map[string]struct{}
	active *entry
}

func newContainer(logger *zap.Logger, path string, mode Mode, backend Backend, handle *Handle, session *lazy[Session]) *container {
	return &container{
		path:    path,
		mode:    mode,
		backend: backend,
		handle:  handle,
		session: session,
		logger:  logger,
		begun:   make(map[string]struct{}),
	}
}

func (c *container) Path() string {
	return c.path
}

func (c *container) Mode() Mode {
	return c.mode
}

func (c *container) Backend() Backend {
	return c.backend
}

func (c *container) Entries() ([]Entry, error) {
	if c.closed {
		return nil, invalidOperation("archive %s is closed", c.path)
	}
	if !c.mode.CanRead() {
		return nil, invalidOperation("archive %s is write-only", c.path)
	}

	reader, err := c.reader()
	if err != nil {
		return nil, err
	}

	return lo.Map(reader.Names(), func(name string, _ int) Entry {
		return &entry{archive: c, key: name, exists: true}
	}), nil
}

func (c *container) Entry(key string) (Entry, error) {
	if c.closed {
		return nil, invalidOperation("archive %s is closed", c.path)
	}
	if key == "" {
		return nil, fmt.Errorf("%w: entry key is empty", ErrInvalidArgument)
	}

	if !c.mode.CanRead() {
		return c.begin(key)
	}

	reader, err := c.reader()
	if err != nil {
		return nil, err
	}
	return &entry{archive: c, key: key, exists: reader.Has(key)}, nil
}

// begin registers a new record on a write-only archive.
func (c *container) begin(key string) (Entry, error) {
	if _, ok := c.begun[key]; ok {
		return nil, invalidOperation("entry %q was already begun on write-only archive %s", key, c.path)
	}

	writer, err := c.writer()
	if err != nil {
		return nil, err
	}

	w, err := writer.CreateRecord(key)
	if err != nil {
		return nil, fmt.Errorf("failed to begin entry %q: %w", key, err)
	}

	c.begun[key] = struct{}{}
	e := &entry{archive: c, key: key, pending: w}
	c.active = e
	return e, nil
}

func (c *container) reader() (RecordReader, error) {
	s, err := c.session.get()
	if err != nil {
		return nil, err
	}
	return s.(RecordReader), nil
}

func (c *container) writer() (RecordWriter, error) {
	s, err := c.session.get()
	if err != nil {
		return nil, err
	}
	return s.(RecordWriter), nil
}

func (c *container) deleter() (RecordDeleter, error) {
	s, err := c.session.get()
	if err != nil {
		return nil, err
	}
	return s.(RecordDeleter), nil
}

func (c *container) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.active = nil

	var err error
	if s, ok := c.session.peek(); ok {
		if ferr := s.Finalize(); ferr != nil {
			err = fmt.Errorf("failed to finalize %s: %w", c.path, ferr)
		}
		if cerr := s.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close session for %s: %w", c.path, cerr))
		}
	}
	if c.handle != nil {
		err = errors.Join(err, c.handle.Close())
	}

	c.logger.Debug("archive closed", zap.String("path", c.path), zap.Stringer("mode", c.mode))
	return err
}
