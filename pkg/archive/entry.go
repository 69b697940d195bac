package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
)

type entry struct {
	archive *container
	key     string
	exists  bool

	// pending is the record begun by Entry on a write-only archive. It is
	// cleared once written.
	pending io.Writer
}

func (e *entry) Key() string {
	return e.key
}

func (e *entry) Exists() bool {
	return e.exists
}

func (e *entry) Open() (io.ReadCloser, error) {
	c := e.archive
	if c.closed {
		return nil, invalidOperation("archive %s is closed", c.path)
	}
	if !c.mode.CanRead() {
		return nil, invalidOperation("archive %s is write-only", c.path)
	}
	if !e.exists {
		return nil, invalidOperation("entry %q does not exist in %s", e.key, c.path)
	}

	reader, err := c.reader()
	if err != nil {
		return nil, err
	}
	rc, err := reader.OpenRecord(e.key)
	if err != nil {
		return nil, fmt.Errorf("failed to open entry %q: %w", e.key, err)
	}
	return rc, nil
}

func (e *entry) Write(ctx context.Context, src io.Reader) error {
	c := e.archive
	if c.closed {
		return invalidOperation("archive %s is closed", c.path)
	}
	if !c.mode.CanWrite() {
		return invalidOperation("archive %s is read-only", c.path)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	if c.mode == ModeWrite {
		return e.writePending(src)
	}
	return e.replace(src)
}

func (e *entry) writePending(src io.Reader) error {
	c := e.archive
	if e.pending == nil {
		return invalidOperation("entry %q was already written to write-only archive %s", e.key, c.path)
	}
	if c.active != e {
		return invalidOperation("entry %q is no longer the write target of %s", e.key, c.path)
	}

	w := e.pending
	e.pending = nil
	c.active = nil
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("failed to write entry %q: %w", e.key, err)
	}
	return nil
}

// replace deletes the stored record for the key, if any, then appends a new
// record under the same key. Records written earlier in this session are not
// reported by Has and are tracked in begun instead. When copying src fails
// the partial record is dropped along with the one it replaced.
func (e *entry) replace(src io.Reader) error {
	c := e.archive
	reader, err := c.reader()
	if err != nil {
		return err
	}
	deleter, err := c.deleter()
	if err != nil {
		return err
	}

	_, written := c.begun[e.key]
	if written || reader.Has(e.key) {
		if err := deleter.DeleteRecord(e.key); err != nil {
			return fmt.Errorf("failed to remove stored entry %q: %w", e.key, err)
		}
		delete(c.begun, e.key)
	}

	writer, err := c.writer()
	if err != nil {
		return err
	}
	w, err := writer.CreateRecord(e.key)
	if err != nil {
		return fmt.Errorf("failed to create entry %q: %w", e.key, err)
	}
	c.begun[e.key] = struct{}{}

	if _, err := io.Copy(w, src); err != nil {
		err = fmt.Errorf("failed to write entry %q: %w", e.key, err)
		if derr := deleter.DeleteRecord(e.key); derr != nil {
			return errors.Join(err, fmt.Errorf("failed to discard partial entry %q: %w", e.key, derr))
		}
		delete(c.begun, e.key)
		return err
	}
	return nil
}
