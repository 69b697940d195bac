package archive

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeEngine stores records in memory and logs every call it receives.
type fakeEngine struct {
	records map[string]string
	order   []string
	calls   []string

	openErr   error
	readOnly  bool
	writeOnly bool
}

func newFakeEngine(records ...string) *fakeEngine {
	e := &fakeEngine{records: make(map[string]string)}
	for i := 0; i+1 < len(records); i += 2 {
		e.records[records[i]] = records[i+1]
		e.order = append(e.order, records[i])
	}
	return e
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) open(h *Handle, call string) (Session, error) {
	if _, err := h.File(); err != nil {
		return nil, err
	}
	e.calls = append(e.calls, call)
	if e.openErr != nil {
		return nil, e.openErr
	}
	if e.writeOnly {
		return &writeOnlySession{inner: &fakeSession{engine: e}}, nil
	}
	if e.readOnly {
		return &readOnlySession{inner: &fakeSession{engine: e}}, nil
	}
	return &fakeSession{engine: e}, nil
}

func (e *fakeEngine) OpenRead(h *Handle) (Session, error)   { return e.open(h, "open-read") }
func (e *fakeEngine) OpenCreate(h *Handle) (Session, error) { return e.open(h, "open-create") }
func (e *fakeEngine) OpenUpdate(h *Handle) (Session, error) { return e.open(h, "open-update") }

type fakeSession struct {
	engine  *fakeEngine
	pending string
	buf     *bytes.Buffer
}

func (s *fakeSession) commit() {
	if s.buf == nil {
		return
	}
	e := s.engine
	if _, ok := e.records[s.pending]; !ok {
		e.order = append(e.order, s.pending)
	}
	e.records[s.pending] = s.buf.String()
	s.buf = nil
}

func (s *fakeSession) Names() []string {
	s.commit()
	return append([]string(nil), s.engine.order...)
}

func (s *fakeSession) Has(name string) bool {
	s.commit()
	_, ok := s.engine.records[name]
	return ok
}

func (s *fakeSession) OpenRecord(name string) (io.ReadCloser, error) {
	s.commit()
	data, ok := s.engine.records[name]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return io.NopCloser(bytes.NewBufferString(data)), nil
}

func (s *fakeSession) CreateRecord(name string) (io.Writer, error) {
	s.commit()
	s.engine.calls = append(s.engine.calls, "create:"+name)
	s.pending = name
	s.buf = new(bytes.Buffer)
	return s.buf, nil
}

func (s *fakeSession) DeleteRecord(name string) error {
	s.commit()
	s.engine.calls = append(s.engine.calls, "delete:"+name)
	if _, ok := s.engine.records[name]; !ok {
		return fmt.Errorf("record %q: %w", name, fs.ErrNotExist)
	}
	delete(s.engine.records, name)
	for i, n := range s.engine.order {
		if n == name {
			s.engine.order = append(s.engine.order[:i], s.engine.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *fakeSession) Finalize() error {
	s.commit()
	s.engine.calls = append(s.engine.calls, "finalize")
	return nil
}

func (s *fakeSession) Close() error {
	s.engine.calls = append(s.engine.calls, "close")
	return nil
}

// readOnlySession only offers reads, to exercise capability checks.
type readOnlySession struct {
	inner *fakeSession
}

func (s *readOnlySession) Names() []string                             { return s.inner.Names() }
func (s *readOnlySession) Has(name string) bool                        { return s.inner.Has(name) }
func (s *readOnlySession) OpenRecord(name string) (io.ReadCloser, error) { return s.inner.OpenRecord(name) }
func (s *readOnlySession) Finalize() error                             { return s.inner.Finalize() }
func (s *readOnlySession) Close() error                                { return s.inner.Close() }

// writeOnlySession only offers appends.
type writeOnlySession struct {
	inner *fakeSession
}

func (s *writeOnlySession) CreateRecord(name string) (io.Writer, error) { return s.inner.CreateRecord(name) }
func (s *writeOnlySession) Finalize() error                             { return s.inner.Finalize() }
func (s *writeOnlySession) Close() error                                { return s.inner.Close() }

// countingFs records which filesystem calls were made.
type countingFs struct {
	afero.Fs
	stats   int
	opens   int
	removes int
}

func (c *countingFs) Stat(name string) (os.FileInfo, error) {
	c.stats++
	return c.Fs.Stat(name)
}

func (c *countingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	c.opens++
	return c.Fs.OpenFile(name, flag, perm)
}

func (c *countingFs) Remove(name string) error {
	c.removes++
	return c.Fs.Remove(name)
}

func newTestFactory(t *testing.T, engine Engine) (*Factory, *countingFs) {
	t.Helper()
	registry := NewRegistry()
	registry.Register("fake", func(*zap.Logger, Options) (Engine, error) {
		return engine, nil
	})
	fsys := &countingFs{Fs: afero.NewMemMapFs()}
	return NewFactory(registry, WithFs(fsys), WithLogger(zap.NewNop())), fsys
}

func writeFile(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
}

func readAll(t *testing.T, e Entry) string {
	t.Helper()
	rc, err := e.Open()
	require.NoError(t, err)
	defer func() { require.NoError(t, rc.Close()) }()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}
