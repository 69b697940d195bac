package zipsession

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/infracollect/archivekit/pkg/archive"
)

// index resolves names to records. When a name is stored twice the later
// record wins, matching what extraction tools leave on disk.
type index struct {
	names   []string
	records map[string]Record
}

func newIndex(records []Record) index {
	idx := index{records: make(map[string]Record, len(records))}
	for _, rec := range records {
		if _, seen := idx.records[rec.Name()]; !seen {
			idx.names = append(idx.names, rec.Name())
		}
		idx.records[rec.Name()] = rec
	}
	return idx
}

func (idx index) lookup(name string) (Record, bool) {
	rec, ok := idx.records[name]
	return rec, ok
}

type readSession struct {
	index index
}

func newReadSession(reader Reader) *readSession {
	return &readSession{index: newIndex(reader.Records())}
}

func (s *readSession) Names() []string {
	names := make([]string, len(s.index.names))
	copy(names, s.index.names)
	return names
}

func (s *readSession) Has(name string) bool {
	_, ok := s.index.lookup(name)
	return ok
}

func (s *readSession) OpenRecord(name string) (io.ReadCloser, error) {
	rec, ok := s.index.lookup(name)
	if !ok {
		return nil, fmt.Errorf("record %q: %w", name, fs.ErrNotExist)
	}
	return rec.Open()
}

func (s *readSession) Finalize() error {
	return nil
}

func (s *readSession) Close() error {
	return nil
}

var (
	_ archive.Session      = (*readSession)(nil)
	_ archive.RecordReader = (*readSession)(nil)
)
