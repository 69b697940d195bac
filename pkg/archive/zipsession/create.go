package zipsession

import (
	"fmt"
	"io"

	"github.com/infracollect/archivekit/pkg/archive"
)

// createSession streams records straight into a fresh container.
type createSession struct {
	writer    Writer
	finalized bool
}

func (s *createSession) CreateRecord(name string) (io.Writer, error) {
	if s.finalized {
		return nil, fmt.Errorf("%w: container already finalized", archive.ErrInvalidOperation)
	}
	return s.writer.Create(name)
}

func (s *createSession) Finalize() error {
	if s.finalized {
		return nil
	}
	s.finalized = true
	if err := s.writer.Close(); err != nil {
		return fmt.Errorf("failed to write central directory: %w", err)
	}
	return nil
}

func (s *createSession) Close() error {
	return nil
}

var (
	_ archive.Session      = (*createSession)(nil)
	_ archive.RecordWriter = (*createSession)(nil)
)
