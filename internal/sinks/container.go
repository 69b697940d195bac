package sinks

import (
	"context"
	"fmt"
	"io"

	"github.com/infracollect/archivekit/pkg/archive"
)

// ContainerSink writes every file as an entry of an open archive. Close
// closes the archive, which finalizes it.
type ContainerSink struct {
	archive archive.Archive
}

func NewContainerSink(a archive.Archive) *ContainerSink {
	return &ContainerSink{archive: a}
}

func (s *ContainerSink) Name() string {
	return fmt.Sprintf("container(%s)", s.archive.Path())
}

func (s *ContainerSink) Kind() string {
	return "container"
}

func (s *ContainerSink) Write(ctx context.Context, path string, data io.Reader) error {
	entry, err := s.archive.Entry(path)
	if err != nil {
		return fmt.Errorf("failed to get entry %s: %w", path, err)
	}
	if err := entry.Write(ctx, data); err != nil {
		return fmt.Errorf("failed to write entry %s: %w", path, err)
	}
	return nil
}

func (s *ContainerSink) Close(ctx context.Context) error {
	if err := s.archive.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", s.archive.Path(), err)
	}
	return nil
}

var _ Sink = (*ContainerSink)(nil)
