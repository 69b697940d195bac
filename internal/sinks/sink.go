// Package sinks writes exported entries to their destination.
package sinks

import (
	"context"
	"io"
)

// Sink receives named files. Close flushes whatever the sink buffered.
type Sink interface {
	Name() string
	Kind() string
	Write(ctx context.Context, path string, data io.Reader) error
	Close(ctx context.Context) error
}
