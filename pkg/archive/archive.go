// Package archive provides a single contract for reading and writing zip
// containers while letting the codec engine behind it be swapped.
//
// Archives are produced by a Factory, which validates the path, decides how
// the underlying file must be opened and hands it to the selected backend
// engine. Entries obtained from an Archive read and write records through
// the engine session without knowing which library implements it.
package archive

import (
	"context"
	"fmt"
	"io"
)

// Access is the logical access a caller requests from the Factory.
type Access int

const (
	// OpenReadOnly opens an existing container for reading.
	OpenReadOnly Access = iota
	// OpenWrite creates a container, or updates it when it already holds data.
	OpenWrite
)

func (a Access) String() string {
	switch a {
	case OpenReadOnly:
		return "read-only"
	case OpenWrite:
		return "write"
	default:
		return fmt.Sprintf("access(%d)", int(a))
	}
}

// Mode is the capability an Archive was constructed with. It never changes
// after construction.
type Mode int

const (
	ModeRead Mode = iota + 1
	ModeWrite
	ModeReadWrite
)

// CanRead reports whether entries can be enumerated and opened.
func (m Mode) CanRead() bool {
	return m == ModeRead || m == ModeReadWrite
}

// CanWrite reports whether entries can be written.
func (m Mode) CanWrite() bool {
	return m == ModeWrite || m == ModeReadWrite
}

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read-only"
	case ModeWrite:
		return "write-only"
	case ModeReadWrite:
		return "read-write"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Archive is an open handle to a zip container bound to one mode and one
// backend engine. An Archive is not safe for concurrent use.
type Archive interface {
	// Path returns the container path the Archive was opened with.
	Path() string

	// Mode returns the capability fixed at construction.
	Mode() Mode

	// Backend returns the name of the engine serving this Archive.
	Backend() Backend

	// Entries returns one Entry per name currently stored in the container.
	// The result is a snapshot. It fails on write-only archives.
	Entries() ([]Entry, error)

	// Entry returns the entry stored under key. On a write-only archive it
	// begins a new record under key instead of looking it up.
	Entry(key string) (Entry, error)

	// Close finalizes pending writes and releases the file handle and the
	// engine session. Calling Close more than once is a no-op.
	Close() error
}

// Entry is a named record inside an Archive. An Entry is only valid until
// its Archive is closed.
type Entry interface {
	// Key returns the record name.
	Key() string

	// Exists reports whether the key resolved to stored data when the Entry
	// was obtained. It is not re-evaluated afterwards.
	Exists() bool

	// Open returns a decompressing stream positioned at the start of the
	// stored record.
	Open() (io.ReadCloser, error)

	// Write replaces the record with everything read from src. src is read
	// to EOF and is not closed. On a read-write archive the new record can
	// be read once the archive is closed, and a Write that fails while
	// reading src leaves the key without a record.
	Write(ctx context.Context, src io.Reader) error
}
