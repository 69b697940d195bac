// Package zipsession implements the archive engine sessions for zip
// libraries. A library plugs in through Codec; the sessions carry the
// read, create and update protocols shared by every zip backend.
package zipsession

import "io"

// Codec adapts one zip library to the calls the sessions make.
type Codec interface {
	NewReader(r io.ReaderAt, size int64) (Reader, error)
	NewWriter(w io.Writer) Writer
}

// Reader is an opened central directory.
type Reader interface {
	// Records returns the records in central directory order.
	Records() []Record
	Comment() string
}

// Record is one stored record of a Reader.
type Record interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// Writer appends records to a container.
type Writer interface {
	// Create begins a record compressed with the codec's configured method.
	Create(name string) (io.Writer, error)

	// Copy appends rec without recompressing it. rec must come from a Reader
	// of the same codec.
	Copy(rec Record) error

	SetComment(comment string) error

	// Close writes the central directory. It does not close the underlying
	// writer.
	Close() error
}
