package archive

import "io"

// Engine is one codec library behind the archive contract. The Factory picks
// the method matching the state of the target container.
type Engine interface {
	// Name identifies the engine in logs.
	Name() string

	// OpenRead starts a read session. Implementations should not touch the
	// handle before they need bytes.
	OpenRead(h *Handle) (Session, error)

	// OpenCreate starts a write-only session over a fresh, empty file.
	OpenCreate(h *Handle) (Session, error)

	// OpenUpdate starts a read-write session over an existing container.
	OpenUpdate(h *Handle) (Session, error)
}

// Session is a live engine session bound to one handle. The capabilities it
// offers are expressed by the Record* interfaces below.
type Session interface {
	// Finalize flushes the pending record and writes the container trailer.
	Finalize() error

	// Close releases engine resources. It does not close the handle.
	Close() error
}

// RecordReader is implemented by sessions that can enumerate and read.
type RecordReader interface {
	// Names lists every stored record name once, in container order.
	Names() []string

	// Has reports whether name currently resolves to stored data.
	Has(name string) bool

	// OpenRecord returns a decompressing stream over the named record.
	OpenRecord(name string) (io.ReadCloser, error)
}

// RecordWriter is implemented by sessions that can append records. The
// returned writer is valid until the next CreateRecord or Finalize.
type RecordWriter interface {
	CreateRecord(name string) (io.Writer, error)
}

// RecordDeleter is implemented by sessions that can drop stored records.
type RecordDeleter interface {
	DeleteRecord(name string) error
}

func checkCapabilities(mode Mode, s Session) error {
	if mode.CanRead() {
		if _, ok := s.(RecordReader); !ok {
			return invalidOperation("engine session %T cannot read records", s)
		}
	}
	if mode.CanWrite() {
		if _, ok := s.(RecordWriter); !ok {
			return invalidOperation("engine session %T cannot write records", s)
		}
	}
	if mode == ModeReadWrite {
		if _, ok := s.(RecordDeleter); !ok {
			return invalidOperation("engine session %T cannot delete records", s)
		}
	}
	return nil
}
