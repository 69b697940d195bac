package archive

import "fmt"

// Method is the compression method used for records written by an engine.
type Method string

const (
	MethodStore   Method = "store"
	MethodDeflate Method = "deflate"
	MethodZstd    Method = "zstd"
)

// Options configure how engines compress new records. Reading never depends
// on Options: every engine can decode all supported methods.
type Options struct {
	// Method defaults to deflate when empty.
	Method Method

	// Level is the method specific compression level. Zero selects the
	// method default. Deflate accepts -2 (huffman only) to 9, zstd 1 to 22.
	Level int
}

// DefaultOptions returns deflate at its default level.
func DefaultOptions() Options {
	return Options{Method: MethodDeflate}
}

// WithDefaults fills unset fields.
func (o Options) WithDefaults() Options {
	if o.Method == "" {
		o.Method = MethodDeflate
	}
	return o
}

// Validate checks the method and level combination.
func (o Options) Validate() error {
	o = o.WithDefaults()
	switch o.Method {
	case MethodStore:
		if o.Level != 0 {
			return fmt.Errorf("%w: method %q takes no level, got %d", ErrInvalidArgument, o.Method, o.Level)
		}
	case MethodDeflate:
		if o.Level < -2 || o.Level > 9 {
			return fmt.Errorf("%w: deflate level %d out of range [-2, 9]", ErrInvalidArgument, o.Level)
		}
	case MethodZstd:
		if o.Level < 0 || o.Level > 22 {
			return fmt.Errorf("%w: zstd level %d out of range [1, 22]", ErrInvalidArgument, o.Level)
		}
	default:
		return fmt.Errorf("%w: unsupported compression method %q", ErrInvalidArgument, o.Method)
	}
	return nil
}
