package zipsession

import (
	"fmt"
	"io"

	"github.com/infracollect/archivekit/pkg/archive"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
)

// Zip method identifiers.
const (
	MethodStore   uint16 = 0
	MethodDeflate uint16 = 8
	MethodZstd    uint16 = zstd.ZipMethodWinZip
)

// CompressorFunc matches the compressor signature of zip libraries.
type CompressorFunc func(w io.Writer) (io.WriteCloser, error)

// DecompressorFunc matches the decompressor signature of zip libraries.
type DecompressorFunc func(r io.Reader) io.ReadCloser

// Compressor resolves opts to a zip method and the compressor writing it.
// Store returns a nil compressor: libraries handle it natively.
func Compressor(opts archive.Options) (uint16, CompressorFunc, error) {
	if err := opts.Validate(); err != nil {
		return 0, nil, err
	}

	opts = opts.WithDefaults()
	switch opts.Method {
	case archive.MethodStore:
		return MethodStore, nil, nil
	case archive.MethodDeflate:
		level := opts.Level
		if level == 0 {
			level = flate.DefaultCompression
		}
		return MethodDeflate, func(w io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(w, level)
		}, nil
	case archive.MethodZstd:
		var eopts []zstd.EOption
		if opts.Level > 0 {
			eopts = append(eopts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(opts.Level)))
		}
		return MethodZstd, zstd.ZipCompressor(eopts...), nil
	default:
		return 0, nil, fmt.Errorf("%w: unsupported compression method %q", archive.ErrInvalidArgument, opts.Method)
	}
}

// ZstdDecompressor decodes zstd records. Readers of every backend register
// it so containers written with zstd by one backend open in the others.
func ZstdDecompressor() DecompressorFunc {
	return zstd.ZipDecompressor()
}
