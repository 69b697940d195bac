// Package stdzip adapts the standard library archive/zip package to the
// archive engine contract. Deflate and zstd are provided by klauspost/compress.
package stdzip

import (
	"archive/zip"
	"fmt"
	"io"
	"time"

	"github.com/infracollect/archivekit/pkg/archive"
	"github.com/infracollect/archivekit/pkg/archive/zipsession"
	"go.uber.org/zap"
)

type Codec struct {
	method     uint16
	compressor zipsession.CompressorFunc
	now        func() time.Time
}

func New(opts archive.Options) (*Codec, error) {
	method, compressor, err := zipsession.Compressor(opts)
	if err != nil {
		return nil, err
	}
	return &Codec{method: method, compressor: compressor, now: time.Now}, nil
}

// NewEngine returns an archive engine backed by archive/zip.
func NewEngine(name string, logger *zap.Logger, opts archive.Options) (archive.Engine, error) {
	codec, err := New(opts)
	if err != nil {
		return nil, err
	}
	return zipsession.NewEngine(name, codec, logger), nil
}

func (c *Codec) NewReader(r io.ReaderAt, size int64) (zipsession.Reader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	zr.RegisterDecompressor(zipsession.MethodZstd, zip.Decompressor(zipsession.ZstdDecompressor()))
	return stdReader{zr}, nil
}

func (c *Codec) NewWriter(w io.Writer) zipsession.Writer {
	zw := zip.NewWriter(w)
	if c.compressor != nil {
		zw.RegisterCompressor(c.method, zip.Compressor(c.compressor))
	}
	return &stdWriter{Writer: zw, method: c.method, now: c.now}
}

type stdReader struct {
	*zip.Reader
}

func (r stdReader) Records() []zipsession.Record {
	records := make([]zipsession.Record, 0, len(r.File))
	for _, f := range r.File {
		records = append(records, stdRecord{f})
	}
	return records
}

func (r stdReader) Comment() string {
	return r.Reader.Comment
}

type stdRecord struct {
	*zip.File
}

func (r stdRecord) Name() string {
	return r.File.Name
}

// stdWriter embeds *zip.Writer for SetComment and Close.
type stdWriter struct {
	*zip.Writer
	method uint16
	now    func() time.Time
}

func (w *stdWriter) Create(name string) (io.Writer, error) {
	fh := &zip.FileHeader{Name: name, Method: w.method}
	fh.Modified = w.now()
	return w.CreateHeader(fh)
}

func (w *stdWriter) Copy(rec zipsession.Record) error {
	r, ok := rec.(stdRecord)
	if !ok {
		return fmt.Errorf("%w: record %q was not read by the stdlib codec", archive.ErrInvalidArgument, rec.Name())
	}
	return w.Writer.Copy(r.File)
}

var _ zipsession.Codec = (*Codec)(nil)
