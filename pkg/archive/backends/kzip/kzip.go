// Package kzip adapts github.com/klauspost/compress/zip to the archive
// engine contract.
package kzip

import (
	"fmt"
	"io"
	"time"

	"github.com/infracollect/archivekit/pkg/archive"
	"github.com/infracollect/archivekit/pkg/archive/zipsession"
	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
)

// Codec implements zipsession.Codec with the klauspost zip package.
type Codec struct {
	method     uint16
	compressor zipsession.CompressorFunc
	now        func() time.Time
}

// New returns a codec writing records with the method described by opts.
func New(opts archive.Options) (*Codec, error) {
	method, compressor, err := zipsession.Compressor(opts)
	if err != nil {
		return nil, err
	}
	return &Codec{method: method, compressor: compressor, now: time.Now}, nil
}

// NewEngine returns an archive engine backed by this codec.
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
	return &reader{zr: zr}, nil
}

func (c *Codec) NewWriter(w io.Writer) zipsession.Writer {
	zw := zip.NewWriter(w)
	if c.compressor != nil {
		zw.RegisterCompressor(c.method, zip.Compressor(c.compressor))
	}
	return &writer{zw: zw, codec: c}
}

type reader struct {
	zr *zip.Reader
}

func (r *reader) Records() []zipsession.Record {
	records := make([]zipsession.Record, len(r.zr.File))
	for i, f := range r.zr.File {
		records[i] = record{f: f}
	}
	return records
}

func (r *reader) Comment() string {
	return r.zr.Comment
}

type record struct {
	f *zip.File
}

func (r record) Name() string {
	return r.f.Name
}

func (r record) Open() (io.ReadCloser, error) {
	return r.f.Open()
}

type writer struct {
	zw    *zip.Writer
	codec *Codec
}

func (w *writer) Create(name string) (io.Writer, error) {
	return w.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   w.codec.method,
		Modified: w.codec.now(),
	})
}

func (w *writer) Copy(rec zipsession.Record) error {
	r, ok := rec.(record)
	if !ok {
		return fmt.Errorf("%w: record %q was not read by the klauspost codec", archive.ErrInvalidArgument, rec.Name())
	}
	return w.zw.Copy(r.f)
}

func (w *writer) SetComment(comment string) error {
	return w.zw.SetComment(comment)
}

func (w *writer) Close() error {
	return w.zw.Close()
}

var _ zipsession.Codec = (*Codec)(nil)
