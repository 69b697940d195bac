// Package bundle packs exported entries into a single tarball.
package bundle

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Format is a tarball flavour.
type Format string

const (
	FormatTar    Format = "tar"
	FormatTarGz  Format = "tar.gz"
	FormatTarZst Format = "tar.zst"
)

// Formats lists the supported formats.
var Formats = []Format{FormatTar, FormatTarGz, FormatTarZst}

// Tar collects files into an optionally compressed tar archive held in
// memory.
type Tar struct {
	buf        *bytes.Buffer
	compressor io.WriteCloser
	tarWriter  *tar.Writer
	format     Format
	modTime    time.Time
	closed     bool
}

// NewTar creates a tar bundle of the given format. An empty format is a
// gzip compressed tarball.
func NewTar(format Format) (*Tar, error) {
	if format == "" {
		format = FormatTarGz
	}

	buf := new(bytes.Buffer)
	var compressor io.WriteCloser
	var err error

	switch format {
	case FormatTarGz:
		compressor = gzip.NewWriter(buf)
	case FormatTarZst:
		compressor, err = zstd.NewWriter(buf)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
	case FormatTar:
		compressor = &nopWriteCloser{buf}
	default:
		return nil, fmt.Errorf("unsupported bundle format: %s", format)
	}

	return &Tar{
		buf:        buf,
		compressor: compressor,
		tarWriter:  tar.NewWriter(compressor),
		format:     format,
		modTime:    time.Now(),
	}, nil
}

// AddFile adds a file to the tarball.
func (a *Tar) AddFile(ctx context.Context, filename string, data io.Reader) error {
	if a.closed {
		return fmt.Errorf("bundle is closed")
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	// tar headers carry the size up front
	content, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("failed to read file data: %w", err)
	}

	header := &tar.Header{
		Name:    filename,
		Mode:    0o644,
		Size:    int64(len(content)),
		ModTime: a.modTime,
	}

	if err := a.tarWriter.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header: %w", err)
	}

	if _, err := a.tarWriter.Write(content); err != nil {
		return fmt.Errorf("failed to write tar content: %w", err)
	}

	return nil
}

// Close finalizes the tarball and returns a reader over it.
func (a *Tar) Close() (io.Reader, error) {
	if a.closed {
		return nil, fmt.Errorf("bundle already closed")
	}
	a.closed = true

	if err := a.tarWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close tar writer: %w", err)
	}

	if err := a.compressor.Close(); err != nil {
		return nil, fmt.Errorf("failed to close compressor: %w", err)
	}

	return bytes.NewReader(a.buf.Bytes()), nil
}

// Extension returns the file extension of the bundle, dot included.
func (a *Tar) Extension() string {
	return "." + string(a.format)
}

type nopWriteCloser struct {
	io.Writer
}

func (n *nopWriteCloser) Close() error {
	return nil
}
