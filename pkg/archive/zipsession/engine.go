package zipsession

import (
	"fmt"

	"github.com/infracollect/archivekit/pkg/archive"
	"go.uber.org/zap"
)

// Engine serves archive sessions through a Codec.
type Engine struct {
	name   string
	codec  Codec
	logger *zap.Logger
}

func NewEngine(name string, codec Codec, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{name: name, codec: codec, logger: logger}
}

func (e *Engine) Name() string {
	return e.name
}

// OpenRead reads the central directory and indexes the stored records.
func (e *Engine) OpenRead(h *archive.Handle) (archive.Session, error) {
	reader, err := e.load(h)
	if err != nil {
		return nil, err
	}
	return newReadSession(reader), nil
}

func (e *Engine) OpenCreate(h *archive.Handle) (archive.Session, error) {
	f, err := h.File()
	if err != nil {
		return nil, err
	}
	return &createSession{writer: e.codec.NewWriter(f)}, nil
}

func (e *Engine) OpenUpdate(h *archive.Handle) (archive.Session, error) {
	original, err := e.load(h)
	if err != nil {
		return nil, err
	}
	return newUpdateSession(h, e.codec, original, e.logger.With(zap.String("path", h.Path()))), nil
}

func (e *Engine) load(h *archive.Handle) (Reader, error) {
	f, err := h.File()
	if err != nil {
		return nil, err
	}
	size, err := h.Size()
	if err != nil {
		return nil, err
	}
	reader, err := e.codec.NewReader(f, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read central directory of %s: %w", h.Path(), err)
	}
	return reader, nil
}

var _ archive.Engine = (*Engine)(nil)
