package zipsession

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/infracollect/archivekit/pkg/archive"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const tempPattern = ".archivekit-*.tmp"

type stagedRecord struct {
	name string
	live bool
}

// updateSession edits an existing container. Original records stay in the
// handle untouched until Finalize; new records go to a staging container
// next to it. Finalize raw-copies the surviving original records followed by
// the live staged records into a spool file and renames the spool over the
// container path.
type updateSession struct {
	handle   *archive.Handle
	codec    Codec
	logger   *zap.Logger
	original index
	comment  string
	ordered  []Record
	removed  map[string]bool

	staging       afero.File
	stagingWriter Writer
	staged        []stagedRecord

	spool     afero.File
	dirty     bool
	finalized bool
}

func newUpdateSession(h *archive.Handle, codec Codec, original Reader, logger *zap.Logger) *updateSession {
	records := original.Records()
	return &updateSession{
		handle:   h,
		codec:    codec,
		logger:   logger,
		original: newIndex(records),
		comment:  original.Comment(),
		ordered:  records,
		removed:  make(map[string]bool),
	}
}

// Names lists the original records that were not removed. Records staged in
// this session are not readable before Finalize and are left out.
func (s *updateSession) Names() []string {
	var names []string
	for _, name := range s.original.names {
		if !s.removed[name] {
			names = append(names, name)
		}
	}
	return names
}

// Has reports whether name resolves to an original record that was not
// removed.
func (s *updateSession) Has(name string) bool {
	_, ok := s.original.lookup(name)
	return ok && !s.removed[name]
}

// stagedIndex returns the position of the live staged record for name, or -1.
func (s *updateSession) stagedIndex(name string) int {
	for i := len(s.staged) - 1; i >= 0; i-- {
		if s.staged[i].live && s.staged[i].name == name {
			return i
		}
	}
	return -1
}

func (s *updateSession) OpenRecord(name string) (io.ReadCloser, error) {
	if s.Has(name) {
		rec, _ := s.original.lookup(name)
		return rec.Open()
	}
	if s.stagedIndex(name) >= 0 {
		return nil, fmt.Errorf("%w: record %q was written in this session and can be read once the archive is closed", archive.ErrInvalidOperation, name)
	}
	return nil, fmt.Errorf("record %q: %w", name, fs.ErrNotExist)
}

func (s *updateSession) CreateRecord(name string) (io.Writer, error) {
	if s.finalized {
		return nil, fmt.Errorf("%w: container already finalized", archive.ErrInvalidOperation)
	}
	if s.staging == nil {
		staging, err := s.handle.TempFile(tempPattern)
		if err != nil {
			return nil, err
		}
		s.staging = staging
		s.stagingWriter = s.codec.NewWriter(staging)
	}

	w, err := s.stagingWriter.Create(name)
	if err != nil {
		return nil, err
	}
	s.staged = append(s.staged, stagedRecord{name: name, live: true})
	s.dirty = true
	return w, nil
}

// DeleteRecord drops every stored record under name, original or staged.
func (s *updateSession) DeleteRecord(name string) error {
	if s.finalized {
		return fmt.Errorf("%w: container already finalized", archive.ErrInvalidOperation)
	}

	found := false
	for i := range s.staged {
		if s.staged[i].live && s.staged[i].name == name {
			s.staged[i].live = false
			found = true
		}
	}
	if s.Has(name) {
		s.removed[name] = true
		found = true
	}
	if !found {
		return fmt.Errorf("record %q: %w", name, fs.ErrNotExist)
	}
	s.dirty = true
	return nil
}

func (s *updateSession) Finalize() error {
	if s.finalized {
		return nil
	}
	s.finalized = true
	if !s.dirty {
		return nil
	}

	var staged []Record
	if s.staging != nil {
		if err := s.stagingWriter.Close(); err != nil {
			return fmt.Errorf("failed to close staging container: %w", err)
		}
		info, err := s.staging.Stat()
		if err != nil {
			return fmt.Errorf("failed to stat staging container: %w", err)
		}
		reader, err := s.codec.NewReader(s.staging, info.Size())
		if err != nil {
			return fmt.Errorf("failed to reopen staging container: %w", err)
		}
		staged = reader.Records()
	}

	if err := s.rebuild(staged); err != nil {
		return err
	}
	return s.commit()
}

// rebuild writes the new container into the spool file.
func (s *updateSession) rebuild(staged []Record) error {
	spool, err := s.handle.TempFile(tempPattern)
	if err != nil {
		return err
	}
	s.spool = spool

	out := s.codec.NewWriter(spool)
	kept := 0
	for _, rec := range s.ordered {
		if s.removed[rec.Name()] {
			continue
		}
		if err := out.Copy(rec); err != nil {
			return fmt.Errorf("failed to copy record %q: %w", rec.Name(), err)
		}
		kept++
	}

	added := 0
	for i, rec := range staged {
		if i >= len(s.staged) || !s.staged[i].live {
			continue
		}
		if err := out.Copy(rec); err != nil {
			return fmt.Errorf("failed to copy record %q: %w", rec.Name(), err)
		}
		added++
	}

	if s.comment != "" {
		if err := out.SetComment(s.comment); err != nil {
			return fmt.Errorf("failed to set container comment: %w", err)
		}
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write central directory: %w", err)
	}

	s.logger.Debug("rebuilt container", zap.Int("kept", kept), zap.Int("added", added), zap.Int("removed", len(s.removed)))
	return nil
}

// commit renames the spool over the container path. The original file is
// left untouched until the rename, so a failed commit keeps the container
// as it was.
func (s *updateSession) commit() error {
	f, err := s.handle.File()
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", s.handle.Path(), err)
	}

	fsys := s.handle.Fs()
	spoolPath := s.spool.Name()
	if err := s.spool.Sync(); err != nil {
		return fmt.Errorf("failed to sync spool: %w", err)
	}
	if err := s.spool.Close(); err != nil {
		return fmt.Errorf("failed to close spool: %w", err)
	}
	if err := fsys.Chmod(spoolPath, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to set mode of spool: %w", err)
	}
	if err := fsys.Rename(spoolPath, s.handle.Path()); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.handle.Path(), err)
	}
	s.spool = nil
	return nil
}

// Close removes the staging and spool files that are still around.
func (s *updateSession) Close() error {
	fsys := s.handle.Fs()
	var err error
	if s.staging != nil {
		err = errors.Join(err, s.staging.Close(), fsys.Remove(s.staging.Name()))
	}
	if s.spool != nil {
		// commit may have closed it already
		_ = s.spool.Close()
		err = errors.Join(err, fsys.Remove(s.spool.Name()))
	}
	s.staging, s.spool = nil, nil
	return err
}

var (
	_ archive.Session       = (*updateSession)(nil)
	_ archive.RecordReader  = (*updateSession)(nil)
	_ archive.RecordWriter  = (*updateSession)(nil)
	_ archive.RecordDeleter = (*updateSession)(nil)
)
