package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/billentry/customers/internal/domain/entities"
	"github.com/billentry/customers/internal/ports"
)

// FileStore implements CustomerRepository on top of a single JSON file
// holding the whole collection. Every mutation rewrites the file via
// write-temp-then-rename so a crash or concurrent reader never sees a
// partially written file, and a single mutex serializes every
// load-mutate-persist sequence so concurrent writers cannot lose
// updates.
//
// One FileStore instance owns its path exclusively within the process;
// sharing the path across processes is not supported.
type FileStore struct {
	path string

	mu      sync.Mutex
	loaded  bool
	records []entities.Record
}

// NewFileStore creates a file store backed by path. The parent
// directory is created if it does not exist; the file itself is
// created lazily on the first mutation.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: store path is empty", entities.ErrInvalidRecord)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &entities.StoreError{Op: "mkdir", Path: filepath.Dir(path), Err: err}
	}
	return &FileStore{path: path}, nil
}

var _ ports.CustomerRepository = (*FileStore)(nil)

// Path returns the canonical file the store persists to.
func (s *FileStore) Path() string {
	return s.path
}

// Load returns the full collection in insertion order.
func (s *FileStore) Load(ctx context.Context) ([]entities.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return nil, err
	}

	out := make([]entities.Record, len(s.records))
	for i, rec := range s.records {
		out[i] = rec.Clone()
	}
	return out, nil
}

// Get returns the record with the given id.
func (s *FileStore) Get(ctx context.Context, id string) (entities.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return nil, err
	}

	i := s.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: id %q", entities.ErrNotFound, id)
	}
	return s.records[i].Clone(), nil
}

// Create appends the record and persists the collection.
func (s *FileStore) Create(ctx context.Context, rec entities.Record) (entities.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if rec.ID() == "" {
		return nil, fmt.Errorf("%w: id is required", entities.ErrInvalidRecord)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return nil, err
	}
	if s.indexOf(rec.ID()) >= 0 {
		return nil, fmt.Errorf("%w: id %q", entities.ErrDuplicateID, rec.ID())
	}

	stored := rec.Clone()
	s.records = append(s.records, stored)
	if err := s.persist(); err != nil {
		s.records = s.records[:len(s.records)-1]
		return nil, err
	}
	return stored.Clone(), nil
}

// Update merges fields into the record with the given id and persists
// the collection. Changing the id through the field map is allowed as
// long as the new id is non-empty and not taken by another record.
func (s *FileStore) Update(ctx context.Context, id string, fields map[string]string) (entities.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return nil, err
	}

	i := s.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: id %q", entities.ErrNotFound, id)
	}

	merged := s.records[i].Merge(fields)
	if merged.ID() == "" {
		return nil, fmt.Errorf("%w: id cannot be cleared", entities.ErrInvalidRecord)
	}
	if merged.ID() != id && s.indexOf(merged.ID()) >= 0 {
		return nil, fmt.Errorf("%w: id %q", entities.ErrDuplicateID, merged.ID())
	}

	prev := s.records[i]
	s.records[i] = merged
	if err := s.persist(); err != nil {
		s.records[i] = prev
		return nil, err
	}
	return merged.Clone(), nil
}

// Delete removes the record with the given id and persists the
// collection.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: id %q", entities.ErrNotFound, id)
	}

	prev := s.records
	next := make([]entities.Record, 0, len(prev)-1)
	next = append(next, prev[:i]...)
	next = append(next, prev[i+1:]...)
	s.records = next
	if err := s.persist(); err != nil {
		s.records = prev
		return err
	}
	return nil
}

// indexOf returns the position of the record with the given id, or -1.
// Caller must hold mu with the collection loaded.
func (s *FileStore) indexOf(id string) int {
	for i, rec := range s.records {
		if rec.ID() == id {
			return i
		}
	}
	return -1
}

// load reads the collection from disk on first access. A missing file
// is normal first-run behavior; malformed content is surfaced as
// ErrCorruptStore rather than discarded. Caller must hold mu.
func (s *FileStore) load() error {
	if s.loaded {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.records = nil
		s.loaded = true
		return nil
	}
	if err != nil {
		return &entities.StoreError{Op: "read", Path: s.path, Err: err}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		s.records = nil
		s.loaded = true
		return nil
	}

	var records []entities.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("%w: %s: %v", entities.ErrCorruptStore, s.path, err)
	}

	s.records = records
	s.loaded = true
	return nil
}

// persist writes the whole collection to a temp file on the same
// volume, syncs it, then renames it over the canonical path. The
// canonical file is therefore always either the old or the new
// collection, never a partial write. Caller must hold mu.
func (s *FileStore) persist() error {
	records := s.records
	if records == nil {
		records = []entities.Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &entities.StoreError{Op: "encode", Path: s.path, Err: err}
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp")
	if err != nil {
		return &entities.StoreError{Op: "create temp", Path: dir, Err: err}
	}
	tmpPath := tmp.Name()

	cleanup := func(op string, err error) error {
		tmp.Close()
		os.Remove(tmpPath)
		return &entities.StoreError{Op: op, Path: tmpPath, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup("write", err)
	}
	// https://www.joeshaw.org/dont-defer-close-on-writable-files/
	if err := tmp.Sync(); err != nil {
		return cleanup("sync", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &entities.StoreError{Op: "close", Path: tmpPath, Err: err}
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return &entities.StoreError{Op: "rename", Path: s.path, Err: err}
	}

	// Sync the directory so the rename survives a crash. Best effort:
	// the data itself is already durable in the temp file.
	if fdir, err := os.Open(dir); err == nil {
		_ = fdir.Sync()
		_ = fdir.Close()
	}
	return nil
}
