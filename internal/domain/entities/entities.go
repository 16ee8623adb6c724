package entities

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrInvalidRecord = errors.New("invalid record")
	ErrDuplicateID   = errors.New("record id already exists")
	ErrNotFound      = errors.New("record not found")
	ErrCorruptStore  = errors.New("store file is corrupt")
)

// FieldID is the one field every record must carry. Its value is
// caller-supplied, non-empty and unique within the collection.
const FieldID = "id"

// Record represents one customer entry. Beyond the required id the
// field set is open: name, phone and address are the usual shape, but
// the store does not enforce a schema.
type Record map[string]string

// ID returns the record's id field.
func (r Record) ID() string {
	return r[FieldID]
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Merge returns a copy of the record with fields overlaid on top:
// same-named fields are overwritten, new fields added, fields absent
// from the overlay left untouched.
func (r Record) Merge(fields map[string]string) Record {
	out := r.Clone()
	if out == nil {
		out = make(Record, len(fields))
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// StoreError wraps an underlying I/O failure with the operation and
// file path that produced it.
type StoreError struct {
	Op   string
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
