package entities

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordClone(t *testing.T) {
	rec := Record{"id": "1", "name": "Asha"}
	clone := rec.Clone()

	clone["name"] = "changed"
	assert.Equal(t, "Asha", rec["name"])

	var nilRec Record
	assert.Nil(t, nilRec.Clone())
}

func TestRecordMerge(t *testing.T) {
	rec := Record{"id": "1", "name": "Asha", "phone": "555-0100"}

	merged := rec.Merge(map[string]string{"phone": "555-0199", "email": "a@example.com"})
	assert.Equal(t, "555-0199", merged["phone"])
	assert.Equal(t, "a@example.com", merged["email"])
	assert.Equal(t, "Asha", merged["name"])

	// Original untouched.
	assert.Equal(t, "555-0100", rec["phone"])
	_, ok := rec["email"]
	assert.False(t, ok)
}

func TestStoreErrorUnwrap(t *testing.T) {
	err := &StoreError{Op: "read", Path: "/tmp/customers.json", Err: fs.ErrPermission}

	require.True(t, errors.Is(err, fs.ErrPermission))
	assert.Contains(t, err.Error(), "read")
	assert.Contains(t, err.Error(), "/tmp/customers.json")
}
