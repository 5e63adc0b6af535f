package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryHashes_Delete(t *testing.T) {
	mh := NewMemoryHashes()
	mh.PutField("user:42", "email", []byte("a@example.com"))
	mh.PutField("user:42", "name", []byte("Ada"))

	count := mh.Delete("user:42", "email")
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, mh.FieldCount("user:42"))

	_, ok := mh.GetField("user:42", "email")
	assert.False(t, ok)

	_, ok = mh.GetField("user:42", "name")
	assert.True(t, ok)
}

func TestMemoryHashes_Delete_MissingKeyOrField(t *testing.T) {
	mh := NewMemoryHashes()
	assert.Equal(t, 0, mh.Delete("missing", "field"))

	mh.PutField("k", "a", []byte("1"))
	assert.Equal(t, 0, mh.Delete("k", "b"))
}

func TestMemoryHashes_DeleteAllFieldsDropsKey(t *testing.T) {
	mh := NewMemoryHashes()
	mh.PutField("k", "a", []byte("1"))
	mh.Delete("k", "a")
	assert.Equal(t, 0, mh.FieldCount("k"))
}
