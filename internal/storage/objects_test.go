package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_PutThenGet(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.Put("session.wav", []byte("audio-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".wav"))

	data, err := store.Get(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("audio-bytes"), data)
}

func TestFileStore_PutGeneratesUniquePaths(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	a, err := store.Put("session.wav", []byte("one"))
	require.NoError(t, err)
	b, err := store.Put("session.wav", []byte("two"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestFileStore_PutWithoutExtension(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.Put("upload", []byte("data"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".bin"))
}

func TestFileStore_GetRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get("../escape")
	assert.Error(t, err)

	_, err = store.Get("/etc/passwd")
	assert.Error(t, err)
}

func TestFileStore_GetMissingObject(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get("does-not-exist.wav")
	assert.Error(t, err)
}
