package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_ReadWriteRemove(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = fs.Read("guest_cart")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, fs.Write("guest_cart", []byte(`{"version":1}`)))

	data, err := fs.Read("guest_cart")
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(data))

	// Overwrite replaces the previous value
	require.NoError(t, fs.Write("guest_cart", []byte(`{"version":2}`)))
	data, err = fs.Read("guest_cart")
	require.NoError(t, err)
	assert.Equal(t, `{"version":2}`, string(data))

	require.NoError(t, fs.Remove("guest_cart"))
	_, err = fs.Read("guest_cart")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestFileStore_RemoveMissingKey(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, fs.Remove("never_written"))
}

func TestFileStore_KeySanitized(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, fs.Write("../escape", []byte("x")))

	// The value is still readable under the same key
	data, err := fs.Read("../escape")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}
