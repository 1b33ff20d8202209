package mmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob")
	require.NoError(t, os.WriteFile(path, []byte("hello mmap"), 0o644))

	m, err := Open(path)
	require.NoError(t, err)

	assert.Equal(t, 10, m.Size())
	assert.Equal(t, "hello mmap", string(m.Bytes()))

	p := make([]byte, 4)
	n, err := m.ReadAt(p, 6)
	require.NoError(t, err)
	assert.Equal(t, "mmap", string(p[:n]))

	require.NoError(t, m.Advise(AccessSequential))

	require.NoError(t, m.Close())
	require.NoError(t, m.Close(), "close is idempotent")
	assert.Nil(t, m.Bytes())

	_, err = m.ReadAt(p, 0)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMappingEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	m, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Size())
	require.NoError(t, m.Close())
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
