package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_SaveOpenRemove(t *testing.T) {
	t.Parallel()

	s, err := NewLocal(filepath.Join(t.TempDir(), "uploads"), 1024)
	require.NoError(t, err)

	n, err := s.Save("doc.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	f, err := s.Open("doc.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, f.Close())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, s.Remove("doc.txt"))
	require.NoError(t, s.Remove("doc.txt"))
	_, err = s.Open("doc.txt")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocal_TooLarge(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewLocal(dir, 4)
	require.NoError(t, err)

	_, err = s.Save("big.bin", strings.NewReader("12345"))
	require.ErrorIs(t, err, ErrTooLarge)

	_, statErr := os.Stat(filepath.Join(dir, "big.bin"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestLocal_NameCannotEscapeDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewLocal(filepath.Join(dir, "inner"), 0)
	require.NoError(t, err)

	_, err = s.Save("../escape.txt", strings.NewReader("x"))
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "inner", "escape.txt"))
	assert.NoError(t, statErr)
	_, statErr = os.Stat(filepath.Join(dir, "escape.txt"))
	assert.True(t, os.IsNotExist(statErr))
}
