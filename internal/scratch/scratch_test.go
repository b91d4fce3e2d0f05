package scratch

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialize(t *testing.T) {
	dir := t.TempDir()
	f, err := Materialize(strings.NewReader("payload"), dir, "mp4")
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(f.Path()))
	assert.True(t, strings.HasPrefix(filepath.Base(f.Path()), Prefix))
	assert.Equal(t, ".mp4", filepath.Ext(f.Path()))
	assert.Equal(t, int64(7), f.Size())

	data, err := os.ReadFile(f.Path())
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	require.NoError(t, f.Remove())
	assert.NoFileExists(t, f.Path())
	assert.NoError(t, f.Remove(), "second Remove is a no-op")
}

func TestMaterialize_RelativeDirKeepsRelativePath(t *testing.T) {
	f, err := Materialize(strings.NewReader("x"), ".", "")
	require.NoError(t, err)
	defer f.Remove()

	assert.False(t, filepath.IsAbs(f.Path()))
	assert.Equal(t, ".", filepath.Dir(f.Path()))
	assert.FileExists(t, f.Path())
}

func TestMaterialize_UniqueNames(t *testing.T) {
	dir := t.TempDir()
	a, err := Materialize(strings.NewReader("a"), dir, ".mov")
	require.NoError(t, err)
	b, err := Materialize(strings.NewReader("b"), dir, ".mov")
	require.NoError(t, err)
	assert.NotEqual(t, a.Path(), b.Path())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestMaterialize_ReadErrorCleansUp(t *testing.T) {
	dir := t.TempDir()
	_, err := Materialize(failingReader{}, dir, ".mp4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMaterialize_BadDir(t *testing.T) {
	_, err := Materialize(strings.NewReader("x"), filepath.Join(t.TempDir(), "missing"), "")
	assert.Error(t, err)
}

func TestWith_RemovesOnSuccess(t *testing.T) {
	var seen string
	err := With(strings.NewReader("data"), t.TempDir(), ".mkv", func(f *File) error {
		seen = f.Path()
		assert.FileExists(t, seen)
		assert.Equal(t, int64(4), f.Size())
		return nil
	})
	require.NoError(t, err)
	assert.NoFileExists(t, seen)
}

func TestWith_RemovesOnError(t *testing.T) {
	cause := errors.New("probe failed")
	var seen string
	err := With(strings.NewReader("data"), t.TempDir(), ".mkv", func(f *File) error {
		seen = f.Path()
		return cause
	})
	assert.ErrorIs(t, err, cause)
	assert.NoFileExists(t, seen)
}

func TestWith_RemovesOnPanic(t *testing.T) {
	var seen string
	assert.Panics(t, func() {
		_ = With(strings.NewReader("data"), t.TempDir(), ".mkv", func(f *File) error {
			seen = f.Path()
			panic("boom")
		})
	})
	require.NotEmpty(t, seen)
	assert.NoFileExists(t, seen)
}

func TestWith_CallbackDeletesFile(t *testing.T) {
	err := With(strings.NewReader("data"), t.TempDir(), ".mkv", func(f *File) error {
		return os.Remove(f.Path())
	})
	assert.NoError(t, err, "already-removed file is not a removal error")
}
