package storage

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	store, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)
	return store
}

func TestLocalStorageSaveAndDelete(t *testing.T) {
	store := newTestStorage(t)

	path, err := store.SaveStream("designs/design_1_abcd.jpg", strings.NewReader("image bytes"))
	require.NoError(t, err)
	assert.Equal(t, "designs/design_1_abcd.jpg", path)

	content, err := os.ReadFile(store.Path(path))
	require.NoError(t, err)
	assert.Equal(t, "image bytes", string(content))

	require.NoError(t, store.Delete(path))
	_, err = os.Stat(store.Path(path))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorageDeleteMissingFile(t *testing.T) {
	store := newTestStorage(t)
	assert.NoError(t, store.Delete("designs/never_existed.jpg"))
}

func TestLocalStoragePublicURL(t *testing.T) {
	store := newTestStorage(t)

	assert.Equal(t, "/uploads/designs/a.jpg", store.PublicURL("designs/a.jpg"))
	assert.Equal(t, "/uploads/designs/a.jpg", store.PublicURL("/uploads/designs/a.jpg"))
	assert.Equal(t, "", store.PublicURL(""))
}

func TestLocalStorageDeleteByPublicURL(t *testing.T) {
	store := newTestStorage(t)

	path, err := store.SaveStream("arsipedia/cover.jpg", strings.NewReader("img"))
	require.NoError(t, err)

	// Rows may hold the public form of the path; Delete resolves both.
	require.NoError(t, store.Delete(store.PublicURL(path)))
	_, err = os.Stat(store.Path(path))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorageNormalizesWindowsSeparators(t *testing.T) {
	store := newTestStorage(t)

	path, err := store.SaveStream(`designs\win.jpg`, strings.NewReader("img"))
	require.NoError(t, err)
	assert.Equal(t, "designs/win.jpg", path)
}
