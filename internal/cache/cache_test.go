package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_SaveLoad(t *testing.T) {
	f := New(filepath.Join(t.TempDir(), "nested", "index.json"))

	require.NoError(t, f.Save([]byte(`{"data": [1]}`)))
	require.NoError(t, f.Save([]byte(`{"data": []}`)))

	raw, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, `{"data": []}`, string(raw))
}

func TestFile_LoadMissing(t *testing.T) {
	f := New(filepath.Join(t.TempDir(), "missing.json"))
	_, err := f.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
