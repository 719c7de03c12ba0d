package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStorePut(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFSStore(dir, "/media/")
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "cp1.jpg", strings.NewReader("payload"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/media/cp1.jpg", url)

	data, err := os.ReadFile(filepath.Join(dir, "cp1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestFSStorePut_Overwrite(t *testing.T) {
	store, err := NewFSStore(t.TempDir(), "https://cdn.example.com/m")
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "k.jpg", strings.NewReader("one"), "image/jpeg")
	require.NoError(t, err)
	url, err := store.Put(context.Background(), "k.jpg", strings.NewReader("two"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/m/k.jpg", url)
}

func TestFSStorePut_RejectsTraversal(t *testing.T) {
	store, err := NewFSStore(t.TempDir(), "/media")
	require.NoError(t, err)

	for _, key := range []string{"", "../escape.jpg", "a/b.jpg"} {
		_, err := store.Put(context.Background(), key, strings.NewReader("x"), "image/jpeg")
		require.Error(t, err, key)
	}
}
