// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package blob_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell/inkwell/internal/blob"
)

func TestFSStore_StoreAndResolve(t *testing.T) {
	ctx := context.Background()
	store, err := blob.NewFSStore(t.TempDir(), "https://cdn.example.com/blobs/")
	require.NoError(t, err)

	ref, err := store.Store(ctx, strings.NewReader("fake png bytes"), "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(ref, ".png"))
	assert.NotContains(t, ref, "/")

	url, err := store.Resolve(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/blobs/"+ref, url)
}

func TestFSStore_StoreWritesContent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := blob.NewFSStore(dir, "http://localhost/blobs")
	require.NoError(t, err)

	ref, err := store.Store(ctx, strings.NewReader("hello"), "image/jpeg")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ref))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestFSStore_UnknownContentTypeGetsBinExtension(t *testing.T) {
	store, err := blob.NewFSStore(t.TempDir(), "http://localhost/blobs")
	require.NoError(t, err)

	ref, err := store.Store(context.Background(), strings.NewReader("x"), "application/octet-stream")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(ref, ".bin"))
}

func TestFSStore_Delete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := blob.NewFSStore(dir, "http://localhost/blobs")
	require.NoError(t, err)

	ref, err := store.Store(ctx, strings.NewReader("x"), "image/png")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, ref))
	_, statErr := os.Stat(filepath.Join(dir, ref))
	assert.True(t, os.IsNotExist(statErr))

	t.Run("unknown reference is a no-op", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV.png"))
	})
}

func TestFSStore_RejectsTraversal(t *testing.T) {
	store, err := blob.NewFSStore(t.TempDir(), "http://localhost/blobs")
	require.NoError(t, err)

	for _, ref := range []string{"", "../etc/passwd", "a/b.png", "..", "foo..png/../x"} {
		_, err := store.Resolve(context.Background(), ref)
		assert.Error(t, err, "ref %q", ref)
	}
}

func TestNewFSStore_RequiresBaseDir(t *testing.T) {
	_, err := blob.NewFSStore("", "http://localhost")
	assert.Error(t, err)
}
