package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	valid := []string{"a.pdf", "D1_2024_Q1_report_abc.pdf", "x-y_z.1"}
	for _, name := range valid {
		assert.NoError(t, ValidateName(name), name)
	}

	invalid := []string{"", "../x.pdf", "a/b.pdf", `a\b.pdf`, ".hidden", "a..b", "név.pdf", strings.Repeat("a", 300)}
	for _, name := range invalid {
		assert.ErrorIs(t, ValidateName(name), ErrInvalidName, name)
	}
}

func runStoreContract(t *testing.T, store DocumentStore) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "doc.pdf", []byte("payload")))

	data, err := store.Get(ctx, "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	assert.ErrorIs(t, store.Put(ctx, "doc.pdf", []byte("other")), ErrExists)
	data, err = store.Get(ctx, "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data, "existing document must not be overwritten")

	_, err = store.Get(ctx, "missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Put(ctx, "../escape.pdf", []byte("x")), ErrInvalidName)
	_, err = store.Get(ctx, "../../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	runStoreContract(t, store)
	assert.Equal(t, 1, store.Len())
}

func TestFileSystemStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileSystemStore(dir)
	require.NoError(t, err)
	runStoreContract(t, store)
	require.NoError(t, store.Ping(context.Background()))
}
