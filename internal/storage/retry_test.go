package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyStore struct {
	failures int
	err      error
	calls    int
	inner    *MemoryStore
}

func (f *flakyStore) Put(ctx context.Context, name string, data []byte) error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return f.inner.Put(ctx, name, data)
}

func (f *flakyStore) Get(ctx context.Context, name string) ([]byte, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return f.inner.Get(ctx, name)
}

func TestRetryingStoreRecoversFromOneTransientFailure(t *testing.T) {
	inner := &flakyStore{failures: 1, err: errors.New("connection reset"), inner: NewMemoryStore()}
	store := NewRetryingStore(inner, nil, time.Millisecond)

	require.NoError(t, store.Put(context.Background(), "a.pdf", []byte("x")))
	assert.Equal(t, 2, inner.calls)
}

func TestRetryingStoreGivesUpAfterOneRetry(t *testing.T) {
	transient := errors.New("connection reset")
	inner := &flakyStore{failures: 5, err: transient, inner: NewMemoryStore()}
	store := NewRetryingStore(inner, nil, time.Millisecond)

	_, err := store.Get(context.Background(), "a.pdf")
	assert.ErrorIs(t, err, transient)
	assert.Equal(t, 2, inner.calls)
}

func TestRetryingStoreDoesNotRetryPermanentErrors(t *testing.T) {
	inner := &flakyStore{inner: NewMemoryStore()}
	store := NewRetryingStore(inner, nil, time.Millisecond)

	_, err := store.Get(context.Background(), "missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, inner.calls)

	inner.calls = 0
	err = store.Put(context.Background(), "../x", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.Equal(t, 1, inner.calls)
}

// landingStore stores the first write and still reports it as failed.
type landingStore struct {
	*MemoryStore
	puts int
}

func (l *landingStore) Put(ctx context.Context, name string, data []byte) error {
	l.puts++
	if err := l.MemoryStore.Put(ctx, name, data); err != nil {
		return err
	}
	if l.puts == 1 {
		return errors.New("i/o timeout")
	}
	return nil
}

func TestRetryingStoreAcceptsWriteThatLandedBeforeRetry(t *testing.T) {
	ctx := context.Background()
	inner := &landingStore{MemoryStore: NewMemoryStore()}
	store := NewRetryingStore(inner, nil, time.Millisecond)

	require.NoError(t, store.Put(ctx, "a.pdf", []byte("payload")))
	assert.Equal(t, 2, inner.puts)
	assert.Equal(t, 1, inner.Len())

	data, err := store.Get(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
}

func TestRetryingStoreRejectsDifferentContentUnderSameName(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	require.NoError(t, mem.Put(ctx, "a.pdf", []byte("earlier")))

	store := NewRetryingStore(mem, nil, time.Millisecond)
	assert.ErrorIs(t, store.Put(ctx, "a.pdf", []byte("later")), ErrExists)

	flaky := &flakyStore{failures: 1, err: errors.New("connection reset"), inner: NewMemoryStore()}
	require.NoError(t, flaky.inner.Put(ctx, "b.pdf", []byte("other")))
	store = NewRetryingStore(flaky, nil, time.Millisecond)
	assert.ErrorIs(t, store.Put(ctx, "b.pdf", []byte("mine")), ErrExists)
}
