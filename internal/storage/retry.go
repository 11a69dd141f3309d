package storage

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// RetryingStore retries a failed operation once unless the failure is permanent.
type RetryingStore struct {
	inner  DocumentStore
	logger *zap.Logger
	delay  time.Duration
}

// NewRetryingStore wraps inner with a single retry after delay.
func NewRetryingStore(inner DocumentStore, logger *zap.Logger, delay time.Duration) *RetryingStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if delay <= 0 {
		delay = time.Millisecond
	}
	return &RetryingStore{inner: inner, logger: logger, delay: delay}
}

// Put writes the document. A retry that finds the name taken by identical
// bytes means the first attempt landed, and counts as success.
func (s *RetryingStore) Put(ctx context.Context, name string, data []byte) error {
	attempt := 0
	return s.do(ctx, "put", name, func(ctx context.Context) error {
		attempt++
		err := s.inner.Put(ctx, name, data)
		if attempt > 1 && errors.Is(err, ErrExists) && s.holds(ctx, name, data) {
			s.logger.Info("document write landed before retry", zap.String("name", name))
			return nil
		}
		return err
	})
}

func (s *RetryingStore) holds(ctx context.Context, name string, data []byte) bool {
	stored, err := s.inner.Get(ctx, name)
	return err == nil && bytes.Equal(stored, data)
}

func (s *RetryingStore) Get(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := s.do(ctx, "get", name, func(ctx context.Context) error {
		var err error
		data, err = s.inner.Get(ctx, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Ping delegates to the wrapped store when it supports readiness checks.
func (s *RetryingStore) Ping(ctx context.Context) error {
	if p, ok := s.inner.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *RetryingStore) do(ctx context.Context, op, name string, fn func(context.Context) error) error {
	attempt := 0
	backoff := retry.WithMaxRetries(1, retry.NewConstant(s.delay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil || isPermanent(err) {
			return err
		}
		if attempt == 1 {
			s.logger.Warn("document store operation failed; retrying",
				zap.String("op", op),
				zap.String("name", name),
				zap.Error(err))
		}
		return retry.RetryableError(err)
	})
}

func isPermanent(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrExists) ||
		errors.Is(err, ErrInvalidName) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
