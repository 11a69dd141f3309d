package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/report-portal/internal/config"
)

// New builds the configured document store wrapped with a single retry.
func New(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*RetryingStore, error) {
	var inner DocumentStore
	switch cfg.Driver {
	case config.StorageDriverS3:
		s3Store, err := NewS3Store(ctx, cfg)
		if err != nil {
			return nil, err
		}
		inner = s3Store
		logger.Info("document store ready", zap.String("driver", cfg.Driver), zap.String("bucket", cfg.S3Bucket))
	case config.StorageDriverMemory:
		inner = NewMemoryStore()
		logger.Warn("document store is in-memory; uploads are lost on restart")
	case config.StorageDriverFS, "":
		fsStore, err := NewFileSystemStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		inner = fsStore
		logger.Info("document store ready", zap.String("driver", config.StorageDriverFS))
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	return NewRetryingStore(inner, logger, cfg.RetryDelay()), nil
}
