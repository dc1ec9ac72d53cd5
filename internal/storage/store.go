// Package storage keeps uploaded recipe images either on the local disk or
// in an S3 bucket.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/pageza/foodgram/backend/config"
)

// ImageStore saves and removes objects addressed by a slash-separated key
// such as "recipes/<uuid>.png".
type ImageStore interface {
	Save(ctx context.Context, key string, body io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// New builds the store selected by cfg.StorageBackend.
func New(ctx context.Context, cfg *config.Config) (ImageStore, error) {
	switch cfg.StorageBackend {
	case "local":
		return NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
	case "s3":
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to configure s3: %w", err)
		}
		return NewS3Store(s3cfg.Client, s3cfg.BucketName, cfg.MediaURL), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}
