package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/codeGROOVE-dev/retry"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/podcastify/core/internal/config"
)

// GCSBackend stores objects in a Google Cloud Storage bucket.
type GCSBackend struct {
	client    *storage.Client
	bucket    string
	publicURL string
	logger    *zap.Logger
}

func NewGCSBackend(ctx context.Context, cfg config.GCSMediaConfig, logger *zap.Logger) (*GCSBackend, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &GCSBackend{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: gcsPublicURL(cfg),
		logger:    logger.Named("gcs"),
	}, nil
}

func gcsPublicURL(cfg config.GCSMediaConfig) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/")
	}
	return "https://storage.googleapis.com/" + cfg.Bucket
}

func (b *GCSBackend) Put(ctx context.Context, key string, body io.ReadSeeker, _ int64, contentType string) (string, error) {
	err := retry.Do(
		func() error {
			if _, err := body.Seek(0, io.SeekStart); err != nil {
				return retry.Unrecoverable(fmt.Errorf("rewind body: %w", err))
			}
			w := b.client.Bucket(b.bucket).Object(key).NewWriter(ctx)
			w.ContentType = contentType
			w.CacheControl = "public, max-age=31536000, immutable"
			if _, err := io.Copy(w, body); err != nil {
				if closeErr := w.Close(); closeErr != nil {
					b.logger.Warn("close writer after error", zap.Error(closeErr))
				}
				return fmt.Errorf("write object: %w", err)
			}
			if err := w.Close(); err != nil {
				return fmt.Errorf("close object writer: %w", err)
			}
			return nil
		},
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.MaxJitter(time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			b.logger.Info("retrying upload", zap.Uint("attempt", n), zap.String("key", key), zap.Error(err))
		}),
	)
	if err != nil {
		return "", fmt.Errorf("gcs put %s: %w", key, err)
	}
	return b.publicURL + "/" + key, nil
}

func (b *GCSBackend) Remove(ctx context.Context, key string) error {
	err := retry.Do(
		func() error {
			err := b.client.Bucket(b.bucket).Object(key).Delete(ctx)
			if errors.Is(err, storage.ErrObjectNotExist) {
				return nil
			}
			return err
		},
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.Context(ctx),
	)
	if err != nil {
		return fmt.Errorf("gcs delete %s: %w", key, err)
	}
	return nil
}

func (b *GCSBackend) Close() error {
	return b.client.Close()
}
