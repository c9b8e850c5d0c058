package media

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/podcastify/core/internal/config"
)

// NewBackend builds the backend selected by cfg.Driver. localDir is the resolved
// directory for the local driver and siteURL prefixes its URLs.
func NewBackend(ctx context.Context, cfg config.MediaConfig, localDir, siteURL string, logger *zap.Logger) (Backend, error) {
	switch cfg.Driver {
	case config.MediaDriverS3:
		return NewS3Backend(cfg.S3), nil
	case config.MediaDriverGCS:
		return NewGCSBackend(ctx, cfg.GCS, logger)
	case config.MediaDriverLocal:
		return NewLocalBackend(localDir, siteURL+cfg.Local.URLPrefix)
	default:
		return nil, fmt.Errorf("unknown media driver %q", cfg.Driver)
	}
}
