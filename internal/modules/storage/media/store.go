// Package media uploads content images to an object store and removes them again.
package media

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/podcastify/core/internal/models"
	"github.com/podcastify/core/internal/pkg/apperr"
	"github.com/podcastify/core/internal/pkg/metrics"
)

// Backend stores objects under keys and returns their public URL.
type Backend interface {
	Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}

// Store is the media client used by the publication workflow.
type Store struct {
	backend  Backend
	orphans  OrphanQueue
	defaults map[models.Kind]string
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option { return func(s *Store) { s.logger = l.Named("media") } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Store) { s.metrics = m } }

// WithOrphanQueue records uploads whose record was never persisted for a later sweep.
func WithOrphanQueue(q OrphanQueue) Option { return func(s *Store) { s.orphans = q } }

// WithPlaceholders sets the URL of each kind's default image.
func WithPlaceholders(urls map[models.Kind]string) Option {
	return func(s *Store) { s.defaults = urls }
}

func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		defaults: map[models.Kind]string{},
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload validates u against the kind's constraints and stores it.
// Constraint violations are validation errors and never reach the backend.
func (s *Store) Upload(ctx context.Context, kind models.Kind, u *Upload) (models.Media, error) {
	c := ConstraintsFor(kind)
	if err := c.Check(u); err != nil {
		return models.Media{}, err
	}

	key := objectKey(c.Folder, u.Filename, s.now())
	if _, err := u.Body.Seek(0, io.SeekStart); err != nil {
		return models.Media{}, apperr.Upstream("media.upload", fmt.Errorf("rewind upload: %w", err))
	}
	url, err := s.backend.Put(ctx, key, u.Body, u.Size, u.DeclaredType())
	s.metrics.MediaOp("upload", err == nil)
	if err != nil {
		s.logger.Error("upload failed", zap.String("key", key), zap.Error(err))
		return models.Media{}, apperr.Upstream("media.upload", err)
	}

	s.logger.Info("uploaded", zap.String("key", key), zap.Int64("size", u.Size))
	return models.Media{URL: url, PublicID: key}, nil
}

// Delete removes the object behind publicID. Failures are logged and swallowed;
// placeholders and empty ids are ignored.
func (s *Store) Delete(ctx context.Context, publicID string) {
	if publicID == "" || models.IsDefaultMediaID(publicID) {
		return
	}
	err := s.backend.Remove(ctx, publicID)
	s.metrics.MediaOp("delete", err == nil)
	if err != nil {
		s.logger.Warn("delete failed", zap.String("public_id", publicID), zap.Error(err))
		return
	}
	s.logger.Info("deleted", zap.String("public_id", publicID))
}

// Discard hands an upload that no record references to the orphan queue, or
// deletes it right away when no queue is configured.
func (s *Store) Discard(ctx context.Context, m models.Media) {
	if m.PublicID == "" || m.IsDefault() {
		return
	}
	if s.orphans == nil {
		s.Delete(ctx, m.PublicID)
		return
	}
	if err := s.orphans.Push(ctx, m.PublicID); err != nil {
		s.logger.Warn("queue orphan failed", zap.String("public_id", m.PublicID), zap.Error(err))
		s.Delete(ctx, m.PublicID)
	}
}

// Placeholder returns the default image reference for kind.
func (s *Store) Placeholder(kind models.Kind) models.Media {
	return models.Media{URL: s.defaults[kind], PublicID: models.DefaultMediaID(kind)}
}

// objectKey renders folder/YYYY/MM/<uuid>.<ext>.
func objectKey(folder, originalName string, now time.Time) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(strings.TrimSpace(originalName))), ".")
	if ext == "" || !isSafeSegment(ext) {
		ext = "img"
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s/%s/%s.%s", folder, now.UTC().Format("2006/01"), id, ext)
}

func isSafeSegment(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return s != ""
}
