// Package content holds the storage and HTTP plumbing shared by every content kind.
package content

import (
	"context"
	"time"

	"github.com/podcastify/core/internal/models"
	"github.com/podcastify/core/internal/pkg/apperr"
	"github.com/podcastify/core/internal/pkg/slug"
)

// Entity is satisfied by *models.Podcast, *models.BlogPost and *models.Advertisement.
type Entity[T any] interface {
	*T
	Meta() *models.Base
	MediaRef() *models.Media
	Validate() apperr.FieldErrors
	Notice() models.Notice
}

// Saver is implemented by kinds that derive stored fields right before a write.
type Saver interface {
	BeforeSave()
}

// Announcer is implemented by kinds that are not always worth a notification.
type Announcer interface {
	Announce(now time.Time) bool
}

// Schema describes how one kind is stored and listed.
type Schema struct {
	Kind         models.Kind
	Collection   string
	DefaultSort  string
	SearchFields []string
}

// NextSlug derives a slug from title that exists reports as free.
func NextSlug(ctx context.Context, kind models.Kind, title string, exists slug.ExistsFunc) (string, error) {
	return slug.Unique(ctx, slug.Make(title), string(kind), exists)
}

// StampCreate fills the timestamps of a new record.
func StampCreate(meta *models.Base, now time.Time) {
	now = now.UTC().Truncate(time.Millisecond)
	meta.CreatedAt = now
	meta.UpdatedAt = now
	if meta.Date.IsZero() {
		meta.Date = now
	}
}

func beforeSave(v any) {
	if s, ok := v.(Saver); ok {
		s.BeforeSave()
	}
}
