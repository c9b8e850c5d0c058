package media

import (
	"strings"

	"github.com/podcastify/core/internal/models"
	"github.com/podcastify/core/internal/pkg/apperr"
)

const (
	mb = 1 << 20

	thumbnailMaxBytes = 5 * mb
	adImageMaxBytes   = 10 * mb
)

// Constraints are checked before any bytes are sent to the backend.
type Constraints struct {
	// Field names the form field in validation errors.
	Field    string
	Folder   string
	MaxBytes int64
}

// ConstraintsFor returns the upload rules for a content kind.
func ConstraintsFor(kind models.Kind) Constraints {
	switch kind {
	case models.KindAd:
		return Constraints{Field: "image", Folder: "ads", MaxBytes: adImageMaxBytes}
	case models.KindBlog:
		return Constraints{Field: "image", Folder: "blogs", MaxBytes: thumbnailMaxBytes}
	default:
		return Constraints{Field: "thumbnail", Folder: "podcasts", MaxBytes: thumbnailMaxBytes}
	}
}

// Check returns a validation error if u breaks the constraints.
func (c Constraints) Check(u *Upload) error {
	return c.Problems(u).Err()
}

// Problems lists every constraint u breaks.
func (c Constraints) Problems(u *Upload) apperr.FieldErrors {
	var fe apperr.FieldErrors
	if typ := u.DeclaredType(); !strings.HasPrefix(typ, "image/") {
		fe.Add(c.Field, "must be an image, got %q", typ)
	}
	switch {
	case u.Size <= 0:
		fe.Add(c.Field, "is empty")
	case u.Size > c.MaxBytes:
		fe.Add(c.Field, "must not exceed %dMB", c.MaxBytes/mb)
	}
	return fe
}
