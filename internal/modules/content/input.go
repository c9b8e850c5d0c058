package content

import (
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/podcastify/core/internal/models"
	"github.com/podcastify/core/internal/modules/storage/media"
	"github.com/podcastify/core/internal/pkg/apperr"
	"github.com/podcastify/core/internal/pkg/validate"
)

// Bind decodes a JSON body or a url-encoded/multipart form into dst.
func Bind(c *gin.Context, dst any) error {
	return validate.Bind(c.ShouldBind(dst))
}

// FileUpload returns the uploaded file in field, or nil when the request is not
// multipart or carries no such file.
func FileUpload(c *gin.Context, field string) (*media.Upload, error) {
	if !strings.HasPrefix(c.ContentType(), gin.MIMEMultipartPOSTForm) {
		return nil, nil
	}
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Invalid(field, "%s", err.Error())
	}
	return media.FromFileHeader(fh)
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// ParseDate accepts RFC 3339 timestamps and plain calendar dates. An empty
// value yields nil.
func ParseDate(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperr.Invalid(field, "must be a date (YYYY-MM-DD or RFC 3339)")
}

// Tags splits comma separated values, then trims, lowercases and de-duplicates.
func Tags(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, tag := range strings.Split(v, ",") {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag != "" && !slices.Contains(out, tag) {
				out = append(out, tag)
			}
		}
	}
	return out
}

// QueryBool reads a boolean query parameter. Missing or malformed values are nil.
func QueryBool(c *gin.Context, key string) *bool {
	raw, ok := c.GetQuery(key)
	if !ok {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// SetText assigns the trimmed value when the field was supplied.
func SetText(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// SetMedia assigns a JSON media reference when one was supplied.
func SetMedia(dst *models.Media, v *models.Media) {
	if v != nil && !v.IsZero() {
		*dst = *v
	}
}
