// Package slug turns titles into URL-safe identifiers and resolves collisions.
package slug

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	maxLength   = 96
	maxAttempts = 1000
)

// ErrExhausted is returned when no free suffix was found.
var ErrExhausted = errors.New("slug: no free suffix")

// Make lowercases title, folds accents, and collapses every run of other
// characters into a single hyphen. The result may be empty.
func Make(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	pendingHyphen := false
	for _, r := range norm.NFD.String(title) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	s := b.String()
	if len(s) > maxLength {
		s = strings.TrimRight(s[:maxLength], "-")
	}
	return s
}

// ExistsFunc reports whether candidate is already taken.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// Unique returns base, or base-1, base-2, ... whichever exists reports free first.
// An empty base falls back to fallback.
func Unique(ctx context.Context, base, fallback string, exists ExistsFunc) (string, error) {
	if base == "" {
		base = fallback
	}
	candidate := base
	for i := 1; i <= maxAttempts; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
	return "", ErrExhausted
}
