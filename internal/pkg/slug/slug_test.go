package slug

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var urlSafe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestMake(t *testing.T) {
	tests := map[string]string{
		"Why AI Wins":                  "why-ai-wins",
		"Hello World!":                 "hello-world",
		"  --Leading & trailing--  ":   "leading-trailing",
		"Café au Lait":                 "cafe-au-lait",
		"Episode #12: Go's  Generics":  "episode-12-go-s-generics",
		"!!!":                          "",
		"already-a-slug":               "already-a-slug",
		"MiXeD___Case...and   spaces": "mixed-case-and-spaces",
	}
	for in, want := range tests {
		got := Make(in)
		assert.Equal(t, want, got, in)
		if got != "" {
			assert.Regexp(t, urlSafe, got)
		}
	}
}

func TestMakeTruncates(t *testing.T) {
	got := Make(strings.Repeat("word ", 60))
	assert.LessOrEqual(t, len(got), maxLength)
	assert.Regexp(t, urlSafe, got)
}

func taken(slugs ...string) ExistsFunc {
	set := map[string]bool{}
	for _, s := range slugs {
		set[s] = true
	}
	return func(_ context.Context, c string) (bool, error) { return set[c], nil }
}

func TestUnique(t *testing.T) {
	ctx := context.Background()

	got, err := Unique(ctx, "hello-world", "post", taken())
	require.NoError(t, err)
	assert.Equal(t, "hello-world", got)

	got, err = Unique(ctx, "hello-world", "post", taken("hello-world"))
	require.NoError(t, err)
	assert.Equal(t, "hello-world-1", got)

	got, err = Unique(ctx, "hello-world", "post", taken("hello-world", "hello-world-1", "hello-world-2"))
	require.NoError(t, err)
	assert.Equal(t, "hello-world-3", got)

	got, err = Unique(ctx, "", "podcast", taken("podcast"))
	require.NoError(t, err)
	assert.Equal(t, "podcast-1", got)
}

func TestUniquePropagatesLookupError(t *testing.T) {
	boom := errors.New("db down")
	_, err := Unique(context.Background(), "x", "y", func(context.Context, string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}
