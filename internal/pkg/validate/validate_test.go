package validate

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podcastify/core/internal/pkg/apperr"
)

type inner struct {
	Key string `json:"key" binding:"required"`
}

type Meta struct {
	Name string `json:"name" binding:"required,max=5"`
}

type sample struct {
	Meta
	Link  string `json:"link"  binding:"required,http_url"`
	Kind  string `json:"kind"  binding:"oneof=a b"`
	Clock string `json:"clock" binding:"omitempty,datetime=15:04"`
	Inner inner  `json:"inner"`
}

func fields(fe apperr.FieldErrors) []string {
	out := make([]string, 0, len(fe))
	for _, f := range fe {
		out = append(out, f.Field)
	}
	return out
}

func TestStructListsEveryFailedField(t *testing.T) {
	fe := Struct(&sample{Meta: Meta{Name: "toolong"}, Link: "ftp://x", Kind: "c", Clock: "25:99"})
	assert.Equal(t, []string{"name", "link", "kind", "clock", "inner.key"}, fields(fe))
	assert.Equal(t, "must be at most 5 characters", fe[0].Message)
	assert.Equal(t, "must be a valid http(s) URL", fe[1].Message)
	assert.Equal(t, "must be one of a, b", fe[2].Message)
	assert.Equal(t, "is required", fe[4].Message)
}

func TestStructAcceptsValidInput(t *testing.T) {
	fe := Struct(sample{Meta: Meta{Name: "ok"}, Link: "https://example.com", Kind: "a", Inner: inner{Key: "k"}})
	assert.Empty(t, fe)
	assert.NoError(t, fe.Err())
}

func TestURL(t *testing.T) {
	assert.True(t, URL("https://example.com/a?b=c"))
	assert.False(t, URL("ftp://example.com"))
	assert.False(t, URL("example.com"))
	assert.False(t, URL("https://"))
	assert.False(t, URL(""))
}

func TestBind(t *testing.T) {
	gin.SetMode(gin.TestMode)
	type request struct {
		Title string `json:"title" binding:"required"`
		URL   string `json:"url"   binding:"omitempty,http_url"`
	}
	bind := func(body string) error {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		var req request
		return Bind(c.ShouldBindJSON(&req))
	}

	err := bind(`{"url":"nope"}`)
	require.Error(t, err)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	assert.Equal(t, []string{"title", "url"}, fields(ae.Fields))

	err = bind(`{`)
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "body", ae.Fields[0].Field)

	assert.NoError(t, bind(`{"title":"t"}`))
}
