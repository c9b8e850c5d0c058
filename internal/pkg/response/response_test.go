package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podcastify/core/internal/pkg/apperr"
)

func run(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h(c)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestListEnvelope(t *testing.T) {
	w, body := run(t, func(c *gin.Context) { List(c, []string{}, 0, false) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []any{}, body["data"])
	assert.Equal(t, float64(0), body["total"])
	assert.Equal(t, false, body["hasMore"])
}

func TestValidationErrorListsFields(t *testing.T) {
	SetVerbose(false)
	var fe apperr.FieldErrors
	fe.Add("title", "is required")
	fe.Add("thumbnail", "must be an image")

	w, body := run(t, func(c *gin.Context) { Error(c, fe.Err()) })
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "title: is required")
	assert.Len(t, body["errors"], 2)
	assert.NotContains(t, body, "detail")
}

func TestInternalErrorHidesCauseUnlessVerbose(t *testing.T) {
	err := apperr.Persistence("podcast.create", errors.New("E11000 duplicate key"))

	SetVerbose(false)
	w, body := run(t, func(c *gin.Context) { Error(c, err) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "podcast.create: storage failed", body["error"])
	assert.NotContains(t, body, "detail")

	SetVerbose(true)
	t.Cleanup(func() { SetVerbose(false) })
	_, body = run(t, func(c *gin.Context) { Error(c, err) })
	assert.Contains(t, body["detail"], "E11000")
}
