package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/podcastify/core/internal/pkg/jwt"
)

const testSecret = "middleware-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signedToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewVerifier(testSecret, "").Sign("admin", time.Minute)
	require.NoError(t, err)
	return token
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestAuth(t *testing.T) {
	v := jwt.NewVerifier(testSecret, "")
	r := gin.New()
	r.POST("/api/podcasts", Auth(v, "token"), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUserID(c))
	})

	tests := []struct {
		name   string
		setup  func(*http.Request)
		status int
	}{
		{"missing", func(*http.Request) {}, http.StatusUnauthorized},
		{"garbage", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+signedToken(t)) }, http.StatusOK},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "token", Value: signedToken(t)}) }, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/podcasts", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusUnauthorized {
				assert.JSONEq(t, `{"success":false,"error":"authentication required"}`, w.Body.String())
			} else {
				assert.Equal(t, "admin", w.Body.String())
			}
		})
	}
}

func TestAdminGate(t *testing.T) {
	v := jwt.NewVerifier(testSecret, "")
	r := gin.New()
	admin := r.Group("/admin", AdminGate(v, "token", "/admin/login"))
	admin.GET("/*path", func(c *gin.Context) { c.String(http.StatusOK, "page") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/podcasts?x=1", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/login?next=%2Fadmin%2Fpodcasts%3Fx%3D1", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/podcasts", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: signedToken(t)})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminGateExemptsOnlyTheLoginPage(t *testing.T) {
	v := jwt.NewVerifier(testSecret, "")
	for _, login := range []string{"/", "", "/admin/login"} {
		t.Run("login="+login, func(t *testing.T) {
			r := gin.New()
			admin := r.Group("/admin", AdminGate(v, "token", login))
			admin.GET("/*path", func(c *gin.Context) { c.String(http.StatusOK, "secret") })

			for _, target := range []string{"/admin/dashboard", "/admin/login/../dashboard", "/admin/login/extra"} {
				w := httptest.NewRecorder()
				r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
				assert.Equal(t, http.StatusFound, w.Code, target)
				assert.NotContains(t, w.Body.String(), "secret", target)
			}
		})
	}
}

func TestNormalizeToken(t *testing.T) {
	assert.Equal(t, "abc", NormalizeToken("  Bearer abc "))
	assert.Equal(t, "abc", NormalizeToken("bearer abc"))
	assert.Equal(t, "abc", NormalizeToken("abc"))
	assert.Equal(t, "", NormalizeToken("   "))
}

func TestRateLimit(t *testing.T) {
	rdb := newRedis(t)
	var throttled atomic.Int32
	r := gin.New()
	r.POST("/api/notifications", RateLimit(rdb, 2, func(string, string) { throttled.Add(1) }), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/notifications", nil))
		codes = append(codes, w.Code)
	}
	// All four land in the same one-second window unless the clock ticks mid-loop.
	if codes[2] == http.StatusTooManyRequests {
		assert.Equal(t, []int{200, 200, 429, 429}, codes)
		assert.Eventually(t, func() bool { return throttled.Load() == 1 }, time.Second, 5*time.Millisecond)
	}
	assert.Contains(t, codes, http.StatusOK)
}

func TestOptionalAuthExemptsOwnerFromRateLimit(t *testing.T) {
	rdb := newRedis(t)
	v := jwt.NewVerifier(testSecret, "")
	r := gin.New()
	r.Use(OptionalAuth(v, "token"))
	r.POST("/api/notifications", RateLimit(rdb, 1, nil), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUserID(c))
	})

	token := signedToken(t)
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/notifications", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "admin", w.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/api/notifications", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestIdempotence(t *testing.T) {
	rdb := newRedis(t)
	var calls atomic.Int32
	r := gin.New()
	r.Use(Idempotence(rdb, "token"))
	r.POST("/api/podcasts", func(c *gin.Context) {
		calls.Add(1)
		c.Status(http.StatusCreated)
	})
	r.POST("/api/fail", func(c *gin.Context) {
		calls.Add(1)
		c.Status(http.StatusBadRequest)
	})

	send := func(path, body string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, send("/api/podcasts", `{"title":"a"}`))
	assert.Equal(t, http.StatusConflict, send("/api/podcasts", `{"title":"a"}`))
	assert.Equal(t, http.StatusCreated, send("/api/podcasts", `{"title":"b"}`))

	assert.Equal(t, http.StatusBadRequest, send("/api/fail", `{}`))
	assert.Equal(t, http.StatusBadRequest, send("/api/fail", `{}`), "failed requests may be retried")
	assert.Equal(t, int32(4), calls.Load())
}

func TestIdempotenceIgnoresPut(t *testing.T) {
	rdb := newRedis(t)
	var calls atomic.Int32
	r := gin.New()
	r.Use(Idempotence(rdb, "token"))
	r.PUT("/api/notifications/preferences", func(c *gin.Context) {
		calls.Add(1)
		c.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/notifications/preferences", strings.NewReader(`{"endpoint":"e"}`))
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, int32(2), calls.Load())
	assert.Empty(t, rdb.Keys(context.Background(), "podcastify:idempotence:*").Val())
}

func TestLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(Logger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "/boom", entries[1].ContextMap()["path"])
}
