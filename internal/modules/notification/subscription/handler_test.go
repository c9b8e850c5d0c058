package subscription_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podcastify/core/internal/models"
	"github.com/podcastify/core/internal/modules/notification/dispatch"
	"github.com/podcastify/core/internal/modules/notification/subscription"
	"github.com/podcastify/core/internal/pkg/apperr"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memRegistry struct {
	mu   sync.Mutex
	subs map[string]*models.Subscription
}

func newMemRegistry() *memRegistry {
	return &memRegistry{subs: map[string]*models.Subscription{}}
}

func (m *memRegistry) Subscribe(_ context.Context, in subscription.SubscribeInput) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	sub, ok := m.subs[in.Endpoint]
	if !ok {
		sub = &models.Subscription{Endpoint: in.Endpoint, Preferences: models.DefaultPreferences()}
		m.subs[in.Endpoint] = sub
	}
	sub.Keys, sub.IsActive = in.Keys, true
	if in.Preferences != nil {
		sub.Preferences = *in.Preferences
	}
	cp := *sub
	return &cp, nil
}

func (m *memRegistry) Unsubscribe(_ context.Context, endpoint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[endpoint]
	if !ok {
		return apperr.NotFound("unsubscribe", "subscription")
	}
	sub.IsActive = false
	return nil
}

func (m *memRegistry) Get(_ context.Context, endpoint string) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[endpoint]
	if !ok {
		return nil, apperr.NotFound("get", "subscription")
	}
	cp := *sub
	return &cp, nil
}

func (m *memRegistry) UpdatePreferences(_ context.Context, endpoint string, patch models.PreferencesPatch) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[endpoint]
	if !ok {
		return nil, apperr.NotFound("preferences", "subscription")
	}
	sub.Preferences = patch.Apply(sub.Preferences)
	cp := *sub
	return &cp, nil
}

func (m *memRegistry) ActiveFor(_ context.Context, c models.Category) ([]models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Subscription
	for _, s := range m.subs {
		if s.Eligible(c) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memRegistry) Stats(context.Context) (subscription.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return subscription.Stats{Total: int64(len(m.subs))}, nil
}

type okSender struct{}

func (okSender) Send(context.Context, models.Subscription, []byte) error { return nil }

func newRouter(reg *memRegistry) *gin.Engine {
	r := gin.New()
	auth := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
		}
	}
	subscription.NewHandler(reg, dispatch.New(okSender{}, nil), "BPUBKEY").
		RegisterRoutes(r.Group("/api/notifications"), nil, auth)
	return r
}

func call(t *testing.T, r http.Handler, method, target, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.HasSuffix(target, "/send") || strings.HasSuffix(target, "/stats") {
		req.Header.Set("Authorization", "Bearer t")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

const ep = "https://push.example.com/send/1"

func TestSubscriptionFlow(t *testing.T) {
	reg := newMemRegistry()
	r := newRouter(reg)

	code, body := call(t, r, http.MethodGet, "/api/notifications", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "BPUBKEY", body["data"].(map[string]any)["publicKey"])

	sub := `{"subscription":{"endpoint":"` + ep + `","keys":{"p256dh":"p","auth":"a"}},"preferences":{"podcasts":true,"blogs":false,"advertisements":true}}`
	code, _ = call(t, r, http.MethodPost, "/api/notifications", sub)
	require.Equal(t, http.StatusCreated, code)
	code, _ = call(t, r, http.MethodPost, "/api/notifications", sub)
	require.Equal(t, http.StatusCreated, code)
	assert.Len(t, reg.subs, 1)

	code, body = call(t, r, http.MethodPut, "/api/notifications/preferences", `{"endpoint":"`+ep+`","preferences":{"blogs":true}}`)
	require.Equal(t, http.StatusOK, code)
	prefs := body["data"].(map[string]any)["preferences"].(map[string]any)
	assert.Equal(t, true, prefs["blogs"])
	assert.Equal(t, true, prefs["podcasts"])

	code, _ = call(t, r, http.MethodDelete, "/api/notifications", `{"endpoint":"`+ep+`"}`)
	require.Equal(t, http.StatusOK, code)

	code, body = call(t, r, http.MethodGet, "/api/notifications/preferences?endpoint="+ep, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["data"].(map[string]any)["isActive"])
}

func TestSubscriptionErrors(t *testing.T) {
	r := newRouter(newMemRegistry())

	code, body := call(t, r, http.MethodPost, "/api/notifications", `{"endpoint":""}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])

	code, _ = call(t, r, http.MethodDelete, "/api/notifications?endpoint=https://nope.example.com/x", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = call(t, r, http.MethodDelete, "/api/notifications", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, r, http.MethodGet, "/api/notifications/preferences?endpoint=https://nope.example.com/x", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func errorFields(body map[string]any) []string {
	var out []string
	errs, _ := body["errors"].([]any)
	for _, e := range errs {
		out = append(out, e.(map[string]any)["field"].(string))
	}
	return out
}

func TestRequestValidationListsEveryField(t *testing.T) {
	r := newRouter(newMemRegistry())

	code, body := call(t, r, http.MethodPost, "/api/notifications/send", `{"url":"javascript:alert(1)","category":"music"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, []string{"title", "body", "url", "category"}, errorFields(body))

	code, body = call(t, r, http.MethodPost, "/api/notifications", `{"subscription":{"endpoint":"ftp://push.example.com/x","keys":{"auth":"a"}}}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, []string{"endpoint", "keys.p256dh"}, errorFields(body))

	code, body = call(t, r, http.MethodPut, "/api/notifications/preferences", `{"preferences":{"blogs":false}}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, []string{"endpoint"}, errorFields(body))
}

func TestSendBroadcast(t *testing.T) {
	reg := newMemRegistry()
	r := newRouter(reg)
	_, err := reg.Subscribe(context.Background(), subscription.SubscribeInput{Endpoint: ep, Keys: models.PushKeys{P256dh: "p", Auth: "a"}})
	require.NoError(t, err)

	code, body := call(t, r, http.MethodPost, "/api/notifications/send", `{"title":"Hi","body":"News","category":"podcasts"}`)
	require.Equal(t, http.StatusOK, code)
	summary := body["data"].(map[string]any)["summary"].(map[string]any)
	assert.EqualValues(t, 1, summary["delivered"])

	code, _ = call(t, r, http.MethodPost, "/api/notifications/send", `{"title":"Hi","body":"News","category":"music"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	req := httptest.NewRequest(http.MethodGet, "/api/notifications/stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
