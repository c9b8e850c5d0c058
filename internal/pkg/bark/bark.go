// Package bark pushes alerts to the owner's phone through a Bark relay.
package bark

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/podcastify/core/internal/config"
)

const defaultServer = "https://day.app"

// Service sends Bark notifications.
type Service struct {
	cfg        config.BarkConfig
	siteTitle  string
	httpClient *http.Client

	mu         sync.Mutex
	lastPushAt map[string]time.Time
	throttleD  time.Duration
}

func New(cfg config.BarkConfig, siteTitle string) *Service {
	if cfg.ServerURL == "" {
		cfg.ServerURL = defaultServer
	}
	return &Service{
		cfg:        cfg,
		siteTitle:  siteTitle,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		lastPushAt: make(map[string]time.Time),
		throttleD:  10 * time.Minute,
	}
}

// Enabled reports whether pushes will be attempted.
func (s *Service) Enabled() bool {
	return s != nil && s.cfg.Enable && s.cfg.Key != ""
}

type pushPayload struct {
	DeviceKey string `json:"device_key"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Group     string `json:"group,omitempty"`
	URL       string `json:"url,omitempty"`
}

// Push sends a notification immediately. link, when set, opens on tap.
func (s *Service) Push(ctx context.Context, title, body, link string) error {
	if !s.Enabled() {
		return nil
	}
	b, err := json.Marshal(pushPayload{
		DeviceKey: s.cfg.Key,
		Title:     fmt.Sprintf("[%s] %s", s.siteTitle, title),
		Body:      body,
		Group:     s.siteTitle,
		URL:       link,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(s.cfg.ServerURL, "/")+"/push", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("bark returned %d", resp.StatusCode)
	}
	return nil
}

// ThrottlePush reports a rate-limited client at most once per ten minutes
// per ip and path.
func (s *Service) ThrottlePush(ip, path string) {
	if !s.Enabled() {
		return
	}
	key := ip + "|" + path

	s.mu.Lock()
	last, ok := s.lastPushAt[key]
	if ok && time.Since(last) < s.throttleD {
		s.mu.Unlock()
		return
	}
	s.lastPushAt[key] = time.Now()
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = s.Push(ctx, "Rate limit triggered", fmt.Sprintf("IP: %s Path: %s", ip, path), "")
}
