package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/codeGROOVE-dev/retry"
	"go.uber.org/zap"

	"github.com/podcastify/core/internal/config"
	"github.com/podcastify/core/internal/models"
)

// ErrGone reports an endpoint the push service no longer accepts.
var ErrGone = errors.New("push endpoint gone")

// WebPushSender encrypts payloads per RFC 8291 and posts them with VAPID auth.
type WebPushSender struct {
	cfg      config.PushConfig
	client   *http.Client
	attempts uint
	delay    time.Duration
	logger   *zap.Logger
}

func NewWebPushSender(cfg config.PushConfig, client *http.Client, logger *zap.Logger) *WebPushSender {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebPushSender{
		cfg:      cfg,
		client:   client,
		attempts: 3,
		delay:    250 * time.Millisecond,
		logger:   logger.Named("webpush"),
	}
}

// PublicKey is handed to browsers as the applicationServerKey.
func (s *WebPushSender) PublicKey() string { return s.cfg.VAPIDPublicKey }

// Send retries network errors, 429 and 5xx. 404 and 410 yield ErrGone.
func (s *WebPushSender) Send(ctx context.Context, sub models.Subscription, payload []byte) error {
	target := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{P256dh: sub.Keys.P256dh, Auth: sub.Keys.Auth},
	}
	opts := &webpush.Options{
		HTTPClient:      s.client,
		Subscriber:      s.cfg.Subscriber,
		VAPIDPublicKey:  s.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: s.cfg.VAPIDPrivateKey,
		TTL:             s.cfg.TTL,
		Urgency:         webpush.UrgencyNormal,
	}

	var gone bool
	err := retry.Do(
		func() error {
			resp, err := webpush.SendNotificationWithContext(ctx, payload, target, opts)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			_, _ = io.Copy(io.Discard, resp.Body)

			switch code := resp.StatusCode; {
			case code == http.StatusNotFound || code == http.StatusGone:
				gone = true
				return retry.Unrecoverable(fmt.Errorf("push service returned %d", code))
			case code == http.StatusTooManyRequests || code >= 500:
				return fmt.Errorf("push service returned %d", code)
			case code >= 400:
				return retry.Unrecoverable(fmt.Errorf("push service rejected payload: %d", code))
			}
			return nil
		},
		retry.Attempts(s.attempts),
		retry.Delay(s.delay),
		retry.MaxDelay(2*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Debug("retrying push", zap.Uint("attempt", n), zap.Error(err))
		}),
	)
	if gone {
		return ErrGone
	}
	return err
}
