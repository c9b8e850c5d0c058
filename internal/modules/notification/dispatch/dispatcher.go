package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/podcastify/core/internal/models"
	"github.com/podcastify/core/internal/pkg/metrics"
)

const defaultConcurrency = 8

// Sender delivers an encoded payload to one subscription.
type Sender interface {
	Send(ctx context.Context, sub models.Subscription, payload []byte) error
}

// Recorder stamps lastNotified on endpoints that accepted a delivery.
type Recorder interface {
	MarkNotified(ctx context.Context, endpoints []string, at time.Time) error
}

// DeliveryResult is the outcome of one endpoint's delivery.
type DeliveryResult struct {
	Endpoint string `json:"endpoint"`
	OK       bool   `json:"ok"`
	// Gone is set when the push service reports the endpoint expired.
	Gone  bool   `json:"gone,omitempty"`
	Error string `json:"error,omitempty"`
}

// Summary counts delivery results.
type Summary struct {
	Total     int `json:"total"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

func Summarize(results []DeliveryResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.OK {
			s.Delivered++
		} else {
			s.Failed++
		}
	}
	return s
}

type Dispatcher struct {
	sender      Sender
	recorder    Recorder
	concurrency int
	siteURL     string
	icon        string
	badge       string
	logger      *zap.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

type Option func(*Dispatcher)

func WithConcurrency(n int) Option { return func(d *Dispatcher) { d.concurrency = n } }

func WithLogger(l *zap.Logger) Option { return func(d *Dispatcher) { d.logger = l.Named("dispatch") } }

func WithMetrics(m *metrics.Metrics) Option { return func(d *Dispatcher) { d.metrics = m } }

// WithSite sets the base URL deep links and icons are resolved against.
func WithSite(url string) Option {
	return func(d *Dispatcher) {
		d.siteURL = strings.TrimRight(url, "/")
		d.icon = d.siteURL + "/icons/icon-192x192.png"
		d.badge = d.siteURL + "/icons/badge-72x72.png"
	}
}

func New(sender Sender, recorder Recorder, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sender:      sender,
		recorder:    recorder,
		concurrency: defaultConcurrency,
		logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.concurrency < 1 {
		d.concurrency = 1
	}
	return d
}

// Dispatch sends p to every active subscription and returns one result per
// attempted endpoint. A failed endpoint never stops delivery to the others.
// Endpoints that accepted the payload get lastNotified updated.
func (d *Dispatcher) Dispatch(ctx context.Context, kind models.Kind, p Payload, subs []models.Subscription) []DeliveryResult {
	targets := make([]models.Subscription, 0, len(subs))
	for _, s := range subs {
		if s.IsActive {
			targets = append(targets, s)
		}
	}
	results := make([]DeliveryResult, len(targets))
	if len(targets) == 0 {
		return results
	}

	body, err := json.Marshal(p)
	if err != nil {
		d.logger.Error("encode payload", zap.Error(err))
		for i, s := range targets {
			results[i] = DeliveryResult{Endpoint: s.Endpoint, Error: err.Error()}
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, s := range targets {
		g.Go(func() error {
			results[i] = d.deliver(ctx, kind, s, body)
			return nil
		})
	}
	_ = g.Wait()

	delivered := make([]string, 0, len(results))
	for _, r := range results {
		if r.OK {
			delivered = append(delivered, r.Endpoint)
		}
	}
	if len(delivered) > 0 && d.recorder != nil {
		if err := d.recorder.MarkNotified(ctx, delivered, d.now().UTC()); err != nil {
			d.logger.Warn("record lastNotified failed", zap.Int("endpoints", len(delivered)), zap.Error(err))
		}
	}

	sum := Summarize(results)
	d.logger.Info("dispatched",
		zap.String("kind", string(kind)),
		zap.Int("delivered", sum.Delivered),
		zap.Int("failed", sum.Failed))
	return results
}

func (d *Dispatcher) deliver(ctx context.Context, kind models.Kind, s models.Subscription, body []byte) DeliveryResult {
	err := d.sender.Send(ctx, s, body)
	d.metrics.Delivery(string(kind), err == nil)
	if err != nil {
		d.logger.Warn("delivery failed", zap.String("endpoint", redact(s.Endpoint)), zap.Error(err))
		return DeliveryResult{Endpoint: s.Endpoint, Gone: errors.Is(err, ErrGone), Error: err.Error()}
	}
	return DeliveryResult{Endpoint: s.Endpoint, OK: true}
}

// redact keeps the push service host and drops the per-browser token.
func redact(endpoint string) string {
	if i := strings.LastIndexByte(endpoint, '/'); i > 0 && i < len(endpoint)-1 {
		tail := endpoint[i+1:]
		if len(tail) > 8 {
			tail = tail[:8]
		}
		return endpoint[:i+1] + tail + "…"
	}
	return endpoint
}
