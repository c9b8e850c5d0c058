// Package publish orchestrates validate, upload, persist and notify for every
// content kind.
package publish

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/podcastify/core/internal/models"
	"github.com/podcastify/core/internal/modules/content"
	"github.com/podcastify/core/internal/modules/notification/dispatch"
	"github.com/podcastify/core/internal/modules/notification/notify"
	"github.com/podcastify/core/internal/modules/storage/media"
	"github.com/podcastify/core/internal/pkg/metrics"
	"github.com/podcastify/core/internal/pkg/validate"
)

const defaultDispatchTimeout = 30 * time.Second

// MediaStore is the subset of media.Store the workflow uses.
type MediaStore interface {
	Upload(ctx context.Context, kind models.Kind, u *media.Upload) (models.Media, error)
	Delete(ctx context.Context, publicID string)
	Discard(ctx context.Context, m models.Media)
	Placeholder(kind models.Kind) models.Media
}

// Audience looks up who wants to hear about a category.
type Audience interface {
	ActiveFor(ctx context.Context, c models.Category) ([]models.Subscription, error)
}

type Dispatcher interface {
	BuildPayload(kind models.Kind, n models.Notice) dispatch.Payload
	Dispatch(ctx context.Context, kind models.Kind, p dispatch.Payload, subs []models.Subscription) []dispatch.DeliveryResult
}

type Reporter interface {
	Report(ctx context.Context, r notify.Report)
}

// Deps are shared by the workflows of every kind.
type Deps struct {
	Media      MediaStore
	Audience   Audience
	Dispatcher Dispatcher
	// Reporter is optional.
	Reporter        Reporter
	Logger          *zap.Logger
	Metrics         *metrics.Metrics
	DispatchTimeout time.Duration
}

// Workflow publishes, revises and retracts one content kind.
type Workflow[T any, P content.Entity[T]] struct {
	kind  models.Kind
	store content.Store[T, P]
	deps  Deps
	log   *zap.Logger
	now   func() time.Time
}

func New[T any, P content.Entity[T]](kind models.Kind, store content.Store[T, P], deps Deps) *Workflow[T, P] {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.DispatchTimeout <= 0 {
		deps.DispatchTimeout = defaultDispatchTimeout
	}
	return &Workflow[T, P]{
		kind:  kind,
		store: store,
		deps:  deps,
		log:   deps.Logger.Named("publish").With(zap.String("kind", string(kind))),
		now:   time.Now,
	}
}

func (w *Workflow[T, P]) validate(item P, upload *media.Upload) error {
	fe := item.Validate()
	rules := media.ConstraintsFor(w.kind)
	if upload != nil {
		fe = append(fe, rules.Problems(upload)...)
	} else if ref := item.MediaRef(); !ref.IsZero() && !ref.IsDefault() && !validate.URL(ref.URL) {
		fe.Add(rules.Field, "url must be a valid http(s) URL")
	}
	return fe.Err()
}

// Publish validates item, stores its image, persists it and announces it to
// eligible subscribers. Once the record is persisted the call succeeds, however
// the announcement went.
func (w *Workflow[T, P]) Publish(ctx context.Context, item P, upload *media.Upload) (P, error) {
	if err := w.validate(item, upload); err != nil {
		return nil, err
	}

	ref := item.MediaRef()
	var uploaded models.Media
	switch {
	case upload != nil:
		m, err := w.deps.Media.Upload(ctx, w.kind, upload)
		if err != nil {
			return nil, err
		}
		uploaded, *ref = m, m
	case ref.IsZero():
		*ref = w.deps.Media.Placeholder(w.kind)
	}

	if err := w.store.Create(ctx, item); err != nil {
		w.deps.Media.Discard(ctx, uploaded)
		return nil, err
	}
	w.deps.Metrics.Published(string(w.kind))
	meta := item.Meta()
	w.log.Info("published", zap.String("id", meta.ID.Hex()), zap.String("slug", meta.Slug))

	w.announce(ctx, item)
	return item, nil
}

// announce runs the best-effort fan-out. It outlives a cancelled request but
// not the dispatch timeout.
func (w *Workflow[T, P]) announce(ctx context.Context, item P) {
	if a, ok := any(item).(content.Announcer); ok && !a.Announce(w.now()) {
		w.log.Debug("not announced", zap.String("slug", item.Meta().Slug))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.deps.DispatchTimeout)
	defer cancel()

	subs, err := w.deps.Audience.ActiveFor(ctx, w.kind.Category())
	if err != nil {
		w.log.Error("load subscribers failed", zap.Error(err))
		return
	}
	if len(subs) == 0 {
		w.log.Debug("no eligible subscribers")
		return
	}

	notice := item.Notice()
	payload := w.deps.Dispatcher.BuildPayload(w.kind, notice)
	results := w.deps.Dispatcher.Dispatch(ctx, w.kind, payload, subs)

	if w.deps.Reporter != nil {
		sum := dispatch.Summarize(results)
		w.deps.Reporter.Report(ctx, notify.Report{
			Kind:      string(w.kind),
			Title:     notice.Title,
			Link:      payload.Data.URL,
			Delivered: sum.Delivered,
			Failed:    sum.Failed,
		})
	}
}

// Revise applies a change to a stored record, replacing its image when a new
// one is uploaded. It never announces.
func (w *Workflow[T, P]) Revise(ctx context.Context, id string, apply func(P) error, upload *media.Upload) (P, error) {
	item, err := w.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldTitle := item.Meta().Title
	oldMedia := *item.MediaRef()

	if err := apply(item); err != nil {
		return nil, err
	}
	if err := w.validate(item, upload); err != nil {
		return nil, err
	}

	ref := item.MediaRef()
	var uploaded models.Media
	if upload != nil {
		m, err := w.deps.Media.Upload(ctx, w.kind, upload)
		if err != nil {
			return nil, err
		}
		uploaded, *ref = m, m
	}
	if err := w.store.Update(ctx, item, item.Meta().Title != oldTitle); err != nil {
		w.deps.Media.Discard(ctx, uploaded)
		return nil, err
	}
	if ref.PublicID != oldMedia.PublicID {
		w.deps.Media.Delete(ctx, oldMedia.PublicID)
	}
	w.log.Info("revised", zap.String("id", id))
	return item, nil
}

// Retract deletes the record's image, unless it is a placeholder, and then
// the record.
func (w *Workflow[T, P]) Retract(ctx context.Context, id string) error {
	item, err := w.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	w.deps.Media.Delete(ctx, item.MediaRef().PublicID)
	if err := w.store.Delete(ctx, item.Meta().ID); err != nil {
		return err
	}
	w.log.Info("retracted", zap.String("id", id))
	return nil
}

var _ content.Publisher[models.Podcast, *models.Podcast] = (*Workflow[models.Podcast, *models.Podcast])(nil)
