// Package notify tells the site owner how a publication's fan-out went.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/podcastify/core/internal/pkg/mail"
)

// Report summarises one publication.
type Report struct {
	Kind      string
	Title     string
	Link      string
	Delivered int
	Failed    int
}

// Pusher sends a short alert (Bark).
type Pusher interface {
	Enabled() bool
	Push(ctx context.Context, title, body, link string) error
}

// Mailer sends the HTML report.
type Mailer interface {
	Enabled() bool
	SendPublicationReport(ctx context.Context, data mail.PublicationReportData) error
}

// Reporter fans a Report out to every configured owner channel. Failures are
// logged and never returned.
type Reporter struct {
	siteName string
	pusher   Pusher
	mailer   Mailer
	logger   *zap.Logger
}

func NewReporter(siteName string, pusher Pusher, mailer Mailer, logger *zap.Logger) *Reporter {
	return &Reporter{siteName: siteName, pusher: pusher, mailer: mailer, logger: logger.Named("notify")}
}

func (r *Reporter) Report(ctx context.Context, rep Report) {
	if r == nil {
		return
	}
	if r.pusher != nil && r.pusher.Enabled() {
		body := fmt.Sprintf("%s · %d delivered, %d failed", rep.Title, rep.Delivered, rep.Failed)
		if err := r.pusher.Push(ctx, "New "+rep.Kind+" published", body, rep.Link); err != nil {
			r.logger.Warn("bark report failed", zap.String("title", rep.Title), zap.Error(err))
		}
	}
	if r.mailer != nil && r.mailer.Enabled() {
		err := r.mailer.SendPublicationReport(ctx, mail.PublicationReportData{
			SiteName:  r.siteName,
			Kind:      rep.Kind,
			Title:     rep.Title,
			Link:      rep.Link,
			Delivered: rep.Delivered,
			Failed:    rep.Failed,
		})
		if err != nil {
			r.logger.Warn("mail report failed", zap.String("title", rep.Title), zap.Error(err))
		}
	}
}
