package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"
)

const publicationReportTpl = `<!DOCTYPE html>
<html lang="en">
<head><meta http-equiv="Content-Type" content="text/html; charset=UTF-8" /></head>
<body style="background-color:#fff;margin:0 auto;font-family:ui-sans-serif,system-ui,-apple-system,Segoe UI,Roboto,Helvetica Neue,Arial,sans-serif;padding:.5rem">
  <table align="center" width="100%" role="presentation" cellspacing="0" cellpadding="0" border="0" style="max-width:100%;border:1px solid rgb(14,165,233);border-radius:.25rem;margin:40px auto;padding:20px;width:550px">
    <tbody><tr><td>
      <h1 style="color:#000;font-size:18px;font-weight:400;text-align:center;margin:30px 0">New {{.Kind}} published: <strong>{{.Title}}</strong></h1>
      <table align="center" width="100%" role="presentation" border="0" cellpadding="0" cellspacing="0" style="background-color:rgb(243,244,246);border-radius:.75rem;padding:0 1rem">
        <tbody><tr><td><p style="font-size:13px;line-height:24px;margin:16px 0;color:rgb(51,51,51)">
          Subscribers notified: {{.Delivered}}<br />Failed deliveries: {{.Failed}}
        </p></td></tr></tbody>
      </table>
      {{if .Link}}
      <table align="center" width="100%" role="presentation" border="0" cellpadding="0" cellspacing="0" style="text-align:center;margin:32px 0">
        <tbody><tr><td>
          <a href="{{.Link}}" target="_blank" style="text-decoration:none;display:inline-block;padding:12px 20px;background-color:rgb(14,165,233);border-radius:.25rem;color:#fff;font-size:12px;font-weight:600">Open</a>
        </td></tr></tbody>
      </table>
      {{end}}
      <hr style="width:100%;border:none;border-top:1px solid #eaeaea;margin:26px 0" />
      <p style="font-size:10px;line-height:24px;margin:16px 0;text-align:center;color:rgb(156,163,175)">Sent automatically by {{.SiteName}} · ©{{year}}</p>
    </td></tr></tbody>
  </table>
</body>
</html>`

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"year": func() int { return time.Now().Year() },
}).Parse(publicationReportTpl))

// PublicationReportData fills the owner's publication report.
type PublicationReportData struct {
	SiteName  string
	Kind      string
	Title     string
	Link      string
	Delivered int
	Failed    int
}

func RenderPublicationReport(data PublicationReportData) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SendPublicationReport mails the owner how a publication's dispatch went.
func (s *Sender) SendPublicationReport(ctx context.Context, data PublicationReportData) error {
	if !s.Enabled() || s.cfg.Owner == "" {
		return nil
	}
	html, err := RenderPublicationReport(data)
	if err != nil {
		return err
	}
	return s.Send(ctx, Message{
		To:      []string{s.cfg.Owner},
		Subject: fmt.Sprintf("[%s] %s published: %s", data.SiteName, data.Kind, data.Title),
		HTML:    html,
	})
}
