// Package dispatch builds notification payloads and delivers them to push endpoints.
package dispatch

import (
	"strings"

	"github.com/podcastify/core/internal/models"
	"github.com/podcastify/core/internal/modules/processing/markdown"
)

const bodyRunes = 100

type Action struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

type Data struct {
	URL       string      `json:"url"`
	ContentID string      `json:"contentId,omitempty"`
	Kind      models.Kind `json:"type,omitempty"`
}

// Payload is the JSON document the service worker renders.
type Payload struct {
	Title   string   `json:"title"`
	Body    string   `json:"body"`
	Icon    string   `json:"icon,omitempty"`
	Image   string   `json:"image,omitempty"`
	Badge   string   `json:"badge,omitempty"`
	Tag     string   `json:"tag,omitempty"`
	Data    Data     `json:"data"`
	Actions []Action `json:"actions,omitempty"`
}

var dismiss = Action{Action: "dismiss", Title: "Dismiss"}

// BuildPayload renders the notification announcing n.
func (d *Dispatcher) BuildPayload(kind models.Kind, n models.Notice) Payload {
	p := Payload{
		Body:  markdown.Truncate(markdown.PlainText(n.Summary), bodyRunes),
		Icon:  d.icon,
		Badge: d.badge,
		Image: n.ImageURL,
		Tag:   string(kind) + "-" + n.ID,
		Data:  Data{ContentID: n.ID, Kind: kind},
	}
	switch kind {
	case models.KindPodcast:
		p.Title = "🎙️ New Podcast: " + n.Title
		p.Data.URL = d.siteURL + "/podcasts/" + n.Slug
		p.Actions = []Action{{Action: "listen", Title: "Listen Now"}, dismiss}
	case models.KindBlog:
		p.Title = "📝 New Blog Post: " + n.Title
		p.Data.URL = d.siteURL + "/blog/" + n.Slug
		p.Actions = []Action{{Action: "read", Title: "Read Now"}, dismiss}
	default:
		p.Title = "📢 New Ad: " + n.Title
		p.Data.URL = d.siteURL
		p.Actions = []Action{{Action: "view", Title: "View Details"}, dismiss}
	}
	if n.Link != "" {
		p.Data.URL = n.Link
	}
	return p
}

// Custom builds an ad hoc payload for an owner broadcast.
func (d *Dispatcher) Custom(title, body, url string) Payload {
	if url == "" {
		url = d.siteURL
	}
	return Payload{
		Title:   strings.TrimSpace(title),
		Body:    markdown.Truncate(strings.TrimSpace(body), bodyRunes),
		Icon:    d.icon,
		Badge:   d.badge,
		Data:    Data{URL: url},
		Actions: []Action{{Action: "view", Title: "View Details"}, dismiss},
	}
}
