// Package feed serves RSS 2.0 feeds of the newest podcasts and blog posts.
package feed

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/podcastify/core/internal/config"
	"github.com/podcastify/core/internal/models"
	"github.com/podcastify/core/internal/modules/content"
	"github.com/podcastify/core/internal/modules/processing/markdown"
)

const itemLimit = 20

type PodcastLister interface {
	List(ctx context.Context, q content.ListQuery) ([]models.Podcast, int64, error)
}

type BlogLister interface {
	List(ctx context.Context, q content.ListQuery) ([]models.BlogPost, int64, error)
}

type Handler struct {
	site     config.SiteConfig
	podcasts PodcastLister
	blogs    BlogLister
	logger   *zap.Logger
	now      func() time.Time
}

func NewHandler(site config.SiteConfig, podcasts PodcastLister, blogs BlogLister, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		site:     site,
		podcasts: podcasts,
		blogs:    blogs,
		logger:   logger.Named("feed"),
		now:      time.Now,
	}
}

// RegisterRoutes mounts the feeds on rg.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.GET("/feed/podcasts.xml", h.podcastFeed)
	rg.GET("/feed/blog.xml", h.blogFeed)
}

type rss struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Content string   `xml:"xmlns:content,attr"`
	Channel channel  `xml:"channel"`
}

type channel struct {
	Title         string `xml:"title"`
	Link          string `xml:"link"`
	Description   string `xml:"description"`
	LastBuildDate string `xml:"lastBuildDate"`
	Items         []item `xml:"item"`
}

type item struct {
	Title       string     `xml:"title"`
	Link        string     `xml:"link"`
	GUID        guid       `xml:"guid"`
	PubDate     string     `xml:"pubDate"`
	Description string     `xml:"description"`
	Category    string     `xml:"category,omitempty"`
	Encoded     *cdata     `xml:"content:encoded,omitempty"`
	Enclosure   *enclosure `xml:"enclosure,omitempty"`
}

type guid struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type cdata struct {
	Value string `xml:",cdata"`
}

type enclosure struct {
	URL    string `xml:"url,attr"`
	Type   string `xml:"type,attr"`
	Length int    `xml:"length,attr"`
}

func (h *Handler) podcastFeed(c *gin.Context) {
	podcasts, _, err := h.podcasts.List(c.Request.Context(), content.ListQuery{Sort: content.SortNewest, Limit: itemLimit})
	if err != nil {
		h.fail(c, "podcasts", err)
		return
	}

	items := make([]item, 0, len(podcasts))
	for _, p := range podcasts {
		it := item{
			Title:       p.Title,
			Link:        h.link("podcasts", p.Slug),
			GUID:        guid{Value: p.ID.Hex()},
			PubDate:     pubDate(p.Base),
			Description: markdown.Truncate(markdown.PlainText(p.Description), 500),
		}
		if p.PodcastLink != "" {
			it.Link = p.PodcastLink
		}
		if p.Thumbnail.URL != "" && !p.Thumbnail.IsDefault() {
			it.Enclosure = &enclosure{URL: p.Thumbnail.URL, Type: imageType(p.Thumbnail.URL)}
		}
		items = append(items, it)
	}
	h.write(c, h.siteTitle()+" Podcasts", h.link("podcasts", ""), items)
}

func (h *Handler) blogFeed(c *gin.Context) {
	posts, _, err := h.blogs.List(c.Request.Context(), content.ListQuery{Sort: content.SortNewest, Limit: itemLimit})
	if err != nil {
		h.fail(c, "blog", err)
		return
	}

	items := make([]item, 0, len(posts))
	for _, p := range posts {
		html, err := markdown.RenderHTML(p.Content)
		if err != nil {
			h.logger.Warn("render post", zap.String("slug", p.Slug), zap.Error(err))
			html = ""
		}
		items = append(items, item{
			Title:       p.Title,
			Link:        h.link("blog", p.Slug),
			GUID:        guid{Value: p.ID.Hex()},
			PubDate:     pubDate(p.Base),
			Description: p.Excerpt,
			Category:    p.Category,
			Encoded:     &cdata{Value: html},
		})
	}
	h.write(c, h.siteTitle()+" Blog", h.link("blog", ""), items)
}

func (h *Handler) write(c *gin.Context, title, link string, items []item) {
	doc := rss{
		Version: "2.0",
		Content: "http://purl.org/rss/1.0/modules/content/",
		Channel: channel{
			Title:         title,
			Link:          link,
			Description:   title,
			LastBuildDate: h.now().UTC().Format(time.RFC1123Z),
			Items:         items,
		},
	}
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		h.fail(c, "encode", err)
		return
	}
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", append([]byte(xml.Header), out...))
}

func (h *Handler) fail(c *gin.Context, what string, err error) {
	h.logger.Error("build feed", zap.String("feed", what), zap.Error(err))
	c.String(http.StatusInternalServerError, "feed unavailable")
}

func (h *Handler) siteTitle() string {
	if h.site.Title == "" {
		return "PodCastify"
	}
	return h.site.Title
}

func (h *Handler) link(section, slug string) string {
	base := strings.TrimRight(h.site.URL, "/")
	if slug == "" {
		return fmt.Sprintf("%s/%s", base, section)
	}
	return fmt.Sprintf("%s/%s/%s", base, section, slug)
}

func pubDate(b models.Base) string {
	t := b.Date
	if t.IsZero() {
		t = b.CreatedAt
	}
	return t.UTC().Format(time.RFC1123Z)
}

func imageType(url string) string {
	switch {
	case strings.HasSuffix(url, ".png"):
		return "image/png"
	case strings.HasSuffix(url, ".webp"):
		return "image/webp"
	case strings.HasSuffix(url, ".gif"):
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
