package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind names a content variant.
type Kind string

const (
	KindPodcast Kind = "podcast"
	KindBlog    Kind = "blog"
	KindAd      Kind = "ad"
)

// Category returns the notification preference flag that governs this kind.
func (k Kind) Category() Category {
	switch k {
	case KindPodcast:
		return CategoryPodcasts
	case KindBlog:
		return CategoryBlogs
	case KindAd:
		return CategoryAdvertisements
	default:
		return ""
	}
}

// Base is embedded in every content document.
type Base struct {
	ID        primitive.ObjectID `json:"id"        bson:"_id,omitempty"`
	Slug      string             `json:"slug"      bson:"slug"`
	Title     string             `json:"title"     bson:"title"     binding:"required,max=200"`
	Date      time.Time          `json:"date"      bson:"date"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Meta exposes the shared fields to generic code.
func (b *Base) Meta() *Base { return b }

// Notice is the subset of a content item a notification is built from.
type Notice struct {
	ID       string
	Slug     string
	Title    string
	Summary  string
	ImageURL string
	// Link overrides the in-site deep link when set.
	Link string
}

func (b *Base) notice(summary string, media Media) Notice {
	return Notice{
		ID:       b.ID.Hex(),
		Slug:     b.Slug,
		Title:    b.Title,
		Summary:  summary,
		ImageURL: media.URL,
	}
}
