package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category is a notification opt-in flag.
type Category string

const (
	CategoryPodcasts       Category = "podcasts"
	CategoryBlogs          Category = "blogs"
	CategoryAdvertisements Category = "advertisements"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryPodcasts, CategoryBlogs, CategoryAdvertisements:
		return true
	}
	return false
}

// PushKeys are the browser-issued keys used to encrypt payloads for one endpoint.
type PushKeys struct {
	P256dh string `json:"p256dh" bson:"p256dh" binding:"required"`
	Auth   string `json:"auth"   bson:"auth"   binding:"required"`
}

type Preferences struct {
	Podcasts       bool `json:"podcasts"       bson:"podcasts"`
	Blogs          bool `json:"blogs"          bson:"blogs"`
	Advertisements bool `json:"advertisements" bson:"advertisements"`
}

// DefaultPreferences opts a new subscriber into everything.
func DefaultPreferences() Preferences {
	return Preferences{Podcasts: true, Blogs: true, Advertisements: true}
}

// Allows reports whether the flag for c is set.
func (p Preferences) Allows(c Category) bool {
	switch c {
	case CategoryPodcasts:
		return p.Podcasts
	case CategoryBlogs:
		return p.Blogs
	case CategoryAdvertisements:
		return p.Advertisements
	}
	return false
}

// PreferencesPatch carries a partial preference update; nil fields are left alone.
type PreferencesPatch struct {
	Podcasts       *bool `json:"podcasts,omitempty"`
	Blogs          *bool `json:"blogs,omitempty"`
	Advertisements *bool `json:"advertisements,omitempty"`
}

func (p PreferencesPatch) Empty() bool {
	return p.Podcasts == nil && p.Blogs == nil && p.Advertisements == nil
}

// Apply returns prefs with the patch's set fields overlaid.
func (p PreferencesPatch) Apply(prefs Preferences) Preferences {
	if p.Podcasts != nil {
		prefs.Podcasts = *p.Podcasts
	}
	if p.Blogs != nil {
		prefs.Blogs = *p.Blogs
	}
	if p.Advertisements != nil {
		prefs.Advertisements = *p.Advertisements
	}
	return prefs
}

type Subscription struct {
	ID           primitive.ObjectID `json:"id"                     bson:"_id,omitempty"`
	Endpoint     string             `json:"endpoint"               bson:"endpoint"`
	Keys         PushKeys           `json:"keys"                   bson:"keys"`
	Preferences  Preferences        `json:"preferences"            bson:"preferences"`
	IsActive     bool               `json:"isActive"               bson:"isActive"`
	LastNotified *time.Time         `json:"lastNotified,omitempty" bson:"lastNotified,omitempty"`
	UserAgent    string             `json:"userAgent,omitempty"    bson:"userAgent,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"              bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"              bson:"updatedAt"`
}

// Eligible reports whether s may receive a dispatch for c.
func (s Subscription) Eligible(c Category) bool {
	return s.IsActive && s.Preferences.Allows(c)
}
