package models

// Media points at an object held by the media store.
type Media struct {
	URL      string `json:"url"       bson:"url"`
	PublicID string `json:"public_id" bson:"public_id"`
}

// Placeholder identifiers. Objects with these ids are shared and never deleted.
const (
	DefaultPodcastMediaID = "default-podcast"
	DefaultBlogMediaID    = "default-blog"
	DefaultAdMediaID      = "default-ad"
)

func (m Media) IsZero() bool {
	return m.URL == "" && m.PublicID == ""
}

// IsDefault reports whether m is a placeholder.
func (m Media) IsDefault() bool {
	return IsDefaultMediaID(m.PublicID)
}

func IsDefaultMediaID(id string) bool {
	switch id {
	case DefaultPodcastMediaID, DefaultBlogMediaID, DefaultAdMediaID:
		return true
	}
	return false
}

// DefaultMediaID returns the placeholder id for kind.
func DefaultMediaID(kind Kind) string {
	switch kind {
	case KindPodcast:
		return DefaultPodcastMediaID
	case KindBlog:
		return DefaultBlogMediaID
	case KindAd:
		return DefaultAdMediaID
	default:
		return ""
	}
}
