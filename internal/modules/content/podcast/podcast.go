// Package podcast describes how podcasts are decoded, stored and listed.
package podcast

import (
	"github.com/gin-gonic/gin"

	"github.com/podcastify/core/internal/database"
	"github.com/podcastify/core/internal/models"
	"github.com/podcastify/core/internal/modules/content"
)

var Schema = content.Schema{
	Kind:         models.KindPodcast,
	Collection:   database.CollectionPodcasts,
	DefaultSort:  content.SortNewest,
	SearchFields: []string{"title", "description"},
}

type Descriptor = content.Descriptor[models.Podcast, *models.Podcast]

type input struct {
	ID          string        `json:"id"          form:"id"`
	Title       *string       `json:"title"       form:"title"`
	Description *string       `json:"description" form:"description"`
	PodcastLink *string       `json:"podcastLink" form:"podcastLink"`
	Date        *string       `json:"date"        form:"date"`
	Time        *string       `json:"time"        form:"time"`
	Thumbnail   *models.Media `json:"thumbnail"   form:"-"`
}

func (in *input) apply(p *models.Podcast) error {
	content.SetText(&p.Title, in.Title)
	content.SetText(&p.Description, in.Description)
	content.SetText(&p.PodcastLink, in.PodcastLink)
	content.SetText(&p.Time, in.Time)
	content.SetMedia(&p.Thumbnail, in.Thumbnail)
	if in.Date != nil {
		d, err := content.ParseDate("date", *in.Date)
		if err != nil {
			return err
		}
		if d != nil {
			p.Date = *d
		}
	}
	return nil
}

// NewDescriptor returns the podcast input schema for the generic handler.
func NewDescriptor() Descriptor {
	return Descriptor{
		Kind:      models.KindPodcast,
		FileField: "thumbnail",
		Decode: func(c *gin.Context) (*models.Podcast, error) {
			var in input
			if err := content.Bind(c, &in); err != nil {
				return nil, err
			}
			p := &models.Podcast{}
			return p, in.apply(p)
		},
		Change: func(c *gin.Context) (content.Change[models.Podcast, *models.Podcast], error) {
			var in input
			if err := content.Bind(c, &in); err != nil {
				return content.Change[models.Podcast, *models.Podcast]{}, err
			}
			return content.Change[models.Podcast, *models.Podcast]{ID: in.ID, Apply: in.apply}, nil
		},
		Filter: func(c *gin.Context) content.Filter {
			return content.Filter{Search: c.Query("search")}
		},
	}
}
