package models

import (
	"github.com/podcastify/core/internal/pkg/apperr"
	"github.com/podcastify/core/internal/pkg/validate"
)

type Podcast struct {
	Base        `bson:",inline"`
	Description string `json:"description"    bson:"description"    binding:"required,max=5000"`
	PodcastLink string `json:"podcastLink"    bson:"podcastLink"    binding:"required,http_url"`
	Time        string `json:"time,omitempty" bson:"time,omitempty" binding:"omitempty,datetime=15:04"`
	Thumbnail   Media  `json:"thumbnail"      bson:"thumbnail"`
}

func (p *Podcast) MediaRef() *Media { return &p.Thumbnail }

func (p *Podcast) Validate() apperr.FieldErrors {
	return validate.Struct(p)
}

func (p *Podcast) Notice() Notice {
	return p.notice(p.Description, p.Thumbnail)
}
