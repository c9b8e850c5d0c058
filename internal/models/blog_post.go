package models

import (
	"github.com/podcastify/core/internal/pkg/apperr"
	"github.com/podcastify/core/internal/pkg/validate"
)

// BlogCategories enumerates accepted BlogPost.Category values. Keep in step
// with the oneof tag on BlogPost.Category.
var BlogCategories = []string{
	"technology", "business", "lifestyle", "education",
	"entertainment", "health", "science", "other",
}

type BlogPost struct {
	Base     `bson:",inline"`
	Excerpt  string   `json:"excerpt"  bson:"excerpt"  binding:"required,max=500"`
	Content  string   `json:"content"  bson:"content"  binding:"required"`
	Image    Media    `json:"image"    bson:"image"`
	Category string   `json:"category" bson:"category" binding:"required,oneof=technology business lifestyle education entertainment health science other"`
	Author   string   `json:"author"   bson:"author"   binding:"required,max=100"`
	ReadTime string   `json:"readTime" bson:"readTime"`
	Tags     []string `json:"tags"     bson:"tags"`
	Featured bool     `json:"featured" bson:"featured"`
}

func (b *BlogPost) MediaRef() *Media { return &b.Image }

func (b *BlogPost) Validate() apperr.FieldErrors {
	return validate.Struct(b)
}

func (b *BlogPost) Notice() Notice {
	return b.notice(b.Excerpt, b.Image)
}
