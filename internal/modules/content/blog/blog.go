// Package blog describes how blog posts are decoded, stored and listed.
package blog

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/podcastify/core/internal/database"
	"github.com/podcastify/core/internal/models"
	"github.com/podcastify/core/internal/modules/content"
	"github.com/podcastify/core/internal/modules/processing/markdown"
)

const excerptRunes = 160

var Schema = content.Schema{
	Kind:         models.KindBlog,
	Collection:   database.CollectionBlogPosts,
	DefaultSort:  content.SortNewest,
	SearchFields: []string{"title", "excerpt"},
}

type Descriptor = content.Descriptor[models.BlogPost, *models.BlogPost]

type input struct {
	ID       string        `json:"id"       form:"id"`
	Title    *string       `json:"title"    form:"title"`
	Excerpt  *string       `json:"excerpt"  form:"excerpt"`
	Content  *string       `json:"content"  form:"content"`
	Category *string       `json:"category" form:"category"`
	Author   *string       `json:"author"   form:"author"`
	ReadTime *string       `json:"readTime" form:"readTime"`
	Tags     []string      `json:"tags"     form:"tags"`
	Featured *bool         `json:"featured" form:"featured"`
	Date     *string       `json:"date"     form:"date"`
	Image    *models.Media `json:"image"    form:"-"`
}

func (in *input) apply(b *models.BlogPost) error {
	content.SetText(&b.Title, in.Title)
	content.SetText(&b.Excerpt, in.Excerpt)
	if in.Content != nil {
		b.Content = *in.Content
	}
	content.SetText(&b.Category, in.Category)
	b.Category = strings.ToLower(b.Category)
	content.SetText(&b.Author, in.Author)
	content.SetText(&b.ReadTime, in.ReadTime)
	content.SetMedia(&b.Image, in.Image)
	if in.Tags != nil {
		b.Tags = content.Tags(in.Tags)
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}
	if in.Featured != nil {
		b.Featured = *in.Featured
	}
	if in.Date != nil {
		d, err := content.ParseDate("date", *in.Date)
		if err != nil {
			return err
		}
		if d != nil {
			b.Date = *d
		}
	}

	if b.Excerpt == "" {
		b.Excerpt = markdown.Excerpt(b.Content, excerptRunes)
	}
	if b.ReadTime == "" || (in.Content != nil && (in.ReadTime == nil || strings.TrimSpace(*in.ReadTime) == "")) {
		b.ReadTime = markdown.ReadTime(b.Content)
	}
	return nil
}

// NewDescriptor returns the blog post input schema for the generic handler.
func NewDescriptor() Descriptor {
	return Descriptor{
		Kind:      models.KindBlog,
		FileField: "image",
		Decode: func(c *gin.Context) (*models.BlogPost, error) {
			var in input
			if err := content.Bind(c, &in); err != nil {
				return nil, err
			}
			b := &models.BlogPost{}
			return b, in.apply(b)
		},
		Change: func(c *gin.Context) (content.Change[models.BlogPost, *models.BlogPost], error) {
			var in input
			if err := content.Bind(c, &in); err != nil {
				return content.Change[models.BlogPost, *models.BlogPost]{}, err
			}
			return content.Change[models.BlogPost, *models.BlogPost]{ID: in.ID, Apply: in.apply}, nil
		},
		Filter: func(c *gin.Context) content.Filter {
			return content.Filter{
				Search:   c.Query("search"),
				Category: strings.ToLower(c.Query("category")),
				Tag:      strings.ToLower(strings.TrimSpace(c.Query("tag"))),
				Featured: content.QueryBool(c, "featured"),
			}
		},
	}
}
