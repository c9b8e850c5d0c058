// Package ad describes how advertisements are decoded, stored and listed.
package ad

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/podcastify/core/internal/database"
	"github.com/podcastify/core/internal/models"
	"github.com/podcastify/core/internal/modules/content"
)

var Schema = content.Schema{
	Kind:         models.KindAd,
	Collection:   database.CollectionAds,
	DefaultSort:  content.SortPriority,
	SearchFields: []string{"title", "description"},
}

type Descriptor = content.Descriptor[models.Advertisement, *models.Advertisement]

type input struct {
	ID          string        `json:"id"          form:"id"`
	Title       *string       `json:"title"       form:"title"`
	Description *string       `json:"description" form:"description"`
	Link        *string       `json:"link"        form:"link"`
	Category    *string       `json:"category"    form:"category"`
	Priority    *string       `json:"priority"    form:"priority"`
	IsActive    *bool         `json:"isActive"    form:"isActive"`
	StartDate   *string       `json:"startDate"   form:"startDate"`
	EndDate     *string       `json:"endDate"     form:"endDate"`
	Date        *string       `json:"date"        form:"date"`
	Image       *models.Media `json:"image"       form:"-"`
}

func (in *input) apply(a *models.Advertisement) error {
	content.SetText(&a.Title, in.Title)
	content.SetText(&a.Description, in.Description)
	content.SetText(&a.Link, in.Link)
	content.SetText(&a.Category, in.Category)
	a.Category = strings.ToLower(a.Category)
	if in.Priority != nil {
		a.Priority = models.Priority(strings.ToLower(strings.TrimSpace(*in.Priority)))
	}
	if in.IsActive != nil {
		a.IsActive = *in.IsActive
	}
	content.SetMedia(&a.Image, in.Image)

	var err error
	if in.StartDate != nil {
		if a.StartDate, err = content.ParseDate("startDate", *in.StartDate); err != nil {
			return err
		}
	}
	if in.EndDate != nil {
		if a.EndDate, err = content.ParseDate("endDate", *in.EndDate); err != nil {
			return err
		}
	}
	if in.Date != nil {
		d, err := content.ParseDate("date", *in.Date)
		if err != nil {
			return err
		}
		if d != nil {
			a.Date = *d
		}
	}
	return nil
}

// NewDescriptor returns the advertisement input schema for the generic handler.
// New ads are active unless the input says otherwise.
func NewDescriptor() Descriptor {
	return Descriptor{
		Kind:      models.KindAd,
		FileField: "image",
		Decode: func(c *gin.Context) (*models.Advertisement, error) {
			var in input
			if err := content.Bind(c, &in); err != nil {
				return nil, err
			}
			a := &models.Advertisement{IsActive: true}
			return a, in.apply(a)
		},
		Change: func(c *gin.Context) (content.Change[models.Advertisement, *models.Advertisement], error) {
			var in input
			if err := content.Bind(c, &in); err != nil {
				return content.Change[models.Advertisement, *models.Advertisement]{}, err
			}
			return content.Change[models.Advertisement, *models.Advertisement]{ID: in.ID, Apply: in.apply}, nil
		},
		Filter: func(c *gin.Context) content.Filter {
			return content.Filter{
				Search:   c.Query("search"),
				Category: strings.ToLower(c.Query("category")),
				Priority: strings.ToLower(c.Query("priority")),
				Active:   content.QueryBool(c, "active"),
			}
		},
	}
}
