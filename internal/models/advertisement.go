package models

import (
	"time"

	"github.com/podcastify/core/internal/pkg/apperr"
	"github.com/podcastify/core/internal/pkg/validate"
)

// AdCategories enumerates accepted Advertisement.Category values. Keep in
// step with the oneof tag on Advertisement.Category.
var AdCategories = []string{"sponsor", "promotion", "event", "product", "service", "other"}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityFeatured Priority = "featured"
)

// Rank orders priorities for sorting: featured > high > medium > low > unset.
func (p Priority) Rank() int {
	switch p {
	case PriorityFeatured:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

type Advertisement struct {
	Base         `bson:",inline"`
	Description  string     `json:"description"         bson:"description"        binding:"required,max=1000"`
	Image        Media      `json:"image"               bson:"image"`
	Link         string     `json:"link"                bson:"link"               binding:"required,http_url"`
	Category     string     `json:"category"            bson:"category"           binding:"required,oneof=sponsor promotion event product service other"`
	Priority     Priority   `json:"priority,omitempty"  bson:"priority,omitempty" binding:"omitempty,oneof=low medium high featured"`
	PriorityRank int        `json:"-"                   bson:"priorityRank"`
	IsActive     bool       `json:"isActive"            bson:"isActive"`
	StartDate    *time.Time `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"   bson:"endDate,omitempty"`
}

func (a *Advertisement) MediaRef() *Media { return &a.Image }

// BeforeSave keeps the stored sort rank in step with Priority.
func (a *Advertisement) BeforeSave() {
	a.PriorityRank = a.Priority.Rank()
}

func (a *Advertisement) Validate() apperr.FieldErrors {
	fe := validate.Struct(a)
	if a.StartDate != nil && a.EndDate != nil && a.EndDate.Before(*a.StartDate) {
		fe.Add("endDate", "must not be before startDate")
	}
	return fe
}

// LiveAt reports whether the ad is active and inside its validity window at now.
func (a *Advertisement) LiveAt(now time.Time) bool {
	if !a.IsActive {
		return false
	}
	if a.StartDate != nil && now.Before(*a.StartDate) {
		return false
	}
	if a.EndDate != nil && now.After(*a.EndDate) {
		return false
	}
	return true
}

// Announce gates publication notifications to live ads.
func (a *Advertisement) Announce(now time.Time) bool {
	return a.LiveAt(now)
}

func (a *Advertisement) Notice() Notice {
	n := a.notice(a.Description, a.Image)
	n.Link = a.Link
	return n
}
