package content

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	SortNewest   = "newest"
	SortOldest   = "oldest"
	SortTitle    = "title"
	SortPriority = "priority"
)

// Filter narrows a list. Zero fields do not filter.
type Filter struct {
	Search   string
	Category string
	Tag      string
	Priority string
	Featured *bool
	// Active with true also requires now to fall inside the start/end window.
	Active *bool
}

// ListQuery is one page of a filtered, sorted list.
type ListQuery struct {
	Filter Filter
	Sort   string
	Offset int
	Limit  int
}

func buildFilter(f Filter, searchFields []string, now time.Time) bson.M {
	filter := bson.M{}
	var and bson.A

	if f.Search != "" && len(searchFields) > 0 {
		pattern := regexp.QuoteMeta(f.Search)
		or := make(bson.A, 0, len(searchFields))
		for _, field := range searchFields {
			or = append(or, bson.M{field: bson.M{"$regex": pattern, "$options": "i"}})
		}
		and = append(and, bson.M{"$or": or})
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Tag != "" {
		filter["tags"] = f.Tag
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if f.Featured != nil {
		filter["featured"] = *f.Featured
	}
	if f.Active != nil {
		filter["isActive"] = *f.Active
		if *f.Active {
			and = append(and,
				bson.M{"$or": bson.A{bson.M{"startDate": nil}, bson.M{"startDate": bson.M{"$lte": now}}}},
				bson.M{"$or": bson.A{bson.M{"endDate": nil}, bson.M{"endDate": bson.M{"$gte": now}}}},
			)
		}
	}
	if len(and) > 0 {
		filter["$and"] = and
	}
	return filter
}

func buildSort(sort, fallback string) bson.D {
	if sort == "" {
		sort = fallback
	}
	switch sort {
	case SortOldest:
		return bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: 1}}
	case SortTitle:
		return bson.D{{Key: "title", Value: 1}, {Key: "createdAt", Value: -1}}
	case SortPriority:
		return bson.D{{Key: "priorityRank", Value: -1}, {Key: "createdAt", Value: -1}}
	default:
		return bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}}
	}
}
