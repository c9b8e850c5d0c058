package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildFilter(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	yes, no := true, false

	assert.Empty(t, buildFilter(Filter{}, []string{"title"}, now))

	f := buildFilter(Filter{Category: "technology", Tag: "go", Featured: &yes}, nil, now)
	assert.Equal(t, bson.M{"category": "technology", "tags": "go", "featured": true}, f)

	f = buildFilter(Filter{Search: "a.b"}, []string{"title", "description"}, now)
	assert.Equal(t, bson.M{"$and": bson.A{bson.M{"$or": bson.A{
		bson.M{"title": bson.M{"$regex": `a\.b`, "$options": "i"}},
		bson.M{"description": bson.M{"$regex": `a\.b`, "$options": "i"}},
	}}}}, f)

	f = buildFilter(Filter{Active: &no}, nil, now)
	assert.Equal(t, bson.M{"isActive": false}, f)

	f = buildFilter(Filter{Active: &yes, Priority: "high"}, nil, now)
	assert.Equal(t, true, f["isActive"])
	assert.Equal(t, "high", f["priority"])
	assert.Len(t, f["$and"], 2)
}

func TestBuildSort(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}}, buildSort("", SortNewest))
	assert.Equal(t, bson.D{{Key: "priorityRank", Value: -1}, {Key: "createdAt", Value: -1}}, buildSort("", SortPriority))
	assert.Equal(t, bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: 1}}, buildSort(SortOldest, SortPriority))
	assert.Equal(t, bson.D{{Key: "title", Value: 1}, {Key: "createdAt", Value: -1}}, buildSort(SortTitle, SortNewest))
}
