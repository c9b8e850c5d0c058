package pagination

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxOffset bounds skip so page arithmetic cannot overflow.
	MaxOffset = math.MaxInt32
)

// Query holds parsed pagination parameters.
type Query struct {
	Page   int
	Limit  int
	Offset int
}

// FromContext reads page, limit and offset. An explicit offset wins over page.
func FromContext(c *gin.Context) Query {
	page := parseIntOr(c.Query("page"), DefaultPage)
	limit := parseIntOr(c.Query("limit"), DefaultLimit)

	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	if maxPage := MaxOffset/limit + 1; page > maxPage {
		page = maxPage
	}

	offset := (page - 1) * limit
	if raw, ok := c.GetQuery("offset"); ok {
		if v := parseIntOr(raw, -1); v >= 0 {
			offset = min(v, MaxOffset)
			page = offset/limit + 1
		}
	}

	return Query{Page: page, Limit: limit, Offset: offset}
}

// HasMore reports whether rows exist beyond the returned page.
func (q Query) HasMore(returned int, total int64) bool {
	return int64(q.Offset+returned) < total
}

func parseIntOr(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
