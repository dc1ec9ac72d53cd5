package api

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// maxPageSize caps the limit query parameter.
const maxPageSize = 100

// pageRequest reads page and limit from the query string. Missing or
// malformed values fall back to the first page and the default size.
func pageRequest(c *gin.Context, defaultSize int) service.PageRequest {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = defaultSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return service.PageRequest{Page: page, Limit: limit}
}

// newPage wraps results in the list envelope with absolute next/previous
// links that keep every other query parameter.
func newPage[T any](c *gin.Context, req service.PageRequest, total int64, results []T) types.Page[T] {
	if results == nil {
		results = []T{}
	}
	p := types.Page[T]{Count: total, Results: results}

	if int64(req.Page*req.Limit) < total {
		next := pageURL(c, req.Page+1)
		p.Next = &next
	}
	if req.Page > 1 {
		prev := pageURL(c, req.Page-1)
		p.Previous = &prev
	}
	return p
}

func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	q := c.Request.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: q.Encode(),
	}
	return u.String()
}
