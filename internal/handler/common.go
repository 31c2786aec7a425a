package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resulta/resulta-gateway/internal/filter"
	"github.com/resulta/resulta-gateway/internal/response"
	"github.com/resulta/resulta-gateway/internal/upstream"
)

// listQuery is the wire form of a FilterSpec. Facet values arrive as their
// own query params and are collected separately against the screen schema.
type listQuery struct {
	Search    string `form:"search"`
	Page      int    `form:"page,default=1"`
	PageSize  int    `form:"page_size,default=10" binding:"omitempty,max=100"`
	SortField string `form:"sort_field"`
	SortDir   string `form:"sort_dir" binding:"omitempty,oneof=asc desc"`
}

// buildSpec assembles a filter.Spec from the bound query and the facet
// params the schema declares. Undeclared params are simply not collected.
func buildSpec(c *gin.Context, q listQuery, schema filter.Schema) filter.Spec {
	facets := make(map[string]string)
	for name := range schema.Facets {
		if v := c.Query(name); v != "" {
			facets[name] = v
		}
	}

	dir := filter.Asc
	if q.SortDir == string(filter.Desc) {
		dir = filter.Desc
	}
	return filter.Spec{
		Search:   q.Search,
		Facets:   facets,
		Sort:     filter.Sort{Field: q.SortField, Direction: dir},
		Page:     q.Page,
		PageSize: q.PageSize,
	}
}

// failUpstream maps an upstream failure to the retryable error state the
// screens render as a banner with a retry control.
func failUpstream(c *gin.Context, err error) {
	var ue *upstream.Error
	if errors.As(err, &ue) {
		if ue.StatusCode >= 400 && ue.StatusCode < 500 {
			response.FailRetryable(c, http.StatusBadGateway, response.ErrUpstreamRejected)
			return
		}
		response.FailRetryable(c, http.StatusBadGateway, response.ErrUpstreamUnavailable)
		return
	}
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}

func pagination(page, pageSize, total, totalPages int) *response.Pagination {
	if page < 1 {
		page = 1
	}
	return &response.Pagination{
		Page:       page,
		PerPage:    pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
