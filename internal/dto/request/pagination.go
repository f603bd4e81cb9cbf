package request

import (
	"net/url"

	"drone-delivery/pkg/utils"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100
	// Keeps (page-1)*per_page well inside int range
	maxPage = 10000
)

// PaginatedRequest is the page/per_page pair shared by list endpoints.
type PaginatedRequest struct {
	Page    int `json:"page" validate:"min=1"`
	PerPage int `json:"per_page" validate:"min=1,max=100"`
}

// PageFromQuery reads ?page=&per_page=, falling back to page 1 of 10 on
// missing or non-positive values and capping both.
func PageFromQuery(query url.Values) PaginatedRequest {
	return PaginatedRequest{
		Page:    min(utils.ParseInt(query.Get("page"), 1), maxPage),
		PerPage: min(utils.ParseInt(query.Get("per_page"), defaultPerPage), maxPerPage),
	}
}

func (p PaginatedRequest) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (min(p.Page, maxPage) - 1) * p.Limit()
}

func (p PaginatedRequest) Limit() int {
	switch {
	case p.PerPage < 1:
		return defaultPerPage
	case p.PerPage > maxPerPage:
		return maxPerPage
	}
	return p.PerPage
}

