package dto

// Pagination mirrors the count-derived page metadata the frontend expects.
type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalCount  int  `json:"total_count"`
	TotalPages  int  `json:"total_pages"`
	HasNextPage bool `json:"has_next_page"`
	HasPrevPage bool `json:"has_prev_page"`
}

func NewPagination(page, limit, totalCount int) Pagination {
	if limit <= 0 {
		limit = 1
	}
	totalPages := (totalCount + limit - 1) / limit
	return Pagination{
		Page:        page,
		Limit:       limit,
		TotalCount:  totalCount,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}
