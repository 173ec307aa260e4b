package post

import (
	"strings"
	"time"

	"carryon/internal/domain/user"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// TravellerSearch filters the traveller-post catalog. Status is pinned to
// ACTIVE; the future-departure cut is skipped when browsing a specific
// owner's posts so that past trips stay visible on their own page.
type TravellerSearch struct {
	Owner            user.ID
	ExcludeOwner     user.ID
	DepartureCountry string
	ArrivalCountry   string
	DateFrom         time.Time
	DateTo           time.Time
	Page             int
	Limit            int
}

// Normalized returns a sanitized copy of the search parameters.
func (p TravellerSearch) Normalized() TravellerSearch {
	normalized := p
	normalized.DepartureCountry = normalizeFilter(normalized.DepartureCountry)
	normalized.ArrivalCountry = normalizeFilter(normalized.ArrivalCountry)
	normalized.Page, normalized.Limit = normalizePage(normalized.Page, normalized.Limit)
	if !normalized.DateFrom.IsZero() && !normalized.DateTo.IsZero() && normalized.DateTo.Before(normalized.DateFrom) {
		normalized.DateTo = time.Time{}
	}
	return normalized
}

// FutureOnly reports whether the departure-date cut applies.
func (p TravellerSearch) FutureOnly() bool {
	return p.Owner == ""
}

// Offset converts page/limit into a skip count.
func (p TravellerSearch) Offset() int {
	return (p.Page - 1) * p.Limit
}

// SenderSearch filters the sender-post catalog.
type SenderSearch struct {
	Owner              user.ID
	ExcludeOwner       user.ID
	OriginCountry      string
	DestinationCountry string
	ItemCategory       string
	MinWeight          float64
	MaxWeight          float64
	MinPrice           float64
	MaxPrice           float64
	Page               int
	Limit              int
}

func (p SenderSearch) Normalized() SenderSearch {
	normalized := p
	normalized.OriginCountry = normalizeFilter(normalized.OriginCountry)
	normalized.DestinationCountry = normalizeFilter(normalized.DestinationCountry)
	normalized.ItemCategory = normalizeFilter(normalized.ItemCategory)
	normalized.Page, normalized.Limit = normalizePage(normalized.Page, normalized.Limit)
	if normalized.MinWeight < 0 {
		normalized.MinWeight = 0
	}
	if normalized.MaxWeight > 0 && normalized.MaxWeight < normalized.MinWeight {
		normalized.MaxWeight = 0
	}
	if normalized.MinPrice < 0 {
		normalized.MinPrice = 0
	}
	if normalized.MaxPrice > 0 && normalized.MaxPrice < normalized.MinPrice {
		normalized.MaxPrice = 0
	}
	return normalized
}

func (p SenderSearch) Offset() int {
	return (p.Page - 1) * p.Limit
}

func normalizeFilter(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}

func normalizePage(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}
