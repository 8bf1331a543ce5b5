package store

import (
	"gorm.io/gorm"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// PaginationParams selects one page of a listing. Page is 1-indexed.
type PaginationParams struct {
	Page     int
	PageSize int
	Search   string
}

// PaginationResult describes where a page sits in the full listing.
type PaginationResult struct {
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
	HasPrev     bool  `json:"has_prev"`
	HasNext     bool  `json:"has_next"`
	PrevPage    int   `json:"prev_page"`
	NextPage    int   `json:"next_page"`
}

// NewPaginationParams clamps page to at least 1 and pageSize to 1..50,
// using 10 when pageSize is unset.
func NewPaginationParams(page, pageSize int, search string) PaginationParams {
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	return PaginationParams{
		Page:     max(page, 1),
		PageSize: min(pageSize, maxPageSize),
		Search:   search,
	}
}

func (p PaginationParams) offset() int {
	return (p.Page - 1) * p.PageSize
}

// CalculatePagination derives page metadata. A page past the end is
// reported as the last page.
func CalculatePagination(total int64, currentPage, pageSize int) PaginationResult {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}

	currentPage = max(currentPage, 1)
	if totalPages > 0 {
		currentPage = min(currentPage, totalPages)
	}

	return PaginationResult{
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: currentPage,
		PageSize:    pageSize,
		HasPrev:     currentPage > 1,
		HasNext:     currentPage < totalPages,
		PrevPage:    max(currentPage-1, 1),
		NextPage:    min(currentPage+1, totalPages),
	}
}

// paginate counts the rows matched by q and loads one page of them.
func paginate[T any](q *gorm.DB, order string, params PaginationParams) ([]T, PaginationResult, error) {
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, PaginationResult{}, err
	}

	var rows []T
	err := q.Order(order).
		Offset(params.offset()).
		Limit(params.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, PaginationResult{}, err
	}
	return rows, CalculatePagination(total, params.Page, params.PageSize), nil
}
