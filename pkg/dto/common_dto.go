package dto

// ListQuery holds the optional pagination parameters of list endpoints.
// Without page every active row is returned.
type ListQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

const DefaultPageSize = 10

// Paginated reports whether the caller asked for a page.
func (q ListQuery) Paginated() bool {
	return q.Page > 0
}

// Size returns the page size or the default.
func (q ListQuery) Size() int {
	if q.PageSize <= 0 {
		return DefaultPageSize
	}
	return q.PageSize
}

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
}

func NewPaginationMeta(page, limit int, total int64) PaginationMeta {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return PaginationMeta{CurrentPage: page, TotalPages: pages, TotalItems: total, Limit: limit}
}

type Paginated[T any] struct {
	Items []T            `json:"items"`
	Meta  PaginationMeta `json:"meta"`
}

// IDRequest binds the :id path parameter.
type IDRequest struct {
	ID uint `uri:"id" binding:"required,min=1"`
}
