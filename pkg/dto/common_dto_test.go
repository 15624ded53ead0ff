package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListQuery(t *testing.T) {
	assert.False(t, ListQuery{}.Paginated())
	assert.Equal(t, DefaultPageSize, ListQuery{Page: 1}.Size())
	assert.Equal(t, 25, ListQuery{Page: 2, PageSize: 25}.Size())
}

func TestNewPaginationMeta(t *testing.T) {
	meta := NewPaginationMeta(2, 10, 21)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, int64(21), meta.TotalItems)

	assert.Equal(t, 0, NewPaginationMeta(1, 10, 0).TotalPages)
}
