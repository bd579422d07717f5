package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValid(t *testing.T) {
	assert.True(t, Pagination{Page: 1, PageSize: 1}.Valid())
	assert.True(t, Pagination{Page: 7, PageSize: MaxPageSize}.Valid())
	assert.False(t, Pagination{Page: 0, PageSize: 25}.Valid())
	assert.False(t, Pagination{Page: 1, PageSize: 0}.Valid())
	assert.False(t, Pagination{Page: 1, PageSize: MaxPageSize + 1}.Valid())
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Pagination{Page: 1, PageSize: 25}.Offset())
	assert.Equal(t, 50, Pagination{Page: 3, PageSize: 25}.Offset())
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, Slice(items, Pagination{Page: 1, PageSize: 2}))
	assert.Equal(t, []int{3, 4}, Slice(items, Pagination{Page: 2, PageSize: 2}))
	assert.Equal(t, []int{5}, Slice(items, Pagination{Page: 3, PageSize: 2}))
	assert.Empty(t, Slice(items, Pagination{Page: 4, PageSize: 2}))
	assert.Equal(t, items, Slice(items, Pagination{Page: 1, PageSize: MaxPageSize}))
}
