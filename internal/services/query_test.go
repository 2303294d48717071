package services

import (
	"math"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageCount(t *testing.T) {
	cases := []struct {
		total, limit, want int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{45, 10, 5},
		{5, 0, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PageCount(tc.total, tc.limit), "total=%d limit=%d", tc.total, tc.limit)
	}
}

func TestPaginationNormalized(t *testing.T) {
	assert.Equal(t, Pagination{Page: 1, Limit: 20}, Pagination{}.normalized())
	assert.Equal(t, Pagination{Page: 3, Limit: 100}, Pagination{Page: 3, Limit: 500}.normalized())
	assert.Equal(t, 40, Pagination{Page: 3, Limit: 20}.Offset())
}

func TestPaginationOffsetNeverNegative(t *testing.T) {
	assert.Equal(t, 0, Pagination{Page: 0, Limit: 20}.Offset())
	assert.Equal(t, (MaxPage-1)*MaxLimit, Pagination{Page: MaxPage, Limit: MaxLimit}.Offset())
	assert.Equal(t, math.MaxInt, Pagination{Page: math.MaxInt, Limit: 20}.Offset())
	assert.Equal(t, math.MaxInt, Pagination{Page: MaxPage + 2, Limit: MaxLimit}.Offset())
}

func TestConditionsNumberPlaceholders(t *testing.T) {
	var cond conditions
	assert.Equal(t, "", cond.where())

	cond.add("category_id = $%d", "c1")
	cond.add("is_published = $%d", true)
	assert.Equal(t, " WHERE category_id = $1 AND is_published = $2", cond.where())

	clause, args := cond.page(Pagination{Page: 2, Limit: 10})
	assert.Equal(t, " LIMIT $3 OFFSET $4", clause)
	assert.Equal(t, []interface{}{"c1", true, 10, 10}, args)
	assert.Len(t, cond.args, 2)
}

func TestRequireFieldsReportsOnlyMissing(t *testing.T) {
	assert.NoError(t, RequireFields(map[string]bool{"title": true}))

	err := RequireFields(map[string]bool{"title": true, "content": false})
	serr := AsServiceError(err)
	assert.Equal(t, http.StatusBadRequest, serr.Status)
	assert.Equal(t, map[string]string{"content": "field required"}, serr.Fields)
}
