package services

import (
	"fmt"
	"math"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	// MaxPage keeps (page-1)*limit inside int for every accepted limit.
	MaxPage      = math.MaxInt / MaxLimit
)

// Pagination is a validated page/limit pair.
type Pagination struct {
	Page  int
	Limit int
}

func (p Pagination) normalized() Pagination {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset saturates at math.MaxInt so an out-of-range page yields an empty
// result instead of a negative OFFSET.
func (p Pagination) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// PageCount is ceil(total/limit), and 0 for an empty result.
func PageCount(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// conditions accumulates AND-ed predicates with positional arguments.
type conditions struct {
	clauses []string
	args    []interface{}
}

// add appends a predicate; expr holds one %d for the placeholder index.
func (c *conditions) add(expr string, arg interface{}) {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, fmt.Sprintf(expr, len(c.args)))
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// page appends LIMIT/OFFSET placeholders and returns the clause and args.
func (c *conditions) page(p Pagination) (string, []interface{}) {
	args := append(append([]interface{}{}, c.args...), p.Limit, p.Offset())
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

func BoolPtr(v bool) *bool {
	return &v
}
