package httpapi

import (
	"net/url"
	"strconv"
	"strings"

	"kaizen-backend-go/internal/services"
)

// queryReader collects typed query parameters and their errors. Unknown
// parameters are ignored.
type queryReader struct {
	values url.Values
	errs   map[string]string
}

func newQueryReader(values url.Values) *queryReader {
	return &queryReader{values: values, errs: map[string]string{}}
}

func (q *queryReader) intParam(name string, fallback, min, max int) int {
	raw := strings.TrimSpace(q.values.Get(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		q.errs[name] = "value is not a valid integer"
		return fallback
	}
	if value < min {
		q.errs[name] = "ensure this value is greater than or equal to " + strconv.Itoa(min)
		return fallback
	}
	if max > 0 && value > max {
		q.errs[name] = "ensure this value is less than or equal to " + strconv.Itoa(max)
		return fallback
	}
	return value
}

func (q *queryReader) boolParam(name string) *bool {
	raw := strings.TrimSpace(q.values.Get(name))
	if raw == "" {
		return nil
	}
	switch strings.ToLower(raw) {
	case "true", "1", "yes", "on":
		return services.BoolPtr(true)
	case "false", "0", "no", "off":
		return services.BoolPtr(false)
	}
	q.errs[name] = "value could not be parsed to a boolean"
	return nil
}

func (q *queryReader) stringParam(name string, maxLen int) *string {
	raw := strings.TrimSpace(q.values.Get(name))
	if raw == "" {
		return nil
	}
	if len(raw) > maxLen {
		q.errs[name] = "ensure this value has at most " + strconv.Itoa(maxLen) + " characters"
		return nil
	}
	return &raw
}

func (q *queryReader) pagination() services.Pagination {
	return services.Pagination{
		Page:  q.intParam("page", services.DefaultPage, 1, services.MaxPage),
		Limit: q.intParam("limit", services.DefaultLimit, 1, services.MaxLimit),
	}
}

func (q *queryReader) err() error {
	if len(q.errs) == 0 {
		return nil
	}
	return services.ErrValidation(q.errs)
}
