package pagination

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/tendant/simple-org/pkg/apierror"
)

// Sort directions accepted after normalization
const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// PageRequest carries the raw pagination parameters of a list request.
// Page is zero-based.
type PageRequest struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	Sort   string `json:"sort,omitempty"`
	Field  string `json:"field,omitempty"`
	Filter string `json:"filter,omitempty"`
}

// PageResult is one bounded, filtered, sorted page of records plus the
// distinct match count. TotalPages is always ceil(Count/Limit).
type PageResult[T any] struct {
	Docs       []T    `json:"docs"`
	Count      int    `json:"count"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"totalPages"`
	Sort       string `json:"sort,omitempty"`
	Field      string `json:"field,omitempty"`
	Filter     string `json:"filter,omitempty"`
}

// Normalize validates and defaults a request against a resource's column map.
//
// Rules: negative page collapses to 0; absent filter matches everything;
// absent field falls back to defaultField; sort normalizes case-insensitively
// to ASC/DESC with ASC as default. Limit is never defaulted: a non-positive
// limit is a client error, because TotalPages division is undefined for it.
func (p PageRequest) Normalize(defaultField string, columns map[string]string) (PageRequest, error) {
	if p.Limit <= 0 {
		return PageRequest{}, apierror.BadRequest("limit must be a positive integer", map[string]apierror.FieldError{
			"limit": {Message: fmt.Sprintf("must be a positive integer, got %d", p.Limit)},
		})
	}
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Field == "" {
		p.Field = defaultField
	}
	if _, ok := columns[p.Field]; !ok {
		return PageRequest{}, apierror.BadRequest("unknown sort field", map[string]apierror.FieldError{
			"field": {Message: fmt.Sprintf("%q is not sortable", p.Field)},
		})
	}
	switch strings.ToUpper(p.Sort) {
	case "", SortAsc:
		p.Sort = SortAsc
	case SortDesc:
		p.Sort = SortDesc
	default:
		return PageRequest{}, apierror.BadRequest("invalid sort direction", map[string]apierror.FieldError{
			"sort": {Message: fmt.Sprintf("%q is not one of ASC, DESC", p.Sort)},
		})
	}
	return p, nil
}

// Column resolves the store column for the normalized field. Normalize must
// have validated the field against the same map.
func (p PageRequest) Column(columns map[string]string) string {
	return columns[p.Field]
}

// LikePattern is the substring match pattern for the filter, or the wildcard
// when no filter was supplied.
func (p PageRequest) LikePattern() string {
	if p.Filter == "" {
		return "%"
	}
	return "%" + p.Filter + "%"
}

// Offset is the number of records skipped before this page
func (p PageRequest) Offset() int {
	return p.Page * p.Limit
}

// NewResult assembles a PageResult from a normalized request, the page of
// records and the distinct match count.
func NewResult[T any](req PageRequest, docs []T, count int) PageResult[T] {
	if docs == nil {
		docs = []T{}
	}
	return PageResult[T]{
		Docs:       docs,
		Count:      count,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: int(math.Ceil(float64(count) / float64(req.Limit))),
		Sort:       req.Sort,
		Field:      req.Field,
		Filter:     req.Filter,
	}
}

// MapResult converts the docs of a result while keeping the page bookkeeping,
// for entity-to-DTO mapping at the service layer.
func MapResult[T, U any](in PageResult[T], convert func(T) U) PageResult[U] {
	docs := make([]U, 0, len(in.Docs))
	for _, doc := range in.Docs {
		docs = append(docs, convert(doc))
	}
	return PageResult[U]{
		Docs:       docs,
		Count:      in.Count,
		Page:       in.Page,
		Limit:      in.Limit,
		TotalPages: in.TotalPages,
		Sort:       in.Sort,
		Field:      in.Field,
		Filter:     in.Filter,
	}
}

// FromQuery parses pagination parameters from a request query string.
// A missing or malformed limit surfaces later as a 400 from Normalize.
func FromQuery(r *http.Request) PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return PageRequest{
		Page:   page,
		Limit:  limit,
		Sort:   q.Get("sort"),
		Field:  q.Get("field"),
		Filter: q.Get("filter"),
	}
}
