// Package listview holds the state of a paginated, searchable list: the
// parameters that key its query and the paging controls derived from the
// backend's answer.
package listview

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

// SearchDebounce is how long a search box must settle before it submits.
const SearchDebounce = 300 * time.Millisecond

const DefaultLimit = 10

// Limits are the page sizes offered to the user.
var Limits = []int{5, 10, 20, 50}

const maxSearchLen = 100

// Params is the identity of one list query. Values are immutable; the With*
// methods return modified copies.
type Params struct {
	Search  string
	Page    int
	Limit   int
	filters []Filter
}

func New() Params {
	return Params{Page: 1, Limit: DefaultLimit}
}

// Parse reads params from a page's query string, normalizing anything out of
// range.
func Parse(q url.Values) Params {
	p := New()
	p.Search = normalizeSearch(q.Get("search"))

	if n, err := strconv.Atoi(q.Get("page")); err == nil && n >= 1 {
		p.Page = n
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && slices.Contains(Limits, n) {
		p.Limit = n
	}
	p.filters = parseFilters(q)
	return p
}

// WithSearch changes the search text. A different text starts again at page 1.
func (p Params) WithSearch(s string) Params {
	s = normalizeSearch(s)
	if s == p.Search {
		return p
	}
	p.Search = s
	p.Page = 1
	return p
}

// WithPage moves to page n, keeping search and filters.
func (p Params) WithPage(n int) Params {
	if n < 1 {
		n = 1
	}
	p.Page = n
	return p
}

// WithLimit changes the page size; like a filter change it resets the page.
func (p Params) WithLimit(n int) Params {
	if !slices.Contains(Limits, n) || n == p.Limit {
		return p
	}
	p.Limit = n
	p.Page = 1
	return p
}

// WithFilter sets f, replacing any filter of the same kind, and resets the page.
func (p Params) WithFilter(f Filter) Params {
	if !f.valid() {
		return p
	}
	out := make([]Filter, 0, len(p.filters)+1)
	for _, existing := range p.filters {
		if existing.Kind != f.Kind {
			out = append(out, existing)
		}
	}
	out = append(out, f)
	slices.SortFunc(out, func(a, b Filter) int { return int(a.Kind) - int(b.Kind) })

	p.filters = out
	p.Page = 1
	return p
}

// WithoutFilter drops the filter of kind k and resets the page.
func (p Params) WithoutFilter(k FilterKind) Params {
	if !p.Has(k) {
		return p
	}
	out := make([]Filter, 0, len(p.filters))
	for _, existing := range p.filters {
		if existing.Kind != k {
			out = append(out, existing)
		}
	}
	p.filters = out
	p.Page = 1
	return p
}

func (p Params) Filters() []Filter {
	return slices.Clone(p.filters)
}

func (p Params) Has(k FilterKind) bool {
	_, ok := p.Filter(k)
	return ok
}

func (p Params) Filter(k FilterKind) (Filter, bool) {
	for _, f := range p.filters {
		if f.Kind == k {
			return f, true
		}
	}
	return Filter{}, false
}

// Query encodes the params for the backend. Search is omitted when empty.
func (p Params) Query() url.Values {
	q := url.Values{}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("limit", strconv.Itoa(p.Limit))
	for _, f := range p.filters {
		q.Set(f.Kind.Param(), f.value())
	}
	return q
}

// Href renders the params as a link to path.
func (p Params) Href(path string) string {
	return path + "?" + p.Query().Encode()
}

func normalizeSearch(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxSearchLen {
		s = string(r[:maxSearchLen])
	}
	return s
}

// CacheKeyParams is the parameter part of the query's cache identity.
func (p Params) CacheKeyParams() url.Values {
	return p.Query()
}
