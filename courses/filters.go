package courses

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/jrsteele09/go-campus/internal/utils"
)

const (
	fuzzyMinWordLength = 5
	fuzzyMaxDistance   = 2
)

// Filters narrow GET /courses. Zero values mean "no constraint".
type Filters struct {
	Search     string
	University string
	Level      string
	MinPrice   *float64
	MaxPrice   *float64
}

// Values encodes the filters as query parameters, omitting empty ones.
func (f Filters) Values() url.Values {
	v := url.Values{}
	if s := strings.TrimSpace(f.Search); s != "" {
		v.Set("search", s)
	}
	if f.University != "" {
		v.Set("university", f.University)
	}
	if f.Level != "" {
		v.Set("level", f.Level)
	}
	if f.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}
	return v
}

// ParseFilters is the inverse of Values. Unparseable prices are reported as an error.
func ParseFilters(v url.Values) (Filters, error) {
	f := Filters{
		Search:     strings.TrimSpace(v.Get("search")),
		University: v.Get("university"),
		Level:      v.Get("level"),
	}
	for key, dst := range map[string]**float64{"minPrice": &f.MinPrice, "maxPrice": &f.MaxPrice} {
		raw := v.Get(key)
		if raw == "" {
			continue
		}
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Filters{}, &FilterError{Param: key, Value: raw}
		}
		*dst = utils.Ptr(price)
	}
	return f, nil
}

type FilterError struct {
	Param string
	Value string
}

func (e *FilterError) Error() string {
	return "invalid " + e.Param + ": " + strconv.Quote(e.Value)
}

// Matches reports whether a course satisfies every filter.
func (f Filters) Matches(c Course) bool {
	if f.University != "" && !strings.EqualFold(f.University, c.University) {
		return false
	}
	if f.Level != "" && !strings.EqualFold(f.Level, string(c.Level)) {
		return false
	}
	if f.MinPrice != nil && c.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && c.Price > *f.MaxPrice {
		return false
	}
	return f.Search == "" || matchesSearch(strings.ToLower(f.Search), c)
}

func matchesSearch(query string, c Course) bool {
	for _, field := range []string{c.Title, c.Description, c.University} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}

	// Tolerate typos in single title words, "algoritms" finds "Algorithms"
	for _, q := range strings.Fields(query) {
		if len(q) < fuzzyMinWordLength {
			continue
		}
		for _, w := range strings.Fields(strings.ToLower(c.Title)) {
			if len(w) >= fuzzyMinWordLength && levenshtein.ComputeDistance(q, w) <= fuzzyMaxDistance {
				return true
			}
		}
	}
	return false
}

// Apply returns the courses matching the filters, preserving order.
func (f Filters) Apply(catalogue []Course) []Course {
	out := make([]Course, 0, len(catalogue))
	for _, c := range catalogue {
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	return out
}
