// Package filter turns dashboard filter widgets (date range, dropdowns,
// sliders) into query parameters and parameterized WHERE clauses.
package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// All is the dropdown value meaning "no constraint".
const All = "all"

const dateLayout = "2006-01-02"

// Params holds the shared filters of the dashboard pages. Nil dates and
// All/empty strings mean the dimension is not constrained.
type Params struct {
	DateStart *time.Time `json:"date_start"`
	DateEnd   *time.Time `json:"date_end"`
	Sex       string     `json:"sex"`
	Community string     `json:"community"`
	Service   string     `json:"service"`
}

// ParseDate accepts "2006-01-02" or an ISO timestamp whose time part is
// ignored. Empty or malformed input yields nil.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if day, _, ok := strings.Cut(s, "T"); ok {
		s = day
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// FormatDate renders a date the way ParseDate reads it; nil becomes "".
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

// FromContext reads date_start, date_end, sex, community and service from
// the query string.
func FromContext(c echo.Context) Params {
	return Params{
		DateStart: ParseDate(c.QueryParam("date_start")),
		DateEnd:   ParseDate(c.QueryParam("date_end")),
		Sex:       normalizeSex(c.QueryParam("sex")),
		Community: normalizeChoice(c.QueryParam("community")),
		Service:   normalizeChoice(c.QueryParam("service")),
	}
}

func normalizeChoice(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return All
	}
	return v
}

// Only 1 (male) and 2 (female) are filterable.
func normalizeSex(v string) string {
	switch strings.TrimSpace(v) {
	case "1", "2":
		return strings.TrimSpace(v)
	default:
		return All
	}
}

// Active reports whether a dropdown value constrains the query.
func Active(v string) bool {
	return v != "" && v != All
}

// Defaults returns unconstrained params over the given date range.
func Defaults(minDate, maxDate *time.Time) Params {
	return Params{
		DateStart: minDate,
		DateEnd:   maxDate,
		Sex:       All,
		Community: All,
		Service:   All,
	}
}

// Key renders the params as a stable string for cache keys and logs.
func (p Params) Key() string {
	return fmt.Sprintf("ds=%s|de=%s|sex=%s|com=%s|srv=%s",
		FormatDate(p.DateStart), FormatDate(p.DateEnd), p.Sex, p.Community, p.Service)
}

// Int reads an integer query parameter, falling back to def when missing or
// malformed and clamping the result to [min, max].
func Int(c echo.Context, name string, def, min, max int) int {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return Clamp(n, min, max)
}

func Clamp(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// Option is one dropdown entry.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Options prepends the "all" entry, labelled allLabel, to values.
func Options(allLabel string, values []string) []Option {
	opts := make([]Option, 0, len(values)+1)
	opts = append(opts, Option{Label: allLabel, Value: All})
	for _, v := range values {
		opts = append(opts, Option{Label: v, Value: v})
	}
	return opts
}
