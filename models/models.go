package models

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// --- Records ---

// Record is a single entity instance (user, customer, store, ...) keyed by field name.
type Record map[string]interface{}

// ID returns the record identifier rendered as a string, or "" when the record has none.
func (r Record) ID() string {
	return FormatID(r["id"])
}

// Text returns the value of field as display text. Missing fields render as "".
func (r Record) Text(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// FormatID normalizes an id value decoded from JSON (number or string) to its string form.
func FormatID(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(t)
	}
}

// --- Listing ---

// Default list parameters.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Filter controls a list query. Page and Limit are 1-based and always positive.
type Filter struct {
	Page   int    `json:"page" validate:"min=1"`
	Limit  int    `json:"limit" validate:"min=1"`
	Search string `json:"search"`
}

// DefaultFilter returns the first page with the default page size and no search term.
func DefaultFilter() Filter {
	return Filter{Page: DefaultPage, Limit: DefaultLimit}
}

// Query encodes the filter as URL query parameters.
func (f Filter) Query() url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("limit", strconv.Itoa(f.Limit))
	q.Set("search", f.Search)
	return q
}

// Offset is the number of records preceding the requested page.
func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// Page is one page of a resource collection.
type Page struct {
	Items      []Record `json:"items"`
	TotalCount int      `json:"totalCount"`
}

// --- Session ---

// Session is the persisted authentication state of the console.
type Session struct {
	Token string `json:"token"`
	User  Record `json:"user"`
}

// DisplayName picks the most human-readable identifier available for the session user.
func (s Session) DisplayName() string {
	for _, f := range []string{"fullName", "name", "email", "phoneNumber"} {
		if v := strings.TrimSpace(s.User.Text(f)); v != "" {
			return v
		}
	}
	return s.User.ID()
}
