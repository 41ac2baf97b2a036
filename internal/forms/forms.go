// Package forms converts raw form values into typed fields.
package forms

import (
	"strings"
	"time"
)

// Flag reports whether a checkbox-style value is set. Only "on", "true",
// "1" and "yes" count; anything else, including an absent field, is false.
func Flag(v string) bool {
	switch v {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// Optional trims v and returns nil when nothing is left.
func Optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// Deref returns the pointed-to string or "".
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 date or date-time. Values without a
// zone are taken as UTC.
func ParseTimestamp(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ParseDate parses YYYY-MM-DD, or a date-time whose date part is kept.
// Unparseable input yields nil.
func ParseDate(v string) *time.Time {
	t, ok := ParseTimestamp(v)
	if !ok {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
