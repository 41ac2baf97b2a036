package assistant

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	defaultThreshold = 2
	defaultDays      = 30
)

var (
	daysPattern      = regexp.MustCompile(`(\d+)\s*(day|days|d)\b`)
	thresholdPattern = regexp.MustCompile(`(?:<=|under)\s*(\d+)`)
	orderNumberRe    = regexp.MustCompile(`(?i)\bord-\d{8}-[0-9a-f]{4}\b`)
)

// Intent is what a prompt asks for.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentPendingCount
	IntentCompletedCount
	IntentLowStock
	IntentExpiringStock
	IntentOrderLookup
)

// Query is a parsed prompt.
type Query struct {
	Intent      Intent
	Raw         string
	JSON        bool
	Threshold   int
	Days        int
	OrderNumber string
}

// Parse classifies prompt. Matching is case-insensitive and first match wins.
func Parse(prompt string) Query {
	raw := strings.TrimSpace(prompt)
	p := strings.ToLower(raw)
	q := Query{Raw: raw, JSON: wantsJSON(p), Threshold: defaultThreshold, Days: defaultDays}

	switch {
	case strings.Contains(p, "how many") && strings.Contains(p, "pending orders"):
		q.Intent = IntentPendingCount
	case strings.Contains(p, "how many") && strings.Contains(p, "completed orders"):
		q.Intent = IntentCompletedCount
	case strings.Contains(p, "low") && strings.Contains(p, "stock"):
		q.Intent = IntentLowStock
		if m := thresholdPattern.FindStringSubmatch(p); m != nil {
			q.Threshold, _ = strconv.Atoi(m[1])
		}
	case strings.Contains(p, "expiring") && strings.Contains(p, "stock"):
		q.Intent = IntentExpiringStock
		if m := daysPattern.FindStringSubmatch(p); m != nil {
			q.Days, _ = strconv.Atoi(m[1])
		}
	default:
		if m := orderNumberRe.FindString(raw); m != "" {
			q.Intent = IntentOrderLookup
			q.OrderNumber = strings.ToUpper(m)
		}
	}
	return q
}

func wantsJSON(p string) bool {
	return strings.Contains(p, " as json") || strings.HasSuffix(strings.TrimSpace(p), "json") ||
		strings.Contains(p, "json please")
}
