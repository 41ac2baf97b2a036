package order

import (
	"math"
	"time"
)

// DefaultSLAHours is the fulfilment window used when none is configured.
const DefaultSLAHours = 24

// TimeLeft is the remaining SLA window of an order. Remaining is nil when
// the creation time is unknown.
type TimeLeft struct {
	RemainingHours *float64 `json:"remaining_hours"`
	Overdue        bool     `json:"overdue"`
}

// ComputeTimeLeft returns created + sla - now in hours, rounded to one decimal.
func ComputeTimeLeft(created time.Time, slaHours int, now time.Time) TimeLeft {
	if created.IsZero() {
		return TimeLeft{}
	}
	deadline := created.UTC().Add(time.Duration(slaHours) * time.Hour)
	hours := math.Round(deadline.Sub(now.UTC()).Hours()*10) / 10
	return TimeLeft{RemainingHours: &hours, Overdue: hours < 0}
}
