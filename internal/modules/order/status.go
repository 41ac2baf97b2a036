package order

import (
	"strings"
	"time"
)

// Status is the free-text status label of an order. A few well-known
// values drive behaviour; any other label is kept as entered.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

// StatusKind classifies a Status label.
type StatusKind int

const (
	KindOther StatusKind = iota
	KindPending
	KindCompleted
	KindCancelled
)

// Kind matches the label case-insensitively: a "completed" prefix wins,
// then any "cancel" substring, then an exact "pending".
func (s Status) Kind() StatusKind {
	l := strings.ToLower(strings.TrimSpace(string(s)))
	switch {
	case strings.HasPrefix(l, "completed"):
		return KindCompleted
	case strings.Contains(l, "cancel"):
		return KindCancelled
	case l == "pending":
		return KindPending
	}
	return KindOther
}

// BucketOf derives the dashboard bucket. sent_out is not required: an
// order with the other five flags set counts as completed.
func BucketOf(o *Order) Bucket {
	f := o.Flags
	if f.ReceivedBack && f.KitRegistered && f.ResultsSent && f.Paid && f.Invoiced {
		return BucketCompleted
	}
	if o.Status == StatusCompleted {
		return BucketCompleted
	}
	return BucketPending
}

// applyCompletion stamps or clears CompletedAt from the current status.
// A flip away from completed loses the original completion time.
func applyCompletion(o *Order, now time.Time) {
	if o.Status.Kind() != KindCompleted {
		o.CompletedAt = nil
		return
	}
	if o.CompletedAt == nil {
		t := now.UTC()
		o.CompletedAt = &t
	}
}
