package task

import (
	"time"

	"github.com/google/uuid"
)

// Task statuses offered by the board. Status is free text; these are the defaults.
const (
	StatusOpen       = "Open"
	StatusInProgress = "In Progress"
	StatusDone       = "Done"
)

type Task struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Provider  *string    `json:"provider,omitempty"`
	Assignee  *string    `json:"assignee,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Status    string     `json:"status"`
	Notes     *string    `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// TaskRequest carries the raw form values for add and update.
type TaskRequest struct {
	Title    string
	Provider string
	Assignee string
	DueDate  string
	Status   string
	Notes    string
}
