package entities

import "time"

// ScrapeTask tracks one scrape request
type ScrapeTask struct {
	ID        string     `json:"id"`
	URL       string     `json:"url"`
	Status    TaskStatus `json:"status"`
	Attempts  int        `json:"attempts"`
	Error     string     `json:"error,omitempty"`
	StartedAt time.Time  `json:"started_at"`
}

// TaskStatus represents the status of a scrape
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)
