package domain

import "time"

// ActivityAction labels an entry in a task's activity log.
type ActivityAction string

const (
	ActionCreatedTask  ActivityAction = "created task"
	ActionUpdatedTask  ActivityAction = "updated task"
	ActionAddedComment ActivityAction = "added comment"
)

// ActivityEntry is one audit record in a task's activity log.
type ActivityEntry struct {
	UserID    string         `json:"user"`
	Action    ActivityAction `json:"action"`
	Timestamp time.Time      `json:"timestamp"`
}

// Comment is a note left on a task.
type Comment struct {
	UserID    string    `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
