package domain

import (
	"strings"
	"time"
)

// TaskStatus represents the workflow status of a task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// IsValid checks if the status is one of the allowed values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

// TaskPriority represents the priority level of a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// IsValid checks if the priority is one of the allowed values.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}

// Task is the central work item. Comments and Activity are embedded and only grow.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	AssigneeID  *string
	CreatedBy   string
	DueDate     *time.Time
	Tags        []string
	Comments    []Comment
	Activity    []ActivityEntry
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTaskParams holds the caller-supplied fields of a new task.
type NewTaskParams struct {
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	AssigneeID  *string
	CreatedBy   string
	DueDate     *time.Time
	Tags        []string
}

// NewTask builds a task with defaults applied and the initial activity entry seeded.
func NewTask(p NewTaskParams, now time.Time) (*Task, error) {
	task := &Task{
		Title:       p.Title,
		Description: p.Description,
		Status:      p.Status,
		Priority:    p.Priority,
		AssigneeID:  p.AssigneeID,
		CreatedBy:   p.CreatedBy,
		DueDate:     p.DueDate,
		Tags:        p.Tags,
		Comments:    []Comment{},
		Activity: []ActivityEntry{
			{UserID: p.CreatedBy, Action: ActionCreatedTask, Timestamp: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if task.Status == "" {
		task.Status = TaskStatusTodo
	}
	if task.Priority == "" {
		task.Priority = TaskPriorityMedium
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks the title and enum invariants.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return NewValidationError("title", "is required")
	}
	if !t.Status.IsValid() {
		return NewValidationError("status", "must be one of todo, in_progress, done")
	}
	if !t.Priority.IsValid() {
		return NewValidationError("priority", "must be one of low, medium, high")
	}
	return nil
}

// TaskUpdate enumerates the externally mutable fields of a task.
// A nil field is left untouched. The store applies it in a single statement
// together with the activity entry and the new updated_at.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *TaskPriority
	AssigneeID  *string
	DueDate     *time.Time
	Tags        []string

	// ClearAssignee and ClearDueDate unset the optional references.
	ClearAssignee bool
	ClearDueDate  bool
}

// Validate checks the named fields without a target task.
func (u TaskUpdate) Validate() error {
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return NewValidationError("title", "is required")
	}
	if u.Status != nil && !u.Status.IsValid() {
		return NewValidationError("status", "must be one of todo, in_progress, done")
	}
	if u.Priority != nil && !u.Priority.IsValid() {
		return NewValidationError("priority", "must be one of low, medium, high")
	}
	return nil
}
