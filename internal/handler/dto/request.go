package dto

import (
	"encoding/json"
	"time"

	"github.com/mtlprog/tasktrack/internal/domain"
)

// CreateTaskRequest represents the request body for POST /tasks.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	Assignee    *string    `json:"assignee,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

// UpdateTaskRequest represents the request body for PUT /tasks/{id}.
// Only the fields listed here may be changed; any other key is rejected.
type UpdateTaskRequest struct {
	Title       *string             `json:"title,omitempty"`
	Description *string             `json:"description,omitempty"`
	Status      *string             `json:"status,omitempty"`
	Priority    *string             `json:"priority,omitempty"`
	Assignee    Nullable[string]    `json:"assignee" swaggertype:"string"`
	DueDate     Nullable[time.Time] `json:"due_date" swaggertype:"string" format:"date-time"`
	Tags        Nullable[[]string]  `json:"tags" swaggertype:"array,string"`
}

// AddCommentRequest represents the request body for POST /tasks/{id}/comments.
type AddCommentRequest struct {
	Text string `json:"text"`
}

// ListTasksFilters represents query parameters for GET /tasks.
type ListTasksFilters struct {
	Page     int     // ?page=1
	Limit    int     // ?limit=10
	Assignee *string // ?assignee=<uuid>
	Status   *string // ?status=todo
	Priority *string // ?priority=high
	Search   string  // ?search=bug
}

// Nullable tells an absent JSON key apart from an explicit null.
type Nullable[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// UnmarshalJSON records that the key was present and whether it was null.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Null = true
		return nil
	}
	return json.Unmarshal(data, &n.Value)
}

// ToTaskUpdate converts the request into the domain's set of field changes.
// A null assignee or due_date clears it; null tags become an empty list.
func (r UpdateTaskRequest) ToTaskUpdate() domain.TaskUpdate {
	update := domain.TaskUpdate{
		Title:       r.Title,
		Description: r.Description,
	}
	if r.Status != nil {
		status := domain.TaskStatus(*r.Status)
		update.Status = &status
	}
	if r.Priority != nil {
		priority := domain.TaskPriority(*r.Priority)
		update.Priority = &priority
	}
	if r.Assignee.Set {
		if r.Assignee.Null {
			update.ClearAssignee = true
		} else {
			assignee := r.Assignee.Value
			update.AssigneeID = &assignee
		}
	}
	if r.DueDate.Set {
		if r.DueDate.Null {
			update.ClearDueDate = true
		} else {
			dueDate := r.DueDate.Value
			update.DueDate = &dueDate
		}
	}
	if r.Tags.Set {
		update.Tags = r.Tags.Value
		if update.Tags == nil {
			update.Tags = []string{}
		}
	}
	return update
}
