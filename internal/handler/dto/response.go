package dto

import (
	"time"

	"github.com/mtlprog/tasktrack/internal/domain"
	"github.com/mtlprog/tasktrack/internal/repository"
)

// UserRef is a resolved user reference. Username is empty when the user is unknown.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
}

// TaskResponse represents a task with resolved user references.
type TaskResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Status      string             `json:"status"`
	Priority    string             `json:"priority"`
	Assignee    *UserRef           `json:"assignee"`
	CreatedBy   UserRef            `json:"created_by"`
	DueDate     *time.Time         `json:"due_date"`
	Tags        []string           `json:"tags"`
	Comments    []CommentResponse  `json:"comments"`
	Activity    []ActivityResponse `json:"activity"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// TasksListResponse represents the response for GET /tasks.
type TasksListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Count int            `json:"count"`
}

// CommentResponse represents one comment.
type CommentResponse struct {
	User      UserRef   `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityResponse represents one activity log entry.
type ActivityResponse struct {
	User      UserRef   `json:"user"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageResponse carries a plain confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// StatsResponse represents task counts across the store.
type StatsResponse struct {
	Total        int            `json:"total"`
	ByStatus     map[string]int `json:"by_status"`
	ByPriority   map[string]int `json:"by_priority"`
	OverdueCount int            `json:"overdue_count"`
}

func userRef(id string, usernames map[string]string) UserRef {
	return UserRef{ID: id, Username: usernames[id]}
}

// ToTaskResponse converts domain.Task to TaskResponse, resolving references through usernames.
func ToTaskResponse(task *domain.Task, usernames map[string]string) TaskResponse {
	var assignee *UserRef
	if task.AssigneeID != nil {
		ref := userRef(*task.AssigneeID, usernames)
		assignee = &ref
	}

	tags := task.Tags
	if tags == nil {
		tags = []string{}
	}

	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		Assignee:    assignee,
		CreatedBy:   userRef(task.CreatedBy, usernames),
		DueDate:     task.DueDate,
		Tags:        tags,
		Comments:    ToCommentResponses(task.Comments, usernames),
		Activity:    ToActivityResponses(task.Activity, usernames),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// ToCommentResponses converts comments, resolving authors through usernames.
func ToCommentResponses(comments []domain.Comment, usernames map[string]string) []CommentResponse {
	out := make([]CommentResponse, len(comments))
	for i, c := range comments {
		out[i] = CommentResponse{
			User:      userRef(c.UserID, usernames),
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		}
	}
	return out
}

// ToActivityResponses converts activity entries, resolving authors through usernames.
func ToActivityResponses(entries []domain.ActivityEntry, usernames map[string]string) []ActivityResponse {
	out := make([]ActivityResponse, len(entries))
	for i, e := range entries {
		out[i] = ActivityResponse{
			User:      userRef(e.UserID, usernames),
			Action:    string(e.Action),
			Timestamp: e.Timestamp,
		}
	}
	return out
}

// ToStatsResponse converts repository stats to StatsResponse.
func ToStatsResponse(stats *repository.TaskStatsResult) StatsResponse {
	return StatsResponse{
		Total:        stats.Total,
		ByStatus:     stats.ByStatus,
		ByPriority:   stats.ByPriority,
		OverdueCount: stats.OverdueCount,
	}
}
