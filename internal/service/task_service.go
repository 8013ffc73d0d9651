package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/mtlprog/tasktrack/internal/domain"
	"github.com/mtlprog/tasktrack/internal/repository"
)

const (
	// DefaultPageLimit is the page size used when the caller gives none.
	DefaultPageLimit = 10
	// MaxPageLimit caps the page size.
	MaxPageLimit = 100
)

// TaskStore is the document store the service reads and writes tasks through.
type TaskStore interface {
	GetByID(ctx context.Context, taskID string) (*domain.Task, error)
	List(ctx context.Context, filters repository.TaskListFilters) ([]*domain.Task, int, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, taskID string, update domain.TaskUpdate, entry domain.ActivityEntry, now time.Time) (*domain.Task, error)
	AppendComment(ctx context.Context, taskID string, comment domain.Comment, entry domain.ActivityEntry, now time.Time) (*domain.Task, error)
	Delete(ctx context.Context, taskID string) error
	GetStats(ctx context.Context, now time.Time) (*repository.TaskStatsResult, error)
}

// UserDirectory resolves user references to usernames.
type UserDirectory interface {
	Usernames(ctx context.Context, userIDs []string) (map[string]string, error)
}

// TaskService coordinates task operations and reference resolution.
type TaskService struct {
	tasks     TaskStore
	users     UserDirectory
	validator *Validator
	now       func() time.Time
}

// Option configures a TaskService.
type Option func(*TaskService)

// WithClock replaces time.Now as the source of timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *TaskService) {
		s.now = now
	}
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks TaskStore, users UserDirectory, opts ...Option) *TaskService {
	s := &TaskService{
		tasks:     tasks,
		users:     users,
		validator: NewValidator(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// timestamp reads the clock at the precision PostgreSQL stores.
func (s *TaskService) timestamp() time.Time {
	return s.now().Truncate(time.Microsecond)
}

// TaskResult is a task together with the usernames of every user it references.
type TaskResult struct {
	Task      *domain.Task
	Usernames map[string]string
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	Tasks     []*domain.Task
	Count     int
	Usernames map[string]string
}

// ListTasksParams are the listing filters and pagination.
type ListTasksParams struct {
	Page       int
	Limit      int
	AssigneeID *string              `validate:"omitempty,uuid"`
	Status     *domain.TaskStatus   `validate:"omitempty,task_status"`
	Priority   *domain.TaskPriority `validate:"omitempty,task_priority"`
	Search     string
}

// ListTasks returns one page of matching tasks, most recently updated first.
// Page and Limit below 1 fall back to 1 and DefaultPageLimit.
func (s *TaskService) ListTasks(ctx context.Context, params ListTasksParams) (*TaskPage, error) {
	if err := s.validator.Struct(params); err != nil {
		return nil, err
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	// Pages past the int range still mean "beyond the last match".
	offset := math.MaxInt
	if page-1 <= math.MaxInt/limit {
		offset = (page - 1) * limit
	}

	tasks, count, err := s.tasks.List(ctx, repository.TaskListFilters{
		AssigneeID: params.AssigneeID,
		Status:     params.Status,
		Priority:   params.Priority,
		Search:     params.Search,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	var ids []string
	for _, task := range tasks {
		ids = append(ids, taskRefs(task)...)
	}
	names, err := s.resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	return &TaskPage{Tasks: tasks, Count: count, Usernames: names}, nil
}

// CreateTaskParams holds the fields of a new task.
type CreateTaskParams struct {
	CreatedBy   string `validate:"required,uuid"`
	Title       string `validate:"notblank"`
	Description string
	Status      domain.TaskStatus   `validate:"omitempty,task_status"`
	Priority    domain.TaskPriority `validate:"omitempty,task_priority"`
	AssigneeID  *string             `validate:"omitempty,uuid"`
	DueDate     *time.Time
	Tags        []string
}

// CreateTask creates a task attributed to the caller.
func (s *TaskService) CreateTask(ctx context.Context, params CreateTaskParams) (*TaskResult, error) {
	if err := s.validator.Struct(params); err != nil {
		return nil, err
	}

	task, err := domain.NewTask(domain.NewTaskParams{
		Title:       params.Title,
		Description: params.Description,
		Status:      params.Status,
		Priority:    params.Priority,
		AssigneeID:  params.AssigneeID,
		CreatedBy:   params.CreatedBy,
		DueDate:     params.DueDate,
		Tags:        params.Tags,
	}, s.timestamp())
	if err != nil {
		return nil, err
	}

	task, err = s.tasks.Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	slog.Info("task created",
		"task_id", task.ID,
		"user_id", params.CreatedBy,
	)

	return s.withUsernames(ctx, task, taskRefs(task))
}

// GetTask retrieves a single task.
func (s *TaskService) GetTask(ctx context.Context, taskID string) (*TaskResult, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", taskID, err)
	}
	return s.withUsernames(ctx, task, taskRefs(task))
}

// UpdateTask overwrites the named fields and records an "updated task" entry by userID.
func (s *TaskService) UpdateTask(ctx context.Context, taskID, userID string, update domain.TaskUpdate) (*TaskResult, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}
	if update.AssigneeID != nil {
		if err := s.validator.Var("assignee", *update.AssigneeID, "uuid"); err != nil {
			return nil, err
		}
	}

	now := s.timestamp()
	task, err := s.tasks.Update(ctx, taskID, update, domain.ActivityEntry{
		UserID:    userID,
		Action:    domain.ActionUpdatedTask,
		Timestamp: now,
	}, now)
	if err != nil {
		return nil, fmt.Errorf("update task %s: %w", taskID, err)
	}

	slog.Info("task updated",
		"task_id", taskID,
		"user_id", userID,
	)

	return s.withUsernames(ctx, task, taskRefs(task))
}

// DeleteTask removes a task permanently. Missing tasks are not an error.
func (s *TaskService) DeleteTask(ctx context.Context, taskID, userID string) error {
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("delete task %s: %w", taskID, err)
	}

	slog.Info("task deleted",
		"task_id", taskID,
		"user_id", userID,
	)

	return nil
}

// AddComment appends a comment by userID and the matching activity entry.
// The result carries usernames for the comment authors.
func (s *TaskService) AddComment(ctx context.Context, taskID, userID, text string) (*TaskResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyComment
	}

	now := s.timestamp()
	task, err := s.tasks.AppendComment(ctx, taskID,
		domain.Comment{UserID: userID, Text: text, CreatedAt: now},
		domain.ActivityEntry{UserID: userID, Action: domain.ActionAddedComment, Timestamp: now},
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("add comment to task %s: %w", taskID, err)
	}

	slog.Info("comment added",
		"task_id", taskID,
		"user_id", userID,
		"comments", len(task.Comments),
	)

	ids := make([]string, 0, len(task.Comments))
	for _, c := range task.Comments {
		ids = append(ids, c.UserID)
	}
	return s.withUsernames(ctx, task, ids)
}

// GetActivity retrieves a task with usernames for its activity authors.
func (s *TaskService) GetActivity(ctx context.Context, taskID string) (*TaskResult, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("get activity for task %s: %w", taskID, err)
	}

	ids := make([]string, 0, len(task.Activity))
	for _, e := range task.Activity {
		ids = append(ids, e.UserID)
	}
	return s.withUsernames(ctx, task, ids)
}

// GetStats returns task counts by status and priority.
func (s *TaskService) GetStats(ctx context.Context) (*repository.TaskStatsResult, error) {
	stats, err := s.tasks.GetStats(ctx, s.timestamp())
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return stats, nil
}

func (s *TaskService) withUsernames(ctx context.Context, task *domain.Task, ids []string) (*TaskResult, error) {
	names, err := s.resolve(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &TaskResult{Task: task, Usernames: names}, nil
}

// resolve looks up usernames for the distinct non-empty ids.
func (s *TaskService) resolve(ctx context.Context, ids []string) (map[string]string, error) {
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}

	names, err := s.users.Usernames(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("resolve usernames: %w", err)
	}
	return names, nil
}

// taskRefs lists the user references shown alongside a task.
func taskRefs(task *domain.Task) []string {
	refs := []string{task.CreatedBy}
	if task.AssigneeID != nil {
		refs = append(refs, *task.AssigneeID)
	}
	return refs
}
