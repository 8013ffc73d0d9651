package handler_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mtlprog/tasktrack/internal/domain"
	"github.com/mtlprog/tasktrack/internal/repository"
)

// memStore is an in-memory task store with the same observable behavior as the
// PostgreSQL repository.
type memStore struct {
	mu    sync.Mutex
	tasks map[string]*domain.Task
}

func newMemStore() *memStore {
	return &memStore{tasks: map[string]*domain.Task{}}
}

func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	c.Tags = append([]string{}, t.Tags...)
	c.Comments = append([]domain.Comment{}, t.Comments...)
	c.Activity = append([]domain.ActivityEntry{}, t.Activity...)
	return &c
}

func (m *memStore) GetByID(_ context.Context, taskID string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[taskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(task), nil
}

func (m *memStore) List(_ context.Context, f repository.TaskListFilters) ([]*domain.Task, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*domain.Task
	for _, t := range m.tasks {
		if f.AssigneeID != nil && (t.AssigneeID == nil || *t.AssigneeID != *f.AssigneeID) {
			continue
		}
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		if f.Priority != nil && t.Priority != *f.Priority {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Search)) {
			continue
		}
		matched = append(matched, t)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].UpdatedAt.Equal(matched[j].UpdatedAt) {
			return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	count := len(matched)
	start := min(f.Offset, count)
	end := min(start+f.Limit, count)

	page := make([]*domain.Task, 0, end-start)
	for _, t := range matched[start:end] {
		page = append(page, cloneTask(t))
	}
	return page, count, nil
}

func (m *memStore) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := cloneTask(task)
	stored.ID = uuid.NewString()
	m.tasks[stored.ID] = stored
	return cloneTask(stored), nil
}

func (m *memStore) Update(
	_ context.Context,
	taskID string,
	update domain.TaskUpdate,
	entry domain.ActivityEntry,
	now time.Time,
) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[taskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	applyUpdate(task, update)
	task.Activity = append(task.Activity, entry)
	touch(task, now)
	return cloneTask(task), nil
}

func (m *memStore) AppendComment(
	_ context.Context,
	taskID string,
	comment domain.Comment,
	entry domain.ActivityEntry,
	now time.Time,
) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[taskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	task.Comments = append(task.Comments, comment)
	task.Activity = append(task.Activity, entry)
	touch(task, now)
	return cloneTask(task), nil
}

// applyUpdate mirrors the column assignments of the repository's UPDATE.
func applyUpdate(t *domain.Task, u domain.TaskUpdate) {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.ClearAssignee {
		t.AssigneeID = nil
	} else if u.AssigneeID != nil {
		t.AssigneeID = u.AssigneeID
	}
	if u.ClearDueDate {
		t.DueDate = nil
	} else if u.DueDate != nil {
		t.DueDate = u.DueDate
	}
	if u.Tags != nil {
		t.Tags = u.Tags
	}
}

// touch mirrors GREATEST(created_at, now).
func touch(t *domain.Task, now time.Time) {
	if now.Before(t.CreatedAt) {
		now = t.CreatedAt
	}
	t.UpdatedAt = now
}

func (m *memStore) Delete(_ context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tasks, taskID)
	return nil
}

func (m *memStore) GetStats(_ context.Context, now time.Time) (*repository.TaskStatsResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := &repository.TaskStatsResult{
		ByStatus:   map[string]int{},
		ByPriority: map[string]int{},
	}
	for _, t := range m.tasks {
		result.Total++
		result.ByStatus[string(t.Status)]++
		result.ByPriority[string(t.Priority)]++
		if t.DueDate != nil && t.DueDate.Before(now) && t.Status != domain.TaskStatusDone {
			result.OverdueCount++
		}
	}
	return result, nil
}

// memUsers resolves a fixed set of usernames.
type memUsers map[string]string

func (u memUsers) Usernames(_ context.Context, userIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		if name, ok := u[id]; ok {
			names[id] = name
		}
	}
	return names, nil
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }
