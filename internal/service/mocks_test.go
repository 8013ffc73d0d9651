package service_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/mtlprog/tasktrack/internal/domain"
	"github.com/mtlprog/tasktrack/internal/repository"
)

type mockTaskStore struct {
	mock.Mock
}

func (m *mockTaskStore) GetByID(ctx context.Context, taskID string) (*domain.Task, error) {
	args := m.Called(ctx, taskID)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *mockTaskStore) List(ctx context.Context, filters repository.TaskListFilters) ([]*domain.Task, int, error) {
	args := m.Called(ctx, filters)
	tasks, _ := args.Get(0).([]*domain.Task)
	return tasks, args.Int(1), args.Error(2)
}

func (m *mockTaskStore) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	args := m.Called(ctx, task)
	if fn, ok := args.Get(0).(func(*domain.Task) *domain.Task); ok {
		return fn(task), args.Error(1)
	}
	created, _ := args.Get(0).(*domain.Task)
	return created, args.Error(1)
}

func (m *mockTaskStore) Update(
	ctx context.Context,
	taskID string,
	update domain.TaskUpdate,
	entry domain.ActivityEntry,
	now time.Time,
) (*domain.Task, error) {
	args := m.Called(ctx, taskID, update, entry, now)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *mockTaskStore) AppendComment(
	ctx context.Context,
	taskID string,
	comment domain.Comment,
	entry domain.ActivityEntry,
	now time.Time,
) (*domain.Task, error) {
	args := m.Called(ctx, taskID, comment, entry, now)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *mockTaskStore) Delete(ctx context.Context, taskID string) error {
	return m.Called(ctx, taskID).Error(0)
}

func (m *mockTaskStore) GetStats(ctx context.Context, now time.Time) (*repository.TaskStatsResult, error) {
	args := m.Called(ctx, now)
	stats, _ := args.Get(0).(*repository.TaskStatsResult)
	return stats, args.Error(1)
}

type mockUserDirectory struct {
	mock.Mock
}

func (m *mockUserDirectory) Usernames(ctx context.Context, userIDs []string) (map[string]string, error) {
	args := m.Called(ctx, userIDs)
	names, _ := args.Get(0).(map[string]string)
	return names, args.Error(1)
}
