package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/tasktrack/internal/domain"
)

const creatorID = "00000000-0000-0000-0000-000000000011"

func TestNewTask_Defaults(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	task, err := domain.NewTask(domain.NewTaskParams{Title: "Write docs", CreatedBy: creatorID}, now)
	require.NoError(t, err)

	assert.Equal(t, domain.TaskStatusTodo, task.Status)
	assert.Equal(t, domain.TaskPriorityMedium, task.Priority)
	assert.Empty(t, task.Tags)
	assert.NotNil(t, task.Tags)
	assert.Empty(t, task.Comments)
	assert.Equal(t, now, task.CreatedAt)
	assert.Equal(t, now, task.UpdatedAt)

	require.Len(t, task.Activity, 1)
	assert.Equal(t, domain.ActionCreatedTask, task.Activity[0].Action)
	assert.Equal(t, creatorID, task.Activity[0].UserID)
	assert.Equal(t, now, task.Activity[0].Timestamp)
}

func TestNewTask_Validation(t *testing.T) {
	tests := []struct {
		name   string
		params domain.NewTaskParams
		field  string
	}{
		{"missing title", domain.NewTaskParams{}, "title"},
		{"blank title", domain.NewTaskParams{Title: "   "}, "title"},
		{"bad status", domain.NewTaskParams{Title: "A", Status: "archived"}, "status"},
		{"bad priority", domain.NewTaskParams{Title: "A", Priority: "urgent"}, "priority"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewTask(tt.params, time.Now())
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestTaskUpdate_Validate(t *testing.T) {
	empty := ""
	bad := domain.TaskPriority("urgent")

	assert.ErrorIs(t, domain.TaskUpdate{Title: &empty}.Validate(), domain.ErrValidation)
	assert.ErrorIs(t, domain.TaskUpdate{Priority: &bad}.Validate(), domain.ErrValidation)
	assert.NoError(t, domain.TaskUpdate{}.Validate())
}
