package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/tasktrack/internal/domain"
)

// taskColumns is the shared list of columns for task queries.
var taskColumns = []string{
	"id", "title", "description", "status", "priority", "assignee_id",
	"created_by", "due_date", "tags", "comments", "activity",
	"created_at", "updated_at",
}

var returningTask = "RETURNING " + strings.Join(taskColumns, ", ")

// TaskRepository handles database operations for tasks.
type TaskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// scanTask scans a single row into a Task struct.
func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.AssigneeID,
		&task.CreatedBy,
		&task.DueDate,
		&task.Tags,
		&task.Comments,
		&task.Activity,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	return &task, nil
}

// scanTasks scans multiple rows into a slice of Task structs.
func scanTasks(rows pgx.Rows) ([]*domain.Task, error) {
	defer rows.Close()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return tasks, nil
}

// GetByID retrieves a task by ID.
func (r *TaskRepository) GetByID(ctx context.Context, taskID string) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for task: %w", err)
	}

	return scanTask(r.pool.QueryRow(ctx, query, args...))
}

// Create inserts a task built by domain.NewTask.
// The store assigns the ID; timestamps are taken from the task as given.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	comments, err := json.Marshal(task.Comments)
	if err != nil {
		return nil, fmt.Errorf("encode comments: %w", err)
	}
	activity, err := json.Marshal(task.Activity)
	if err != nil {
		return nil, fmt.Errorf("encode activity: %w", err)
	}

	query, args, err := psql.
		Insert("tasks").
		Columns(
			"title", "description", "status", "priority", "assignee_id",
			"created_by", "due_date", "tags", "comments", "activity",
			"created_at", "updated_at",
		).
		Values(
			task.Title,
			task.Description,
			task.Status,
			task.Priority,
			task.AssigneeID,
			task.CreatedBy,
			task.DueDate,
			task.Tags,
			sq.Expr("?::jsonb", string(comments)),
			sq.Expr("?::jsonb", string(activity)),
			task.CreatedAt,
			task.UpdatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for task: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&task.ID); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	return task, nil
}

// Update overwrites the named fields and appends entry to the activity log in one statement.
// updated_at is set to now but never below created_at.
func (r *TaskRepository) Update(
	ctx context.Context,
	taskID string,
	update domain.TaskUpdate,
	entry domain.ActivityEntry,
	now time.Time,
) (*domain.Task, error) {
	qb, err := updateQuery(taskID, update, entry, now)
	if err != nil {
		return nil, err
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Update query for task %s: %w", taskID, err)
	}

	return scanTask(r.pool.QueryRow(ctx, query, args...))
}

func updateQuery(taskID string, update domain.TaskUpdate, entry domain.ActivityEntry, now time.Time) (sq.UpdateBuilder, error) {
	entryJSON, err := json.Marshal([]domain.ActivityEntry{entry})
	if err != nil {
		return sq.UpdateBuilder{}, fmt.Errorf("encode activity entry: %w", err)
	}

	qb := psql.Update("tasks")
	if update.Title != nil {
		qb = qb.Set("title", *update.Title)
	}
	if update.Description != nil {
		qb = qb.Set("description", *update.Description)
	}
	if update.Status != nil {
		qb = qb.Set("status", *update.Status)
	}
	if update.Priority != nil {
		qb = qb.Set("priority", *update.Priority)
	}
	if update.ClearAssignee {
		qb = qb.Set("assignee_id", nil)
	} else if update.AssigneeID != nil {
		qb = qb.Set("assignee_id", *update.AssigneeID)
	}
	if update.ClearDueDate {
		qb = qb.Set("due_date", nil)
	} else if update.DueDate != nil {
		qb = qb.Set("due_date", *update.DueDate)
	}
	if update.Tags != nil {
		qb = qb.Set("tags", update.Tags)
	}

	return qb.
		Set("activity", sq.Expr("activity || ?::jsonb", string(entryJSON))).
		Set("updated_at", touchExpr(now)).
		Where(sq.Eq{"id": taskID}).
		Suffix(returningTask), nil
}

// AppendComment appends a comment and its activity entry atomically.
func (r *TaskRepository) AppendComment(
	ctx context.Context,
	taskID string,
	comment domain.Comment,
	entry domain.ActivityEntry,
	now time.Time,
) (*domain.Task, error) {
	qb, err := appendCommentQuery(taskID, comment, entry, now)
	if err != nil {
		return nil, err
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build AppendComment query for task %s: %w", taskID, err)
	}

	return scanTask(r.pool.QueryRow(ctx, query, args...))
}

func appendCommentQuery(taskID string, comment domain.Comment, entry domain.ActivityEntry, now time.Time) (sq.UpdateBuilder, error) {
	commentJSON, err := json.Marshal([]domain.Comment{comment})
	if err != nil {
		return sq.UpdateBuilder{}, fmt.Errorf("encode comment: %w", err)
	}
	entryJSON, err := json.Marshal([]domain.ActivityEntry{entry})
	if err != nil {
		return sq.UpdateBuilder{}, fmt.Errorf("encode activity entry: %w", err)
	}

	return psql.
		Update("tasks").
		Set("comments", sq.Expr("comments || ?::jsonb", string(commentJSON))).
		Set("activity", sq.Expr("activity || ?::jsonb", string(entryJSON))).
		Set("updated_at", touchExpr(now)).
		Where(sq.Eq{"id": taskID}).
		Suffix(returningTask), nil
}

// Delete removes a task permanently. Deleting a missing task is not an error.
func (r *TaskRepository) Delete(ctx context.Context, taskID string) error {
	query, args, err := psql.
		Delete("tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Delete query for task %s: %w", taskID, err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	return nil
}

// touchExpr is the only updated_at write for existing tasks. It keeps
// updated_at >= created_at even when the caller's clock is behind the row.
func touchExpr(now time.Time) sq.Sqlizer {
	return sq.Expr("GREATEST(created_at, ?::timestamptz)", now)
}
