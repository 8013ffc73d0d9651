package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/mtlprog/tasktrack/internal/domain"
)

// TaskListFilters holds all supported filters for task listing.
type TaskListFilters struct {
	AssigneeID *string              // Optional: filter by assignee
	Status     *domain.TaskStatus   // Optional: filter by status
	Priority   *domain.TaskPriority // Optional: filter by priority
	Search     string               // Optional: case-insensitive substring of title
	Limit      int                  // Required: page size
	Offset     int                  // Required: rows to skip
}

// applyListFilters adds the WHERE conditions shared by the page and count queries.
func applyListFilters(qb sq.SelectBuilder, filters TaskListFilters) sq.SelectBuilder {
	if filters.AssigneeID != nil {
		qb = qb.Where(sq.Eq{"assignee_id": *filters.AssigneeID})
	}
	if filters.Status != nil {
		qb = qb.Where(sq.Eq{"status": *filters.Status})
	}
	if filters.Priority != nil {
		qb = qb.Where(sq.Eq{"priority": *filters.Priority})
	}
	if filters.Search != "" {
		qb = qb.Where(sq.ILike{"title": containsPattern(filters.Search)})
	}
	return qb
}

// listQuery builds the paginated page query, most recently updated first.
func listQuery(filters TaskListFilters) sq.SelectBuilder {
	return applyListFilters(psql.Select(taskColumns...).From("tasks"), filters).
		OrderBy("updated_at DESC", "id DESC").
		Limit(uint64(filters.Limit)).
		Offset(uint64(filters.Offset))
}

// countQuery builds the total-match query, ignoring pagination.
func countQuery(filters TaskListFilters) sq.SelectBuilder {
	return applyListFilters(psql.Select("COUNT(*)").From("tasks"), filters)
}

// List retrieves one page of tasks and the total number of matches.
func (r *TaskRepository) List(ctx context.Context, filters TaskListFilters) ([]*domain.Task, int, error) {
	query, args, err := listQuery(filters).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build List query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query tasks: %w", err)
	}

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, 0, err
	}

	countSQL, countArgs, err := countQuery(filters).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	return tasks, total, nil
}
