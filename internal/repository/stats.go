package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mtlprog/tasktrack/internal/domain"
)

// TaskStatsResult holds task counts across the whole store.
type TaskStatsResult struct {
	Total        int
	ByStatus     map[string]int
	ByPriority   map[string]int
	OverdueCount int
}

// GetStats counts tasks by status and priority, and tasks overdue at now.
func (r *TaskRepository) GetStats(ctx context.Context, now time.Time) (*TaskStatsResult, error) {
	result := &TaskStatsResult{
		ByStatus:   map[string]int{},
		ByPriority: map[string]int{},
	}

	if err := r.countGroupedBy(ctx, "status", result.ByStatus); err != nil {
		return nil, err
	}
	if err := r.countGroupedBy(ctx, "priority", result.ByPriority); err != nil {
		return nil, err
	}

	for _, n := range result.ByStatus {
		result.Total += n
	}

	query, args, err := psql.
		Select("COUNT(*)").
		From("tasks").
		Where(sq.Lt{"due_date": now}).
		Where(sq.NotEq{"status": domain.TaskStatusDone}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build overdue count query: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&result.OverdueCount); err != nil {
		return nil, fmt.Errorf("count overdue tasks: %w", err)
	}

	return result, nil
}

// countGroupedBy fills counts with COUNT(*) per distinct value of column.
// column is always a trusted identifier from this package.
func (r *TaskRepository) countGroupedBy(ctx context.Context, column string, counts map[string]int) error {
	query, args, err := psql.
		Select(column, "COUNT(*)").
		From("tasks").
		GroupBy(column).
		ToSql()
	if err != nil {
		return fmt.Errorf("build %s stats query: %w", column, err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query %s stats: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			value string
			n     int
		)
		if err := rows.Scan(&value, &n); err != nil {
			return fmt.Errorf("scan %s stats: %w", column, err)
		}
		counts[value] = n
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate rows: %w", err)
	}

	return nil
}
