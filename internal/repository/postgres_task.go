// internal/repository/postgres_task.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/taskhub/taskhub/internal/models"
)

type PostgresTaskRepository struct {
	db *sqlx.DB
}

func NewPostgresTaskRepository(db *sqlx.DB) *PostgresTaskRepository {
	return &PostgresTaskRepository{db: db}
}

func (r *PostgresTaskRepository) Create(ctx context.Context, t *models.Task) error {
	const query = `
		INSERT INTO tasks (
			id, title, description, status, priority, creator_id, assignee_id,
			due_date, tags, version, created_at, updated_at
		) VALUES (
			:id, :title, :description, :status, :priority, :creator_id, :assignee_id,
			:due_date, :tags, :version, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, t); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *PostgresTaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	var t models.Task
	err := r.db.GetContext(ctx, &t, `SELECT * FROM tasks WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task by id: %w", err)
	}
	return &t, nil
}

func (r *PostgresTaskRepository) List(ctx context.Context, filter TaskFilter) ([]*models.Task, int, error) {
	var (
		conds []string
		args  []interface{}
	)
	addCond := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != nil {
		addCond("status = $%d", *filter.Status)
	}
	if filter.Priority != nil {
		addCond("priority = $%d", *filter.Priority)
	}
	if filter.CreatorID != nil {
		addCond("creator_id = $%d", *filter.CreatorID)
	}
	if filter.AssigneeID != nil {
		addCond("assignee_id = $%d", *filter.AssigneeID)
	}
	if filter.UserID != nil {
		addCond("(creator_id = $%d OR assignee_id = $%[1]d)", *filter.UserID)
	}
	if filter.Search != "" {
		addCond("(title ILIKE $%d OR description ILIKE $%[1]d)", "%"+filter.Search+"%")
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT count(*) FROM tasks"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	query := "SELECT * FROM tasks" + where + orderClause(filter.SortBy, filter.SortOrder)
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var tasks []*models.Task
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, total, nil
}

// Update writes the task back with an optimistic version check. The write
// only matches the row when the stored version equals the version the caller
// read; a concurrent writer that got there first makes this return
// ErrVersionConflict instead of silently losing the update.
func (r *PostgresTaskRepository) Update(ctx context.Context, t *models.Task) error {
	const query = `
		UPDATE tasks SET
			title = :title,
			description = :description,
			status = :status,
			priority = :priority,
			assignee_id = :assignee_id,
			due_date = :due_date,
			tags = :tags,
			version = version + 1,
			updated_at = :updated_at
		WHERE id = :id AND version = :version`

	res, err := r.db.NamedExecContext(ctx, query, t)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := r.db.GetContext(ctx, &exists,
			`SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, t.ID); err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	t.Version++
	return nil
}

func (r *PostgresTaskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func orderClause(sortBy, sortOrder string) string {
	dir := "DESC"
	if sortOrder == "asc" {
		dir = "ASC"
	}
	switch sortBy {
	case "updated_at":
		return " ORDER BY updated_at " + dir
	case "due_date":
		return " ORDER BY due_date " + dir + " NULLS LAST"
	case "priority":
		return " ORDER BY CASE priority WHEN 'low' THEN 1 WHEN 'medium' THEN 2 WHEN 'high' THEN 3 WHEN 'critical' THEN 4 END " + dir
	default:
		return " ORDER BY created_at " + dir
	}
}
