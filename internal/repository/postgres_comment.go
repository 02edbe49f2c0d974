// internal/repository/postgres_comment.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/taskhub/taskhub/internal/models"
)

type PostgresCommentRepository struct {
	db *sqlx.DB
}

func NewPostgresCommentRepository(db *sqlx.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

func (r *PostgresCommentRepository) Create(ctx context.Context, c *models.Comment) error {
	const query = `
		INSERT INTO comments (
			id, task_id, user_id, parent_id, content, mentions,
			is_edited, is_deleted, deleted_at, created_at, updated_at
		) VALUES (
			:id, :task_id, :user_id, :parent_id, :content, :mentions,
			:is_edited, :is_deleted, :deleted_at, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *PostgresCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var c models.Comment
	err := r.db.GetContext(ctx, &c, `SELECT * FROM comments WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get comment by id: %w", err)
	}
	return &c, nil
}

// ListByTask returns the full thread for a task in creation order, including
// soft-deleted comments so replies keep a resolvable parent.
func (r *PostgresCommentRepository) ListByTask(ctx context.Context, taskID string) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.SelectContext(ctx, &comments,
		`SELECT * FROM comments WHERE task_id = $1 ORDER BY created_at ASC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

func (r *PostgresCommentRepository) Update(ctx context.Context, c *models.Comment) error {
	const query = `
		UPDATE comments SET
			content = :content,
			mentions = :mentions,
			is_edited = :is_edited,
			is_deleted = :is_deleted,
			deleted_at = :deleted_at,
			updated_at = :updated_at
		WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, query, c)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
