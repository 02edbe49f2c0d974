// internal/repository/postgres_event.go
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/taskhub/taskhub/internal/models"
)

type PostgresSecurityEventRepository struct {
	db *sqlx.DB
}

func NewPostgresSecurityEventRepository(db *sqlx.DB) *PostgresSecurityEventRepository {
	return &PostgresSecurityEventRepository{db: db}
}

func (r *PostgresSecurityEventRepository) Create(ctx context.Context, e *models.SecurityEvent) error {
	const query = `
		INSERT INTO security_events (
			id, user_id, event_type, description, severity,
			ip_address, user_agent, created_at
		) VALUES (
			:id, :user_id, :event_type, :description, :severity,
			:ip_address, :user_agent, :created_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, e); err != nil {
		return fmt.Errorf("insert security event: %w", err)
	}
	return nil
}

func (r *PostgresSecurityEventRepository) List(ctx context.Context, filter EventFilter) ([]*models.SecurityEvent, int, error) {
	var (
		conds []string
		args  []interface{}
	)
	addCond := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.UserID != nil {
		addCond("user_id = $%d", *filter.UserID)
	}
	if filter.EventType != "" {
		addCond("event_type = $%d", filter.EventType)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT count(*) FROM security_events"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count security events: %w", err)
	}

	query := "SELECT * FROM security_events" + where + " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var events []*models.SecurityEvent
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list security events: %w", err)
	}
	return events, total, nil
}
