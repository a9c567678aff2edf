package security

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallerhub/backend/internal/models"
)

// Repository persists security events.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a security event repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores a security event.
func (r *Repository) Insert(ctx context.Context, ev *models.SecurityEvent) error {
	const q = `INSERT INTO security_events (id, kind, detail, client_ip)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	return r.pool.QueryRow(ctx, q, ev.ID, ev.Kind, ev.Detail, ev.ClientIP).Scan(&ev.CreatedAt)
}

// ListRecent returns the most recent security events, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]models.SecurityEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, kind, detail, client_ip, created_at FROM security_events ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.SecurityEvent
	for rows.Next() {
		var ev models.SecurityEvent
		if err := rows.Scan(&ev.ID, &ev.Kind, &ev.Detail, &ev.ClientIP, &ev.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, ev)
	}
	return list, rows.Err()
}
