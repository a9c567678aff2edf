package tools

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallerhub/backend/internal/models"
)

// Repository handles herramienta persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a tools repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new tool.
func (r *Repository) Create(ctx context.Context, t *models.Tool) error {
	const q = `INSERT INTO herramientas (nombre, descripcion, url, category, image_url, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, t.Nombre, t.Descripcion, t.URL, t.Category, t.ImageURL, t.Active).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// GetByID returns a tool by ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Tool, error) {
	const q = `SELECT id, nombre, descripcion, url, category, image_url, active, created_at, updated_at
		FROM herramientas WHERE id = $1`
	var t models.Tool
	err := r.pool.QueryRow(ctx, q, id).Scan(&t.ID, &t.Nombre, &t.Descripcion, &t.URL, &t.Category, &t.ImageURL, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns tools, optionally only active ones, newest first.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]models.Tool, error) {
	q := `SELECT id, nombre, descripcion, url, category, image_url, active, created_at, updated_at FROM herramientas`
	if activeOnly {
		q += ` WHERE active`
	}
	q += ` ORDER BY id DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Tool
	for rows.Next() {
		var t models.Tool
		if err := rows.Scan(&t.ID, &t.Nombre, &t.Descripcion, &t.URL, &t.Category, &t.ImageURL, &t.Active, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// Update updates tool fields.
func (r *Repository) Update(ctx context.Context, id int64, nombre, descripcion, url, category string, active *bool) error {
	const q = `UPDATE herramientas SET
		nombre = COALESCE(NULLIF($1, ''), nombre),
		descripcion = COALESCE(NULLIF($2, ''), descripcion),
		url = COALESCE(NULLIF($3, ''), url),
		category = COALESCE(NULLIF($4, ''), category),
		active = COALESCE($5, active),
		updated_at = NOW()
		WHERE id = $6`
	_, err := r.pool.Exec(ctx, q, nombre, descripcion, url, category, active, id)
	return err
}

// SetImageURL stores the public image URL for a tool.
func (r *Repository) SetImageURL(ctx context.Context, id int64, url string) error {
	const q = `UPDATE herramientas SET image_url = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.pool.Exec(ctx, q, url, id)
	return err
}

// Delete removes a tool by ID.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM herramientas WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id)
	return err
}
