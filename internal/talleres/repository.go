package talleres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallerhub/backend/internal/models"
)

// Repository handles taller persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a talleres repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new taller.
func (r *Repository) Create(ctx context.Context, t *models.Taller) error {
	const q = `INSERT INTO talleres (nombre, slug, descripcion, price_cents, currency, starts_at, capacity, image_url, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, t.Nombre, t.Slug, t.Descripcion, t.PriceCents, t.Currency, t.StartsAt, t.Capacity, t.ImageURL, t.Active).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// GetByID returns a taller by ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Taller, error) {
	const q = `SELECT id, nombre, slug, descripcion, price_cents, currency, starts_at, capacity, image_url, active, created_at, updated_at
		FROM talleres WHERE id = $1`
	var t models.Taller
	err := r.pool.QueryRow(ctx, q, id).Scan(&t.ID, &t.Nombre, &t.Slug, &t.Descripcion, &t.PriceCents, &t.Currency, &t.StartsAt, &t.Capacity, &t.ImageURL, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetBySlug returns a taller by its catalog slug.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.Taller, error) {
	const q = `SELECT id, nombre, slug, descripcion, price_cents, currency, starts_at, capacity, image_url, active, created_at, updated_at
		FROM talleres WHERE slug = $1`
	var t models.Taller
	err := r.pool.QueryRow(ctx, q, slug).Scan(&t.ID, &t.Nombre, &t.Slug, &t.Descripcion, &t.PriceCents, &t.Currency, &t.StartsAt, &t.Capacity, &t.ImageURL, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns talleres ordered by start date, optionally only active ones.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]models.Taller, error) {
	q := `SELECT id, nombre, slug, descripcion, price_cents, currency, starts_at, capacity, image_url, active, created_at, updated_at FROM talleres`
	if activeOnly {
		q += ` WHERE active`
	}
	q += ` ORDER BY starts_at DESC NULLS LAST, id DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Taller
	for rows.Next() {
		var t models.Taller
		if err := rows.Scan(&t.ID, &t.Nombre, &t.Slug, &t.Descripcion, &t.PriceCents, &t.Currency, &t.StartsAt, &t.Capacity, &t.ImageURL, &t.Active, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// Update updates taller fields.
func (r *Repository) Update(ctx context.Context, id int64, nombre, descripcion string, priceCents, capacity *int, startsAt *time.Time, active *bool) error {
	const q = `UPDATE talleres SET
		nombre = COALESCE(NULLIF($1, ''), nombre),
		descripcion = COALESCE(NULLIF($2, ''), descripcion),
		price_cents = COALESCE($3, price_cents),
		capacity = COALESCE($4, capacity),
		starts_at = COALESCE($5, starts_at),
		active = COALESCE($6, active),
		updated_at = NOW()
		WHERE id = $7`
	_, err := r.pool.Exec(ctx, q, nombre, descripcion, priceCents, capacity, startsAt, active, id)
	return err
}

// SetImageURL stores the public image URL for a taller.
func (r *Repository) SetImageURL(ctx context.Context, id int64, url string) error {
	const q = `UPDATE talleres SET image_url = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.pool.Exec(ctx, q, url, id)
	return err
}

// Delete removes a taller by ID.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM talleres WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id)
	return err
}
