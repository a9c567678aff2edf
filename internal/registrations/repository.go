package registrations

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tallerhub/backend/internal/models"
)

// DB is the query surface the repository needs. *pgxpool.Pool satisfies it in
// production; tests substitute a mock pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository handles registrant and registration persistence.
type Repository struct {
	pool DB
}

// NewRepository creates a registrations repository.
func NewRepository(pool DB) *Repository {
	return &Repository{pool: pool}
}

// Preflight probes the backing tables before any mutation. A failure here is
// a deployment/configuration problem, not a per-request one.
func (r *Repository) Preflight(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `SELECT 1 FROM usuarios LIMIT 1`); err != nil {
		return fmt.Errorf("usuarios table unreachable: %w", err)
	}
	if _, err := r.pool.Exec(ctx, `SELECT 1 FROM registros LIMIT 1`); err != nil {
		return fmt.Errorf("registros table unreachable: %w", err)
	}
	return nil
}

// UpsertRegistrant finds-or-creates the registrant keyed by normalized phone.
// On re-use of a phone the name and email are refreshed. The telefono unique
// constraint makes this safe under concurrent requests for the same number.
func (r *Repository) UpsertRegistrant(ctx context.Context, nombre, email, telefono string) (int64, error) {
	const q = `INSERT INTO usuarios (nombre, email, telefono)
		VALUES ($1, $2, $3)
		ON CONFLICT (telefono) DO UPDATE SET nombre = EXCLUDED.nombre, email = EXCLUDED.email, updated_at = NOW()
		RETURNING id`
	var id int64
	if err := r.pool.QueryRow(ctx, q, nombre, email, telefono).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert registrant: %w", err)
	}
	return id, nil
}

// UpsertRegistration finds-or-creates the registration for (usuario, taller).
// An existing row has its status reset to pending and its timestamps
// refreshed; the same id is returned either way.
func (r *Repository) UpsertRegistration(ctx context.Context, registrantID, tallerID int64) (int64, error) {
	extra, err := json.Marshal(models.RegistrationExtra{
		Origin:       "web",
		RegisteredAt: time.Now().UTC(),
	})
	if err != nil {
		return 0, fmt.Errorf("marshal extra: %w", err)
	}
	const q = `INSERT INTO registros (usuario_id, taller_id, status, extra)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (usuario_id, taller_id) DO UPDATE SET status = $3, extra = EXCLUDED.extra, updated_at = NOW()
		RETURNING id`
	var id int64
	if err := r.pool.QueryRow(ctx, q, registrantID, tallerID, models.RegistrationPending, extra).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert registration: %w", err)
	}
	return id, nil
}

// GetRegistrantByID returns the full registrant row.
func (r *Repository) GetRegistrantByID(ctx context.Context, id int64) (*models.Registrant, error) {
	const q = `SELECT id, nombre, email, telefono, created_at, updated_at FROM usuarios WHERE id = $1`
	var u models.Registrant
	err := r.pool.QueryRow(ctx, q, id).Scan(&u.ID, &u.Nombre, &u.Email, &u.Telefono, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetRegistrationByID returns a registration by ID.
func (r *Repository) GetRegistrationByID(ctx context.Context, id int64) (*models.Registration, error) {
	const q = `SELECT id, usuario_id, taller_id, status, extra, created_at, updated_at FROM registros WHERE id = $1`
	var reg models.Registration
	err := r.pool.QueryRow(ctx, q, id).Scan(&reg.ID, &reg.RegistrantID, &reg.TallerID, &reg.Status, &reg.Extra, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// ListByTaller returns all registrations for a taller, newest first.
func (r *Repository) ListByTaller(ctx context.Context, tallerID int64) ([]models.Registration, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, usuario_id, taller_id, status, extra, created_at, updated_at FROM registros WHERE taller_id = $1 ORDER BY created_at DESC`, tallerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Registration
	for rows.Next() {
		var reg models.Registration
		if err := rows.Scan(&reg.ID, &reg.RegistrantID, &reg.TallerID, &reg.Status, &reg.Extra, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, reg)
	}
	return list, rows.Err()
}

// CountByTaller returns total and pending registration counts for a taller.
func (r *Repository) CountByTaller(ctx context.Context, tallerID int64) (total, pending int, err error) {
	const q = `SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'pending') FROM registros WHERE taller_id = $1`
	err = r.pool.QueryRow(ctx, q, tallerID).Scan(&total, &pending)
	return total, pending, err
}
