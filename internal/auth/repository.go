package auth

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallerhub/backend/internal/models"
)

// Repository handles admin user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID returns an admin user by ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.AdminUser, error) {
	const q = `SELECT id, email, password_hash, full_name, role, created_at, updated_at
		FROM admin_users WHERE id = $1`
	var u models.AdminUser
	err := r.pool.QueryRow(ctx, q, id).Scan(&u.ID, &u.Email, &u.Password, &u.FullName, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns an admin user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	const q = `SELECT id, email, password_hash, full_name, role, created_at, updated_at
		FROM admin_users WHERE email = $1`
	var u models.AdminUser
	err := r.pool.QueryRow(ctx, q, email).Scan(&u.ID, &u.Email, &u.Password, &u.FullName, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns all admin users.
func (r *Repository) List(ctx context.Context) ([]models.AdminUserPublic, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, email, full_name, role, created_at FROM admin_users ORDER BY full_name, email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.AdminUserPublic
	for rows.Next() {
		var u models.AdminUserPublic
		var role string
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &role, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role = models.Role(role)
		list = append(list, u)
	}
	return list, rows.Err()
}

// Create inserts a new admin user.
func (r *Repository) Create(ctx context.Context, email, passwordHash, fullName string, role models.Role) (*models.AdminUser, error) {
	const q = `INSERT INTO admin_users (email, password_hash, full_name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, password_hash, full_name, role, created_at, updated_at`
	var u models.AdminUser
	err := r.pool.QueryRow(ctx, q, email, passwordHash, fullName, string(role)).
		Scan(&u.ID, &u.Email, &u.Password, &u.FullName, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
