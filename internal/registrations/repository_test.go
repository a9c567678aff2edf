package registrations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallerhub/backend/internal/models"
)

const (
	registrantUpsertSQL   = `(?s)INSERT INTO usuarios.*ON CONFLICT \(telefono\) DO UPDATE SET nombre = EXCLUDED\.nombre, email = EXCLUDED\.email.*RETURNING id`
	registrationUpsertSQL = `(?s)INSERT INTO registros.*ON CONFLICT \(usuario_id, taller_id\) DO UPDATE SET status = \$3.*RETURNING id`
)

func newMockRepo(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewRepository(mock), mock
}

func TestUpsertRegistrantReusesRowForSamePhone(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(registrantUpsertSQL).
		WithArgs("Ana", "ana@example.com", "573001234567").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectQuery(registrantUpsertSQL).
		WithArgs("Ana María", "otro@example.com", "573001234567").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	first, err := repo.UpsertRegistrant(context.Background(), "Ana", "ana@example.com", "573001234567")
	require.NoError(t, err)
	second, err := repo.UpsertRegistrant(context.Background(), "Ana María", "otro@example.com", "573001234567")
	require.NoError(t, err)

	assert.Equal(t, first, second, "same phone resolves to the same registrant row")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertRegistrationReturnsSameIDAndResetsStatus(t *testing.T) {
	repo, mock := newMockRepo(t)

	// Both calls run the same conflict-handling insert; the second one must
	// carry status pending again and resolve to the existing row's id.
	for i := 0; i < 2; i++ {
		mock.ExpectQuery(registrationUpsertSQL).
			WithArgs(int64(7), int64(3), models.RegistrationPending, pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(99)))
	}

	first, err := repo.UpsertRegistration(context.Background(), 7, 3)
	require.NoError(t, err)
	second, err := repo.UpsertRegistration(context.Background(), 7, 3)
	require.NoError(t, err)

	assert.Equal(t, int64(99), first)
	assert.Equal(t, first, second, "re-registration returns the existing registro id")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreflightProbesBothTables(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`SELECT 1 FROM usuarios LIMIT 1`).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec(`SELECT 1 FROM registros LIMIT 1`).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))

	require.NoError(t, repo.Preflight(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreflightReportsUnreachableTable(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`SELECT 1 FROM usuarios LIMIT 1`).
		WillReturnError(errors.New(`relation "usuarios" does not exist`))

	err := repo.Preflight(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usuarios table unreachable")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRegistrantByID(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT id, nombre, email, telefono, created_at, updated_at FROM usuarios WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "nombre", "email", "telefono", "created_at", "updated_at"}).
			AddRow(int64(7), "Ana", "ana@example.com", "573001234567", testTime(), testTime()))

	u, err := repo.GetRegistrantByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "573001234567", u.Telefono)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func testTime() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}
