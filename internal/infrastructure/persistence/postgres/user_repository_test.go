package postgres

import (
	"context"
	"testing"
	"time"

	dbpostgres "skillxintell/internal/database/postgres"
	"skillxintell/internal/domain/user"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateUserNormalizesEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewUserRepository(dbpostgres.Wrap(mock))

	u := user.User{ID: uuid.New(), Email: " Sam@Example.com ", PasswordHash: "hash", FullName: "Sam", Role: user.RoleStudent}
	mock.ExpectExec(`^INSERT INTO users`).
		WithArgs(u.ID, "sam@example.com", "hash", "Sam", "STUDENT").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.CreateUser(context.Background(), u))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateUserDuplicateEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewUserRepository(dbpostgres.Wrap(mock))

	mock.ExpectExec(`^INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err = repo.CreateUser(context.Background(), user.User{ID: uuid.New(), Email: "a@b.c", Role: user.RoleStudent})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserRepository_GetUserByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewUserRepository(dbpostgres.Wrap(mock))

	id := uuid.New()
	now := time.Now()
	cols := []string{"id", "email", "password_hash", "full_name", "role", "created_at", "updated_at"}
	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("rina@example.com").
		WillReturnRows(pgxmock.NewRows(cols).AddRow(id, "rina@example.com", "hash", "Dr. Rina", "EDUCATOR", now, now))
	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("nobody@example.com").
		WillReturnRows(pgxmock.NewRows(cols))

	u, err := repo.GetUserByEmail(context.Background(), "Rina@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, user.RoleEducator, u.Role)

	_, err = repo.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, user.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_DeleteUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewUserRepository(dbpostgres.Wrap(mock))

	id := uuid.New()
	mock.ExpectExec(`^DELETE FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`^DELETE FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.DeleteUser(context.Background(), id))
	assert.ErrorIs(t, repo.DeleteUser(context.Background(), id), user.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
