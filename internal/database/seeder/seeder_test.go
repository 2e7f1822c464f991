package seeder

import (
	"context"
	"errors"
	"testing"

	"skillxintell/internal/database/postgres"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectColumns(mock pgxmock.PgxPoolIface, table string, cols ...string) {
	rows := pgxmock.NewRows([]string{"column_name"})
	for _, c := range cols {
		rows.AddRow(c)
	}
	mock.ExpectQuery("information_schema.columns").WithArgs(table).WillReturnRows(rows)
}

func TestEnsureTableColumnsReportsMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	expectColumns(mock, "skills", "id", "name")

	err = EnsureTableColumns(context.Background(), postgres.Wrap(mock), "skills", "id", "sector")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "skills.sector")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersSeederIsIdempotentInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	expectColumns(mock, "users", "id", "email", "password_hash", "full_name", "role", "created_at")
	expectColumns(mock, "mentor_profiles", "user_id", "is_approved", "sectors", "bio")
	mock.ExpectBegin()
	for _, u := range demoUsers {
		mock.ExpectExec("INSERT INTO users .* ON CONFLICT \\(email\\) DO NOTHING").
			WithArgs(DemoUserID(u.Email), u.Email, pgxmock.AnyArg(), u.FullName, u.Role).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		if u.Mentor != nil {
			mock.ExpectExec("INSERT INTO mentor_profiles .* ON CONFLICT \\(user_id\\) DO NOTHING").
				WithArgs(DemoUserID(u.Email), u.Mentor.Approved, u.Mentor.Sectors, u.Mentor.Bio).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))
		}
	}
	mock.ExpectCommit()

	require.NoError(t, UsersSeeder{}.Run(context.Background(), postgres.Wrap(mock)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunnerStopsOnFirstFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("information_schema.columns").WithArgs("users").WillReturnError(errors.New("down"))

	err = Runner{Seeders: Defaults()}.Run(context.Background(), postgres.Wrap(mock))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed users")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDemoUserIDIsStable(t *testing.T) {
	assert.Equal(t, DemoUserID("student@skillx.dev"), DemoUserID("student@skillx.dev"))
	assert.NotEqual(t, DemoUserID("student@skillx.dev"), DemoUserID("employee@skillx.dev"))
}
