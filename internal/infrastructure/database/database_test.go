package database

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"restpki-batch/internal/config"
)

func TestMigrateRunsEveryStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range migrations {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, New(db, zap.NewNop()).Migrate())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateStopsOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS api_logs").WillReturnError(errors.New("permission denied"))

	err = New(db, zap.NewNop()).Migrate()
	require.ErrorContains(t, err, "api_logs table")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewDatabaseDisabled(t *testing.T) {
	db, err := NewDatabase(fxtest.NewLifecycle(t), &config.Config{}, zap.NewNop())
	require.NoError(t, err)
	require.Nil(t, db)
}
