package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupLineConnRepo(t *testing.T) (*LineConnectionRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewLineConnectionRepository(db, zap.NewNop())
	return repo, mock, func() { db.Close() }
}

func TestSaveConnection(t *testing.T) {
	repo, mock, cleanup := setupLineConnRepo(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE line_users`).
		WithArgs("p-1", "m-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(`INSERT INTO line_users`).
		WithArgs(sqlmock.AnyArg(), "p-1", "m-1", "U1234567890abcdef1234567890abcdef", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	conn, err := repo.SaveConnection(context.Background(), "p-1", "m-1", "U1234567890abcdef1234567890abcdef")
	require.NoError(t, err)

	assert.NotEmpty(t, conn.ConnectionID)
	assert.Equal(t, "p-1", conn.PatientID)
	assert.Equal(t, "m-1", conn.CareTeamMemberID)
	assert.True(t, conn.IsActive)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveConnection_MissingFields(t *testing.T) {
	repo, _, cleanup := setupLineConnRepo(t)
	defer cleanup()

	_, err := repo.SaveConnection(context.Background(), "", "m-1", "U123")
	assert.Error(t, err)

	_, err = repo.SaveConnection(context.Background(), "p-1", "", "U123")
	assert.Error(t, err)

	_, err = repo.SaveConnection(context.Background(), "p-1", "m-1", "")
	assert.Error(t, err)
}

func TestCheckConnection(t *testing.T) {
	repo, mock, cleanup := setupLineConnRepo(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("p-1", "m-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.CheckConnection(context.Background(), "p-1", "m-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCheckConnection_EmptyArgs(t *testing.T) {
	repo, _, cleanup := setupLineConnRepo(t)
	defer cleanup()

	exists, err := repo.CheckConnection(context.Background(), "", "m-1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGetActiveConnections(t *testing.T) {
	repo, mock, cleanup := setupLineConnRepo(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{
		"connection_id", "patient_id", "care_team_member_id", "line_user_id", "is_active", "connected_at",
	}).
		AddRow("c-1", "p-1", "m-1", "Uaaa", true, time.Now()).
		AddRow("c-2", "p-1", "m-2", "Ubbb", true, time.Now())

	mock.ExpectQuery(`SELECT(.+)FROM line_users`).
		WithArgs("p-1").
		WillReturnRows(rows)

	conns, err := repo.GetActiveConnections(context.Background(), "p-1")
	require.NoError(t, err)
	require.Len(t, conns, 2)
	assert.Equal(t, "Uaaa", conns[0].LineUserID)
}
