package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupCareTeamRepo(t *testing.T) (*CareTeamRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewCareTeamRepository(db, zap.NewNop())
	return repo, mock, func() { db.Close() }
}

func memberColumns() []string {
	return []string{
		"member_id", "patient_id", "name", "email", "phone", "role",
		"email_notifications_enabled", "line_notifications_enabled", "created_at",
	}
}

func TestResolveEmailRecipients(t *testing.T) {
	repo, mock, cleanup := setupCareTeamRepo(t)
	defer cleanup()

	now := time.Now()
	rows := sqlmock.NewRows(memberColumns()).
		AddRow("m-1", "p-1", "สมหญิง", "somying@example.com", "0812345678", "family", true, false, now).
		AddRow("m-2", "p-1", "Dr. Smith", "smith@hospital.th", nil, "doctor", true, true, now)

	mock.ExpectQuery(`SELECT(.+)FROM care_team`).
		WithArgs("p-1").
		WillReturnRows(rows)

	members, err := repo.ResolveEmailRecipients(context.Background(), "p-1")
	require.NoError(t, err)
	require.Len(t, members, 2)

	assert.Equal(t, "สมหญิง", members[0].Name)
	assert.Equal(t, "somying@example.com", members[0].Email)
	require.NotNil(t, members[0].Phone)
	assert.Equal(t, "0812345678", *members[0].Phone)

	assert.Equal(t, "doctor", string(members[1].Role))
	assert.Nil(t, members[1].Phone)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveEmailRecipients_Empty(t *testing.T) {
	repo, mock, cleanup := setupCareTeamRepo(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT(.+)FROM care_team`).
		WithArgs("p-unknown").
		WillReturnRows(sqlmock.NewRows(memberColumns()))

	members, err := repo.ResolveEmailRecipients(context.Background(), "p-unknown")
	require.NoError(t, err)
	assert.Empty(t, members)
	assert.NotNil(t, members)
}

func TestResolveEmailRecipients_EmptyPatientID(t *testing.T) {
	repo, _, cleanup := setupCareTeamRepo(t)
	defer cleanup()

	members, err := repo.ResolveEmailRecipients(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestResolveEmailRecipients_QueryError(t *testing.T) {
	repo, mock, cleanup := setupCareTeamRepo(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT(.+)FROM care_team`).
		WithArgs("p-1").
		WillReturnError(fmt.Errorf("connection refused"))

	_, err := repo.ResolveEmailRecipients(context.Background(), "p-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query email recipients")
}

func TestResolveLineRecipients(t *testing.T) {
	repo, mock, cleanup := setupCareTeamRepo(t)
	defer cleanup()

	now := time.Now()
	cols := append(memberColumns(), "line_user_id")
	rows := sqlmock.NewRows(cols).
		AddRow("m-1", "p-1", "สมชาย", "somchai@example.com", nil, "caregiver", false, true, now,
			"U1234567890abcdef1234567890abcdef")

	mock.ExpectQuery(`SELECT(.+)JOIN line_users`).
		WithArgs("p-1").
		WillReturnRows(rows)

	members, err := repo.ResolveLineRecipients(context.Background(), "p-1")
	require.NoError(t, err)
	require.Len(t, members, 1)

	assert.Equal(t, "สมชาย", members[0].Name)
	assert.Equal(t, "U1234567890abcdef1234567890abcdef", members[0].LineUserID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveLineRecipients_EmptyPatientID(t *testing.T) {
	repo, _, cleanup := setupCareTeamRepo(t)
	defer cleanup()

	members, err := repo.ResolveLineRecipients(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, members)
}
