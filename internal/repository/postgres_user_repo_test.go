package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/hitoshi/staffbook/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "name", "email", "password_hash", "created_at", "updated_at"}

func TestPostgresUserRepo_Create(t *testing.T) {
	t.Parallel()
	mock := newEmployeeMock(t)

	mock.ExpectExec(regexp.QuoteMeta(insertUserQuery)).
		WithArgs(pgxmock.AnyArg(), "Ann", "ann@x.io", "hash", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewPostgresUserRepo(mock, nil)
	user := &model.User{Name: "Ann", Email: "ann@x.io", PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.True(t, isUUID(user.ID))
	require.NoError(t, mock.ExpectationsWereMet())
}

// 一意制約違反はErrDuplicateEmailに変換される
func TestPostgresUserRepo_Create_DuplicateEmail(t *testing.T) {
	t.Parallel()
	mock := newEmployeeMock(t)

	mock.ExpectExec(regexp.QuoteMeta(insertUserQuery)).
		WithArgs(pgxmock.AnyArg(), "Ann", "ann@x.io", "", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	repo := NewPostgresUserRepo(mock, nil)
	err := repo.Create(context.Background(), &model.User{Name: "Ann", Email: "ann@x.io"})

	require.ErrorIs(t, err, ErrDuplicateEmail)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepo_FindByEmail(t *testing.T) {
	t.Parallel()
	mock := newEmployeeMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(selectUserByEmailQuery)).
		WithArgs("ANN@x.io").
		WillReturnRows(mock.NewRows(userColumns).
			AddRow(testEmployeeID, "Ann", "ann@x.io", "hash", now, now))

	repo := NewPostgresUserRepo(mock, nil)
	user, err := repo.FindByEmail(context.Background(), "ANN@x.io")

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "hash", user.PasswordHash)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepo_FindByEmail_NotFound(t *testing.T) {
	t.Parallel()
	mock := newEmployeeMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectUserByEmailQuery)).
		WithArgs("nobody@x.io").
		WillReturnRows(mock.NewRows(userColumns))

	repo := NewPostgresUserRepo(mock, nil)
	user, err := repo.FindByEmail(context.Background(), "nobody@x.io")

	require.NoError(t, err)
	assert.Nil(t, user)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepo_FindByID_QueryError(t *testing.T) {
	t.Parallel()
	mock := newEmployeeMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectUserByIDQuery)).
		WithArgs(testEmployeeID).
		WillReturnError(assert.AnError)

	repo := NewPostgresUserRepo(mock, nil)
	_, err := repo.FindByID(context.Background(), testEmployeeID)

	require.ErrorIs(t, err, assert.AnError)
	require.NoError(t, mock.ExpectationsWereMet())
}
