package mysql

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rumera-ai/rumera/internal/domain/history"
	"github.com/rumera-ai/rumera/internal/domain/user"
)

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(user.ID("u1"), "Ana", "ana@example.com", "hash", sqlmock.AnyArg()).
		WillReturnError(&gomysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err = NewUserRepository(db).Create(context.Background(), &user.User{
		ID: "u1", Name: "Ana", Email: "ana@example.com", PasswordHash: "hash",
	})
	assert.ErrorIs(t, err, user.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery("SELECT id, name, email, password_hash, created_at FROM users WHERE email=").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at"}).
			AddRow("u1", "Ana", "ana@example.com", "hash", created))
	mock.ExpectQuery("FROM users WHERE email=").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at"}))

	repo := NewUserRepository(db)
	u, err := repo.GetByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID("u1"), u.ID)
	assert.Equal(t, created, u.CreatedAt)

	_, err = repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, user.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_TimeoutIsUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM users WHERE id=").WillReturnError(context.DeadlineExceeded)

	_, err = NewUserRepository(db).GetByID(context.Background(), "u1")
	assert.ErrorIs(t, err, user.ErrStoreUnavailable)
}

func TestHistoryRepository_SaveDefaultsEmptyResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO analysis_history").
		WithArgs(history.EntryID("h1"), "u1", "text", 20, "Suspicious", "hi", "", "{}", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewHistoryRepository(db).Save(context.Background(), &history.Entry{
		ID: "h1", UserID: "u1", Modality: "text", TrustScore: 20, Classification: "Suspicious", Summary: "hi",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRepository_Paginate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ts := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	cols := []string{"id", "user_id", "modality", "trust_score", "classification", "summary", "archive_url", "result_json", "created_at"}
	mock.ExpectQuery("FROM analysis_history").
		WithArgs("u1", 10, 10).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("h2", "u1", "image", 80, "Likely Authentic", "cat.png", "", `{"trust_score":80}`, ts).
			AddRow("h1", "u1", "text", 50, "Mixed", "hello", "", `{"trust_score":50}`, ts.Add(-time.Hour)))

	out, err := NewHistoryRepository(db).Paginate(context.Background(), "u1", 2, 10)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, history.EntryID("h2"), out[0].ID)
	assert.Equal(t, "image", out[0].Modality)
	assert.JSONEq(t, `{"trust_score":50}`, out[1].Result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRepository_DeleteMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM analysis_history").
		WithArgs(history.EntryID("nope"), "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewHistoryRepository(db).Delete(context.Background(), "u1", "nope")
	assert.ErrorIs(t, err, history.ErrNotFound)
}

func TestStoreErr(t *testing.T) {
	assert.Nil(t, storeErr(nil, user.ErrStoreUnavailable))
	assert.ErrorIs(t, storeErr(driver.ErrBadConn, user.ErrStoreUnavailable), user.ErrStoreUnavailable)
	assert.ErrorIs(t, storeErr(context.DeadlineExceeded, user.ErrStoreUnavailable), user.ErrStoreUnavailable)
	assert.ErrorIs(t, storeErr(gomysql.ErrInvalidConn, user.ErrStoreUnavailable), user.ErrStoreUnavailable)
	assert.NotErrorIs(t, storeErr(assert.AnError, user.ErrStoreUnavailable), user.ErrStoreUnavailable)
}

func TestHistoryRepository_OutageIsHistoryUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM analysis_history").
		WithArgs("u1", 20, 0).
		WillReturnError(context.DeadlineExceeded)

	_, err = NewHistoryRepository(db).Paginate(context.Background(), "u1", 1, 20)
	assert.ErrorIs(t, err, history.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, user.ErrStoreUnavailable)
}
