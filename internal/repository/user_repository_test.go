package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

const findByUsernameQuery = `SELECT id, username, password_hash, enabled, locked, last_login_time, COALESCE(last_login_ip, '') AS last_login_ip, created_at, updated_at FROM sys_users WHERE username = $1 LIMIT 1`

func userColumns() []string {
	return []string{"id", "username", "password_hash", "enabled", "locked", "last_login_time", "last_login_ip", "created_at", "updated_at"}
}

func TestFindByUsername(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db, time.Second)

	now := time.Now()
	rows := sqlmock.NewRows(userColumns()).
		AddRow(int64(1), "alice", "hash", true, false, now, "10.0.0.7", now, now)
	mock.ExpectQuery(regexp.QuoteMeta(findByUsernameQuery)).
		WithArgs("alice").
		WillReturnRows(rows)

	user, err := repo.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, user.Enabled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByUsernameBeforeFirstLogin(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db, time.Second)

	// A fresh account has NULL last_login_time and last_login_ip; the query
	// coalesces the IP so the scan stays a plain string.
	now := time.Now()
	rows := sqlmock.NewRows(userColumns()).
		AddRow(int64(2), "dave", "hash", true, false, nil, "", now, now)
	mock.ExpectQuery(regexp.QuoteMeta(findByUsernameQuery)).
		WithArgs("dave").
		WillReturnRows(rows)

	user, err := repo.FindByUsername(context.Background(), "dave")
	require.NoError(t, err)
	assert.Nil(t, user.LastLoginTime)
	assert.Empty(t, user.LastLoginIP)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByUsernameNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db, time.Second)

	mock.ExpectQuery("SELECT .+ FROM sys_users").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByUsernameTimesOut(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db, 20*time.Millisecond)

	rows := sqlmock.NewRows(userColumns())
	mock.ExpectQuery("SELECT .+ FROM sys_users").
		WithArgs("alice").
		WillDelayFor(500 * time.Millisecond).
		WillReturnRows(rows)

	_, err := repo.FindByUsername(context.Background(), "alice")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestUpdateLastLogin(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db, time.Second)

	ts := time.Now().UTC()
	mock.ExpectExec("UPDATE sys_users SET last_login_time").
		WithArgs(int64(1), ts, "10.0.0.7").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateLastLogin(context.Background(), 1, ts, "10.0.0.7")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
