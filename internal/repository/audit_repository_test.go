package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mms-api/internal/audit"
)

func TestWriteLoginAudit(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLoginAuditRepository(db)

	at := time.Now().UTC()
	mock.ExpectExec("INSERT INTO sys_login_audit").
		WithArgs("alice", audit.ActionLoginSuccess, "10.0.0.7", "trace-1", "", at).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Write(context.Background(), audit.Event{
		Username: "alice",
		Action:   audit.ActionLoginSuccess,
		IP:       "10.0.0.7",
		TraceID:  "trace-1",
		At:       at,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
