package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mms-api/internal/models"
)

func TestListDictTypes(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDictRepository(db)

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sys_dict_types WHERE 1=1")).
		WillReturnRows(countRows)

	now := time.Now()
	listRows := sqlmock.NewRows([]string{"id", "name", "code", "status", "remark", "created_at", "updated_at"}).
		AddRow(int64(1), "User Status", "user_status", 1, "", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, code, status, remark, created_at, updated_at FROM sys_dict_types WHERE 1=1 ORDER BY id LIMIT $1 OFFSET $2")).
		WithArgs(20, 0).
		WillReturnRows(listRows)

	types, total, err := repo.ListTypes(context.Background(), models.DictTypeFilter{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Len(t, types, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "user_status", types[0].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListDictTypesWithFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDictRepository(db)

	status := 1
	countRows := sqlmock.NewRows([]string{"count"}).AddRow(0)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sys_dict_types WHERE 1=1 AND (name ILIKE $1 OR code ILIKE $1) AND status = $2")).
		WithArgs("%user%", status).
		WillReturnRows(countRows)

	listRows := sqlmock.NewRows([]string{"id", "name", "code", "status", "remark", "created_at", "updated_at"})
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, code, status, remark, created_at, updated_at FROM sys_dict_types WHERE 1=1 AND (name ILIKE $1 OR code ILIKE $1) AND status = $2 ORDER BY id LIMIT $3 OFFSET $4")).
		WithArgs("%user%", status, 10, 10).
		WillReturnRows(listRows)

	types, total, err := repo.ListTypes(context.Background(), models.DictTypeFilter{
		Search: "user", Status: &status, Page: 2, PageSize: 10,
	})
	require.NoError(t, err)
	assert.Empty(t, types)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindDataByTypeCode(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDictRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "type_code", "label", "value", "sort", "status", "created_at", "updated_at"}).
		AddRow(int64(1), "user_status", "Enabled", "1", 1, 1, now, now).
		AddRow(int64(2), "user_status", "Disabled", "0", 2, 1, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, type_code, label, value, sort, status, created_at, updated_at FROM sys_dict_data WHERE type_code = $1 AND status = 1 ORDER BY sort, id")).
		WithArgs("user_status").
		WillReturnRows(rows)

	data, err := repo.FindDataByTypeCode(context.Background(), "user_status")
	require.NoError(t, err)
	require.Len(t, data, 2)
	assert.Equal(t, "Enabled", data[0].Label)
	assert.NoError(t, mock.ExpectationsWereMet())
}
