package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/mms-api/internal/models"
)

// DictRepository provides read access to the system dictionary tables served
// by the base service.
type DictRepository struct {
	db *sqlx.DB
}

// NewDictRepository creates a new instance of DictRepository.
func NewDictRepository(db *sqlx.DB) *DictRepository {
	return &DictRepository{db: db}
}

// ListTypes returns a page of dictionary types plus the total count.
func (r *DictRepository) ListTypes(ctx context.Context, filter models.DictTypeFilter) ([]models.DictType, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR code ILIKE $%d)", len(args), len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM sys_dict_types WHERE " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count dict types: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	args = append(args, pageSize, (page-1)*pageSize)

	listQuery := fmt.Sprintf(
		"SELECT id, name, code, status, remark, created_at, updated_at FROM sys_dict_types WHERE %s ORDER BY id LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args),
	)

	types := []models.DictType{}
	if err := r.db.SelectContext(ctx, &types, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list dict types: %w", err)
	}

	return types, total, nil
}

// FindDataByTypeCode returns the enabled entries of a dictionary type in sort
// order.
func (r *DictRepository) FindDataByTypeCode(ctx context.Context, typeCode string) ([]models.DictData, error) {
	const query = `SELECT id, type_code, label, value, sort, status, created_at, updated_at FROM sys_dict_data WHERE type_code = $1 AND status = 1 ORDER BY sort, id`
	data := []models.DictData{}
	if err := r.db.SelectContext(ctx, &data, query, typeCode); err != nil {
		if err == sql.ErrNoRows {
			return data, nil
		}
		return nil, fmt.Errorf("find dict data by type: %w", err)
	}
	return data, nil
}
