package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/mms-api/internal/models"
	appErrors "github.com/noah-isme/mms-api/pkg/errors"
)

type dictRepository interface {
	ListTypes(ctx context.Context, filter models.DictTypeFilter) ([]models.DictType, int, error)
	FindDataByTypeCode(ctx context.Context, typeCode string) ([]models.DictData, error)
}

// DictService serves the system dictionary read API of the base service.
type DictService struct {
	repo   dictRepository
	logger *zap.Logger
}

// NewDictService constructs a DictService instance.
func NewDictService(repo dictRepository, logger *zap.Logger) *DictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DictService{repo: repo, logger: logger}
}

// ListTypes returns a page of dictionary types with pagination metadata.
func (s *DictService) ListTypes(ctx context.Context, filter models.DictTypeFilter) ([]models.DictType, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 200 {
		filter.PageSize = 20
	}

	types, total, err := s.repo.ListTypes(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list dict types", zap.Error(err))
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}

	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return types, pagination, nil
}

// DataByTypeCode returns the enabled entries of one dictionary type.
func (s *DictService) DataByTypeCode(ctx context.Context, typeCode string) ([]models.DictData, error) {
	if typeCode == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "type code required")
	}

	data, err := s.repo.FindDataByTypeCode(ctx, typeCode)
	if err != nil {
		s.logger.Error("failed to load dict data", zap.String("type_code", typeCode), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}

	return data, nil
}
