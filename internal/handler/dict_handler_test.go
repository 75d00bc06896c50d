package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mms-api/internal/models"
	appErrors "github.com/noah-isme/mms-api/pkg/errors"
)

type dictServiceMock struct {
	types      []models.DictType
	typesErr   error
	data       []models.DictData
	dataErr    error
	lastFilter models.DictTypeFilter
	lastCode   string
}

func (m *dictServiceMock) ListTypes(ctx context.Context, filter models.DictTypeFilter) ([]models.DictType, *models.Pagination, error) {
	m.lastFilter = filter
	if m.typesErr != nil {
		return nil, nil, m.typesErr
	}
	return m.types, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: len(m.types)}, nil
}

func (m *dictServiceMock) DataByTypeCode(ctx context.Context, typeCode string) ([]models.DictData, error) {
	m.lastCode = typeCode
	return m.data, m.dataErr
}

func TestDictHandlerListTypes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &dictServiceMock{types: []models.DictType{{ID: 1, Code: "user_status"}}}
	handler := NewDictHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/base/dict/types?search=user&status=1&page=2&page_size=10", nil)
	c.Request = req

	handler.ListTypes(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user", mockSvc.lastFilter.Search)
	require.NotNil(t, mockSvc.lastFilter.Status)
	assert.Equal(t, 1, *mockSvc.lastFilter.Status)
	assert.Equal(t, 2, mockSvc.lastFilter.Page)
	assert.Equal(t, 10, mockSvc.lastFilter.PageSize)
}

func TestDictHandlerListTypesDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &dictServiceMock{}
	handler := NewDictHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/base/dict/types", nil)
	c.Request = req

	handler.ListTypes(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, mockSvc.lastFilter.Page)
	assert.Equal(t, 20, mockSvc.lastFilter.PageSize)
	assert.Nil(t, mockSvc.lastFilter.Status)
}

func TestDictHandlerData(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &dictServiceMock{data: []models.DictData{{Label: "Enabled", Value: "1"}}}
	handler := NewDictHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/base/dict/data/user_status", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "typeCode", Value: "user_status"}}

	handler.Data(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user_status", mockSvc.lastCode)
	assert.Contains(t, w.Body.String(), "Enabled")
}

func TestDictHandlerDataError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &dictServiceMock{dataErr: appErrors.ErrInternal}
	handler := NewDictHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/base/dict/data/user_status", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "typeCode", Value: "user_status"}}

	handler.Data(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
