package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mms-api/internal/models"
	"github.com/noah-isme/mms-api/pkg/response"
)

type dictService interface {
	ListTypes(ctx context.Context, filter models.DictTypeFilter) ([]models.DictType, *models.Pagination, error)
	DataByTypeCode(ctx context.Context, typeCode string) ([]models.DictData, error)
}

// DictHandler exposes the system dictionary read API of the base service.
type DictHandler struct {
	service dictService
}

// NewDictHandler creates a new handler.
func NewDictHandler(svc dictService) *DictHandler {
	return &DictHandler{service: svc}
}

// ListTypes godoc
// @Summary List dictionary types
// @Tags Dictionary
// @Produce json
// @Param search query string false "Name or code search"
// @Param status query int false "Status filter"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /base/dict/types [get]
func (h *DictHandler) ListTypes(c *gin.Context) {
	filter := models.DictTypeFilter{
		Search:   c.Query("search"),
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "page_size", 20),
	}
	if raw := c.Query("status"); raw != "" {
		if status, err := strconv.Atoi(raw); err == nil {
			filter.Status = &status
		}
	}

	types, pagination, err := h.service.ListTypes(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, types, pagination)
}

// Data godoc
// @Summary List entries of a dictionary type
// @Tags Dictionary
// @Produce json
// @Param typeCode path string true "Dictionary type code"
// @Success 200 {object} response.Envelope
// @Router /base/dict/data/{typeCode} [get]
func (h *DictHandler) Data(c *gin.Context) {
	data, err := h.service.DataByTypeCode(c.Request.Context(), c.Param("typeCode"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, data, nil)
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
