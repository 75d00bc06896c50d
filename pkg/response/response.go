package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mms-api/internal/models"
	appErrors "github.com/noah-isme/mms-api/pkg/errors"
	"github.com/noah-isme/mms-api/pkg/middleware/traceid"
)

// Envelope represents the common response contract returned by the gateway
// and every business service. TraceID is echoed on all responses so a client
// error can be correlated with the edge logs.
type Envelope struct {
	Data       interface{}        `json:"data,omitempty"`
	Error      *appErrors.Error   `json:"error,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
	TraceID    string             `json:"trace_id,omitempty"`
}

// JSON sends a success response with optional pagination metadata.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, Envelope{Data: data, Pagination: pagination, TraceID: traceid.Value(c)})
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Envelope{Error: appErr, TraceID: traceid.Value(c)})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
