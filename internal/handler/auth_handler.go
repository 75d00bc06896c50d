package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mms-api/internal/audit"
	"github.com/noah-isme/mms-api/internal/middleware"
	"github.com/noah-isme/mms-api/internal/models"
	"github.com/noah-isme/mms-api/internal/service"
	appErrors "github.com/noah-isme/mms-api/pkg/errors"
	"github.com/noah-isme/mms-api/pkg/middleware/clientip"
	"github.com/noah-isme/mms-api/pkg/middleware/traceid"
	"github.com/noah-isme/mms-api/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.TokenPairResponse, error)
	Refresh(ctx context.Context, req models.RefreshRequest) (*models.TokenPairResponse, error)
	Logout(ctx context.Context, req models.LogoutRequest, accessMeta *models.AccessTokenMeta) error
	Unlock(ctx context.Context, username string) error
}

type auditRecorder interface {
	Record(event audit.Event) error
}

// AuthHandler wires the authentication endpoints to the auth service.
type AuthHandler struct {
	service authService
	metrics *service.MetricsService
	audit   auditRecorder
}

// NewAuthHandler creates a new handler. The audit recorder may be nil.
func NewAuthHandler(svc authService, metrics *service.MetricsService, recorder auditRecorder) *AuthHandler {
	return &AuthHandler{service: svc, metrics: metrics, audit: recorder}
}

// Login godoc
// @Summary Authenticate user
// @Description Authenticate by username and password, issuing an access/refresh token pair
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /usercenter/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	req.IP = clientip.Value(c)

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.observeLogin(err)
		h.recordLogin(c, req.Username, err)
		response.Error(c, err)
		return
	}

	h.observeLoginSuccess()
	h.recordLogin(c, req.Username, nil)
	response.JSON(c, http.StatusOK, res, nil)
}

// Refresh godoc
// @Summary Rotate token pair
// @Description Exchange a refresh token for a new access/refresh pair
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.RefreshRequest true "Refresh payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /usercenter/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid refresh payload"))
		return
	}

	res, err := h.service.Refresh(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Logout godoc
// @Summary Logout current session
// @Description Revoke the refresh token, the propagated access token and the active session
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LogoutRequest true "Logout payload"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /usercenter/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req models.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "refresh token required"))
		return
	}

	var meta *models.AccessTokenMeta
	if identity := middleware.IdentityFrom(c); identity != nil {
		meta = &models.AccessTokenMeta{JTI: identity.TokenID, ExpiresAtMillis: identity.ExpiresAtMillis}
	}

	if err := h.service.Logout(c.Request.Context(), req, meta); err != nil {
		response.Error(c, err)
		return
	}

	if identity := middleware.IdentityFrom(c); identity != nil {
		h.record(c, audit.Event{Username: identity.Username, Action: audit.ActionLogout})
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "logged out"}, nil)
}

// Unlock godoc
// @Summary Unlock an account
// @Description Clear the lock marker and failure counter for a username
// @Tags Authentication
// @Produce json
// @Param username path string true "Username"
// @Success 204 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /usercenter/auth/unlock/{username} [post]
func (h *AuthHandler) Unlock(c *gin.Context) {
	username := c.Param("username")
	if err := h.service.Unlock(c.Request.Context(), username); err != nil {
		response.Error(c, err)
		return
	}

	h.record(c, audit.Event{Username: username, Action: audit.ActionUnlock})
	response.NoContent(c)
}

// Me godoc
// @Summary Current identity
// @Description Returns the identity propagated by the gateway
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /usercenter/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"username":   identity.Username,
		"token_jti":  identity.TokenID,
		"expires_at": identity.ExpiresAtMillis,
	}, nil)
}

func (h *AuthHandler) observeLogin(err error) {
	if h.metrics == nil {
		return
	}
	switch appErrors.FromError(err).Code {
	case appErrors.ErrAccountLocked.Code:
		h.metrics.ObserveLogin("locked")
	case appErrors.ErrInvalidCredentials.Code, appErrors.ErrAccountDisabled.Code:
		h.metrics.ObserveLogin("invalid")
	default:
		h.metrics.ObserveLogin("error")
	}
}

func (h *AuthHandler) observeLoginSuccess() {
	if h.metrics != nil {
		h.metrics.ObserveLogin("success")
	}
}

func (h *AuthHandler) recordLogin(c *gin.Context, username string, err error) {
	event := audit.Event{Username: username, Action: audit.ActionLoginSuccess}
	if err != nil {
		appErr := appErrors.FromError(err)
		event.Detail = appErr.Message
		switch appErr.Code {
		case appErrors.ErrAccountLocked.Code:
			event.Action = audit.ActionLoginLocked
		default:
			event.Action = audit.ActionLoginFailure
		}
	}
	h.record(c, event)
}

// record fills in request context fields and queues the event. Audit is
// best effort; a full buffer or stopped recorder never fails the request.
func (h *AuthHandler) record(c *gin.Context, event audit.Event) {
	if h.audit == nil {
		return
	}
	event.IP = clientip.Value(c)
	event.TraceID = traceid.Value(c)
	_ = h.audit.Record(event)
}
