package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/mms-api/internal/models"
	"github.com/noah-isme/mms-api/internal/token"
	appErrors "github.com/noah-isme/mms-api/pkg/errors"
)

type credentialStore interface {
	FindByUsername(ctx context.Context, username string) (*models.SysUser, error)
	UpdateLastLogin(ctx context.Context, id int64, ts time.Time, ip string) error
}

type revocationStore interface {
	Revoke(ctx context.Context, jti string, tokenType token.Type, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type sessionStore interface {
	SetActiveRefresh(ctx context.Context, username, jti string, ttl time.Duration) error
	ReplaceActiveRefresh(ctx context.Context, username, oldJTI, newJTI string, ttl time.Duration) (bool, error)
	GetActiveRefresh(ctx context.Context, username string) (string, error)
	Clear(ctx context.Context, username string) error
}

type loginThrottle interface {
	RecordFailure(ctx context.Context, username string) (int, error)
	Reset(ctx context.Context, username string) error
	Lock(ctx context.Context, username string, duration time.Duration) error
	IsLocked(ctx context.Context, username string) (bool, error)
	RemainingLockSeconds(ctx context.Context, username string) (int64, error)
	Unlock(ctx context.Context, username string) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	MaxLoginAttempts   int
	LockDuration       time.Duration
}

// AuthService orchestrates login, refresh and logout over the shared stores.
// Per-user session state never lives in process memory, so any instance can
// serve any request.
type AuthService struct {
	users       credentialStore
	revocations revocationStore
	sessions    sessionStore
	throttle    loginThrottle
	codec       *token.Codec
	tokens      *TokenValidator
	validate    *validator.Validate
	logger      *zap.Logger
	config      AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(
	users credentialStore,
	revocations revocationStore,
	sessions sessionStore,
	throttle loginThrottle,
	codec *token.Codec,
	tokens *TokenValidator,
	validate *validator.Validate,
	logger *zap.Logger,
	config AuthConfig,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{
		users:       users,
		revocations: revocations,
		sessions:    sessions,
		throttle:    throttle,
		codec:       codec,
		tokens:      tokens,
		validate:    validate,
		logger:      logger,
		config:      config,
	}
}

// Login authenticates a user and returns a fresh token pair. A successful
// login installs the new refresh jti as the single active session, which
// orphans whatever refresh token the previous session held.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.TokenPairResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	locked, err := s.throttle.IsLocked(ctx, req.Username)
	if err != nil {
		return nil, s.internal(err, "lock lookup failed")
	}
	if locked {
		remaining, err := s.throttle.RemainingLockSeconds(ctx, req.Username)
		if err != nil {
			return nil, s.internal(err, "lock ttl lookup failed")
		}
		return nil, appErrors.Clone(appErrors.ErrAccountLocked,
			fmt.Sprintf("account is locked, retry in %d seconds", remaining))
	}

	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.handleLoginFailure(ctx, req.Username)
		}
		return nil, s.internal(err, "failed to fetch user")
	}

	if !user.Enabled {
		return nil, appErrors.ErrAccountDisabled
	}
	if user.Locked {
		return nil, appErrors.ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, s.handleLoginFailure(ctx, req.Username)
	}

	if err := s.throttle.Reset(ctx, req.Username); err != nil {
		s.logger.Warn("failed to reset login attempts", zap.String("username", req.Username), zap.Error(err))
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, time.Now().UTC(), req.IP); err != nil {
		s.logger.Warn("failed to update last login", zap.String("username", req.Username), zap.Error(err))
	}

	return s.issuePair(ctx, req.Username, "")
}

// Refresh rotates a refresh token into a new access/refresh pair. The old
// refresh token is blacklisted and the session pointer swapped atomically;
// a concurrent refresh or newer login makes this call fail with
// SESSION_SUPERSEDED.
func (s *AuthService) Refresh(ctx context.Context, req models.RefreshRequest) (*models.TokenPairResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid refresh payload")
	}

	claims, err := s.tokens.Validate(ctx, req.RefreshToken, token.TypeRefresh)
	if err != nil {
		return nil, err
	}

	current, err := s.sessions.GetActiveRefresh(ctx, claims.Subject())
	if err != nil {
		return nil, s.internal(err, "session lookup failed")
	}
	if current == "" || current != claims.ID {
		return nil, appErrors.ErrSessionSuperseded
	}

	// Blacklist the consumed token. The session swap below already blocks
	// reuse; this keeps the jti dead even if the session key is rewritten.
	if err := s.revocations.Revoke(ctx, claims.ID, token.TypeRefresh, claims.ExpiresAt.Time); err != nil {
		s.logger.Warn("failed to revoke rotated refresh token", zap.String("jti", claims.ID), zap.Error(err))
	}

	return s.issuePair(ctx, claims.Subject(), claims.ID)
}

// Logout invalidates the session: the gateway-propagated access token (when
// available), the refresh token, and the active-session pointer. A repeat
// call with the already-revoked refresh token succeeds.
func (s *AuthService) Logout(ctx context.Context, req models.LogoutRequest, accessMeta *models.AccessTokenMeta) error {
	if err := s.validate.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid logout payload")
	}

	if accessMeta != nil && accessMeta.JTI != "" && accessMeta.ExpiresAtMillis > 0 {
		expiresAt := time.UnixMilli(accessMeta.ExpiresAtMillis)
		if err := s.revocations.Revoke(ctx, accessMeta.JTI, token.TypeAccess, expiresAt); err != nil {
			return s.internal(err, "failed to revoke access token")
		}
	}

	claims, err := s.tokens.Validate(ctx, req.RefreshToken, token.TypeRefresh)
	if err != nil {
		// A second logout arrives with an already-revoked refresh token;
		// the session is gone, so report success.
		if appErrors.Is(err, appErrors.ErrTokenRevoked) {
			return nil
		}
		return err
	}

	if err := s.revocations.Revoke(ctx, claims.ID, token.TypeRefresh, claims.ExpiresAt.Time); err != nil {
		return s.internal(err, "failed to revoke refresh token")
	}

	if err := s.sessions.Clear(ctx, claims.Subject()); err != nil {
		return s.internal(err, "failed to clear session")
	}

	return nil
}

// Unlock clears the lock marker and failure counter for a username. Admin
// operation; the account-level locked flag in the database is untouched.
func (s *AuthService) Unlock(ctx context.Context, username string) error {
	if username == "" {
		return appErrors.Clone(appErrors.ErrValidation, "username required")
	}
	if err := s.throttle.Unlock(ctx, username); err != nil {
		return s.internal(err, "failed to unlock account")
	}
	return nil
}

// issuePair mints a new access/refresh pair and installs the refresh jti as
// the active session. When rotating (oldRefreshJTI set) the install is a
// compare-and-swap so only one of two racing refreshes wins.
func (s *AuthService) issuePair(ctx context.Context, username, oldRefreshJTI string) (*models.TokenPairResponse, error) {
	access, err := s.codec.Issue(username, token.TypeAccess, s.config.AccessTokenExpiry)
	if err != nil {
		return nil, err
	}

	refresh, err := s.codec.Issue(username, token.TypeRefresh, s.config.RefreshTokenExpiry)
	if err != nil {
		return nil, err
	}

	if oldRefreshJTI == "" {
		if err := s.sessions.SetActiveRefresh(ctx, username, refresh.JTI, s.config.RefreshTokenExpiry); err != nil {
			return nil, s.internal(err, "failed to store session")
		}
	} else {
		swapped, err := s.sessions.ReplaceActiveRefresh(ctx, username, oldRefreshJTI, refresh.JTI, s.config.RefreshTokenExpiry)
		if err != nil {
			return nil, s.internal(err, "failed to rotate session")
		}
		if !swapped {
			return nil, appErrors.ErrSessionSuperseded
		}
	}

	return &models.TokenPairResponse{
		AccessToken:      access.Signed,
		RefreshToken:     refresh.Signed,
		AccessExpiresIn:  int64(s.config.AccessTokenExpiry.Seconds()),
		RefreshExpiresIn: int64(s.config.RefreshTokenExpiry.Seconds()),
	}, nil
}

// handleLoginFailure counts the failure and either locks the account or
// reports the remaining attempts. Missing users and wrong passwords share
// the same message.
func (s *AuthService) handleLoginFailure(ctx context.Context, username string) error {
	count, err := s.throttle.RecordFailure(ctx, username)
	if err != nil {
		return s.internal(err, "failed to record login failure")
	}

	if count >= s.config.MaxLoginAttempts {
		if err := s.throttle.Lock(ctx, username, s.config.LockDuration); err != nil {
			return s.internal(err, "failed to lock account")
		}
		return appErrors.Clone(appErrors.ErrAccountLocked,
			fmt.Sprintf("too many failed logins, account locked for %d minutes", int(s.config.LockDuration.Minutes())))
	}

	remaining := s.config.MaxLoginAttempts - count
	return appErrors.Clone(appErrors.ErrInvalidCredentials,
		fmt.Sprintf("invalid username or password, %d attempts remaining", remaining))
}

func (s *AuthService) internal(err error, message string) error {
	s.logger.Error(message, zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
}
