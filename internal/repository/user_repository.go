package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/mms-api/internal/models"
)

// UserRepository provides database access to accounts. The auth flow only
// reads credentials and status flags; user management owns the rest. Every
// query carries a bounded timeout so a stalled database fails the login
// instead of hanging it.
type UserRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB, timeout time.Duration) *UserRepository {
	return &UserRepository{db: db, timeout: timeout}
}

// FindByUsername returns the account for a username. last_login_ip is NULL
// until the first successful login.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.SysUser, error) {
	const query = `SELECT id, username, password_hash, enabled, locked, last_login_time, COALESCE(last_login_ip, '') AS last_login_ip, created_at, updated_at FROM sys_users WHERE username = $1 LIMIT 1`

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var user models.SysUser
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return &user, nil
}

// UpdateLastLogin records the timestamp and client IP of a successful login.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64, ts time.Time, ip string) error {
	const query = `UPDATE sys_users SET last_login_time = $2, last_login_ip = $3, updated_at = $2 WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, query, id, ts, ip); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}
