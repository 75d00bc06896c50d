package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/mms-api/internal/audit"
)

// LoginAuditRepository persists authentication audit events.
type LoginAuditRepository struct {
	db *sqlx.DB
}

// NewLoginAuditRepository creates a new instance of LoginAuditRepository.
func NewLoginAuditRepository(db *sqlx.DB) *LoginAuditRepository {
	return &LoginAuditRepository{db: db}
}

// Write inserts a single audit event.
func (r *LoginAuditRepository) Write(ctx context.Context, event audit.Event) error {
	const query = `INSERT INTO sys_login_audit (username, action, ip, trace_id, detail, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(ctx, query,
		event.Username, event.Action, event.IP, event.TraceID, event.Detail, event.At); err != nil {
		return fmt.Errorf("insert login audit: %w", err)
	}
	return nil
}
