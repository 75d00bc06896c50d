package models

import "time"

// SysUser represents an account stored in the sys_users table. Only the
// fields the authentication flow consumes are mapped here; profile data is
// owned by the user-management layer.
type SysUser struct {
	ID            int64      `db:"id" json:"id"`
	Username      string     `db:"username" json:"username"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	Enabled       bool       `db:"enabled" json:"enabled"`
	Locked        bool       `db:"locked" json:"locked"`
	LastLoginTime *time.Time `db:"last_login_time" json:"last_login_time,omitempty"`
	LastLoginIP   string     `db:"last_login_ip" json:"last_login_ip"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}
