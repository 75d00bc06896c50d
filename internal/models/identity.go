package models

import "time"

// UserIdentity is the request-scoped identity a downstream service derives
// from the trusted gateway headers. No cryptographic verification happens on
// this path; the internal network boundary is the trust anchor.
type UserIdentity struct {
	Username        string
	TokenID         string
	ExpiresAtMillis int64
}

// ExpiresAt converts the propagated epoch-millis expiry to a time.
func (u UserIdentity) ExpiresAt() time.Time {
	return time.UnixMilli(u.ExpiresAtMillis)
}
