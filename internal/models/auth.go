package models

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	IP       string `json:"-"`
}

// TokenPairResponse returns a freshly issued access/refresh pair. TTLs are in
// seconds so clients can schedule refreshes without parsing the tokens.
type TokenPairResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	AccessExpiresIn  int64  `json:"access_expires_in"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
}

// RefreshRequest exchanges a refresh token for a new pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest revokes the session. Access-token metadata arrives via the
// trusted gateway headers, not in the body.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AccessTokenMeta carries the gateway-validated access-token identity into
// logout, so the access token can be blacklisted without re-parsing it.
type AccessTokenMeta struct {
	JTI             string
	ExpiresAtMillis int64
}
