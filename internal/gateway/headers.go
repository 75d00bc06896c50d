package gateway

// Identity headers injected by the gateway after validating an access token.
// They are only meaningful inside the internal network boundary: the gateway
// strips them from every inbound request before authentication, so a client
// can never smuggle them in.
const (
	HeaderUserName = "X-User-Name"
	HeaderTokenJTI = "X-Token-Jti"
	HeaderTokenExp = "X-Token-Exp"
)
