package store

// Cache key layout shared by every service instance. Keys are namespaced so
// one Redis database can host all auth state.
const (
	blacklistKeyPrefix    = "mms:auth:blacklist:"
	refreshSessionPrefix  = "mms:auth:refresh:"
	loginAttemptKeyPrefix = "mms:usercenter:login:attempts:"
	accountLockKeyPrefix  = "mms:usercenter:login:lock:"
)
