package usecases

// Error messages returned to API clients
const (
	MsgMissingApiKey     = "Invalid or missing API key"
	MsgInvalidApiKey     = "Invalid API key"
	MsgRateLimitExceeded = "Rate limit exceeded"
	MsgPostNotFound      = "Post not found"
	MsgUserNotFound      = "User not found"
	MsgApiKeyNotFound    = "API key not found"
)

// BearerPrefix precedes the secret in the Authorization header
const BearerPrefix = "Bearer "

// PopularTagLimit caps the tag list when only popular tags are requested
const PopularTagLimit = 20
