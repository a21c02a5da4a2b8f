package constants

const (
	// TokenFileMode is the permission of the token cache file
	TokenFileMode = 0o600

	// Redirect query parameters
	CallbackCodeParam  = "code"
	CallbackStateParam = "state"
	CallbackErrorParam = "error"
)

// AuthorizeScopes are requested at authorization time. offline.access is
// what makes the provider issue a refresh token.
var AuthorizeScopes = []string{"tweet.read", "tweet.write", "users.read", "offline.access"}

// PersistedScopes is the scope list written to the token file
var PersistedScopes = []string{"tweet.write"}
