package requester

import (
	"fmt"
	"net/http"
)

// AuthManager handles request authentication
type AuthManager interface {
	ApplyAuth(req *http.Request) error
}

// HTTPAuthManager implements the AuthManager interface
type HTTPAuthManager struct {
	authType   AuthType
	authConfig map[string]string
}

// NewHTTPAuthManager creates a new HTTPAuthManager for the endpoint
func NewHTTPAuthManager(endpoint *Endpoint) *HTTPAuthManager {
	return &HTTPAuthManager{
		authType:   endpoint.AuthType,
		authConfig: endpoint.AuthConfig,
	}
}

// NewBearerAuth authenticates every request with the given access token
func NewBearerAuth(token string) *HTTPAuthManager {
	return &HTTPAuthManager{
		authType:   AuthTypeBearer,
		authConfig: map[string]string{"token": token},
	}
}

// ApplyAuth adds authentication to the request. An API key goes to the
// "query" parameter when one is configured, else to the "header" header.
func (a *HTTPAuthManager) ApplyAuth(req *http.Request) error {
	switch a.authType {
	case AuthTypeNone, "":
		return nil
	case AuthTypeBearer:
		token := a.authConfig["token"]
		req.Header.Set("Authorization", "Bearer "+token)
	case AuthTypeAPIKey:
		key := a.authConfig["key"]
		if param := a.authConfig["query"]; param != "" {
			q := req.URL.Query()
			q.Set(param, key)
			req.URL.RawQuery = q.Encode()
			return nil
		}
		header := a.authConfig["header"]
		if header == "" {
			header = "X-API-Key"
		}
		req.Header.Set(header, key)
	default:
		return fmt.Errorf("unsupported auth type: %s", a.authType)
	}
	return nil
}
