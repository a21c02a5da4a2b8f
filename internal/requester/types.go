package requester

// AuthType selects how an Endpoint authenticates its requests
type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeBearer AuthType = "bearer"
	AuthTypeAPIKey AuthType = "api_key"
)

// Endpoint is the remote API a requester talks to
type Endpoint struct {
	BaseURL    string            `json:"base_url"`
	Headers    map[string]string `json:"headers,omitempty"`
	AuthType   AuthType          `json:"auth_type"`
	AuthConfig map[string]string `json:"-"`
}

// RouteConfig holds the configuration for a specific route. Path may
// contain {name} placeholders filled from the request params.
type RouteConfig struct {
	Path    string            `json:"path"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers,omitempty"`
}
