package requester

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"
)

// bodyParam is the params key whose value is sent as the JSON body
const bodyParam = "body"

// HTTPRequestBuilder turns a route and its params into an *http.Request
type HTTPRequestBuilder struct {
	endpoint    *Endpoint
	authMgr     AuthManager
	routeConfig *RouteConfig
}

// NewHTTPRequestBuilder creates a new HTTPRequestBuilder
func NewHTTPRequestBuilder(endpoint *Endpoint, authMgr AuthManager, routeConfig *RouteConfig) *HTTPRequestBuilder {
	return &HTTPRequestBuilder{
		endpoint:    endpoint,
		authMgr:     authMgr,
		routeConfig: routeConfig,
	}
}

// BuildRequest builds a request from the route and parameters. Params
// consumed by path placeholders are not repeated in the query.
func (b *HTTPRequestBuilder) BuildRequest(ctx context.Context, params map[string]any) (*Request, error) {
	if b.routeConfig == nil {
		return nil, fmt.Errorf("route config is nil")
	}
	// Build URL
	rawURL, rest := b.buildURL(b.routeConfig.Path, params)

	// Add query parameters for GET requests
	if b.routeConfig.Method == http.MethodGet {
		rawURL = b.addQueryParams(rawURL, rest)
	}

	// Create request body
	body, contentType, err := b.createRequestBody(b.routeConfig, rest)
	if err != nil {
		return nil, fmt.Errorf("failed to create request body: %w", err)
	}

	// Merge headers
	headers := make(map[string]string)
	maps.Copy(headers, b.endpoint.Headers)
	maps.Copy(headers, b.routeConfig.Headers)

	// Create the HTTP request
	httpReq, err := http.NewRequestWithContext(ctx, b.routeConfig.Method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	// Add headers
	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	// Apply authentication
	if err := b.authMgr.ApplyAuth(httpReq); err != nil {
		return nil, fmt.Errorf("failed to apply authentication: %w", err)
	}

	return &Request{
		URL:         rawURL,
		Method:      b.routeConfig.Method,
		Body:        body,
		Headers:     headers,
		ContentType: contentType,
		HttpRequest: httpReq,
	}, nil
}

func (b *HTTPRequestBuilder) buildURL(path string, params map[string]any) (string, map[string]any) {
	rest := make(map[string]any, len(params))

	// Replace path parameters
	for key, value := range params {
		placeholder := fmt.Sprintf("{%s}", key)
		if strings.Contains(path, placeholder) {
			path = strings.ReplaceAll(path, placeholder, url.PathEscape(fmt.Sprintf("%v", value)))
			continue
		}
		rest[key] = value
	}

	return strings.TrimRight(b.endpoint.BaseURL, "/") + path, rest
}

func (b *HTTPRequestBuilder) addQueryParams(baseURL string, params map[string]any) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}

	q := u.Query()
	for key, value := range params {
		if key == bodyParam {
			continue
		}
		q.Set(key, fmt.Sprintf("%v", value))
	}
	u.RawQuery = q.Encode()

	return u.String()
}

func (b *HTTPRequestBuilder) createRequestBody(routeConfig *RouteConfig, params map[string]any) (io.Reader, string, error) {
	switch routeConfig.Method {
	case http.MethodGet, http.MethodDelete:
		return nil, "", nil

	default:
		body, ok := params[bodyParam]
		if !ok {
			return nil, "", nil
		}
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
		}
		return bytes.NewBuffer(jsonData), "application/json", nil
	}
}
