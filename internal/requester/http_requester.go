package requester

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/brizzai/subcount-bot/internal/logger"
	"go.uber.org/zap"
)

// DefaultTimeout applies when no timeout is configured
const DefaultTimeout = 30 * time.Second

// HTTPRequester handles both request building and execution
type HTTPRequester struct {
	client   *http.Client
	endpoint *Endpoint
	authMgr  AuthManager
}

// NewHTTPRequester creates a new HTTPRequester. A zero timeout means
// DefaultTimeout.
func NewHTTPRequester(endpoint *Endpoint, authMgr AuthManager, timeout time.Duration) *HTTPRequester {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &HTTPRequester{
		client: &http.Client{
			Timeout: timeout,
		},
		endpoint: endpoint,
		authMgr:  authMgr,
	}
}

// BuildRouteExecutor creates a function that can execute requests for a specific route
func (r *HTTPRequester) BuildRouteExecutor(route *RouteConfig) (RouteExecutor, error) {
	if route == nil {
		return nil, fmt.Errorf("route config is nil")
	}
	builder := NewHTTPRequestBuilder(r.endpoint, r.authMgr, route)

	// Return a function that builds and executes the request
	return func(ctx context.Context, params map[string]any) (*Response, error) {
		req, err := builder.BuildRequest(ctx, params)
		if err != nil {
			return nil, err
		}
		// The query may carry an API key, only the route is logged
		logger.Debug("request route", zap.String("method", route.Method), zap.String("path", route.Path))

		resp, err := r.execute(req)
		if err != nil {
			logger.Error("failed to execute request", zap.String("path", route.Path), zap.Error(err))
			return nil, err
		}

		return resp, nil
	}, nil
}

// execute performs the actual HTTP request execution
func (r *HTTPRequester) execute(req *Request) (resp *Response, err error) {
	httpResp, err := r.client.Do(req.HttpRequest)
	if err != nil {
		// *url.Error repeats the full URL, query included
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("request %s %s failed: %w", req.Method, req.HttpRequest.URL.Path, err)
	}
	defer func() {
		if closeErr := httpResp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       bodyBytes,
		Headers:    httpResp.Header,
	}, nil
}
