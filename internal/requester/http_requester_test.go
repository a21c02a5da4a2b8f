package requester

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRequester(t *testing.T) {
	tests := []struct {
		name           string
		routeConfig    *RouteConfig
		endpoint       *Endpoint
		params         map[string]any
		timeout        time.Duration
		serverResponse func(w http.ResponseWriter, r *http.Request)
		checkResponse  func(t *testing.T, response *Response, err error)
	}{
		{
			name: "Simple GET Request",
			routeConfig: &RouteConfig{
				Path:   "/test",
				Method: http.MethodGet,
			},
			endpoint: &Endpoint{AuthType: AuthTypeNone},
			params: map[string]any{
				"param1": "value1",
				"param2": "value2",
			},
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/test", r.URL.Path)
				assert.Equal(t, "value1", r.URL.Query().Get("param1"))
				assert.Equal(t, "value2", r.URL.Query().Get("param2"))
				w.WriteHeader(http.StatusOK)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "success"})
			},
			checkResponse: func(t *testing.T, response *Response, err error) {
				require.NoError(t, err)
				assert.True(t, response.OK())

				var body map[string]string
				require.NoError(t, json.Unmarshal(response.Body, &body))
				assert.Equal(t, "success", body["status"])
			},
		},
		{
			name: "API Key In Query",
			routeConfig: &RouteConfig{
				Path:   "/channels",
				Method: http.MethodGet,
			},
			endpoint: &Endpoint{
				AuthType:   AuthTypeAPIKey,
				AuthConfig: map[string]string{"key": "secret-key", "query": "key"},
			},
			params: map[string]any{"forHandle": "@someone"},
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "secret-key", r.URL.Query().Get("key"))
				assert.Equal(t, "@someone", r.URL.Query().Get("forHandle"))
				w.WriteHeader(http.StatusOK)
			},
			checkResponse: func(t *testing.T, response *Response, err error) {
				require.NoError(t, err)
				assert.Equal(t, http.StatusOK, response.StatusCode)
			},
		},
		{
			name: "POST Request with Body",
			routeConfig: &RouteConfig{
				Path:   "/2/tweets",
				Method: http.MethodPost,
			},
			endpoint: &Endpoint{
				AuthType:   AuthTypeBearer,
				AuthConfig: map[string]string{"token": "access"},
			},
			params: map[string]any{
				"body": map[string]string{"text": "hello"},
			},
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))
				var body map[string]string
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "hello", body["text"])
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(`{"data":{"id":"1"}}`))
			},
			checkResponse: func(t *testing.T, response *Response, err error) {
				require.NoError(t, err)
				assert.Equal(t, http.StatusCreated, response.StatusCode)
				assert.True(t, response.OK())
				assert.JSONEq(t, `{"data":{"id":"1"}}`, string(response.Body))
			},
		},
		{
			name: "Error Status Is Returned As Response",
			routeConfig: &RouteConfig{
				Path:   "/test",
				Method: http.MethodGet,
			},
			endpoint: &Endpoint{AuthType: AuthTypeNone},
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte("forbidden"))
			},
			checkResponse: func(t *testing.T, response *Response, err error) {
				require.NoError(t, err)
				assert.False(t, response.OK())
				assert.Equal(t, "forbidden", string(response.Body))
			},
		},
		{
			name: "Request Timeout",
			routeConfig: &RouteConfig{
				Path:   "/slow",
				Method: http.MethodGet,
			},
			endpoint: &Endpoint{
				AuthType:   AuthTypeAPIKey,
				AuthConfig: map[string]string{"key": "secret-key", "query": "key"},
			},
			timeout: 50 * time.Millisecond,
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(300 * time.Millisecond)
				w.WriteHeader(http.StatusOK)
			},
			checkResponse: func(t *testing.T, response *Response, err error) {
				require.Error(t, err)
				assert.Nil(t, response)
				assert.NotContains(t, err.Error(), "secret-key")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(tt.serverResponse))
			defer server.Close()

			tt.endpoint.BaseURL = server.URL
			r := NewHTTPRequester(tt.endpoint, NewHTTPAuthManager(tt.endpoint), tt.timeout)

			executor, err := r.BuildRouteExecutor(tt.routeConfig)
			require.NoError(t, err)

			response, err := executor(context.Background(), tt.params)
			tt.checkResponse(t, response, err)
		})
	}
}

func TestNewHTTPRequester_DefaultTimeout(t *testing.T) {
	r := NewHTTPRequester(&Endpoint{}, noAuth(), 0)
	assert.Equal(t, DefaultTimeout, r.client.Timeout)

	r = NewHTTPRequester(&Endpoint{}, noAuth(), time.Second)
	assert.Equal(t, time.Second, r.client.Timeout)
}

func TestBuildRouteExecutor_NilRoute(t *testing.T) {
	r := NewHTTPRequester(&Endpoint{}, noAuth(), 0)
	_, err := r.BuildRouteExecutor(nil)
	assert.Error(t, err)
}
