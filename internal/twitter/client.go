// Package twitter creates posts through the v2 API.
package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/brizzai/subcount-bot/internal/auth/models"
	"github.com/brizzai/subcount-bot/internal/config"
	"github.com/brizzai/subcount-bot/internal/errs"
	"github.com/brizzai/subcount-bot/internal/requester"
	"go.uber.org/fx"
)

var Module = fx.Module("twitter",
	fx.Provide(NewClient),
)

var createPostRoute = &requester.RouteConfig{
	Path:   "/2/tweets",
	Method: http.MethodPost,
}

// PostResponse is the created post together with the raw response body
type PostResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
	Raw json.RawMessage `json:"-"`
}

// Client posts on behalf of the authorized account
type Client struct {
	endpoint *requester.Endpoint
	timeout  time.Duration
}

// NewClient creates a Client for the twitter.api_base_url endpoint
func NewClient(cfg *config.Config) *Client {
	return &Client{
		endpoint: &requester.Endpoint{
			BaseURL:  cfg.Twitter.APIBaseURL,
			AuthType: requester.AuthTypeBearer,
		},
		timeout: cfg.HTTP.Timeout,
	}
}

// Post creates a post with text. Any non-2xx answer is a protocol error
// carrying the status and body.
func (c *Client) Post(ctx context.Context, token *models.Token, text string) (*PostResponse, error) {
	const op = "create post"

	r := requester.NewHTTPRequester(c.endpoint, requester.NewBearerAuth(token.AccessToken), c.timeout)
	create, err := r.BuildRouteExecutor(createPostRoute)
	if err != nil {
		return nil, errs.E(errs.KindOther, op, err)
	}

	resp, err := create(ctx, map[string]any{
		"body": map[string]string{"text": text},
	})
	if err != nil {
		return nil, errs.Protocol(op, err)
	}
	if !resp.OK() {
		return nil, errs.Protocol(op, fmt.Errorf("status %d: %s", resp.StatusCode, resp.Body))
	}

	var post PostResponse
	if err := json.Unmarshal(resp.Body, &post); err != nil {
		return nil, errs.Protocol(op, fmt.Errorf("decode response: %w", err))
	}
	post.Raw = resp.Body
	return &post, nil
}
