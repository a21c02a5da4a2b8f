// Package subscribers fetches channel subscriber counts.
package subscribers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/brizzai/subcount-bot/internal/config"
	"github.com/brizzai/subcount-bot/internal/errs"
	"github.com/brizzai/subcount-bot/internal/requester"
	"go.uber.org/zap"
)

// Provider returns the subscriber count of each id, in order, and their sum
type Provider interface {
	Counts(ctx context.Context, ids []string) ([]uint64, uint64, error)
}

// channelsRoute is the YouTube Data API v3 channel lookup
var channelsRoute = &requester.RouteConfig{
	Path:    "/channels",
	Method:  http.MethodGet,
	Headers: map[string]string{"Accept": "application/json"},
}

type channelsResponse struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			SubscriberCount string `json:"subscriberCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// YouTube looks channels up by handle
type YouTube struct {
	channels requester.RouteExecutor
	logger   *zap.Logger
}

// NewYouTube creates a provider from the youtube config section
func NewYouTube(cfg *config.Config, logger *zap.Logger) (*YouTube, error) {
	if cfg.YouTube.APIKey == "" {
		return nil, errs.MissingConfig("youtube.api_key", config.EnvPrefix+"_YOUTUBE_API_KEY")
	}

	endpoint := &requester.Endpoint{
		BaseURL:    cfg.YouTube.BaseURL,
		AuthType:   requester.AuthTypeAPIKey,
		AuthConfig: map[string]string{"key": cfg.YouTube.APIKey, "query": "key"},
	}
	r := requester.NewHTTPRequester(endpoint, requester.NewHTTPAuthManager(endpoint), cfg.HTTP.Timeout)
	channels, err := r.BuildRouteExecutor(channelsRoute)
	if err != nil {
		return nil, err
	}

	return &YouTube{channels: channels, logger: logger.Named("youtube")}, nil
}

// Counts queries every handle in turn. The first failure aborts the lookup.
func (y *YouTube) Counts(ctx context.Context, ids []string) ([]uint64, uint64, error) {
	counts := make([]uint64, 0, len(ids))
	var total uint64
	for _, id := range ids {
		count, err := y.count(ctx, id)
		if err != nil {
			return nil, 0, err
		}
		counts = append(counts, count)
		total += count
	}
	return counts, total, nil
}

func (y *YouTube) count(ctx context.Context, id string) (uint64, error) {
	op := "fetch subscriber count for @" + id

	resp, err := y.channels(ctx, map[string]any{
		"part":      "statistics",
		"forHandle": "@" + id,
	})
	if err != nil {
		return 0, errs.Protocol(op, err)
	}
	if !resp.OK() {
		return 0, errs.Protocol(op, fmt.Errorf("status %d: %s", resp.StatusCode, resp.Body))
	}

	var body channelsResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return 0, errs.Protocol(op, fmt.Errorf("decode response: %w", err))
	}
	if len(body.Items) == 0 {
		return 0, errs.Protocol(op, fmt.Errorf("no channel found for handle @%s", id))
	}

	count, err := strconv.ParseUint(body.Items[0].Statistics.SubscriberCount, 10, 64)
	if err != nil {
		return 0, errs.Protocol(op, fmt.Errorf("parse subscriberCount: %w", err))
	}
	y.logger.Debug("Subscriber count", zap.String("handle", id), zap.String("channel", body.Items[0].ID), zap.Uint64("count", count))
	return count, nil
}
