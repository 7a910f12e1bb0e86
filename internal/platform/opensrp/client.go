// Package opensrp posts payloads to an OpenSRP server.
package opensrp

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Client sends JSON payloads with basic auth. It does not retry.
type Client struct {
	http   *resty.Client
	logger zerolog.Logger
}

func NewClient(timeout time.Duration, logger zerolog.Logger) *Client {
	rc := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: rc, logger: logger}
}

// Send POSTs payload to url and returns the response body. Non-2xx replies
// are errors that carry the status.
func (c *Client) Send(ctx context.Context, payload any, url, username, password string) (string, error) {
	req := c.http.R().
		SetContext(ctx).
		SetBody(payload)
	if username != "" || password != "" {
		req.SetBasicAuth(username, password)
	}

	resp, err := req.Post(url)
	if err != nil {
		c.logger.Error().Err(err).Str("url", url).Msg("opensrp request failed")
		return "", fmt.Errorf("post to opensrp: %w", err)
	}

	c.logger.Info().
		Str("url", url).
		Int("status", resp.StatusCode()).
		Dur("latency", resp.Time()).
		Msg("opensrp request")

	body := resp.String()
	if !resp.IsSuccess() {
		return "", fmt.Errorf("opensrp responded %d: %s", resp.StatusCode(), body)
	}
	return body, nil
}
