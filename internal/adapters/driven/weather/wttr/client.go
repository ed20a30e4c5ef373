// Package wttr provides a weather adapter backed by the wttr.in text API.
package wttr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/todo-agent/internal/core/ports/driven"
	"github.com/custodia-labs/todo-agent/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.WeatherService = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://wttr.in"
	DefaultTimeout = 10 * time.Second
)

// forecastFormat is the wttr.in one-line format: condition and temperature.
const forecastFormat = "format=Condition:+%C%0ATemperature:+%t"

// maxBody caps how much of a forecast response is read.
const maxBody = 64 << 10

// Config holds configuration for the wttr client.
type Config struct {
	// BaseURL is the service root (default: https://wttr.in).
	BaseURL string

	// Timeout is the request timeout (default: 10s).
	Timeout time.Duration
}

// Client fetches forecasts from wttr.in.
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient creates a wttr client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// Forecast returns the condition and temperature for location.
// Any day other than "tomorrow" is treated as today.
func (c *Client) Forecast(ctx context.Context, location, day string) (string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", fmt.Errorf("wttr: location is required")
	}

	param := "0"
	if day == "tomorrow" {
		param = "1"
	}
	endpoint := fmt.Sprintf("%s/%s?%s&%s", c.baseURL, url.PathEscape(location), param, forecastFormat)

	logger.Debug("fetching weather for %s on %s", location, day)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("wttr: create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("wttr: send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", fmt.Errorf("wttr: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("wttr: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	logger.Debug("weather response: %s", strings.TrimSpace(string(body)))
	return string(body), nil
}
