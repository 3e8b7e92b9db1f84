// Package tool is the client multiplexer over the auxiliary tool servers
// (availability, weather, web search). Transport failures are normalized into
// in-band error results so workflow callers can treat every tool reply as
// advisory.
package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/lenslink/lenslink-agent/agent/contract"
)

const (
	ServerAvailability = "availability"
	ServerWeather      = "weather"
	ServerSearch       = "search"

	maxToolResponseBytes = 1 << 20
)

// Config carries the tool-server endpoints. An empty URL or a disabled flag
// downgrades that server to its mock fallback.
type Config struct {
	AvailabilityURL     string        `envconfig:"AVAILABILITY_URL" split_words:"true" default:"http://localhost:8081"`
	AvailabilityEnabled bool          `envconfig:"AVAILABILITY_ENABLED" split_words:"true" default:"true"`
	WeatherURL          string        `envconfig:"WEATHER_URL" split_words:"true" default:"http://localhost:8082"`
	WeatherEnabled      bool          `envconfig:"WEATHER_ENABLED" split_words:"true" default:"true"`
	SearchURL           string        `envconfig:"SEARCH_URL" split_words:"true" default:"http://localhost:8083"`
	SearchEnabled       bool          `envconfig:"SEARCH_ENABLED" split_words:"true" default:"true"`
	Timeout             time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

type server struct {
	url     string
	enabled bool
}

// Gateway implements contract.ToolGateway over plain HTTP.
type Gateway struct {
	servers    map[string]server
	httpClient *http.Client
}

var _ contractx.ToolGateway = (*Gateway)(nil)

func NewGateway(cfg Config) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Gateway{
		servers: map[string]server{
			ServerAvailability: {url: strings.TrimRight(strings.TrimSpace(cfg.AvailabilityURL), "/"), enabled: cfg.AvailabilityEnabled},
			ServerWeather:      {url: strings.TrimRight(strings.TrimSpace(cfg.WeatherURL), "/"), enabled: cfg.WeatherEnabled},
			ServerSearch:       {url: strings.TrimRight(strings.TrimSpace(cfg.SearchURL), "/"), enabled: cfg.SearchEnabled},
		},
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Call invokes tool on the named server. Unknown server names fail
// immediately without a network call. Every other failure mode, status or
// transport, comes back as an error-tagged result.
func (g *Gateway) Call(ctx context.Context, serverName, toolName string, payload map[string]any) contractx.ToolResult {
	srv, ok := g.servers[serverName]
	if !ok {
		return contractx.ToolResult{
			"error": fmt.Sprintf("unknown tool server: %s", serverName),
		}
	}
	if !srv.enabled || srv.url == "" {
		log.Warn().Str("server", serverName).Str("tool", toolName).Msg("tool server disabled, using mock fallback")
		return mockResult(serverName, toolName, payload)
	}

	url := srv.url + "/tools/" + toolName

	var (
		req *http.Request
		err error
	)
	if payload != nil {
		body, merr := json.Marshal(payload)
		if merr != nil {
			return contractx.ToolResult{"error": fmt.Sprintf("encode payload: %v", merr), "fallback": true}
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if req != nil {
			req.Header.Set("Content-Type", "application/json")
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}
	if err != nil {
		return contractx.ToolResult{"error": fmt.Sprintf("build request: %v", err), "fallback": true}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return contractx.ToolResult{"error": classifyTransportError(serverName, err), "fallback": true}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxToolResponseBytes))
	if err != nil {
		return contractx.ToolResult{"error": fmt.Sprintf("read response from %s: %v", serverName, err), "fallback": true}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		log.Warn().Str("server", serverName).Str("tool", toolName).Int("status", resp.StatusCode).Msg("tool call failed")
		return contractx.ToolResult{"error": fmt.Sprintf("HTTP %d from %s", resp.StatusCode, serverName), "fallback": true}
	}

	var result contractx.ToolResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return contractx.ToolResult{"error": fmt.Sprintf("decode response from %s: %v", serverName, err), "fallback": true}
	}
	return result
}

// CheckAvailability asks the availability server about one date.
func (g *Gateway) CheckAvailability(ctx context.Context, photographerID, date string) contractx.ToolResult {
	return g.Call(ctx, ServerAvailability, "check_daily_availability", map[string]any{
		"photographer_id": photographerID,
		"date":            date,
	})
}

// GetForecast fetches the shoot-day weather outlook.
func (g *Gateway) GetForecast(ctx context.Context, location, date string) contractx.ToolResult {
	return g.Call(ctx, ServerWeather, "get_forecast", map[string]any{
		"location": location,
		"date":     date,
	})
}

// WebSearch runs a web search for research queries.
func (g *Gateway) WebSearch(ctx context.Context, query string, numResults int) contractx.ToolResult {
	if numResults <= 0 {
		numResults = 5
	}
	return g.Call(ctx, ServerSearch, "web_search", map[string]any{
		"query":       query,
		"num_results": numResults,
	})
}

func classifyTransportError(serverName string, err error) string {
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return fmt.Sprintf("timeout calling %s", serverName)
	}
	var urlErr interface{ Timeout() bool }
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Sprintf("timeout calling %s", serverName)
	}
	return fmt.Sprintf("connection to %s failed", serverName)
}
