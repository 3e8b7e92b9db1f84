package tool

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestGateway(t *testing.T, handler http.Handler) (*Gateway, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g := NewGateway(Config{
		AvailabilityURL:     srv.URL,
		AvailabilityEnabled: true,
		WeatherURL:          srv.URL,
		WeatherEnabled:      true,
		SearchURL:           srv.URL,
		SearchEnabled:       true,
		Timeout:             2 * time.Second,
	})
	return g, srv
}

func TestCallPostsPayload(t *testing.T) {
	t.Parallel()

	var gotPath, gotContentType string
	var gotBody map[string]any
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"available": false, "reason": "fully booked"})
	}))

	result := g.CheckAvailability(context.Background(), "ph_1", "2025-07-01")
	if gotPath != "/tools/check_daily_availability" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotContentType != "application/json" {
		t.Fatalf("content type = %q", gotContentType)
	}
	if gotBody["photographer_id"] != "ph_1" || gotBody["date"] != "2025-07-01" {
		t.Fatalf("payload = %v", gotBody)
	}
	if result.Err() != "" {
		t.Fatalf("unexpected error: %q", result.Err())
	}
	if result.Bool("available", true) {
		t.Fatalf("expected available=false to survive the round trip")
	}
	if result.String("reason") != "fully booked" {
		t.Fatalf("reason = %q", result.String("reason"))
	}
}

func TestCallNilPayloadUsesGet(t *testing.T) {
	t.Parallel()

	var gotMethod string
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))

	result := g.Call(context.Background(), ServerWeather, "get_forecast", nil)
	if gotMethod != http.MethodGet {
		t.Fatalf("method = %q", gotMethod)
	}
	if result.Err() != "" {
		t.Fatalf("unexpected error: %q", result.Err())
	}
}

func TestCallUnknownServerSkipsNetwork(t *testing.T) {
	t.Parallel()

	called := false
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	result := g.Call(context.Background(), "imaging", "analyze", nil)
	if called {
		t.Fatalf("unknown server reached the network")
	}
	if !strings.Contains(result.Err(), "unknown tool server") {
		t.Fatalf("error = %q", result.Err())
	}
}

func TestCallDisabledServerFallsBackToMock(t *testing.T) {
	t.Parallel()

	g := NewGateway(Config{
		AvailabilityURL:     "http://localhost:8081",
		AvailabilityEnabled: false,
		Timeout:             time.Second,
	})

	result := g.CheckAvailability(context.Background(), "ph_1", "2025-07-01")
	if result.Err() != "" {
		t.Fatalf("mock fallback returned error: %q", result.Err())
	}
	if !result.Bool("available", false) {
		t.Fatalf("mock availability should default to available")
	}
	if !result.Bool("mock", false) {
		t.Fatalf("mock result not tagged: %v", result)
	}
}

func TestCallErrorStatusIsInBand(t *testing.T) {
	t.Parallel()

	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	result := g.GetForecast(context.Background(), "Boston", "2025-07-01")
	if !strings.Contains(result.Err(), "HTTP 500") {
		t.Fatalf("error = %q", result.Err())
	}
	if !result.Bool("fallback", false) {
		t.Fatalf("status failure not tagged as fallback: %v", result)
	}
}

func TestCallTransportFailureIsInBand(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	g := NewGateway(Config{
		SearchURL:     url,
		SearchEnabled: true,
		Timeout:       time.Second,
	})

	result := g.WebSearch(context.Background(), "wedding trends", 3)
	if !strings.Contains(result.Err(), "connection") {
		t.Fatalf("error = %q", result.Err())
	}
	if !result.Bool("fallback", false) {
		t.Fatalf("transport failure not tagged as fallback: %v", result)
	}
}

func TestCallTimeoutClassified(t *testing.T) {
	t.Parallel()

	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	g.httpClient.Timeout = 20 * time.Millisecond

	result := g.Call(context.Background(), ServerWeather, "get_forecast", map[string]any{"location": "Boston"})
	if !strings.Contains(result.Err(), "timeout") {
		t.Fatalf("error = %q", result.Err())
	}
}

func TestCallGarbageBodyIsInBand(t *testing.T) {
	t.Parallel()

	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))

	result := g.Call(context.Background(), ServerSearch, "web_search", map[string]any{"query": "x"})
	if !strings.Contains(result.Err(), "decode response") {
		t.Fatalf("error = %q", result.Err())
	}
}

func TestWebSearchDefaultsResultCount(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"total_results": 0})
	}))

	_ = g.WebSearch(context.Background(), "pricing benchmarks", 0)
	if gotBody["num_results"] != float64(5) {
		t.Fatalf("num_results = %v", gotBody["num_results"])
	}
}
