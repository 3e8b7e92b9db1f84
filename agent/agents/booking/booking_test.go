package booking

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	contractx "github.com/lenslink/lenslink-agent/agent/contract"
	statex "github.com/lenslink/lenslink-agent/agent/state"
)

type fakeRepo struct {
	pool []contractx.Candidate
	err  error
}

func (f *fakeRepo) ActivePhotographers(ctx context.Context) ([]contractx.Candidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]contractx.Candidate(nil), f.pool...), nil
}

func (f *fakeRepo) CompletedBookings(ctx context.Context, serviceType, location string) ([]contractx.BookingRecord, error) {
	return nil, nil
}

func (f *fakeRepo) CompletedBookingsByPhotographer(ctx context.Context, photographerID string) ([]contractx.BookingRecord, error) {
	return nil, nil
}

func (f *fakeRepo) PhotographersByLocation(ctx context.Context, location string) ([]contractx.CompetitorProfile, error) {
	return nil, nil
}

func (f *fakeRepo) ClientByID(ctx context.Context, clientID string) (*contractx.ClientProfile, error) {
	return nil, contractx.ErrNotFound
}

func (f *fakeRepo) UpcomingBookings(ctx context.Context, clientID string) ([]contractx.BookingRecord, error) {
	return nil, nil
}

func (f *fakeRepo) InsertOutgoingMessage(ctx context.Context, msg *contractx.OutgoingMessage) error {
	return nil
}

type fakeTools struct {
	availability contractx.ToolResult
	forecast     contractx.ToolResult

	availabilityCalls int
	forecastCalls     int
}

func (f *fakeTools) Call(ctx context.Context, server, tool string, payload map[string]any) contractx.ToolResult {
	return contractx.ToolResult{}
}

func (f *fakeTools) CheckAvailability(ctx context.Context, photographerID, date string) contractx.ToolResult {
	f.availabilityCalls++
	if f.availability == nil {
		return contractx.ToolResult{"available": true}
	}
	return f.availability
}

func (f *fakeTools) GetForecast(ctx context.Context, location, date string) contractx.ToolResult {
	f.forecastCalls++
	if f.forecast == nil {
		return contractx.ToolResult{"good_for_outdoor_shoot": true}
	}
	return f.forecast
}

func (f *fakeTools) WebSearch(ctx context.Context, query string, numResults int) contractx.ToolResult {
	return contractx.ToolResult{}
}

type fakeBackend struct {
	result   *contractx.BookingCreateResult
	err      error
	requests []contractx.BookingCreateRequest
}

func (f *fakeBackend) CreateBooking(ctx context.Context, req contractx.BookingCreateRequest) (*contractx.BookingCreateResult, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.result == nil {
		return &contractx.BookingCreateResult{ID: "bk_1", Status: contractx.StatusPendingApproval}, nil
	}
	return f.result, nil
}

type fakeCompleter struct {
	completion string
	err        error
	calls      int
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.completion, nil
}

func sarah() contractx.Candidate {
	return contractx.Candidate{
		ID:        "ph_1",
		FirstName: "Sarah",
		LastName:  "Johnson",
		Name:      "Sarah Johnson",
		Location:  "New York",
		Rating:    4.8,
		Packages: []contractx.Package{
			{ID: "pkg_2", Name: "Premium Portrait", Price: 450, IsActive: true},
			{ID: "pkg_1", Name: "Basic Portrait", Price: 250, IsActive: true},
		},
		MinPrice: 250,
		MaxPrice: 450,
	}
}

func newTestAssistant(t *testing.T, repo *fakeRepo, tools *fakeTools, backend *fakeBackend, completer *fakeCompleter) *Assistant {
	t.Helper()
	a, err := New(repo, tools, backend, completer, "classify the booking request")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a
}

func newTestSession() *statex.Session {
	return statex.NewSession("sess_1", time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
}

func TestDirectBookingPhotographerNotFound(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{
		completion: `{"type": "direct_booking", "photographer_name": "Sarah Johnson", "requirements": {}}`,
	}
	a := newTestAssistant(t, &fakeRepo{}, &fakeTools{}, &fakeBackend{}, completer)

	resp, err := a.HandleBookingRequest(context.Background(), "I want to book Sarah Johnson", "client_1", newTestSession())
	if err != nil {
		t.Fatalf("HandleBookingRequest() error = %v", err)
	}
	if resp.Success {
		t.Fatal("expected failure response")
	}
	if resp.Type != contractx.ResponsePhotographerMissing {
		t.Fatalf("type = %s, want %s", resp.Type, contractx.ResponsePhotographerMissing)
	}
	if resp.SuggestedAction != "show_recommendations" {
		t.Fatalf("suggested_action = %s, want show_recommendations", resp.SuggestedAction)
	}
	if !strings.Contains(resp.Message, "Sarah Johnson") {
		t.Fatalf("message should name the photographer: %q", resp.Message)
	}
}

func TestDirectBookingSingleMatchBooksCheapestPackage(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{
		completion: `{"type": "direct_booking", "photographer_name": "Sarah Johnson", "requirements": {"shoot_date": "2026-09-15"}}`,
	}
	backend := &fakeBackend{}
	tools := &fakeTools{}
	a := newTestAssistant(t, &fakeRepo{pool: []contractx.Candidate{sarah()}}, tools, backend, completer)

	resp, err := a.HandleBookingRequest(context.Background(), "book Sarah for Sept 15", "client_1", newTestSession())
	if err != nil {
		t.Fatalf("HandleBookingRequest() error = %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}
	if resp.Type != contractx.ResponseBookingCreated {
		t.Fatalf("type = %s, want %s", resp.Type, contractx.ResponseBookingCreated)
	}
	if resp.BookingDetails == nil {
		t.Fatal("booking details missing")
	}
	if resp.BookingDetails.PackageName != "Basic Portrait" || resp.BookingDetails.Price != 250 {
		t.Fatalf("expected cheapest package, got %+v", resp.BookingDetails)
	}
	if resp.BookingDetails.Status != contractx.StatusPendingApproval {
		t.Fatalf("status = %s, want %s", resp.BookingDetails.Status, contractx.StatusPendingApproval)
	}
	if tools.availabilityCalls != 1 {
		t.Fatalf("expected one availability check, got %d", tools.availabilityCalls)
	}
	if len(backend.requests) != 1 {
		t.Fatalf("expected one backend request, got %d", len(backend.requests))
	}
	if backend.requests[0].PackageID != "pkg_1" {
		t.Fatalf("backend package = %s, want pkg_1", backend.requests[0].PackageID)
	}
}

func TestDirectBookingMultipleMatchesClarifies(t *testing.T) {
	t.Parallel()

	other := sarah()
	other.ID = "ph_2"
	other.Location = "Boston"

	completer := &fakeCompleter{
		completion: `{"type": "direct_booking", "photographer_name": "Sarah", "requirements": {}}`,
	}
	backend := &fakeBackend{}
	a := newTestAssistant(t, &fakeRepo{pool: []contractx.Candidate{sarah(), other}}, &fakeTools{}, backend, completer)

	sess := newTestSession()
	resp, err := a.HandleBookingRequest(context.Background(), "book Sarah", "client_1", sess)
	if err != nil {
		t.Fatalf("HandleBookingRequest() error = %v", err)
	}
	if resp.Success {
		t.Fatal("expected disambiguation, not success")
	}
	if resp.Type != contractx.ResponseMultipleMatches {
		t.Fatalf("type = %s, want %s", resp.Type, contractx.ResponseMultipleMatches)
	}
	if len(resp.Options) != 2 {
		t.Fatalf("options = %d, want 2", len(resp.Options))
	}
	if sess.Step != statex.StepClarifying {
		t.Fatalf("session step = %s, want %s", sess.Step, statex.StepClarifying)
	}
	if len(sess.Candidates) != 2 {
		t.Fatalf("stored candidates = %d, want 2", len(sess.Candidates))
	}
	if len(backend.requests) != 0 {
		t.Fatalf("no booking should be attempted, got %d", len(backend.requests))
	}
}

func TestDirectBookingUnavailableDateBlocks(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{
		completion: `{"type": "direct_booking", "photographer_name": "Sarah Johnson", "requirements": {"shoot_date": "2026-09-15"}}`,
	}
	tools := &fakeTools{
		availability: contractx.ToolResult{"available": false, "reason": "Fully booked"},
	}
	backend := &fakeBackend{}
	a := newTestAssistant(t, &fakeRepo{pool: []contractx.Candidate{sarah()}}, tools, backend, completer)

	resp, err := a.HandleBookingRequest(context.Background(), "book Sarah for Sept 15", "client_1", newTestSession())
	if err != nil {
		t.Fatalf("HandleBookingRequest() error = %v", err)
	}
	if resp.Type != contractx.ResponseNotAvailable {
		t.Fatalf("type = %s, want %s", resp.Type, contractx.ResponseNotAvailable)
	}
	if resp.Reason != "Fully booked" {
		t.Fatalf("reason = %q, want Fully booked", resp.Reason)
	}
	if len(backend.requests) != 0 {
		t.Fatalf("backend must not be called when unavailable, got %d", len(backend.requests))
	}
}

func TestDirectBookingAvailabilityErrorRelaxes(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{
		completion: `{"type": "direct_booking", "photographer_name": "Sarah Johnson", "requirements": {"shoot_date": "2026-09-15"}}`,
	}
	tools := &fakeTools{
		availability: contractx.ToolResult{"error": "connection to availability failed", "fallback": true},
	}
	backend := &fakeBackend{}
	a := newTestAssistant(t, &fakeRepo{pool: []contractx.Candidate{sarah()}}, tools, backend, completer)

	resp, err := a.HandleBookingRequest(context.Background(), "book Sarah for Sept 15", "client_1", newTestSession())
	if err != nil {
		t.Fatalf("HandleBookingRequest() error = %v", err)
	}
	if resp.Type != contractx.ResponseBookingCreated {
		t.Fatalf("advisory availability error must not block, got %s", resp.Type)
	}
}

func TestWeatherAdvisoryNeverBlocks(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{
		completion: `{"type": "direct_booking", "photographer_name": "Sarah Johnson", "requirements": {"shoot_date": "2026-09-15", "location": "New York", "outdoor": true}}`,
	}
	tools := &fakeTools{
		forecast: contractx.ToolResult{"condition": "Storm", "good_for_outdoor_shoot": false},
	}
	a := newTestAssistant(t, &fakeRepo{pool: []contractx.Candidate{sarah()}}, tools, &fakeBackend{}, completer)

	resp, err := a.HandleBookingRequest(context.Background(), "outdoor shoot Sept 15", "client_1", newTestSession())
	if err != nil {
		t.Fatalf("HandleBookingRequest() error = %v", err)
	}
	if !resp.Success || resp.Type != contractx.ResponseBookingCreated {
		t.Fatalf("bad weather must not block booking, got %+v", resp)
	}
	if !resp.WeatherWarning {
		t.Fatal("expected weather warning attached")
	}
	if resp.Recommendation == "" {
		t.Fatal("expected a reschedule recommendation")
	}
	if tools.forecastCalls != 1 {
		t.Fatalf("expected one forecast call, got %d", tools.forecastCalls)
	}
}

func TestBackendFailuresAreTyped(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		err      error
		wantType string
	}{
		{"unreachable", contractx.ErrUpstreamUnreachable, contractx.ResponseConnectionError},
		{"bad status", contractx.ErrUpstreamStatus, contractx.ResponseBackendError},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			completer := &fakeCompleter{
				completion: `{"type": "direct_booking", "photographer_name": "Sarah Johnson", "requirements": {}}`,
			}
			backend := &fakeBackend{err: tc.err}
			a := newTestAssistant(t, &fakeRepo{pool: []contractx.Candidate{sarah()}}, &fakeTools{}, backend, completer)

			resp, err := a.HandleBookingRequest(context.Background(), "book Sarah Johnson", "client_1", newTestSession())
			if err != nil {
				t.Fatalf("HandleBookingRequest() error = %v", err)
			}
			if resp.Success {
				t.Fatal("expected failure response")
			}
			if resp.Type != tc.wantType {
				t.Fatalf("type = %s, want %s", resp.Type, tc.wantType)
			}
		})
	}
}

func TestRecommendationNoMatches(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{
		completion: `{"type": "recommendation_request", "requirements": {"location": "New York"}}`,
	}
	a := newTestAssistant(t, &fakeRepo{}, &fakeTools{}, &fakeBackend{}, completer)

	resp, err := a.HandleBookingRequest(context.Background(), "I need a photographer", "client_1", newTestSession())
	if err != nil {
		t.Fatalf("HandleBookingRequest() error = %v", err)
	}
	if resp.Success {
		t.Fatal("expected failure response")
	}
	if resp.Type != contractx.ResponseNoMatches {
		t.Fatalf("type = %s, want %s", resp.Type, contractx.ResponseNoMatches)
	}
	if len(resp.Suggestions) != 3 {
		t.Fatalf("suggestions = %d, want 3", len(resp.Suggestions))
	}
}

func TestRecommendationThenSelectionRoundTrip(t *testing.T) {
	t.Parallel()

	second := contractx.Candidate{
		ID:        "ph_2",
		FirstName: "Mike",
		LastName:  "Chen",
		Name:      "Mike Chen",
		Location:  "New York",
		Rating:    4.2,
		Packages:  []contractx.Package{{ID: "pkg_9", Name: "City Shoot", Price: 300, IsActive: true}},
		MinPrice:  300,
		MaxPrice:  300,
	}

	completer := &fakeCompleter{
		completion: `{"type": "recommendation_request", "requirements": {"location": "New York", "shoot_date": "2026-09-15"}}`,
	}
	backend := &fakeBackend{}
	a := newTestAssistant(t, &fakeRepo{pool: []contractx.Candidate{sarah(), second}}, &fakeTools{}, backend, completer)

	sess := newTestSession()
	resp, err := a.HandleBookingRequest(context.Background(), "show me photographers in New York", "client_1", sess)
	if err != nil {
		t.Fatalf("HandleBookingRequest() error = %v", err)
	}
	if resp.Type != contractx.ResponseRecommendations {
		t.Fatalf("type = %s, want %s", resp.Type, contractx.ResponseRecommendations)
	}
	if sess.Step != statex.StepShowingOptions {
		t.Fatalf("session step = %s, want %s", sess.Step, statex.StepShowingOptions)
	}
	if len(sess.Candidates) != 2 {
		t.Fatalf("stored candidates = %d, want 2", len(sess.Candidates))
	}
	if len(resp.Options) != 2 {
		t.Fatalf("options = %d, want 2", len(resp.Options))
	}
	if resp.Options[0].Rank != 1 || resp.Options[1].Rank != 2 {
		t.Fatalf("options must be ranked 1..n: %+v", resp.Options)
	}
	// Sarah rates higher so she must rank first.
	if resp.Options[0].ID != "ph_1" {
		t.Fatalf("top option = %s, want ph_1", resp.Options[0].ID)
	}

	llmCalls := completer.calls

	// Next turn: bare rank number selects from the stored list, no LLM call.
	resp, err = a.HandleBookingRequest(context.Background(), "2", "client_1", sess)
	if err != nil {
		t.Fatalf("HandleBookingRequest() error = %v", err)
	}
	if completer.calls != llmCalls {
		t.Fatalf("selection turn must bypass the model, calls went %d -> %d", llmCalls, completer.calls)
	}
	if !resp.Success || resp.Type != contractx.ResponseBookingCreated {
		t.Fatalf("expected booking from selection, got %+v", resp)
	}
	if resp.BookingDetails.PhotographerName != "Mike Chen" {
		t.Fatalf("selected = %s, want Mike Chen", resp.BookingDetails.PhotographerName)
	}
	if len(backend.requests) != 1 {
		t.Fatalf("expected one backend request, got %d", len(backend.requests))
	}
	// The stored requirements from the recommendation turn carry over.
	if backend.requests[0].Requirements.ShootDate() != "2026-09-15" {
		t.Fatalf("stored requirements must flow into the booking: %+v", backend.requests[0].Requirements)
	}
	if sess.Step != statex.StepInitial {
		t.Fatalf("session must resolve after booking, step = %s", sess.Step)
	}
}

func TestSelectionByNameFromStoredOptions(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{completion: `{"type": "unclear"}`}
	backend := &fakeBackend{}
	a := newTestAssistant(t, &fakeRepo{pool: []contractx.Candidate{sarah()}}, &fakeTools{}, backend, completer)

	sess := newTestSession()
	sess.ShowOptions([]contractx.Candidate{sarah()}, contractx.Requirements{}, time.Now())

	resp, err := a.HandleBookingRequest(context.Background(), "Sarah Johnson", "client_1", sess)
	if err != nil {
		t.Fatalf("HandleBookingRequest() error = %v", err)
	}
	if completer.calls != 0 {
		t.Fatalf("selection turn must bypass the model, got %d calls", completer.calls)
	}
	if !resp.Success || resp.Type != contractx.ResponseBookingCreated {
		t.Fatalf("expected booking, got %+v", resp)
	}
}

func TestUnclearIntentOnGarbageCompletion(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{completion: "sorry, I can't help with that"}
	a := newTestAssistant(t, &fakeRepo{pool: []contractx.Candidate{sarah()}}, &fakeTools{}, &fakeBackend{}, completer)

	resp, err := a.HandleBookingRequest(context.Background(), "hmm", "client_1", newTestSession())
	if err != nil {
		t.Fatalf("HandleBookingRequest() error = %v", err)
	}
	if resp.Type != contractx.ResponseNeedClarification {
		t.Fatalf("type = %s, want %s", resp.Type, contractx.ResponseNeedClarification)
	}
	if len(resp.Examples) != 2 {
		t.Fatalf("examples = %d, want 2", len(resp.Examples))
	}
}

func TestUnclearIntentOnCompleterError(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{err: errors.New("model down")}
	a := newTestAssistant(t, &fakeRepo{}, &fakeTools{}, &fakeBackend{}, completer)

	resp, err := a.HandleBookingRequest(context.Background(), "hello", "client_1", newTestSession())
	if err != nil {
		t.Fatalf("completer failure must degrade, not error: %v", err)
	}
	if resp.Type != contractx.ResponseNeedClarification {
		t.Fatalf("type = %s, want %s", resp.Type, contractx.ResponseNeedClarification)
	}
}

func TestEnhancedRecommendationsFiltersUnavailable(t *testing.T) {
	t.Parallel()

	second := sarah()
	second.ID = "ph_2"
	second.Name = "Sarah Miller"
	second.LastName = "Miller"
	second.Rating = 3.5

	tools := &fakeTools{
		availability: contractx.ToolResult{"available": false, "reason": "booked"},
	}
	a := newTestAssistant(t, &fakeRepo{pool: []contractx.Candidate{sarah(), second}}, tools, &fakeBackend{}, &fakeCompleter{})

	enhanced, err := a.EnhancedRecommendations(context.Background(), contractx.Requirements{"shoot_date": "2026-09-15"})
	if err != nil {
		t.Fatalf("EnhancedRecommendations() error = %v", err)
	}
	if len(enhanced) != 0 {
		t.Fatalf("all candidates unavailable, want empty, got %d", len(enhanced))
	}
	if tools.availabilityCalls != 2 {
		t.Fatalf("expected availability check per candidate, got %d", tools.availabilityCalls)
	}
}
