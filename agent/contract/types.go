package contract

import (
	"strconv"
	"strings"
	"time"
)

type AgentType string

const (
	AgentTypeBooking       AgentType = "booking"
	AgentTypePricing       AgentType = "pricing"
	AgentTypeCommunication AgentType = "communication"
)

type IntentType string

const (
	IntentDirectBooking  IntentType = "direct_booking"
	IntentRecommendation IntentType = "recommendation_request"
	IntentSelection      IntentType = "selection_from_options"
	IntentUnclear        IntentType = "unclear"
)

// Intent is the classified purpose of a user message. It is produced once per
// run by the intent-analysis stage and consumed by exactly one handler.
type Intent struct {
	Type             IntentType   `json:"type"`
	PhotographerName string       `json:"photographer_name,omitempty"`
	Requirements     Requirements `json:"requirements,omitempty"`
	OriginalMessage  string       `json:"original_message,omitempty"`
}

// Requirements is the free-form requirement map extracted from a message.
// The LLM gives no shape guarantee, so typed reads go through accessors.
type Requirements map[string]any

func (r Requirements) String(key string) string {
	if r == nil {
		return ""
	}
	if v, ok := r[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func (r Requirements) Bool(key string) bool {
	if r == nil {
		return false
	}
	if v, ok := r[key].(bool); ok {
		return v
	}
	return false
}

func (r Requirements) Float(key string) float64 {
	if r == nil {
		return 0
	}
	switch v := r[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

func (r Requirements) ShootDate() string      { return r.String("shoot_date") }
func (r Requirements) Location() string       { return r.String("location") }
func (r Requirements) Outdoor() bool          { return r.Bool("outdoor") }
func (r Requirements) DurationHours() float64 { return r.Float("duration_hours") }
func (r Requirements) Budget() float64        { return r.Float("budget") }

// Package is a service package offered by a photographer.
type Package struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	IsActive    bool    `json:"is_active"`
}

// Candidate is a photographer derived read-only per request from the
// photographer/user/package join. Never persisted by this service.
type Candidate struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"-"`
	LastName    string    `json:"-"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Location    string    `json:"location"`
	Rating      float64   `json:"rating"`
	Specialties string    `json:"specialties,omitempty"`
	Packages    []Package `json:"packages,omitempty"`
	MinPrice    float64   `json:"min_price"`
	MaxPrice    float64   `json:"max_price"`
	MatchScore  float64   `json:"match_score,omitempty"`
	MatchReason string    `json:"match_reason,omitempty"`
}

// CheapestPackage returns the lowest-priced package, or false when there is none.
func (c Candidate) CheapestPackage() (Package, bool) {
	if len(c.Packages) == 0 {
		return Package{}, false
	}
	best := c.Packages[0]
	for _, p := range c.Packages[1:] {
		if p.Price < best.Price {
			best = p
		}
	}
	return best, true
}

// CandidateOption is the per-candidate view returned to the user in
// disambiguation and recommendation responses.
type CandidateOption struct {
	Rank        int     `json:"rank,omitempty"`
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Location    string  `json:"location"`
	Rating      float64 `json:"rating"`
	Specialties string  `json:"specialties,omitempty"`
	PriceRange  string  `json:"price_range,omitempty"`
	MatchReason string  `json:"match_reason,omitempty"`
}

// BookingDetails describes a successfully created booking.
type BookingDetails struct {
	BookingID        string  `json:"booking_id"`
	PhotographerName string  `json:"photographer_name"`
	PackageName      string  `json:"package_name"`
	Price            float64 `json:"price"`
	Status           string  `json:"status"`
}

// Response is the structured reply of a workflow run. Failures are always
// in-band: success=false with a type and human message, never a raw error.
type Response struct {
	Success         bool              `json:"success"`
	Type            string            `json:"type"`
	Message         string            `json:"message"`
	SuggestedAction string            `json:"suggested_action,omitempty"`
	Reason          string            `json:"reason,omitempty"`
	Options         []CandidateOption `json:"options,omitempty"`
	Choices         []string          `json:"choices,omitempty"`
	Examples        []string          `json:"examples,omitempty"`
	Suggestions     []string          `json:"suggestions,omitempty"`
	NextStep        string            `json:"next_step,omitempty"`
	BookingDetails  *BookingDetails   `json:"booking_details,omitempty"`
	NextSteps       string            `json:"next_steps,omitempty"`
	WeatherWarning  bool              `json:"weather_warning,omitempty"`
	WeatherInfo     map[string]any    `json:"weather_info,omitempty"`
	WeatherStatus   string            `json:"weather_status,omitempty"`
	Recommendation  string            `json:"recommendation,omitempty"`
	SessionID       string            `json:"session_id,omitempty"`
}

// Response type tags.
const (
	ResponseBookingCreated      = "booking_created"
	ResponsePhotographerMissing = "photographer_not_found"
	ResponseMultipleMatches     = "multiple_matches"
	ResponseNotAvailable        = "not_available"
	ResponseNoPackages          = "no_packages"
	ResponseNoMatches           = "no_matches"
	ResponseRecommendations     = "recommendations"
	ResponseNeedClarification   = "need_clarification"
	ResponseBackendError        = "backend_error"
	ResponseConnectionError     = "connection_error"
)

// MarketData aggregates completed-booking prices for one service type and
// location. Zero-filled when there is no sample.
type MarketData struct {
	AveragePrice float64 `json:"average_price"`
	MedianPrice  float64 `json:"median_price"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
	SampleSize   int     `json:"sample_size"`
}

// PhotographerHistory aggregates one photographer's completed bookings.
type PhotographerHistory struct {
	AveragePrice   float64 `json:"average_price"`
	AverageRating  float64 `json:"average_rating"`
	TotalBookings  int     `json:"total_bookings"`
	RecentBookings int     `json:"recent_bookings"`
}

// PricingResult is the terminal state of a pricing run. It is accumulated
// strictly additively across stages and owned by a single run.
type PricingResult struct {
	PhotographerID   string              `json:"photographer_id"`
	ServiceType      string              `json:"service_type"`
	Location         string              `json:"location"`
	Season           string              `json:"season"`
	DurationHours    float64             `json:"duration_hours"`
	MarketData       MarketData          `json:"market_data"`
	CompetitorPrices []float64           `json:"competitor_prices"`
	History          PhotographerHistory `json:"photographer_history"`
	SuggestedPrice   float64             `json:"suggested_price"`
	Reasoning        string              `json:"reasoning"`
	CurrentStep      string              `json:"current_step"`
}

// BookingRecord is a booking row as read by the pricing and communication
// workflows.
type BookingRecord struct {
	ID             string    `json:"id,omitempty"`
	ClientID       string    `json:"client_id,omitempty"`
	PhotographerID string    `json:"photographer_id,omitempty"`
	ServiceType    string    `json:"service_type,omitempty"`
	Location       string    `json:"location,omitempty"`
	Status         string    `json:"status,omitempty"`
	FinalPrice     float64   `json:"final_price,omitempty"`
	Rating         float64   `json:"rating,omitempty"`
	DurationHours  float64   `json:"duration_hours,omitempty"`
	ShootDate      time.Time `json:"shoot_date,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}

// CompetitorProfile is the slice of a photographer row needed for
// competitor-price estimation.
type CompetitorProfile struct {
	ID         string  `json:"id"`
	BasePrice  float64 `json:"base_price"`
	HourlyRate float64 `json:"hourly_rate"`
	Location   string  `json:"location"`
}

// ClientProfile is the client data fed to the communication workflow.
type ClientProfile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
}

// OutgoingMessage is a queued message row with a delivery expiry.
type OutgoingMessage struct {
	ClientID       string    `json:"client_id"`
	MessageType    string    `json:"message_type"`
	MessageContent string    `json:"message_content"`
	Status         string    `json:"status"`
	SentAt         time.Time `json:"sent_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// BookingCreateRequest is the payload posted to the booking backend.
type BookingCreateRequest struct {
	ClientID       string       `json:"client_id"`
	PhotographerID string       `json:"photographer_id"`
	PackageID      string       `json:"package_id"`
	Requirements   Requirements `json:"requirements"`
	Status         string       `json:"status"`
}

// BookingCreateResult is the backend's reply to a successful creation.
type BookingCreateResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// StatusPendingApproval is the only status this service ever requests.
const StatusPendingApproval = "pending_photographer_approval"

// ToolResult is a tool-gateway reply. Transport failures are carried in-band
// under the "error" key, never as a Go error, so every result is advisory.
type ToolResult map[string]any

func (r ToolResult) Err() string {
	if r == nil {
		return ""
	}
	if v, ok := r["error"].(string); ok {
		return v
	}
	return ""
}

func (r ToolResult) Bool(key string, def bool) bool {
	if r == nil {
		return def
	}
	if v, ok := r[key].(bool); ok {
		return v
	}
	return def
}

func (r ToolResult) String(key string) string {
	if r == nil {
		return ""
	}
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}
