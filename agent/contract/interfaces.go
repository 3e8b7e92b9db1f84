package contract

import "context"

// Completer is one opaque text completion. No structured-output guarantee:
// callers parse JSON or numeric substrings out of the text defensively.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Registry hands out the per-workflow completers.
type Registry interface {
	Booking() Completer
	Pricing() Completer
	Communication() Completer
}

// Repository is the read/write surface against the relational store.
type Repository interface {
	// ActivePhotographers returns active photographers that have at least one
	// active package, with price bounds aggregated over those packages.
	ActivePhotographers(ctx context.Context) ([]Candidate, error)
	CompletedBookings(ctx context.Context, serviceType, location string) ([]BookingRecord, error)
	CompletedBookingsByPhotographer(ctx context.Context, photographerID string) ([]BookingRecord, error)
	PhotographersByLocation(ctx context.Context, location string) ([]CompetitorProfile, error)
	ClientByID(ctx context.Context, clientID string) (*ClientProfile, error)
	UpcomingBookings(ctx context.Context, clientID string) ([]BookingRecord, error)
	InsertOutgoingMessage(ctx context.Context, msg *OutgoingMessage) error
}

// ToolGateway multiplexes calls to the auxiliary tool servers. Results are
// always in-band: a failed call yields a ToolResult carrying an error field.
type ToolGateway interface {
	Call(ctx context.Context, server, tool string, payload map[string]any) ToolResult
	CheckAvailability(ctx context.Context, photographerID, date string) ToolResult
	GetForecast(ctx context.Context, location, date string) ToolResult
	WebSearch(ctx context.Context, query string, numResults int) ToolResult
}

// BookingBackend creates bookings in the platform backend. Failures are
// recoverable: ErrUpstreamStatus for a non-200 reply, ErrUpstreamUnreachable
// for transport problems.
type BookingBackend interface {
	CreateBooking(ctx context.Context, req BookingCreateRequest) (*BookingCreateResult, error)
}
