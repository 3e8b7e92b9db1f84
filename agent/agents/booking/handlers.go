package booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/lenslink/lenslink-agent/agent/contract"
	matchx "github.com/lenslink/lenslink-agent/agent/match"
)

const (
	recommendationPoolCap = 10
	recommendationShowCap = 5
)

// processRequest dispatches on the classified intent. Exactly one handler
// runs per turn.
func (a *Assistant) processRequest(ctx context.Context, st *runState) (*runState, error) {
	switch st.Intent.Type {
	case contractx.IntentDirectBooking, contractx.IntentSelection:
		a.handleDirectBooking(ctx, st)
	case contractx.IntentRecommendation:
		a.handleRecommendation(ctx, st)
	default:
		a.handleUnclear(st)
	}

	st.CurrentStep = "request_processed"
	return st, nil
}

func (a *Assistant) handleDirectBooking(ctx context.Context, st *runState) {
	name := strings.TrimSpace(st.Intent.PhotographerName)
	requirements := st.Intent.Requirements

	if st.Intent.Type == contractx.IntentSelection {
		if picked, ok := a.resolveSelection(st); ok {
			if len(st.Session.Requirements) > 0 {
				requirements = mergeRequirements(st.Session.Requirements, requirements)
			}
			st.Matches = []contractx.Candidate{picked}
			st.Response = a.createBooking(ctx, picked, requirements, st.ClientID)
			if st.Response.Success {
				st.Session.Resolve(a.now())
			}
			return
		}
	}

	pool, err := a.repo.ActivePhotographers(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("booking: photographer lookup failed")
		pool = nil
	}

	matches := matchx.FilterByName(pool, name)
	st.Matches = matches

	switch {
	case len(matches) == 0:
		st.Response = contractx.Response{
			Success:         false,
			Type:            contractx.ResponsePhotographerMissing,
			Message:         fmt.Sprintf("I couldn't find a photographer named '%s'. Would you like me to show you available photographers instead?", name),
			SuggestedAction: "show_recommendations",
		}
	case len(matches) > 1:
		st.Session.Clarify(matches, st.Intent, a.now())

		options := make([]contractx.CandidateOption, 0, len(matches))
		for _, m := range matches {
			options = append(options, contractx.CandidateOption{
				ID:          m.ID,
				Name:        m.Name,
				Location:    m.Location,
				Rating:      m.Rating,
				Specialties: m.Specialties,
			})
		}

		st.Response = contractx.Response{
			Success: false,
			Type:    contractx.ResponseMultipleMatches,
			Message: fmt.Sprintf("I found %d photographers named '%s'. Which one did you mean?", len(matches), name),
			Options: options,
		}
	default:
		st.Response = a.createBooking(ctx, matches[0], requirements, st.ClientID)
		if st.Response.Success && st.Intent.Type == contractx.IntentSelection {
			st.Session.Resolve(a.now())
		}
	}
}

// resolveSelection maps a showing_options reply onto the stored candidate
// list: a number picks by rank, a name picks by fuzzy match. An ambiguous or
// unmatched reply falls back to the full-directory path.
func (a *Assistant) resolveSelection(st *runState) (contractx.Candidate, bool) {
	stored := st.Session.Candidates
	if len(stored) == 0 {
		return contractx.Candidate{}, false
	}

	raw := strings.TrimSpace(st.Intent.PhotographerName)
	raw = strings.TrimSuffix(raw, ".")

	if rank, err := strconv.Atoi(raw); err == nil {
		if rank >= 1 && rank <= len(stored) {
			return stored[rank-1], true
		}
		return contractx.Candidate{}, false
	}

	matched := matchx.FilterByName(stored, raw)
	if len(matched) == 1 {
		return matched[0], true
	}
	return contractx.Candidate{}, false
}

func (a *Assistant) handleRecommendation(ctx context.Context, st *runState) {
	requirements := st.Intent.Requirements

	pool, err := a.repo.ActivePhotographers(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("booking: photographer lookup failed")
		pool = nil
	}

	ranked := matchx.Rank(pool, requirements, recommendationPoolCap)
	st.Matches = ranked

	if len(ranked) == 0 {
		st.Response = contractx.Response{
			Success:     false,
			Type:        contractx.ResponseNoMatches,
			Message:     "I couldn't find any photographers matching your requirements. Would you like to adjust your criteria?",
			Suggestions: []string{"Try different dates", "Expand location", "Adjust budget"},
		}
		return
	}

	st.Session.ShowOptions(ranked, requirements, a.now())

	show := ranked
	if len(show) > recommendationShowCap {
		show = show[:recommendationShowCap]
	}

	options := make([]contractx.CandidateOption, 0, len(show))
	for i, rec := range show {
		reason := rec.MatchReason
		if reason == "" {
			reason = "Good match for your needs"
		}
		options = append(options, contractx.CandidateOption{
			Rank:        i + 1,
			ID:          rec.ID,
			Name:        rec.Name,
			Rating:      rec.Rating,
			Specialties: rec.Specialties,
			Location:    rec.Location,
			PriceRange:  matchx.PriceRange(rec),
			MatchReason: reason,
		})
	}

	st.Response = contractx.Response{
		Success:  true,
		Type:     contractx.ResponseRecommendations,
		Message:  fmt.Sprintf("I found %d great photographers for you! Here are the top matches:", len(ranked)),
		Options:  options,
		NextStep: "Tell me which photographer you'd like to book (by name or number).",
	}
}

func (a *Assistant) handleUnclear(st *runState) {
	st.Response = contractx.Response{
		Success: false,
		Type:    contractx.ResponseNeedClarification,
		Message: "I'd be happy to help you book a photographer! You can either:",
		Choices: []string{
			"Tell me the name of a specific photographer you'd like to book",
			"Describe what kind of photography you need and I'll show you recommendations",
		},
		Examples: []string{
			`"I want to book Sarah Johnson"`,
			`"I need a wedding photographer for December 15th"`,
		},
	}
}

// createBooking books the cheapest active package after the optional
// availability and weather checks. Availability blocks only on an explicit
// negative; weather is advisory metadata and never blocks.
func (a *Assistant) createBooking(ctx context.Context, photographer contractx.Candidate, requirements contractx.Requirements, clientID string) contractx.Response {
	selected, ok := photographer.CheapestPackage()
	if !ok {
		return contractx.Response{
			Success: false,
			Type:    contractx.ResponseNoPackages,
			Message: fmt.Sprintf("%s doesn't have any active packages.", photographer.Name),
		}
	}

	shootDate := requirements.ShootDate()
	if shootDate != "" {
		availability := a.tools.CheckAvailability(ctx, photographer.ID, shootDate)
		if !availability.Bool("available", true) {
			reason := availability.String("reason")
			if reason == "" {
				reason = "Unavailable"
			}
			return contractx.Response{
				Success: false,
				Type:    contractx.ResponseNotAvailable,
				Message: fmt.Sprintf("%s is not available on %s. Would you like to check other dates?", photographer.Name, shootDate),
				Reason:  reason,
			}
		}
	}

	var (
		weatherWarning bool
		weatherInfo    map[string]any
		weatherStatus  string
		recommendation string
	)
	location := requirements.Location()
	if location != "" && shootDate != "" && requirements.Outdoor() {
		forecast := a.tools.GetForecast(ctx, location, shootDate)
		weatherInfo = forecast
		if !forecast.Bool("good_for_outdoor_shoot", true) {
			weatherWarning = true
			recommendation = "Consider indoor backup or rescheduling"
		} else {
			weatherStatus = "Good conditions expected!"
		}
	}

	result, err := a.backend.CreateBooking(ctx, contractx.BookingCreateRequest{
		ClientID:       clientID,
		PhotographerID: photographer.ID,
		PackageID:      selected.ID,
		Requirements:   requirements,
		Status:         contractx.StatusPendingApproval,
	})
	if err != nil {
		log.Warn().Err(err).Str("photographer_id", photographer.ID).Msg("booking: backend create failed")
		if errors.Is(err, contractx.ErrUpstreamUnreachable) {
			return contractx.Response{
				Success: false,
				Type:    contractx.ResponseConnectionError,
				Message: "I found the photographer but couldn't connect to our booking system. Please try again.",
			}
		}
		return contractx.Response{
			Success: false,
			Type:    contractx.ResponseBackendError,
			Message: "I found the photographer but couldn't create the booking. Please try again.",
		}
	}

	return contractx.Response{
		Success: true,
		Type:    contractx.ResponseBookingCreated,
		Message: fmt.Sprintf("Perfect! I've sent a booking request to %s for the %s ($%.0f).", photographer.Name, selected.Name, selected.Price),
		BookingDetails: &contractx.BookingDetails{
			BookingID:        result.ID,
			PhotographerName: photographer.Name,
			PackageName:      selected.Name,
			Price:            selected.Price,
			Status:           contractx.StatusPendingApproval,
		},
		NextSteps:      fmt.Sprintf("%s will be notified and will respond within 24 hours.", photographer.Name),
		WeatherWarning: weatherWarning,
		WeatherInfo:    weatherInfo,
		WeatherStatus:  weatherStatus,
		Recommendation: recommendation,
	}
}

func mergeRequirements(base, overlay contractx.Requirements) contractx.Requirements {
	merged := make(contractx.Requirements, len(base)+len(overlay))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overlay {
		merged[k] = v
	}
	return merged
}
