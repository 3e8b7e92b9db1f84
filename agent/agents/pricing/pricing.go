// Package pricing runs the pricing workflow: market analysis, competitor
// estimation, history analysis, optimal-price calculation, and a
// human-readable recommendation.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/lenslink/lenslink-agent/agent/contract"
)

const (
	// Accepted price band for a model-suggested number.
	minSanePrice = 50.0
	maxSanePrice = 10000.0

	// Fallback hourly rate when neither the model nor the market has data.
	fallbackHourlyRate = 200.0

	recentWindowDays = 90

	SeasonPeak    = "peak"
	SeasonOffPeak = "off-peak"
)

// Request is one pricing run. DurationHours must be positive; Season is
// derived from the current month when empty.
type Request struct {
	PhotographerID string  `json:"photographer_id"`
	ServiceType    string  `json:"service_type"`
	Location       string  `json:"location"`
	DurationHours  float64 `json:"duration_hours"`
	Season         string  `json:"season,omitempty"`
}

type Agent struct {
	repo      contractx.Repository
	completer contractx.Completer

	optimalPrompt string
	explainPrompt string

	graphRunner compose.Runnable[Request, contractx.PricingResult]

	now func() time.Time
}

func New(
	repo contractx.Repository,
	completer contractx.Completer,
	optimalPrompt, explainPrompt string,
) (*Agent, error) {
	if repo == nil {
		return nil, errors.New("repository is required")
	}
	if completer == nil {
		return nil, errors.New("completer is required")
	}

	a := &Agent{
		repo:          repo,
		completer:     completer,
		optimalPrompt: optimalPrompt,
		explainPrompt: explainPrompt,
		now:           time.Now,
	}

	graphRunner, err := a.compileGraph(context.Background())
	if err != nil {
		return nil, err
	}
	a.graphRunner = graphRunner

	return a, nil
}

// Run executes the full pricing workflow for one request.
func (a *Agent) Run(ctx context.Context, req Request) (contractx.PricingResult, error) {
	if strings.TrimSpace(req.PhotographerID) == "" {
		return contractx.PricingResult{}, fmt.Errorf("%w: photographer id is required", contractx.ErrValidation)
	}
	if req.DurationHours <= 0 {
		return contractx.PricingResult{}, fmt.Errorf("%w: duration_hours must be positive", contractx.ErrValidation)
	}

	if strings.TrimSpace(req.Season) == "" {
		req.Season = SeasonForMonth(a.now().Month())
	}

	return a.graphRunner.Invoke(ctx, req)
}

// SeasonForMonth labels May through October as the peak season.
func SeasonForMonth(m time.Month) string {
	if m >= time.May && m <= time.October {
		return SeasonPeak
	}
	return SeasonOffPeak
}
