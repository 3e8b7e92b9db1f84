package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	contractx "github.com/lenslink/lenslink-agent/agent/contract"
	extractx "github.com/lenslink/lenslink-agent/agent/extract"
)

// analyzeMarket aggregates completed-booking prices for the same service
// type and location. A failed read or empty sample leaves the zero-filled
// statistics in place; the run never aborts here.
func (a *Agent) analyzeMarket(ctx context.Context, req Request) (*contractx.PricingResult, error) {
	st := &contractx.PricingResult{
		PhotographerID:   req.PhotographerID,
		ServiceType:      req.ServiceType,
		Location:         req.Location,
		Season:           req.Season,
		DurationHours:    req.DurationHours,
		CompetitorPrices: []float64{},
	}

	bookings, err := a.repo.CompletedBookings(ctx, req.ServiceType, req.Location)
	if err != nil {
		log.Warn().Err(err).Str("service_type", req.ServiceType).Str("location", req.Location).
			Msg("pricing: market read failed")
		bookings = nil
	}

	var prices []float64
	for _, b := range bookings {
		if b.FinalPrice > 0 {
			prices = append(prices, b.FinalPrice)
		}
	}

	if len(prices) > 0 {
		st.MarketData = contractx.MarketData{
			AveragePrice: mean(prices),
			MedianPrice:  median(prices),
			MinPrice:     minOf(prices),
			MaxPrice:     maxOf(prices),
			SampleSize:   len(prices),
		}
	}

	st.CurrentStep = "market_analyzed"
	return st, nil
}

// getCompetitorPrices estimates base_price + hourly_rate*duration for every
// other active photographer in the same location.
func (a *Agent) getCompetitorPrices(ctx context.Context, st *contractx.PricingResult) (*contractx.PricingResult, error) {
	competitors, err := a.repo.PhotographersByLocation(ctx, st.Location)
	if err != nil {
		log.Warn().Err(err).Str("location", st.Location).Msg("pricing: competitor read failed")
		competitors = nil
	}

	for _, c := range competitors {
		if c.ID == st.PhotographerID {
			continue
		}
		estimated := c.BasePrice + c.HourlyRate*st.DurationHours
		if estimated > 0 {
			st.CompetitorPrices = append(st.CompetitorPrices, estimated)
		}
	}

	st.CurrentStep = "competitors_analyzed"
	return st, nil
}

func (a *Agent) analyzeHistory(ctx context.Context, st *contractx.PricingResult) (*contractx.PricingResult, error) {
	bookings, err := a.repo.CompletedBookingsByPhotographer(ctx, st.PhotographerID)
	if err != nil {
		log.Warn().Err(err).Str("photographer_id", st.PhotographerID).Msg("pricing: history read failed")
		bookings = nil
	}

	if len(bookings) > 0 {
		var prices, ratings []float64
		recent := 0
		cutoff := a.now().AddDate(0, 0, -recentWindowDays)

		for _, b := range bookings {
			if b.FinalPrice > 0 {
				prices = append(prices, b.FinalPrice)
			}
			if b.Rating > 0 {
				ratings = append(ratings, b.Rating)
			}
			if !b.CreatedAt.IsZero() && b.CreatedAt.After(cutoff) {
				recent++
			}
		}

		st.History = contractx.PhotographerHistory{
			AveragePrice:   mean(prices),
			AverageRating:  mean(ratings),
			TotalBookings:  len(bookings),
			RecentBookings: recent,
		}
	}

	st.CurrentStep = "history_analyzed"
	return st, nil
}

// calculateOptimalPrice asks the model for a number and accepts it only
// inside the sane band; otherwise the market average, then a flat hourly
// fallback. A model failure takes the same fallback path as a parse miss.
func (a *Agent) calculateOptimalPrice(ctx context.Context, st *contractx.PricingResult) (*contractx.PricingResult, error) {
	user := fmt.Sprintf(`Service Details:
- Type: %s
- Location: %s
- Duration: %g hours
- Season: %s

Market Data: %s
Competitor Prices: %s
Photographer History: %s

Provide optimal price as a number.`,
		st.ServiceType, st.Location, st.DurationHours, st.Season,
		mustJSON(st.MarketData), mustJSON(st.CompetitorPrices), mustJSON(st.History))

	completion, err := a.completer.Complete(ctx, a.optimalPrompt, user)
	if err != nil {
		log.Warn().Err(err).Msg("pricing: optimal-price completion failed")
		completion = ""
	}

	st.SuggestedPrice = a.extractPrice(completion, st)
	st.CurrentStep = "price_calculated"
	return st, nil
}

func (a *Agent) generateRecommendation(ctx context.Context, st *contractx.PricingResult) (contractx.PricingResult, error) {
	compMin, compMax := 0.0, 0.0
	if len(st.CompetitorPrices) > 0 {
		compMin = minOf(st.CompetitorPrices)
		compMax = maxOf(st.CompetitorPrices)
	}

	user := fmt.Sprintf(`Suggested Price: $%.2f
Market Average: $%.2f
Competitor Range: $%.2f - $%.2f

Explain this pricing recommendation.`,
		st.SuggestedPrice, st.MarketData.AveragePrice, compMin, compMax)

	reasoning, err := a.completer.Complete(ctx, a.explainPrompt, user)
	if err != nil {
		log.Warn().Err(err).Msg("pricing: recommendation completion failed")
		reasoning = fmt.Sprintf("Suggested price of $%.2f positioned against a market average of $%.2f and competitor range of $%.2f - $%.2f.",
			st.SuggestedPrice, st.MarketData.AveragePrice, compMin, compMax)
	}

	st.Reasoning = reasoning
	st.CurrentStep = "completed"
	return *st, nil
}

func (a *Agent) extractPrice(completion string, st *contractx.PricingResult) float64 {
	if price, err := extractx.FirstNumber(completion); err == nil {
		if price >= minSanePrice && price <= maxSanePrice {
			return price
		}
	}

	if st.MarketData.AveragePrice > 0 {
		return st.MarketData.AveragePrice
	}
	return fallbackHourlyRate * st.DurationHours
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func mustJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
