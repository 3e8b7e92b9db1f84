package booking

import (
	"context"
	"sort"

	contractx "github.com/lenslink/lenslink-agent/agent/contract"
	matchx "github.com/lenslink/lenslink-agent/agent/match"
	toolx "github.com/lenslink/lenslink-agent/agent/tool"
)

const outdoorWeatherBonus = 5.0

// EnhancedRecommendations re-ranks the basic recommendations with live tool
// data: candidates explicitly unavailable on the shoot date are dropped, and
// candidates with a good outdoor forecast get a small score bonus.
func (a *Assistant) EnhancedRecommendations(ctx context.Context, requirements contractx.Requirements) ([]contractx.Candidate, error) {
	pool, err := a.repo.ActivePhotographers(ctx)
	if err != nil {
		return nil, err
	}

	basic := matchx.Rank(pool, requirements, recommendationPoolCap)
	if len(basic) == 0 {
		return nil, nil
	}

	shootDate := requirements.ShootDate()
	location := requirements.Location()
	outdoor := requirements.Outdoor()

	enhanced := make([]contractx.Candidate, 0, len(basic))
	for _, candidate := range basic {
		if shootDate != "" {
			availability := a.tools.CheckAvailability(ctx, candidate.ID, shootDate)
			if !availability.Bool("available", true) {
				continue
			}
		}

		if location != "" && shootDate != "" && outdoor {
			forecast := a.tools.GetForecast(ctx, location, shootDate)
			if forecast.Bool("good_for_outdoor_shoot", true) {
				candidate.MatchScore += outdoorWeatherBonus
			}
		}

		enhanced = append(enhanced, candidate)
	}

	sort.SliceStable(enhanced, func(i, j int) bool {
		return enhanced[i].MatchScore > enhanced[j].MatchScore
	})
	return enhanced, nil
}

// ResearchTrends looks up current trend material for a photography topic.
func (a *Assistant) ResearchTrends(ctx context.Context, topic, location, year string) contractx.ToolResult {
	return a.tools.Call(ctx, toolx.ServerSearch, "photography_research", map[string]any{
		"topic":    topic,
		"location": location,
		"year":     year,
	})
}

// FindPhotoLocations suggests shoot locations in a city for a photo type.
func (a *Assistant) FindPhotoLocations(ctx context.Context, city, photoType string) contractx.ToolResult {
	if photoType == "" {
		photoType = "general"
	}
	return a.tools.Call(ctx, toolx.ServerSearch, "find_photo_locations", map[string]any{
		"city":       city,
		"photo_type": photoType,
	})
}
