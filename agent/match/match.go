// Package match scores and filters photographer candidates against client
// requirements. All functions are pure over in-memory candidates.
package match

import (
	"fmt"
	"sort"
	"strings"

	contractx "github.com/lenslink/lenslink-agent/agent/contract"
)

// Score component weights. Rating dominates, price position and package
// availability nudge, location is a fixed bonus.
const (
	ratingWeight     = 60.0
	priceWeight      = 10.0
	flatPriceScore   = 5.0
	locationBonus    = 20.0
	packagesBonus    = 10.0
	maxScore         = 100.0
	greatValueRatio  = 1.2
	competitiveRatio = 1.5
)

// Score rates a candidate 0..100 given the price bounds of the whole pool.
// Cheaper candidates score higher on the price component; a pool with no
// price spread gives everyone the flat middle score.
func Score(c contractx.Candidate, reqs contractx.Requirements, poolMin, poolMax float64) float64 {
	score := (c.Rating / 5.0) * ratingWeight

	if poolMax > poolMin {
		position := (poolMax - c.MinPrice) / (poolMax - poolMin)
		score += position * priceWeight
	} else {
		score += flatPriceScore
	}

	if locationOverlap(reqs.Location(), c.Location) {
		score += locationBonus
	}

	if len(c.Packages) > 0 {
		score += packagesBonus
	}

	if score > maxScore {
		return maxScore
	}
	return score
}

// Reason builds the human-readable match explanation for a scored candidate.
func Reason(c contractx.Candidate, reqs contractx.Requirements, score, poolMin float64) string {
	var reasons []string

	switch {
	case score >= 80:
		reasons = append(reasons, "Excellent match")
	case score >= 60:
		reasons = append(reasons, "Good match")
	default:
		reasons = append(reasons, "Potential match")
	}

	if c.Rating >= 4.5 {
		reasons = append(reasons, "highly rated")
	}

	if c.MinPrice > 0 && poolMin > 0 {
		switch {
		case c.MinPrice == poolMin:
			reasons = append(reasons, "lowest price")
		case c.MinPrice <= poolMin*greatValueRatio:
			reasons = append(reasons, "great value")
		case c.MinPrice <= poolMin*competitiveRatio:
			reasons = append(reasons, "competitive pricing")
		}
	}

	if locationOverlap(reqs.Location(), c.Location) {
		reasons = append(reasons, "local photographer")
	}

	return strings.Join(reasons, ", ")
}

// Rank scores the pool against the requirements, drops non-positive scores,
// sorts descending by score, and caps the list at limit.
func Rank(pool []contractx.Candidate, reqs contractx.Requirements, limit int) []contractx.Candidate {
	if len(pool) == 0 {
		return nil
	}

	poolMin := pool[0].MinPrice
	poolMax := pool[0].MinPrice
	for _, c := range pool[1:] {
		if c.MinPrice < poolMin {
			poolMin = c.MinPrice
		}
		if c.MinPrice > poolMax {
			poolMax = c.MinPrice
		}
	}

	scored := make([]contractx.Candidate, 0, len(pool))
	for _, c := range pool {
		score := Score(c, reqs, poolMin, poolMax)
		if score <= 0 {
			continue
		}
		c.MatchScore = score
		c.MatchReason = Reason(c, reqs, score, poolMin)
		scored = append(scored, c)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].MatchScore > scored[j].MatchScore
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// NameMatches reports whether the queried name matches the candidate:
// case-insensitive full-name equality, any query token contained in the full
// name, or a single query token equal to the first or last name.
func NameMatches(c contractx.Candidate, name string) bool {
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return false
	}

	first := strings.ToLower(strings.TrimSpace(c.FirstName))
	last := strings.ToLower(strings.TrimSpace(c.LastName))
	full := strings.TrimSpace(first + " " + last)

	if query == full {
		return true
	}

	parts := strings.Fields(query)
	for _, part := range parts {
		if strings.Contains(full, part) {
			return true
		}
	}

	if len(parts) == 1 && (parts[0] == first || parts[0] == last) {
		return true
	}
	return false
}

// FilterByName keeps the candidates whose name matches the query.
func FilterByName(pool []contractx.Candidate, name string) []contractx.Candidate {
	var matches []contractx.Candidate
	for _, c := range pool {
		if NameMatches(c, name) {
			matches = append(matches, c)
		}
	}
	return matches
}

// PriceRange formats a candidate's package price bounds for display.
func PriceRange(c contractx.Candidate) string {
	return fmt.Sprintf("$%.0f - $%.0f", c.MinPrice, c.MaxPrice)
}

func locationOverlap(want, have string) bool {
	want = strings.ToLower(strings.TrimSpace(want))
	have = strings.ToLower(strings.TrimSpace(have))
	if want == "" || have == "" {
		return false
	}
	return strings.Contains(have, want) || strings.Contains(want, have)
}
