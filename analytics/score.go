package analytics

import (
	"math"

	"github.com/warp/avalanche-engine/engine"
)

// =============================================================================
// EFFICIENCY SCORE
// =============================================================================

const (
	baseScore      = 1000.0
	interestWeight = 2.0
	lateFeeWeight  = 5.0
	dayWeight      = 0.5
	orderingBonus  = 50.0
)

// EfficiencyScore rates a game from 0 to 1000+. Interest, fees, and elapsed
// days cost points. Each adjacent pair in APR order where the higher-rate
// account is cleared while the next one still carries a balance earns a
// bonus.
func EfficiencyScore(s engine.GameState) float64 {
	score := baseScore -
		interestWeight*s.TotalInterestPaid.Float64() -
		lateFeeWeight*s.TotalLateFees.Float64() -
		dayWeight*float64(s.CurrentDay)

	ranked := RankByRate(s.Accounts)
	for i := 0; i < len(ranked)-1; i++ {
		if !ranked[i].HasBalance() && ranked[i+1].HasBalance() {
			score += orderingBonus
		}
	}
	return math.Max(0, score)
}

// Grade maps a score to a letter.
func Grade(score float64) string {
	switch {
	case score >= 900:
		return "A+"
	case score >= 800:
		return "A"
	case score >= 700:
		return "B"
	case score >= 600:
		return "C"
	case score >= 500:
		return "D"
	default:
		return "F"
	}
}
