package analytics

import "github.com/warp/avalanche-engine/engine"

// Comparison holds player-minus-optimal deltas. Positive values mean the
// player did worse.
type Comparison struct {
	PlayerDays       engine.Day   `json:"player_days"`
	OptimalDays      engine.Day   `json:"optimal_days"`
	ExtraDays        int          `json:"extra_days"`
	ExtraInterest    engine.Money `json:"extra_interest"`
	ExtraLateFees    engine.Money `json:"extra_late_fees"`
	ExtraCost        engine.Money `json:"extra_cost"`
	OptimalWasCapped bool         `json:"optimal_was_capped"`
}

// Compare measures a finished (or in-progress) game against an optimal run.
func Compare(player engine.GameState, optimal OptimalResult) Comparison {
	interest := player.TotalInterestPaid.Sub(optimal.TotalInterest)
	fees := player.TotalLateFees.Sub(optimal.TotalLateFees)
	return Comparison{
		PlayerDays:       player.CurrentDay,
		OptimalDays:      optimal.Days,
		ExtraDays:        engine.DaysBetween(optimal.Days, player.CurrentDay),
		ExtraInterest:    interest,
		ExtraLateFees:    fees,
		ExtraCost:        interest.Add(fees),
		OptimalWasCapped: optimal.Estimated,
	}
}
