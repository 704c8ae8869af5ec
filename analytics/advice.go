package analytics

import (
	"fmt"

	"github.com/warp/avalanche-engine/engine"
)

// Advice returns one line of avalanche guidance for the current turn.
func Advice(s engine.GameState) string {
	var open []engine.Account
	minimums := engine.ZeroMoney()
	for _, a := range s.Accounts {
		if a.HasBalance() {
			open = append(open, a)
			minimums = minimums.Add(a.MinimumPayment)
		}
	}

	if len(open) == 0 {
		return "Congratulations! You've mastered the debt avalanche method."
	}
	if s.TotalMoney.LessThan(minimums) {
		return "Pay minimums first to avoid late fees, then focus on the highest interest rate card."
	}

	top := RankByRate(open)[0]
	return fmt.Sprintf(
		"Make the minimum payment on every card, then put extra money toward %s (%s%% interest) to save the most.",
		top.Name, top.InterestRate)
}
