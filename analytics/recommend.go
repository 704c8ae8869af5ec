/*
recommend.go - Avalanche payment planner

PURPOSE:
  Splits available cash across accounts the way the debt avalanche method
  prescribes. The plan is advisory; nothing here mutates a game.

ALGORITHM:
  1. Rank accounts with a balance by APR, highest first (ties keep
     configuration order).
  2. Cover what is still owed toward this month's minimum on every
     account, in rank order, while cash lasts.
  3. Pour the surplus into the top-ranked account; when it is cleared,
     cascade to the next rate.

  Each account appears at most once in the plan, and no suggestion exceeds
  the account's live balance, so every suggestion is a valid Pay command.

SEE ALSO:
  - optimal.go: Replays this plan through the engine
  - engine/payment.go: RemainingMinimum
*/
package analytics

import (
	"fmt"
	"sort"

	"github.com/warp/avalanche-engine/engine"
)

// PaymentSuggestion is one line of an avalanche plan.
type PaymentSuggestion struct {
	AccountID engine.AccountID `json:"account_id"`
	Amount    engine.Money     `json:"amount"`
	Reasoning string           `json:"reasoning"`
}

// RankByRate returns the accounts ordered by APR, highest first.
func RankByRate(accounts []engine.Account) []engine.Account {
	ranked := append([]engine.Account{}, accounts...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].InterestRate.GreaterThan(ranked[j].InterestRate)
	})
	return ranked
}

// RecommendPayments plans how to spend cash on the state's open accounts.
func RecommendPayments(s engine.GameState, cash engine.Money) []PaymentSuggestion {
	day := s.CurrentDay

	var open []engine.Account
	for _, a := range s.Accounts {
		if engine.CurrentBalance(a, day).IsPositive() {
			open = append(open, a)
		}
	}
	ranked := RankByRate(open)

	remaining := cash.ClampZero()
	planned := make(map[engine.AccountID]engine.Money, len(ranked))
	minimums := make(map[engine.AccountID]bool, len(ranked))

	for _, a := range ranked {
		if !remaining.IsPositive() {
			break
		}
		amount := engine.RemainingMinimum(a, day).Min(remaining)
		if !amount.IsPositive() {
			continue
		}
		planned[a.ID] = amount
		minimums[a.ID] = true
		remaining = remaining.Sub(amount)
	}

	extra := make(map[engine.AccountID]bool, len(ranked))
	for _, a := range ranked {
		if !remaining.IsPositive() {
			break
		}
		already, ok := planned[a.ID]
		if !ok {
			already = engine.ZeroMoney()
		}
		room := engine.CurrentBalance(a, day).Sub(already).ClampZero()
		amount := room.Min(remaining)
		if !amount.IsPositive() {
			continue
		}
		planned[a.ID] = already.Add(amount)
		extra[a.ID] = true
		remaining = remaining.Sub(amount)
	}

	var plan []PaymentSuggestion
	for _, a := range ranked {
		amount, ok := planned[a.ID]
		if !ok {
			continue
		}
		plan = append(plan, PaymentSuggestion{
			AccountID: a.ID,
			Amount:    amount,
			Reasoning: reasoning(a, minimums[a.ID], extra[a.ID]),
		})
	}
	return plan
}

func reasoning(a engine.Account, minimum, extra bool) string {
	switch {
	case minimum && extra:
		return fmt.Sprintf("Minimum payment plus extra on the highest remaining rate (%s%%)", a.InterestRate)
	case extra:
		return fmt.Sprintf("Pay the highest interest rate first (%s%%)", a.InterestRate)
	default:
		return "Minimum payment to avoid a late fee"
	}
}

// PlanTotal sums the amounts of a plan.
func PlanTotal(plan []PaymentSuggestion) engine.Money {
	total := engine.ZeroMoney()
	for _, p := range plan {
		total = total.Add(p.Amount)
	}
	return total
}
