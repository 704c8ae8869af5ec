/*
projection.go - Single-payment outcome estimate

PURPOSE:
  Previews what a payment does to one account before it is made: the new
  balance, the interest the payment avoids until the due date, and how
  long the remainder would take to clear on minimum payments alone.

MODEL:
  Daily compounding with the minimum spread evenly over a 30-day month.
  The projection walks day by day and stops at MaxSimulationDays; a
  balance that is still open then (minimum below daily interest, for
  instance) is reported with Estimated set.

SEE ALSO:
  - engine/interest.go: DailyRate
*/
package analytics

import (
	"github.com/shopspring/decimal"
	"github.com/warp/avalanche-engine/engine"
)

// PayoffEstimate is the preview of one payment.
type PayoffEstimate struct {
	NewBalance     engine.Money `json:"new_balance"`
	InterestSaved  engine.Money `json:"interest_saved"`
	MonthsToPayoff int          `json:"months_to_payoff"`
	Estimated      bool         `json:"estimated"`
}

// EstimatePayoff previews paying amount toward account daysUntilDue days
// before its due date.
func EstimatePayoff(account engine.Account, amount engine.Money, daysUntilDue int) PayoffEstimate {
	newBalance := account.Balance.Sub(amount).ClampZero()
	saved := engine.AccrueInterest(amount.Min(account.Balance), account.InterestRate, daysUntilDue)

	daily := engine.DailyRate(account.InterestRate)
	perDay := account.MinimumPayment.Value.Div(decimal.NewFromInt(engine.DaysPerMonth))

	remaining := newBalance.Value
	days := 0
	for remaining.IsPositive() && days < MaxSimulationDays {
		remaining = remaining.Add(remaining.Mul(daily)).Sub(perDay)
		days++
	}

	return PayoffEstimate{
		NewBalance:     newBalance,
		InterestSaved:  saved,
		MonthsToPayoff: (days + engine.DaysPerMonth - 1) / engine.DaysPerMonth,
		Estimated:      remaining.IsPositive(),
	}
}
