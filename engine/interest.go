package engine

import "github.com/shopspring/decimal"

// =============================================================================
// INTEREST ACCRUAL - Simple daily interest, rounded per step
// =============================================================================
//
// Within one elapsed window interest is simple:
//
//   interest = round(balance * apr/100/365 * days)
//
// Across windows it compounds, because the balance absorbs each posted
// amount before the next call. Rounding to whole units happens at every
// step; sub-unit residue is dropped, never carried forward.

var (
	hundred     = decimal.NewFromInt(100)
	daysPerYear = decimal.NewFromInt(365)
)

// DailyRate converts an annual percentage rate to a daily fraction.
func DailyRate(apr decimal.Decimal) decimal.Decimal {
	return apr.Div(hundred).Div(daysPerYear)
}

// AccrueInterest returns the interest earned by balance over days.
func AccrueInterest(balance Money, apr decimal.Decimal, days int) Money {
	if days <= 0 || !balance.IsPositive() {
		return ZeroMoney()
	}
	return balance.Mul(DailyRate(apr)).Mul(decimal.NewFromInt(int64(days))).Round()
}

// AccrualDays returns the days elapsed since the account's accrual anchor.
// Without an anchor, accrual starts at day 1.
func (a Account) AccrualDays(asOf Day) int {
	if a.LastPaymentDay != nil {
		return max(0, DaysBetween(*a.LastPaymentDay, asOf))
	}
	return max(0, DaysBetween(1, asOf))
}

// PendingInterest is the interest accrued since the anchor but not yet posted.
func (a Account) PendingInterest(asOf Day) Money {
	return AccrueInterest(a.Balance, a.InterestRate, a.AccrualDays(asOf))
}

// CurrentBalance returns the display balance as of a day, including interest
// accrued but not yet posted. It never mutates the account.
func CurrentBalance(a Account, asOf Day) Money {
	return a.Balance.Add(a.PendingInterest(asOf)).Round().ClampZero()
}
