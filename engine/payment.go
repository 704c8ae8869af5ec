/*
payment.go - Payment allocator

PURPOSE:
  Applies one payment to one account. Interest accrued since the account's
  anchor is always posted first; the payment is then subtracted from the
  interest-inflated balance.

VALIDATION (no partial application):
  - amount must be positive
  - amount <= cash + Epsilon
  - amount <= live balance + Epsilon
  Within tolerance, the applied amount is clamped to the live balance and
  to the available cash.

MONTHLY MINIMUM TRACKING:
  Partial payments in one month add up. When the monthly total reaches the
  account minimum, LastMinimumPaymentMonth is set to the current month,
  which protects the account from that month's late fee.

SIDE EFFECTS:
  cash -= applied, interest total += accrued, payment log entry, payoff
  milestone and freed minimum on the >0 -> 0 transition, daily snapshot.

SEE ALSO:
  - interest.go: AccrueInterest
  - fees.go: Consumer of LastMinimumPaymentMonth
*/
package engine

// Pay applies amount to the account with the given id. An unknown id is a
// no-op: the input state is returned with a nil error.
func (e *Engine) Pay(s GameState, id AccountID, amount Money) (GameState, error) {
	if err := requireStage(s, "pay", StagePaying); err != nil {
		return s, err
	}

	idx := s.accountIndex(id)
	if idx < 0 {
		e.Logger.Warn().Str("account", string(id)).Msg("payment to unknown account ignored")
		return s, nil
	}

	account := s.Accounts[idx]
	day := s.CurrentDay
	interest := account.PendingInterest(day)
	withInterest := account.Balance.Add(interest).Round()

	if !amount.IsPositive() {
		return s, &InvalidPaymentError{AccountID: id, Amount: amount, Outstanding: withInterest, Reason: ErrInvalidAmount}
	}
	if amount.GreaterThan(s.TotalMoney.Add(Epsilon)) {
		return s, &InsufficientFundsError{Available: s.TotalMoney, Requested: amount}
	}
	if amount.GreaterThan(withInterest.Add(Epsilon)) {
		return s, &InvalidPaymentError{AccountID: id, Amount: amount, Outstanding: withInterest, Reason: ErrOverpayment}
	}

	applied := amount.Min(withInterest).Min(s.TotalMoney).ClampZero()
	next := s.Clone()
	wasOpen := account.HasBalance()

	updated := next.Accounts[idx]
	updated.Balance = withInterest.Sub(applied).Round().ClampZero()
	updated.LastPaymentDay = dayPtr(day)
	trackMonthlyPayment(&updated, MonthIndex(day), applied)
	next.Accounts[idx] = updated

	next.TotalMoney = next.TotalMoney.Sub(applied).ClampZero()
	next.TotalInterestPaid = next.TotalInterestPaid.Add(interest)
	next.Ledger = next.Ledger.withPayment(PaymentLogEntry{
		Day:              day,
		AccountID:        id,
		AmountPaid:       applied,
		InterestAccrued:  interest,
		ResultingBalance: updated.Balance,
	})

	paidOff := wasOpen && !updated.HasBalance()
	if paidOff {
		next = recordPayoff(next, updated)
	}
	next.Ledger = next.Ledger.withSnapshot(TakeSnapshot(next))

	e.Logger.Debug().
		Int("day", int(day)).
		Str("account", string(id)).
		Str("interest", interest.String()).
		Str("paid", applied.String()).
		Str("balance", updated.Balance.String()).
		Bool("paid_off", paidOff).
		Msg("payment applied")
	return next, nil
}

// trackMonthlyPayment updates the rolling monthly accumulator and marks the
// month as satisfied once cumulative payments reach the minimum.
func trackMonthlyPayment(a *Account, month int, amount Money) {
	if a.CurrentMonth == nil || *a.CurrentMonth != month {
		a.TotalPaymentsThisMonth = ZeroMoney()
		a.CurrentMonth = intPtr(month)
	}
	a.TotalPaymentsThisMonth = a.TotalPaymentsThisMonth.Add(amount)
	if !a.TotalPaymentsThisMonth.LessThan(a.MinimumPayment) {
		a.LastMinimumPaymentMonth = intPtr(month)
	}
}

// recordPayoff writes the account's milestone (first payoff only) and frees
// its minimum payment.
func recordPayoff(s GameState, a Account) GameState {
	if _, done := s.Ledger.PayoffMilestones[a.ID]; done {
		return s
	}
	s.FreedMinimums = s.FreedMinimums.Add(a.MinimumPayment)
	s.Ledger = s.Ledger.withMilestone(a.ID, PayoffMilestone{
		Day:                        s.CurrentDay,
		CumulativeInterestAtPayoff: s.TotalInterestPaid,
		AccountName:                a.Name,
		InterestRate:               a.InterestRate.String(),
	})
	return s
}

// RemainingMinimum returns what is still owed toward this month's minimum,
// capped at the live balance.
func RemainingMinimum(a Account, asOf Day) Money {
	owed := a.MinimumPayment
	if a.CurrentMonth != nil && *a.CurrentMonth == MonthIndex(asOf) {
		owed = owed.Sub(a.TotalPaymentsThisMonth).ClampZero()
	}
	return owed.Min(CurrentBalance(a, asOf))
}
