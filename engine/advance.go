/*
advance.go - Simulation clock advancer

PURPOSE:
  Moves the absolute day counter to the next checkpoint and integrates
  everything that happens in between: interest on every account for the
  whole skipped span, and late fees for every due day crossed.

STATE MACHINE:
  earning  --CompleteEarning-->       paying
  paying   --AdvanceToNextPayday-->   earning
  paying   --AdvanceToNextDueDate-->  paying, or complete when all balances
                                      round to zero
  paying   --PayEverything-->         complete (if cash covers all debt)
  complete is terminal; only Reset leaves it.

SPAN ACCOUNTING:
  For an advance from day F to day T (T > F):
  1. Interest: one accrual of T-F days per account, posted at once.
  2. Anchor: LastPaymentDay = T, so the next payment accrues from T.
     This is what keeps back-to-back advances from charging a day twice.
  3. Fees: payday advances scan days F+1..T; due-date advances check T.
     The monthly fee gate makes a second crossing in the same month free.
  4. Monthly payment accumulators reset when T lies in a new month.
  5. Caches and a single snapshot for the whole jump.

SEE ALSO:
  - calendar.go: NextPayday, NextDueDate
  - fees.go: LateFeePolicy
*/
package engine

// AdvanceToNextPayday jumps to the next payday and hands control to the
// earning stage.
func (e *Engine) AdvanceToNextPayday(s GameState) (GameState, error) {
	if err := requireStage(s, "advance to payday", StagePaying); err != nil {
		return s, err
	}

	from := s.CurrentDay
	target := NextPayday(from, e.Config.paydays())
	next := e.advance(s, target, func(d Day) bool { return true })
	next.Stage = StageEarning
	next.MoneyEarnedThisRound = ZeroMoney()
	next.Ledger = next.Ledger.withSnapshot(TakeSnapshot(next))

	e.Logger.Debug().
		Int("from", int(from)).
		Int("to", int(target)).
		Str("interest_total", next.TotalInterestPaid.String()).
		Str("fee_total", next.TotalLateFees.String()).
		Msg("advanced to payday")
	return next, nil
}

// AdvanceToNextDueDate jumps to the nearest due date among accounts with a
// balance, checking fees only on that day. The game completes if nothing is
// owed afterwards.
func (e *Engine) AdvanceToNextDueDate(s GameState) (GameState, error) {
	if err := requireStage(s, "advance to due date", StagePaying); err != nil {
		return s, err
	}

	from := s.CurrentDay
	target := NextDueDate(s.Accounts, from)
	next := e.advance(s, target, func(d Day) bool { return d == target })
	if AccountsRemaining(next) == 0 {
		next.Stage = StageComplete
	}
	next.Ledger = next.Ledger.withSnapshot(TakeSnapshot(next))

	e.Logger.Debug().
		Int("from", int(from)).
		Int("to", int(target)).
		Str("stage", string(next.Stage)).
		Msg("advanced to due date")
	return next, nil
}

// advance integrates interest and fees from the current day to target.
// checkFees selects which crossed days are inspected for due-day fees.
func (e *Engine) advance(s GameState, target Day, checkFees func(Day) bool) GameState {
	next := s.Clone()
	from := s.CurrentDay
	span := DaysBetween(from, target)
	month := MonthIndex(target)

	for i, a := range next.Accounts {
		interest := AccrueInterest(a.Balance, a.InterestRate, span)
		a.Balance = a.Balance.Add(interest).Round()
		a.LastPaymentDay = dayPtr(target)
		next.TotalInterestPaid = next.TotalInterestPaid.Add(interest)

		for d := from + 1; d <= target; d++ {
			if DayOfMonth(d) != a.DueDay || !checkFees(d) {
				continue
			}
			var fee Money
			a, fee = e.Config.LateFee.Assess(a, MonthIndex(d))
			if !fee.IsPositive() {
				continue
			}
			next.TotalLateFees = next.TotalLateFees.Add(fee)
			next.Ledger = next.Ledger.withLateFee(LateFeeEntry{
				Day:       d,
				AccountID: a.ID,
				Month:     MonthIndex(d),
				Amount:    fee,
			})
			e.Logger.Debug().
				Int("day", int(d)).
				Str("account", string(a.ID)).
				Str("fee", fee.String()).
				Str("balance", a.Balance.String()).
				Msg("late fee applied")
		}

		if a.CurrentMonth == nil || *a.CurrentMonth != month {
			a.TotalPaymentsThisMonth = ZeroMoney()
			a.CurrentMonth = intPtr(month)
		}
		next.Accounts[i] = a
	}

	next.CurrentDay = target
	next.NextPayDay = NextPayday(target, e.Config.paydays())
	next.NextDueDate = NextDueDate(next.Accounts, target)
	return next
}

// PayEverything settles every account at once when cash covers the total
// outstanding balance (including unposted interest). Otherwise the state is
// returned unchanged with an *InsufficientFundsError.
func (e *Engine) PayEverything(s GameState) (GameState, error) {
	if err := requireStage(s, "pay everything", StagePaying); err != nil {
		return s, err
	}

	day := s.CurrentDay
	total := ZeroMoney()
	for _, a := range s.Accounts {
		total = total.Add(CurrentBalance(a, day))
	}
	if total.GreaterThan(s.TotalMoney) {
		return s, &InsufficientFundsError{Available: s.TotalMoney, Requested: total}
	}

	next := s.Clone()
	for i, a := range next.Accounts {
		interest := a.PendingInterest(day)
		owed := CurrentBalance(a, day)
		wasOpen := !owed.Settled()

		next.TotalInterestPaid = next.TotalInterestPaid.Add(interest)
		a.Balance = ZeroMoney()
		a.LastPaymentDay = dayPtr(day)
		next.Accounts[i] = a

		if !wasOpen {
			continue
		}
		trackMonthlyPayment(&next.Accounts[i], MonthIndex(day), owed)
		next.Ledger = next.Ledger.withPayment(PaymentLogEntry{
			Day:              day,
			AccountID:        a.ID,
			AmountPaid:       owed,
			InterestAccrued:  interest,
			ResultingBalance: ZeroMoney(),
		})
		next = recordPayoff(next, next.Accounts[i])
	}

	next.TotalMoney = next.TotalMoney.Sub(total).ClampZero()
	next.Stage = StageComplete
	next.NextDueDate = NextDueDate(next.Accounts, day)
	next.Ledger = next.Ledger.withSnapshot(TakeSnapshot(next))

	e.Logger.Info().
		Int("day", int(day)).
		Str("paid", total.String()).
		Msg("all debts paid")
	return next, nil
}
