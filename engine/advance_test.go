package engine_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/avalanche-engine/engine"
)

// =============================================================================
// DUE DATE ADVANCE
// =============================================================================

func TestAdvanceToNextDueDate_LateFeeOnMissedMinimum(t *testing.T) {
	// GIVEN: A fresh game, no payments made
	e := newEngine()
	s := e.NewGame()

	// WHEN: Advancing to the nearest due date (mastercard, day 5)
	next, err := e.AdvanceToNextDueDate(s)
	require.NoError(t, err)

	// THEN: Four days of interest post everywhere, mastercard takes a fee
	assert.Equal(t, engine.Day(5), next.CurrentDay)
	assertMoney(t, 351, account(t, next, "visa").Balance)
	assertMoney(t, 436, account(t, next, "mastercard").Balance)
	assertMoney(t, 301, account(t, next, "discover").Balance)
	assertMoney(t, 3, next.TotalInterestPaid)
	assertMoney(t, 35, next.TotalLateFees)
	assert.Equal(t, engine.StagePaying, next.Stage)
	assert.Equal(t, engine.Day(15), next.NextDueDate)
	assert.Equal(t, engine.Day(15), next.NextPayDay)

	require.Len(t, next.Ledger.LateFees, 1)
	fee := next.Ledger.LateFees[0]
	assert.Equal(t, engine.Day(5), fee.Day)
	assert.Equal(t, engine.AccountID("mastercard"), fee.AccountID)
	assert.Equal(t, 0, fee.Month)

	require.Len(t, next.Ledger.DailySnapshots, 2)
	assertMoney(t, 1088, next.Ledger.DailySnapshots[1].TotalBalanceAcrossAccounts)
}

func TestAdvanceToNextDueDate_MinimumPaidAvoidsFee(t *testing.T) {
	// GIVEN: Mastercard's minimum (20) is paid on day 1
	e := newEngine()
	s, err := e.Pay(e.NewGame(), "mastercard", money(20))
	require.NoError(t, err)

	// WHEN: Advancing to its due date
	next, err := e.AdvanceToNextDueDate(s)
	require.NoError(t, err)

	// THEN: Interest only, no fee
	assertMoney(t, 381, account(t, next, "mastercard").Balance)
	assertMoney(t, 0, next.TotalLateFees)
	assert.Empty(t, next.Ledger.LateFees)
}

func TestAdvance_NoDoubleChargeAfterAdvance(t *testing.T) {
	// GIVEN: Interest has been posted by an advance to day 5
	e := newEngine()
	s, err := e.AdvanceToNextDueDate(e.NewGame())
	require.NoError(t, err)
	require.Equal(t, engine.Day(5), *account(t, s, "mastercard").LastPaymentDay)

	// WHEN: Paying on the same day
	next, err := e.Pay(s, "mastercard", money(36))
	require.NoError(t, err)

	// THEN: No further interest accrues for the already-posted span
	assertMoney(t, 0, next.Ledger.PaymentLog[0].InterestAccrued)
	assertMoney(t, 400, account(t, next, "mastercard").Balance)
	assertMoney(t, 3, next.TotalInterestPaid)
}

func TestAdvanceToNextDueDate_CompletesWhenEverythingPaid(t *testing.T) {
	// GIVEN: Every account is paid off individually
	e := newEngineWithCash(2000)
	s := e.NewGame()
	var err error
	for _, id := range []engine.AccountID{"visa", "mastercard", "discover"} {
		a := account(t, s, id)
		s, err = e.Pay(s, id, a.Balance)
		require.NoError(t, err)
	}
	require.Equal(t, engine.StagePaying, s.Stage)
	assertMoney(t, 60, s.FreedMinimums)

	// WHEN: Advancing to the next due date
	next, err := e.AdvanceToNextDueDate(s)
	require.NoError(t, err)

	// THEN: Nothing is owed, the clock moves a month, the game completes
	assert.Equal(t, engine.StageComplete, next.Stage)
	assert.True(t, next.IsComplete())
	assert.Equal(t, engine.Day(31), next.CurrentDay)
	assertMoney(t, 0, next.TotalLateFees)

	// AND: Further commands are refused
	_, err = e.Pay(next, "visa", money(1))
	assert.ErrorIs(t, err, engine.ErrGameComplete)
	_, err = e.AdvanceToNextPayday(next)
	assert.ErrorIs(t, err, engine.ErrGameComplete)
}

// =============================================================================
// PAYDAY ADVANCE
// =============================================================================

func TestAdvanceToNextPayday_ScansEveryCrossedDueDay(t *testing.T) {
	// GIVEN: A fresh game
	e := newEngine()
	s := e.NewGame()

	// WHEN: Skipping straight to the payday on day 15
	next, err := e.AdvanceToNextPayday(s)
	require.NoError(t, err)

	// THEN: Both crossed due days (mastercard 5, visa 15) are charged
	assert.Equal(t, engine.Day(15), next.CurrentDay)
	assert.Equal(t, engine.StageEarning, next.Stage)
	assertMoney(t, 0, next.MoneyEarnedThisRound)
	assertMoney(t, 388, account(t, next, "visa").Balance)
	assertMoney(t, 439, account(t, next, "mastercard").Balance)
	assertMoney(t, 302, account(t, next, "discover").Balance)
	assertMoney(t, 9, next.TotalInterestPaid)
	assertMoney(t, 70, next.TotalLateFees)
	assert.Len(t, next.Ledger.LateFees, 2)
	assert.Equal(t, engine.Day(31), next.NextPayDay)
	assert.Equal(t, engine.Day(25), next.NextDueDate)
}

func TestAdvance_FullRound(t *testing.T) {
	// GIVEN: The game has reached payday 15 and earned 100
	e := newEngine()
	s, err := e.AdvanceToNextPayday(e.NewGame())
	require.NoError(t, err)
	s, err = e.CompleteEarning(s, money(100))
	require.NoError(t, err)

	// WHEN: Advancing to discover's due date on day 25
	s, err = e.AdvanceToNextDueDate(s)
	require.NoError(t, err)

	// THEN: Ten days of interest post, discover takes its fee
	assert.Equal(t, engine.Day(25), s.CurrentDay)
	assertMoney(t, 390, account(t, s, "visa").Balance)
	assertMoney(t, 442, account(t, s, "mastercard").Balance)
	assertMoney(t, 338, account(t, s, "discover").Balance)
	assertMoney(t, 15, s.TotalInterestPaid)
	assertMoney(t, 105, s.TotalLateFees)
	assertMoney(t, 300, s.TotalMoney)
}

func TestAdvance_FeesAccumulateAcrossAdvances(t *testing.T) {
	// GIVEN: Mastercard already took its month-0 fee on day 5
	e := newEngine()
	s, err := e.AdvanceToNextDueDate(e.NewGame())
	require.NoError(t, err)
	require.Len(t, s.Ledger.LateFees, 1)

	// WHEN: Advancing through the rest of month 0 to payday 15
	s, err = e.AdvanceToNextPayday(s)
	require.NoError(t, err)

	// THEN: Only visa is added; mastercard's due day is not revisited
	require.Len(t, s.Ledger.LateFees, 2)
	assert.Equal(t, engine.AccountID("visa"), s.Ledger.LateFees[1].AccountID)
	assertMoney(t, 70, s.TotalLateFees)
}

func TestAdvance_MonthlyAccumulatorResets(t *testing.T) {
	// GIVEN: Mastercard paid its minimum in month 0
	e := newEngineWithCash(1000)
	s, err := e.Pay(e.NewGame(), "mastercard", money(20))
	require.NoError(t, err)

	// WHEN: Advancing into month 1 (payday 15, then due dates 25, 35)
	s, err = e.AdvanceToNextPayday(s)
	require.NoError(t, err)
	s, err = e.CompleteEarning(s, engine.ZeroMoney())
	require.NoError(t, err)
	s, err = e.AdvanceToNextDueDate(s) // 25
	require.NoError(t, err)
	s, err = e.AdvanceToNextDueDate(s) // 35
	require.NoError(t, err)

	// THEN: The month-0 payment no longer protects mastercard
	mc := account(t, s, "mastercard")
	assert.Equal(t, engine.Day(35), s.CurrentDay)
	assertMoney(t, 0, mc.TotalPaymentsThisMonth)
	require.NotNil(t, mc.CurrentMonth)
	assert.Equal(t, 1, *mc.CurrentMonth)
	require.NotNil(t, mc.LastLateFeeMonth)
	assert.Equal(t, 1, *mc.LastLateFeeMonth)
}

func TestAdvance_DoesNotMutateInput(t *testing.T) {
	e := newEngine()
	s := e.NewGame()

	_, err := e.AdvanceToNextPayday(s)
	require.NoError(t, err)

	assert.Equal(t, engine.Day(1), s.CurrentDay)
	assertMoney(t, 400, account(t, s, "mastercard").Balance)
	assert.Nil(t, account(t, s, "mastercard").LastPaymentDay)
	assert.Len(t, s.Ledger.DailySnapshots, 1)
	assert.Empty(t, s.Ledger.LateFees)
}

// =============================================================================
// PAY EVERYTHING
// =============================================================================

func TestPayEverything_InsufficientFunds(t *testing.T) {
	// GIVEN: 200 cash against 1050 of debt
	e := newEngine()
	s := e.NewGame()

	// WHEN: Paying everything
	next, err := e.PayEverything(s)

	// THEN: Nothing changes
	require.Error(t, err)
	var fundsErr *engine.InsufficientFundsError
	require.True(t, errors.As(err, &fundsErr))
	assertMoney(t, 1050, fundsErr.Requested)
	assertMoney(t, 850, fundsErr.Shortfall())

	assert.Equal(t, engine.StagePaying, next.Stage)
	assertMoney(t, 200, next.TotalMoney)
	assert.Empty(t, next.Ledger.PaymentLog)
}

func TestPayEverything_SettlesAllAccounts(t *testing.T) {
	// GIVEN: Enough cash, four days in (interest pending, mastercard fee posted)
	e := newEngineWithCash(2000)
	s, err := e.AdvanceToNextDueDate(e.NewGame())
	require.NoError(t, err)

	// WHEN: Paying everything
	next, err := e.PayEverything(s)
	require.NoError(t, err)

	// THEN: All balances clear and the game completes
	assert.Equal(t, engine.StageComplete, next.Stage)
	assertMoney(t, 912, next.TotalMoney)
	assertMoney(t, 60, next.FreedMinimums)
	assert.Equal(t, 0, engine.AccountsRemaining(next))
	assert.Len(t, next.Ledger.PayoffMilestones, 3)
	assert.Len(t, next.Ledger.PaymentLog, 3)
	assertMoney(t, 1088, next.Ledger.TotalPaid())
	for _, a := range next.Accounts {
		assertMoney(t, 0, a.Balance, a.ID)
	}

	last := next.Ledger.DailySnapshots[len(next.Ledger.DailySnapshots)-1]
	assertMoney(t, 0, last.TotalBalanceAcrossAccounts)
	assert.Equal(t, 0, last.AccountsRemaining)
}

func TestPayEverything_IncludesUnpostedInterest(t *testing.T) {
	// GIVEN: Ten days of interest pending, never posted
	e := newEngineWithCash(2000)
	s := e.NewGame()
	s.CurrentDay = 11

	next, err := e.PayEverything(s)
	require.NoError(t, err)

	// visa 2, mastercard 3, discover 1
	assertMoney(t, 6, next.TotalInterestPaid)
	assertMoney(t, 944, next.TotalMoney)
}
