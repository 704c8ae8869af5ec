package analytics_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/avalanche-engine/analytics"
	"github.com/warp/avalanche-engine/engine"
)

func money(n int64) engine.Money { return engine.NewMoneyFromInt(n) }

func assertMoney(t *testing.T, want int64, got engine.Money, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, got.Equal(money(want)), append([]any{"want %d, got %s", want, got}, msgAndArgs...)...)
}

func newEngine() *engine.Engine {
	return engine.New(engine.DefaultConfig(), zerolog.Nop())
}

func planFor(plan []analytics.PaymentSuggestion, id engine.AccountID) (engine.Money, bool) {
	for _, p := range plan {
		if p.AccountID == id {
			return p.Amount, true
		}
	}
	return engine.Money{}, false
}

// =============================================================================
// RECOMMENDATION
// =============================================================================

func TestRecommendPayments_MinimumsThenHighestRate(t *testing.T) {
	// GIVEN: A fresh game with 200 cash and 60 in minimums
	s := newEngine().NewGame()

	// WHEN: Planning
	plan := analytics.RecommendPayments(s, s.TotalMoney)

	// THEN: Minimums everywhere, the surplus on mastercard (23%)
	require.Len(t, plan, 3)
	assert.Equal(t, engine.AccountID("mastercard"), plan[0].AccountID, "highest rate first")
	mc, _ := planFor(plan, "mastercard")
	visa, _ := planFor(plan, "visa")
	disc, _ := planFor(plan, "discover")
	assertMoney(t, 160, mc)
	assertMoney(t, 25, visa)
	assertMoney(t, 15, disc)
	assertMoney(t, 200, analytics.PlanTotal(plan))
	assert.Contains(t, plan[0].Reasoning, "23%")
}

func TestRecommendPayments_CashBelowMinimums(t *testing.T) {
	s := newEngine().NewGame()

	plan := analytics.RecommendPayments(s, money(50))

	mc, _ := planFor(plan, "mastercard")
	visa, _ := planFor(plan, "visa")
	disc, _ := planFor(plan, "discover")
	assertMoney(t, 20, mc)
	assertMoney(t, 25, visa)
	assertMoney(t, 5, disc)
}

func TestRecommendPayments_CascadesToNextRate(t *testing.T) {
	// GIVEN: Enough cash to clear mastercard with 60 left over
	s := newEngine().NewGame()

	plan := analytics.RecommendPayments(s, money(500))

	mc, _ := planFor(plan, "mastercard")
	visa, _ := planFor(plan, "visa")
	disc, _ := planFor(plan, "discover")
	assertMoney(t, 400, mc)
	assertMoney(t, 85, visa)
	assertMoney(t, 15, disc)
}

func TestRecommendPayments_NeverExceedsBalances(t *testing.T) {
	s := newEngine().NewGame()

	plan := analytics.RecommendPayments(s, money(5000))

	assertMoney(t, 1050, analytics.PlanTotal(plan))
	for _, p := range plan {
		a, ok := s.Account(p.AccountID)
		require.True(t, ok)
		assert.True(t, p.Amount.Equal(a.Balance), "%s planned %s of %s", p.AccountID, p.Amount, a.Balance)
	}
}

func TestRecommendPayments_SkipsPaidOffAndMetMinimums(t *testing.T) {
	// GIVEN: Discover is paid off and mastercard's minimum is met
	e := engine.New(func() engine.Config {
		c := engine.DefaultConfig()
		c.StartingCash = money(400)
		return c
	}(), zerolog.Nop())
	s, err := e.Pay(e.NewGame(), "discover", money(300))
	require.NoError(t, err)
	s, err = e.Pay(s, "mastercard", money(20))
	require.NoError(t, err)

	// WHEN: Planning 40
	plan := analytics.RecommendPayments(s, money(40))

	// THEN: Visa's minimum first, the rest to mastercard
	_, hasDiscover := planFor(plan, "discover")
	assert.False(t, hasDiscover)
	visa, _ := planFor(plan, "visa")
	mc, _ := planFor(plan, "mastercard")
	assertMoney(t, 25, visa)
	assertMoney(t, 15, mc)
}

// =============================================================================
// OPTIMAL COMPARATOR
// =============================================================================

func TestSimulateOptimal_CompletesWithoutFees(t *testing.T) {
	// GIVEN: A schedule of 300 per payday
	e := newEngine()
	schedule := []engine.EarningEntry{
		{Day: 15, Amount: money(300)},
		{Day: 31, Amount: money(300)},
	}

	// WHEN: Simulating the avalanche player
	result, err := analytics.SimulateOptimal(e, schedule)
	require.NoError(t, err)

	// THEN: The game finishes, minimums are always met, mastercard goes first
	assert.True(t, result.Completed)
	assert.False(t, result.Estimated)
	assertMoney(t, 0, result.TotalLateFees)
	assert.Less(t, int(result.Days), analytics.MaxSimulationDays)
	require.Len(t, result.PayoffOrder, 3)
	assert.Equal(t, engine.AccountID("mastercard"), result.PayoffOrder[0])
	assert.Equal(t, 0, engine.AccountsRemaining(result.Final))
}

func TestSimulateOptimal_NoIncomeHitsBound(t *testing.T) {
	// GIVEN: No recorded earnings at all
	e := newEngine()

	result, err := analytics.SimulateOptimal(e, nil)
	require.NoError(t, err)

	// THEN: The run is cut off at the day bound
	assert.False(t, result.Completed)
	assert.True(t, result.Estimated)
	assert.Greater(t, int(result.Days), analytics.MaxSimulationDays)
	assert.True(t, result.TotalLateFees.IsPositive())
}

func TestCompare(t *testing.T) {
	player := newEngine().NewGame()
	player.CurrentDay = 100
	player.TotalInterestPaid = money(50)
	player.TotalLateFees = money(35)

	optimal := analytics.OptimalResult{
		Days:          60,
		TotalInterest: money(20),
		TotalLateFees: engine.ZeroMoney(),
	}

	c := analytics.Compare(player, optimal)

	assert.Equal(t, 40, c.ExtraDays)
	assertMoney(t, 30, c.ExtraInterest)
	assertMoney(t, 35, c.ExtraLateFees)
	assertMoney(t, 65, c.ExtraCost)
	assert.False(t, c.OptimalWasCapped)
}

// =============================================================================
// SCORE
// =============================================================================

func TestEfficiencyScore(t *testing.T) {
	s := newEngine().NewGame()
	assert.InDelta(t, 999.5, analytics.EfficiencyScore(s), 0.001)

	// Highest rate cleared while the next still owes: ordering bonus
	s.Accounts[1].Balance = engine.ZeroMoney()
	assert.InDelta(t, 1049.5, analytics.EfficiencyScore(s), 0.001)

	// Penalties
	s.TotalInterestPaid = money(100)
	s.TotalLateFees = money(35)
	s.CurrentDay = 91
	assert.InDelta(t, 1000-200-175-45.5+50, analytics.EfficiencyScore(s), 0.001)

	// Floor
	s.TotalInterestPaid = money(1000)
	assert.Equal(t, 0.0, analytics.EfficiencyScore(s))
}

func TestGrade(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{1049.5, "A+"},
		{900, "A+"},
		{899.9, "A"},
		{800, "A"},
		{700, "B"},
		{650, "C"},
		{500, "D"},
		{499.5, "F"},
		{0, "F"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, analytics.Grade(tt.score), "score %v", tt.score)
	}
}

// =============================================================================
// STRATEGY REPORT
// =============================================================================

func TestAnalyzeStrategy_LowRateFocus(t *testing.T) {
	// GIVEN: The player favours the lowest-rate card
	e := newEngine()
	s, err := e.Pay(e.NewGame(), "discover", money(150))
	require.NoError(t, err)
	s, err = e.Pay(s, "mastercard", money(50))
	require.NoError(t, err)

	// WHEN: Analyzing
	r := analytics.AnalyzeStrategy(s)

	// THEN: Ratio and mistakes reflect the ordering error
	assert.InDelta(t, 0.25, r.AvalancheRatio, 0.0001)
	assertMoney(t, 200, r.TotalPaid)
	assertMoney(t, 1050, r.InitialDebt)
	assert.Equal(t, 1, r.Months)
	assert.Equal(t, 0, r.MissedMinimums)
	require.Len(t, r.Mistakes, 2)
	assert.Contains(t, r.Mistakes[0], "MasterCard")
	assert.Contains(t, r.Mistakes[1], "Paid more to Discover Card")

	require.Len(t, r.ByAccount, 3)
	assert.Equal(t, engine.AccountID("mastercard"), r.ByAccount[0].AccountID)
	assert.Equal(t, 1, r.ByAccount[0].Count)
	assert.Equal(t, engine.AccountID("discover"), r.ByAccount[2].AccountID)
	assert.InDelta(t, 0.75, r.ByAccount[2].Share, 0.0001)
	assert.Equal(t, "A+", r.Grade)
}

func TestAnalyzeStrategy_LateFees(t *testing.T) {
	// GIVEN: A missed mastercard minimum
	e := newEngine()
	s, err := e.AdvanceToNextDueDate(e.NewGame())
	require.NoError(t, err)

	r := analytics.AnalyzeStrategy(s)

	assert.Equal(t, 1, r.MissedMinimums)
	require.Len(t, r.Mistakes, 2)
	assert.Contains(t, r.Mistakes[1], "Missed 1 minimum payment resulting in 35")
	assert.InDelta(t, 100*38.0/1050.0, r.ExtraCostPercent, 0.0001)
	assert.InDelta(t, 0.6, r.AverageDailyInterest, 0.0001)
}

func TestAnalyzeStrategy_AvalanchePlayerHasNoMistakes(t *testing.T) {
	e := newEngine()
	s, err := e.Pay(e.NewGame(), "mastercard", money(200))
	require.NoError(t, err)

	r := analytics.AnalyzeStrategy(s)

	assert.InDelta(t, 1.0, r.AvalancheRatio, 0.0001)
	assert.Empty(t, r.Mistakes)
}

func TestMilestones_OrderedByDay(t *testing.T) {
	s := newEngine().NewGame()
	s.Ledger.PayoffMilestones = map[engine.AccountID]engine.PayoffMilestone{
		"visa":       {Day: 40, AccountName: "Visa Card"},
		"mastercard": {Day: 12, AccountName: "MasterCard"},
		"discover":   {Day: 40, AccountName: "Discover Card"},
	}

	ms := analytics.Milestones(s)

	require.Len(t, ms, 3)
	assert.Equal(t, engine.AccountID("mastercard"), ms[0].AccountID)
	assert.Equal(t, engine.AccountID("discover"), ms[1].AccountID)
	assert.Equal(t, engine.AccountID("visa"), ms[2].AccountID)
}

// =============================================================================
// ADVICE
// =============================================================================

func TestAdvice(t *testing.T) {
	s := newEngine().NewGame()
	assert.Contains(t, analytics.Advice(s), "MasterCard (23% interest)")

	s.TotalMoney = money(50)
	assert.Contains(t, analytics.Advice(s), "Pay minimums first")

	for i := range s.Accounts {
		s.Accounts[i].Balance = engine.ZeroMoney()
	}
	assert.Contains(t, analytics.Advice(s), "Congratulations")
}

// =============================================================================
// PAYOFF ESTIMATE
// =============================================================================

func TestEstimatePayoff(t *testing.T) {
	mc := engine.DefaultAccounts()[1]

	est := analytics.EstimatePayoff(mc, money(100), 10)

	assertMoney(t, 300, est.NewBalance)
	assertMoney(t, 1, est.InterestSaved)
	assert.False(t, est.Estimated)
	assert.GreaterOrEqual(t, est.MonthsToPayoff, 15)
	assert.LessOrEqual(t, est.MonthsToPayoff, 20)
}

func TestEstimatePayoff_FullPayment(t *testing.T) {
	est := analytics.EstimatePayoff(engine.DefaultAccounts()[2], money(300), 5)

	assertMoney(t, 0, est.NewBalance)
	assert.Equal(t, 0, est.MonthsToPayoff)
	assert.False(t, est.Estimated)
}

func TestEstimatePayoff_Runaway(t *testing.T) {
	a := engine.DefaultAccounts()[1]
	a.Balance = money(10000)
	a.MinimumPayment = money(1)

	est := analytics.EstimatePayoff(a, money(10), 0)

	assert.True(t, est.Estimated)
	assert.Equal(t, 34, est.MonthsToPayoff)
	assertMoney(t, 0, est.InterestSaved)
}
