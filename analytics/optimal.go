/*
optimal.go - Optimal-strategy comparator

PURPOSE:
  Answers "how would a perfect avalanche player have done with the same
  income?" by playing a game to completion through the real engine.

MODEL:
  - Same Config as the player's game (same accounts, cash, fees, paydays).
  - Income replays the player's recorded earnings in order, one per
    payday. Once the recording runs out, every further payday earns the
    mean of the recorded amounts (zero if nothing was recorded).
  - On every paying turn: settle everything if cash covers it, otherwise
    pay the RecommendPayments plan and advance to the next payday.
  - The run stops at completion or once the clock passes
    MaxSimulationDays. Hitting the bound marks the result Estimated.

  Because every step goes through Engine.Pay and the advance commands,
  the comparator accrues interest and fees with exactly the player's rules.

SEE ALSO:
  - recommend.go: The per-turn plan
  - compare.go: Player vs optimal deltas
*/
package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/avalanche-engine/engine"
)

// MaxSimulationDays bounds every simulation loop in this package.
const MaxSimulationDays = 1000

// OptimalResult summarizes a simulated avalanche run.
type OptimalResult struct {
	Days          engine.Day         `json:"days"`
	TotalInterest engine.Money       `json:"total_interest"`
	TotalLateFees engine.Money       `json:"total_late_fees"`
	PayoffOrder   []engine.AccountID `json:"payoff_order"`
	Completed     bool               `json:"completed"`
	Estimated     bool               `json:"estimated"`

	Final engine.GameState `json:"-"`
}

// SimulateOptimal plays a fresh game under e's Config using the avalanche
// plan and the given earning schedule.
func SimulateOptimal(e *engine.Engine, schedule []engine.EarningEntry) (OptimalResult, error) {
	income := newIncome(schedule)
	s := e.NewGame()

	for !s.IsComplete() && int(s.CurrentDay) <= MaxSimulationDays {
		var err error
		switch s.Stage {
		case engine.StageEarning:
			s, err = e.CompleteEarning(s, income.next())
		case engine.StagePaying:
			s, err = playTurn(e, s)
		}
		if err != nil {
			return OptimalResult{}, fmt.Errorf("optimal simulation failed on day %d: %w", s.CurrentDay, err)
		}
		if !s.IsComplete() && engine.AccountsRemaining(s) == 0 {
			break
		}
	}

	completed := s.IsComplete() || engine.AccountsRemaining(s) == 0
	return OptimalResult{
		Days:          s.CurrentDay,
		TotalInterest: s.TotalInterestPaid,
		TotalLateFees: s.TotalLateFees,
		PayoffOrder:   payoffOrder(s),
		Completed:     completed,
		Estimated:     !completed,
		Final:         s,
	}, nil
}

// playTurn spends the turn's cash and ends it.
func playTurn(e *engine.Engine, s engine.GameState) (engine.GameState, error) {
	if next, err := e.PayEverything(s); err == nil {
		return next, nil
	}

	for _, p := range RecommendPayments(s, s.TotalMoney) {
		var err error
		s, err = e.Pay(s, p.AccountID, p.Amount)
		if err != nil {
			return s, fmt.Errorf("paying %s to %s: %w", p.Amount, p.AccountID, err)
		}
	}
	if engine.AccountsRemaining(s) == 0 {
		return s, nil
	}
	return e.AdvanceToNextPayday(s)
}

// income replays a recorded schedule and then repeats its mean.
type income struct {
	amounts []engine.Money
	mean    engine.Money
	pos     int
}

func newIncome(schedule []engine.EarningEntry) *income {
	in := &income{mean: engine.ZeroMoney()}
	total := engine.ZeroMoney()
	for _, e := range schedule {
		in.amounts = append(in.amounts, e.Amount)
		total = total.Add(e.Amount)
	}
	if len(in.amounts) > 0 {
		in.mean = engine.Money{Value: total.Value.Div(decimal.NewFromInt(int64(len(in.amounts))))}.Round()
	}
	return in
}

func (in *income) next() engine.Money {
	if in.pos < len(in.amounts) {
		amount := in.amounts[in.pos]
		in.pos++
		return amount
	}
	return in.mean
}

// payoffOrder lists accounts by the day their milestone was recorded.
func payoffOrder(s engine.GameState) []engine.AccountID {
	var order []engine.AccountID
	for _, m := range Milestones(s) {
		order = append(order, m.AccountID)
	}
	return order
}
