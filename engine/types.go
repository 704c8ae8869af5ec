/*
Package engine provides the debt-simulation core.

PURPOSE:
  This package contains the deterministic state machine behind the debt
  avalanche game: revolving credit accounts, daily interest accrual, late
  fees, payments, and the simulated clock that jumps between paydays and
  due dates. Every command is a pure function (state, input) -> new state.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A currency amount backed by decimal.Decimal
  - Day: The absolute day counter that drives the whole simulation
  - Account: One revolving credit line
  - GameState: The aggregate root, the single unit of persistence

DESIGN PRINCIPLES:
  1. Immutability: Commands clone their input; a returned state is never
     mutated again, so callers may keep old snapshots for diffing
  2. Precision: decimal.Decimal, with deliberate whole-unit rounding at
     every accrual and payment step
  3. Determinism: No wall-clock time anywhere, only Day
  4. Auditability: Every balance change lands in the Ledger

USAGE:
  eng := engine.New(engine.DefaultConfig(), zerolog.Nop())
  state := eng.NewGame()
  state, err := eng.Pay(state, "mastercard", engine.NewMoneyFromInt(50))

SEE ALSO:
  - calendar.go: Day arithmetic and recurring events
  - advance.go: The clock advancer
  - ledger.go: Payment log, milestones, snapshots
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Currency amount
// =============================================================================

// Epsilon is the tolerance applied at every payment boundary comparison.
// UI-suggested amounts come from rounded balances and must not be rejected
// for sub-cent noise.
var Epsilon = NewMoney(0.01)

type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money { return Money{Value: decimal.NewFromFloat(value)} }
func NewMoneyFromInt(value int64) Money { return Money{Value: decimal.NewFromInt(value)} }
func ZeroMoney() Money { return Money{Value: decimal.Zero} }

// ParseMoney parses a decimal string such as "12.50".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ZeroMoney(), err
	}
	return Money{Value: d}, nil
}

// MustParseMoney parses s, returning zero on malformed input.
func MustParseMoney(s string) Money {
	m, _ := ParseMoney(s)
	return m
}

func (m Money) Add(o Money) Money { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Mul(s decimal.Decimal) Money { return Money{Value: m.Value.Mul(s)} }
func (m Money) IsZero() bool { return m.Value.IsZero() }
func (m Money) IsPositive() bool { return m.Value.IsPositive() }
func (m Money) IsNegative() bool { return m.Value.IsNegative() }
func (m Money) GreaterThan(o Money) bool { return m.Value.GreaterThan(o.Value) }
func (m Money) LessThan(o Money) bool { return m.Value.LessThan(o.Value) }
func (m Money) LessThanOrEqual(o Money) bool { return m.Value.LessThanOrEqual(o.Value) }
func (m Money) Equal(o Money) bool { return m.Value.Equal(o.Value) }
func (m Money) Float64() float64 { f, _ := m.Value.Float64(); return f }
func (m Money) String() string { return m.Value.String() }

func (m Money) Min(o Money) Money {
	if m.LessThan(o) {
		return m
	}
	return o
}

// Round rounds to whole currency units, half away from zero.
func (m Money) Round() Money { return Money{Value: m.Value.Round(0)} }

// ClampZero returns zero for negative amounts.
func (m Money) ClampZero() Money {
	if m.Value.IsNegative() {
		return ZeroMoney()
	}
	return m
}

// Settled reports whether the amount rounds to zero whole units.
func (m Money) Settled() bool { return !m.ClampZero().Round().IsPositive() }

func (m Money) MarshalJSON() ([]byte, error) { return m.Value.MarshalJSON() }

func (m *Money) UnmarshalJSON(b []byte) error { return m.Value.UnmarshalJSON(b) }

// =============================================================================
// IDENTIFIERS AND TIME
// =============================================================================

type AccountID string

// Day is an absolute day counter; day 1 is the first day of the game.
type Day int

type Stage string

const (
	StageEarning  Stage = "earning"  // Player collects cash via the minigame
	StagePaying   Stage = "paying"   // Player allocates payments
	StageComplete Stage = "complete" // Terminal: every balance is zero
)

// =============================================================================
// ACCOUNT - One revolving credit line
// =============================================================================

// Account is a single credit card. Balance only changes through accrual,
// payment, or a late fee, and is never negative.
type Account struct {
	ID    AccountID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color,omitempty"`

	Balance Money `json:"balance"`
	// Display only; the engine never enforces it.
	Limit Money `json:"limit"`

	// Annual percentage rate, e.g. 19 for 19%.
	InterestRate   decimal.Decimal `json:"interest_rate"`
	MinimumPayment Money           `json:"minimum_payment"`
	DueDay         int             `json:"due_day"`

	// Accrual anchor: day of the last payment or advance. Nil means the
	// account has not accrued since the game started.
	LastPaymentDay *Day `json:"last_payment_day,omitempty"`

	// Zero-based month in which cumulative payments last reached the minimum.
	LastMinimumPaymentMonth *int `json:"last_minimum_payment_month,omitempty"`

	// Zero-based month of the last posted late fee.
	LastLateFeeMonth *int `json:"last_late_fee_month,omitempty"`

	// Rolling monthly accumulator; resets when CurrentMonth changes.
	TotalPaymentsThisMonth Money `json:"total_payments_this_month"`
	CurrentMonth           *int  `json:"current_month,omitempty"`
}

// HasBalance reports whether the account still carries debt in whole units.
func (a Account) HasBalance() bool { return !a.Balance.Settled() }

// Utilization returns balance / limit, or zero when no limit is set.
func (a Account) Utilization() decimal.Decimal {
	if !a.Limit.IsPositive() {
		return decimal.Zero
	}
	return a.Balance.Value.Div(a.Limit.Value)
}

func (a Account) clone() Account {
	c := a
	c.LastPaymentDay = cloneDay(a.LastPaymentDay)
	c.LastMinimumPaymentMonth = cloneInt(a.LastMinimumPaymentMonth)
	c.LastLateFeeMonth = cloneInt(a.LastLateFeeMonth)
	c.CurrentMonth = cloneInt(a.CurrentMonth)
	return c
}

// =============================================================================
// GAME STATE - Aggregate root
// =============================================================================

type GameState struct {
	Accounts   []Account `json:"accounts"`
	CurrentDay Day       `json:"current_day"`
	Stage      Stage     `json:"stage"`

	// Player's spendable cash.
	TotalMoney           Money `json:"total_money"`
	MoneyEarnedThisRound Money `json:"money_earned_this_round"`

	TotalInterestPaid Money `json:"total_interest_paid"`
	TotalLateFees     Money `json:"total_late_fees"`

	// Sum of minimums no longer owed because their account reached zero.
	FreedMinimums Money `json:"freed_minimums"`

	// Caches, recomputed by the advance commands.
	NextPayDay  Day `json:"next_pay_day"`
	NextDueDate Day `json:"next_due_date"`

	Ledger Ledger `json:"ledger"`
}

// Account returns the account with the given id.
func (s GameState) Account(id AccountID) (Account, bool) {
	for _, a := range s.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}

func (s GameState) accountIndex(id AccountID) int {
	for i, a := range s.Accounts {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy that shares no mutable memory with s.
func (s GameState) Clone() GameState {
	c := s
	c.Accounts = make([]Account, len(s.Accounts))
	for i, a := range s.Accounts {
		c.Accounts[i] = a.clone()
	}
	c.Ledger = s.Ledger.clone()
	return c
}

// IsComplete reports whether the game reached its terminal stage.
func (s GameState) IsComplete() bool { return s.Stage == StageComplete }

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneDay(p *Day) *Day {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func intPtr(v int) *int { return &v }
func dayPtr(v Day) *Day { return &v }
