/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. The stored GameState
  is the engine's persistence format; these types are the client contract
  and add derived values (live balances, remaining minimums, next due
  days) so clients never reimplement interest math.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Amounts are decimal strings in responses ("436"). Requests accept either
  a JSON number or a decimal string.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/game.go: GameJSON accepted by CreateGameRequest
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/avalanche-engine/analytics"
	"github.com/warp/avalanche-engine/engine"
	"github.com/warp/avalanche-engine/factory"
	"github.com/warp/avalanche-engine/store/sqlite"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CreateGameRequest starts a session from a preset or an inline game
// definition. An empty body uses the server's default game.
type CreateGameRequest struct {
	Preset string            `json:"preset,omitempty"`
	Game   *factory.GameJSON `json:"game,omitempty"`
}

// PaymentRequest pays an amount toward one account.
type PaymentRequest struct {
	AccountID engine.AccountID `json:"account_id"`
	Amount    engine.Money     `json:"amount"`
}

// EarningRequest credits the result of an earning round.
type EarningRequest struct {
	Amount engine.Money `json:"amount"`
}

// =============================================================================
// GAME STATE
// =============================================================================

// GameDTO is the client view of a session.
type GameDTO struct {
	ID                string       `json:"id"`
	Day               engine.Day   `json:"day"`
	Month             int          `json:"month"`
	DayOfMonth        int          `json:"day_of_month"`
	Stage             engine.Stage `json:"stage"`
	Cash              engine.Money `json:"cash"`
	EarnedThisRound   engine.Money `json:"earned_this_round"`
	TotalInterestPaid engine.Money `json:"total_interest_paid"`
	TotalLateFees     engine.Money `json:"total_late_fees"`
	TotalOutstanding  engine.Money `json:"total_outstanding"`
	AccountsRemaining int          `json:"accounts_remaining"`
	NextPayDay        engine.Day   `json:"next_pay_day"`
	NextDueDate       engine.Day   `json:"next_due_date"`
	Accounts          []AccountDTO `json:"accounts"`
}

// AccountDTO is one card. Balance is the posted balance; CurrentBalance
// adds interest accrued since the last payment or advance.
type AccountDTO struct {
	ID               engine.AccountID `json:"id"`
	Name             string           `json:"name"`
	Color            string           `json:"color,omitempty"`
	Balance          engine.Money     `json:"balance"`
	CurrentBalance   engine.Money     `json:"current_balance"`
	PendingInterest  engine.Money     `json:"pending_interest"`
	Limit            engine.Money     `json:"limit"`
	Utilization      decimal.Decimal  `json:"utilization"`
	InterestRate     decimal.Decimal  `json:"interest_rate"`
	MinimumPayment   engine.Money     `json:"minimum_payment"`
	RemainingMinimum engine.Money     `json:"remaining_minimum"`
	DueDay           int              `json:"due_day"`
	NextDueDay       engine.Day       `json:"next_due_day"`
	PaidOff          bool             `json:"paid_off"`
}

func toGameDTO(id string, s engine.GameState) GameDTO {
	accounts := make([]AccountDTO, len(s.Accounts))
	for i, a := range s.Accounts {
		accounts[i] = toAccountDTO(a, s.CurrentDay)
	}
	return GameDTO{
		ID:                id,
		Day:               s.CurrentDay,
		Month:             engine.MonthIndex(s.CurrentDay) + 1,
		DayOfMonth:        engine.DayOfMonth(s.CurrentDay),
		Stage:             s.Stage,
		Cash:              s.TotalMoney,
		EarnedThisRound:   s.MoneyEarnedThisRound,
		TotalInterestPaid: s.TotalInterestPaid,
		TotalLateFees:     s.TotalLateFees,
		TotalOutstanding:  engine.TotalOutstanding(s),
		AccountsRemaining: engine.AccountsRemaining(s),
		NextPayDay:        s.NextPayDay,
		NextDueDate:       s.NextDueDate,
		Accounts:          accounts,
	}
}

func toAccountDTO(a engine.Account, day engine.Day) AccountDTO {
	return AccountDTO{
		ID:               a.ID,
		Name:             a.Name,
		Color:            a.Color,
		Balance:          a.Balance,
		CurrentBalance:   engine.CurrentBalance(a, day),
		PendingInterest:  a.PendingInterest(day),
		Limit:            a.Limit,
		Utilization:      a.Utilization(),
		InterestRate:     a.InterestRate,
		MinimumPayment:   a.MinimumPayment,
		RemainingMinimum: engine.RemainingMinimum(a, day),
		DueDay:           a.DueDay,
		NextDueDay:       engine.DueDayAfter(a.DueDay, day),
		PaidOff:          !a.HasBalance(),
	}
}

// =============================================================================
// QUERIES
// =============================================================================

// BalancesDTO previews every balance on a future day without advancing.
type BalancesDTO struct {
	Day      engine.Day   `json:"day"`
	Total    engine.Money `json:"total"`
	Accounts []BalanceDTO `json:"accounts"`
}

// BalanceDTO is one account's preview.
type BalanceDTO struct {
	AccountID        engine.AccountID `json:"account_id"`
	Balance          engine.Money     `json:"balance"`
	PendingInterest  engine.Money     `json:"pending_interest"`
	RemainingMinimum engine.Money     `json:"remaining_minimum"`
}

// RecommendationDTO is the avalanche plan for the session's current cash.
type RecommendationDTO struct {
	Cash        engine.Money                  `json:"cash"`
	Total       engine.Money                  `json:"total"`
	Suggestions []analytics.PaymentSuggestion `json:"suggestions"`
	Estimates   []EstimateDTO                 `json:"estimates"`
	Advice      string                        `json:"advice"`
}

// EstimateDTO previews the effect of one suggested payment.
type EstimateDTO struct {
	AccountID engine.AccountID `json:"account_id"`
	Amount    engine.Money     `json:"amount"`
	analytics.PayoffEstimate
}

// AnalysisDTO compares the session with a simulated avalanche player.
type AnalysisDTO struct {
	Report     analytics.StrategyReport `json:"report"`
	Optimal    analytics.OptimalResult  `json:"optimal"`
	Comparison analytics.Comparison     `json:"comparison"`
}

// HistoryDTO carries the session's ledger series.
type HistoryDTO struct {
	Snapshots []engine.DailySnapshot   `json:"snapshots"`
	LateFees  []engine.LateFeeEntry    `json:"late_fees"`
	Earnings  []engine.EarningEntry    `json:"earnings"`
	Payments  []engine.PaymentLogEntry `json:"payments"`
}

// AuditDTO lists mirrored payments across every round of a session.
type AuditDTO struct {
	SessionID string                 `json:"session_id"`
	Payments  []sqlite.PaymentRecord `json:"payments"`
}

// ScenarioDTO describes a scripted demo session.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Preset      string `json:"preset"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
