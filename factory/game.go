/*
Package factory provides JSON to Go game configuration conversion.

PURPOSE:
  Converts JSON game definitions into engine.Config. The same Config seeds
  the player's game and the optimal-strategy comparison, so a comparison is
  only fair when both are built from one definition.

JSON SCHEMA:
  {
    "starting_cash": 200,
    "late_fee": 35,
    "paydays": [1, 15],
    "starting_stage": "paying",
    "accounts": [
      {
        "id": "visa",
        "name": "Visa Card",
        "color": "#1a365d",
        "balance": 350,
        "limit": 3000,
        "interest_rate": 19,
        "minimum_payment": 25,
        "due_day": 15
      }
    ]
  }

DEFAULTS:
  late_fee       35 when omitted (0 disables fees only if set explicitly)
  paydays        [1, 15]
  starting_stage paying

VALIDATION:
  - at least one account, ids non-empty and unique
  - due_day and every payday in [1, 30]
  - balances, limits, rates, minimums, cash, and fee non-negative

USAGE:
  f := factory.NewGameFactory()
  cfg, err := f.ParseGameConfig(factory.DefaultGameJSON())
  eng := engine.New(cfg, logger)

SEE ALSO:
  - engine/config.go: Config and DefaultAccounts
  - presets.go: Named game definitions
*/
package factory

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/avalanche-engine/engine"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid game config")

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// GameJSON is the JSON representation of a game configuration.
type GameJSON struct {
	StartingCash  float64       `json:"starting_cash"`
	LateFee       *float64      `json:"late_fee,omitempty"`
	Paydays       []int         `json:"paydays,omitempty"`
	StartingStage string        `json:"starting_stage,omitempty"`
	Accounts      []AccountJSON `json:"accounts"`
}

// AccountJSON represents one credit card.
type AccountJSON struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Color          string  `json:"color,omitempty"`
	Balance        float64 `json:"balance"`
	Limit          float64 `json:"limit,omitempty"`
	InterestRate   float64 `json:"interest_rate"`
	MinimumPayment float64 `json:"minimum_payment"`
	DueDay         int     `json:"due_day"`
}

// =============================================================================
// GAME FACTORY
// =============================================================================

// GameFactory converts JSON game definitions to engine configs.
type GameFactory struct{}

// NewGameFactory creates a new game factory.
func NewGameFactory() *GameFactory {
	return &GameFactory{}
}

// ParseGameConfig parses a JSON string into a validated Config.
func (f *GameFactory) ParseGameConfig(jsonStr string) (engine.Config, error) {
	var gj GameJSON
	if err := json.Unmarshal([]byte(jsonStr), &gj); err != nil {
		return engine.Config{}, fmt.Errorf("failed to parse game JSON: %w", err)
	}
	return f.FromJSON(gj)
}

// FromJSON converts GameJSON to a validated Config.
func (f *GameFactory) FromJSON(gj GameJSON) (engine.Config, error) {
	if err := validate(gj); err != nil {
		return engine.Config{}, err
	}

	cfg := engine.Config{
		StartingCash:  engine.NewMoney(gj.StartingCash),
		LateFee:       engine.DefaultLateFeePolicy(),
		Paydays:       append([]int{}, engine.DefaultPaydays...),
		StartingStage: parseStage(gj.StartingStage),
	}
	if gj.LateFee != nil {
		cfg.LateFee = engine.LateFeePolicy{Amount: engine.NewMoney(*gj.LateFee)}
	}
	if len(gj.Paydays) > 0 {
		cfg.Paydays = append([]int{}, gj.Paydays...)
	}

	for _, aj := range gj.Accounts {
		cfg.Accounts = append(cfg.Accounts, engine.Account{
			ID:                     engine.AccountID(aj.ID),
			Name:                   aj.Name,
			Color:                  aj.Color,
			Balance:                engine.NewMoney(aj.Balance),
			Limit:                  engine.NewMoney(aj.Limit),
			InterestRate:           decimal.NewFromFloat(aj.InterestRate),
			MinimumPayment:         engine.NewMoney(aj.MinimumPayment),
			DueDay:                 aj.DueDay,
			TotalPaymentsThisMonth: engine.ZeroMoney(),
		})
	}
	return cfg, nil
}

// ToJSON converts a Config back to its JSON representation.
func (f *GameFactory) ToJSON(cfg engine.Config) GameJSON {
	fee := cfg.LateFee.Amount.Float64()
	gj := GameJSON{
		StartingCash:  cfg.StartingCash.Float64(),
		LateFee:       &fee,
		Paydays:       append([]int{}, cfg.Paydays...),
		StartingStage: string(cfg.StartingStage),
	}
	for _, a := range cfg.Accounts {
		rate, _ := a.InterestRate.Float64()
		gj.Accounts = append(gj.Accounts, AccountJSON{
			ID:             string(a.ID),
			Name:           a.Name,
			Color:          a.Color,
			Balance:        a.Balance.Float64(),
			Limit:          a.Limit.Float64(),
			InterestRate:   rate,
			MinimumPayment: a.MinimumPayment.Float64(),
			DueDay:         a.DueDay,
		})
	}
	return gj
}

// =============================================================================
// VALIDATION
// =============================================================================

func validate(gj GameJSON) error {
	if len(gj.Accounts) == 0 {
		return fmt.Errorf("%w: at least one account is required", ErrInvalidConfig)
	}
	if gj.StartingCash < 0 {
		return fmt.Errorf("%w: starting_cash must not be negative", ErrInvalidConfig)
	}
	if gj.LateFee != nil && *gj.LateFee < 0 {
		return fmt.Errorf("%w: late_fee must not be negative", ErrInvalidConfig)
	}
	for _, p := range gj.Paydays {
		if !validDayOfMonth(p) {
			return fmt.Errorf("%w: payday %d outside 1..%d", ErrInvalidConfig, p, engine.DaysPerMonth)
		}
	}
	switch gj.StartingStage {
	case "", string(engine.StagePaying), string(engine.StageEarning):
	default:
		return fmt.Errorf("%w: unsupported starting_stage %q", ErrInvalidConfig, gj.StartingStage)
	}

	seen := make(map[string]bool, len(gj.Accounts))
	for _, aj := range gj.Accounts {
		if aj.ID == "" {
			return fmt.Errorf("%w: account id is required", ErrInvalidConfig)
		}
		if seen[aj.ID] {
			return fmt.Errorf("%w: duplicate account id %q", ErrInvalidConfig, aj.ID)
		}
		seen[aj.ID] = true

		if !validDayOfMonth(aj.DueDay) {
			return fmt.Errorf("%w: account %q due_day %d outside 1..%d", ErrInvalidConfig, aj.ID, aj.DueDay, engine.DaysPerMonth)
		}
		if aj.Balance < 0 || aj.Limit < 0 || aj.InterestRate < 0 || aj.MinimumPayment < 0 {
			return fmt.Errorf("%w: account %q has a negative amount", ErrInvalidConfig, aj.ID)
		}
	}
	return nil
}

func validDayOfMonth(d int) bool {
	return d >= 1 && d <= engine.DaysPerMonth
}

func parseStage(s string) engine.Stage {
	if s == string(engine.StageEarning) {
		return engine.StageEarning
	}
	return engine.StagePaying
}
