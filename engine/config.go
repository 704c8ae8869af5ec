package engine

import "github.com/shopspring/decimal"

// =============================================================================
// CONFIG - Initial accounts and game constants
// =============================================================================

// Config describes the starting position of a game. The same Config must
// seed both the player's game and any optimal-strategy comparison.
type Config struct {
	Accounts      []Account     `json:"accounts"`
	StartingCash  Money         `json:"starting_cash"`
	LateFee       LateFeePolicy `json:"late_fee"`
	Paydays       []int         `json:"paydays"`
	StartingStage Stage         `json:"starting_stage"`
}

// DefaultAccounts returns the three seeded credit cards.
func DefaultAccounts() []Account {
	return []Account{
		{
			ID:             "visa",
			Name:           "Visa Card",
			Color:          "#1a365d",
			Balance:        NewMoneyFromInt(350),
			Limit:          NewMoneyFromInt(3000),
			InterestRate:   decimal.NewFromInt(19),
			MinimumPayment: NewMoneyFromInt(25),
			DueDay:         15,
		},
		{
			ID:             "mastercard",
			Name:           "MasterCard",
			Color:          "#e53e3e",
			Balance:        NewMoneyFromInt(400),
			Limit:          NewMoneyFromInt(2000),
			InterestRate:   decimal.NewFromInt(23),
			MinimumPayment: NewMoneyFromInt(20),
			DueDay:         5,
		},
		{
			ID:             "discover",
			Name:           "Discover Card",
			Color:          "#38a169",
			Balance:        NewMoneyFromInt(300),
			Limit:          NewMoneyFromInt(1500),
			InterestRate:   decimal.NewFromInt(16),
			MinimumPayment: NewMoneyFromInt(15),
			DueDay:         25,
		},
	}
}

// DefaultConfig returns the standard game: three cards and 200 in cash,
// starting in the paying stage on day 1.
func DefaultConfig() Config {
	return Config{
		Accounts:      DefaultAccounts(),
		StartingCash:  NewMoneyFromInt(200),
		LateFee:       DefaultLateFeePolicy(),
		Paydays:       append([]int{}, DefaultPaydays...),
		StartingStage: StagePaying,
	}
}

func (c Config) paydays() []int {
	if len(c.Paydays) == 0 {
		return DefaultPaydays
	}
	return c.Paydays
}
