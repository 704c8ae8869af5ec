package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/avalanche-engine/engine"
)

func money(n int64) engine.Money { return engine.NewMoneyFromInt(n) }

func rate(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// assertMoney compares amounts by value, ignoring decimal representation.
func assertMoney(t *testing.T, want int64, got engine.Money, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, got.Equal(money(want)), append([]any{"want %d, got %s", want, got}, msgAndArgs...)...)
}

// =============================================================================
// INTEREST ACCRUAL TESTS
// =============================================================================

func TestAccrueInterest(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		apr     int64
		days    int
		want    int64
	}{
		{"mastercard four days", 400, 23, 4, 1},
		{"visa fourteen days", 350, 19, 14, 3},
		{"discover fourteen days", 300, 16, 14, 2},
		{"full year", 1000, 20, 365, 200},
		{"zero days", 400, 23, 0, 0},
		{"negative days", 400, 23, -3, 0},
		{"zero balance", 0, 23, 30, 0},
		{"sub-unit residue is dropped", 100, 10, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.AccrueInterest(money(tt.balance), rate(tt.apr), tt.days)
			assertMoney(t, tt.want, got)
		})
	}
}

func TestAccrualDays(t *testing.T) {
	a := engine.DefaultAccounts()[0]

	// No anchor: accrual starts at day 1
	assert.Equal(t, 0, a.AccrualDays(1))
	assert.Equal(t, 9, a.AccrualDays(10))

	anchor := engine.Day(15)
	a.LastPaymentDay = &anchor
	assert.Equal(t, 0, a.AccrualDays(15))
	assert.Equal(t, 10, a.AccrualDays(25))
	assert.Equal(t, 0, a.AccrualDays(10), "anchor in the future never yields negative days")
}

func TestCurrentBalance_DoesNotMutate(t *testing.T) {
	// GIVEN: Mastercard at 400 with no anchor
	a := engine.DefaultAccounts()[1]

	// WHEN: Querying the display balance on day 5
	shown := engine.CurrentBalance(a, 5)

	// THEN: Four days of interest are included, the account is untouched
	assertMoney(t, 401, shown)
	assertMoney(t, 400, a.Balance)
	assert.Nil(t, a.LastPaymentDay)
}
