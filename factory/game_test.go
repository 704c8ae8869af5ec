package factory_test

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/avalanche-engine/engine"
	"github.com/warp/avalanche-engine/factory"
)

func TestParseGameConfig_DefaultMatchesEngineDefault(t *testing.T) {
	// GIVEN: The default game JSON
	f := factory.NewGameFactory()

	// WHEN: Parsing it
	cfg, err := f.ParseGameConfig(factory.DefaultGameJSON())
	require.NoError(t, err)

	// THEN: It is equivalent to engine.DefaultConfig
	want := engine.DefaultConfig()
	assert.True(t, cfg.StartingCash.Equal(want.StartingCash))
	assert.True(t, cfg.LateFee.Amount.Equal(want.LateFee.Amount))
	assert.Equal(t, want.Paydays, cfg.Paydays)
	assert.Equal(t, want.StartingStage, cfg.StartingStage)
	require.Len(t, cfg.Accounts, len(want.Accounts))
	for i, w := range want.Accounts {
		got := cfg.Accounts[i]
		assert.Equal(t, w.ID, got.ID)
		assert.Equal(t, w.Name, got.Name)
		assert.Equal(t, w.Color, got.Color)
		assert.Equal(t, w.DueDay, got.DueDay)
		assert.True(t, w.Balance.Equal(got.Balance), "%s balance", w.ID)
		assert.True(t, w.Limit.Equal(got.Limit), "%s limit", w.ID)
		assert.True(t, w.InterestRate.Equal(got.InterestRate), "%s rate", w.ID)
		assert.True(t, w.MinimumPayment.Equal(got.MinimumPayment), "%s minimum", w.ID)
	}
}

func TestParseGameConfig_PlaysLikeDefault(t *testing.T) {
	cfg, err := factory.NewGameFactory().ParseGameConfig(factory.DefaultGameJSON())
	require.NoError(t, err)
	e := engine.New(cfg, zerolog.Nop())

	s, err := e.AdvanceToNextDueDate(e.NewGame())
	require.NoError(t, err)

	mc, _ := s.Account("mastercard")
	assert.True(t, mc.Balance.Equal(engine.NewMoneyFromInt(436)))
}

func TestParseGameConfig_Defaults(t *testing.T) {
	cfg, err := factory.NewGameFactory().ParseGameConfig(`{
		"starting_cash": 10,
		"accounts": [{"id": "a", "name": "A", "balance": 100, "interest_rate": 12.5, "minimum_payment": 5, "due_day": 10}]
	}`)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 15}, cfg.Paydays)
	assert.Equal(t, engine.StagePaying, cfg.StartingStage)
	assert.True(t, cfg.LateFee.Amount.Equal(engine.DefaultLateFee))
	assert.Equal(t, "12.5", cfg.Accounts[0].InterestRate.String())
}

func TestParseGameConfig_ExplicitZeroFee(t *testing.T) {
	cfg, err := factory.NewGameFactory().ParseGameConfig(`{
		"starting_cash": 10, "late_fee": 0, "starting_stage": "earning", "paydays": [10],
		"accounts": [{"id": "a", "balance": 100, "interest_rate": 10, "minimum_payment": 5, "due_day": 10}]
	}`)
	require.NoError(t, err)

	assert.True(t, cfg.LateFee.Amount.IsZero())
	assert.Equal(t, engine.StageEarning, cfg.StartingStage)
	assert.Equal(t, []int{10}, cfg.Paydays)
}

func TestParseGameConfig_Validation(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"malformed", `{`, "failed to parse"},
		{"no accounts", `{"starting_cash": 10, "accounts": []}`, "at least one account"},
		{"negative cash", `{"starting_cash": -1, "accounts": [{"id":"a","due_day":1}]}`, "starting_cash"},
		{"negative fee", `{"late_fee": -1, "accounts": [{"id":"a","due_day":1}]}`, "late_fee"},
		{"bad payday", `{"paydays": [0], "accounts": [{"id":"a","due_day":1}]}`, "payday 0"},
		{"bad stage", `{"starting_stage": "complete", "accounts": [{"id":"a","due_day":1}]}`, "starting_stage"},
		{"missing id", `{"accounts": [{"due_day":1}]}`, "id is required"},
		{"duplicate id", `{"accounts": [{"id":"a","due_day":1},{"id":"a","due_day":2}]}`, "duplicate"},
		{"due day too late", `{"accounts": [{"id":"a","due_day":31}]}`, "due_day 31"},
		{"negative balance", `{"accounts": [{"id":"a","due_day":1,"balance":-5}]}`, "negative"},
	}

	f := factory.NewGameFactory()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ParseGameConfig(tt.json)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			if tt.name != "malformed" {
				assert.ErrorIs(t, err, factory.ErrInvalidConfig)
			}
		})
	}
}

func TestToJSON_RoundTrip(t *testing.T) {
	f := factory.NewGameFactory()
	cfg, err := f.ParseGameConfig(factory.StoreCardJSON())
	require.NoError(t, err)

	again, err := f.FromJSON(f.ToJSON(cfg))
	require.NoError(t, err)

	require.Len(t, again.Accounts, 4)
	assert.Equal(t, engine.AccountID("storecard"), again.Accounts[3].ID)
	assert.True(t, again.Accounts[3].InterestRate.Equal(cfg.Accounts[3].InterestRate))
	assert.True(t, again.StartingCash.Equal(cfg.StartingCash))
}

func TestPresets(t *testing.T) {
	f := factory.NewGameFactory()
	list := factory.Presets()
	require.Len(t, list, 4)
	assert.Equal(t, "classic", list[0].ID)

	for _, p := range list {
		_, err := f.ParseGameConfig(p.JSON)
		assert.NoError(t, err, p.ID)
	}

	p, ok := factory.LookupPreset("windfall")
	require.True(t, ok)
	assert.True(t, strings.Contains(p.JSON, "1200"))

	_, ok = factory.LookupPreset("nope")
	assert.False(t, ok)
}
