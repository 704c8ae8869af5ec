package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/avalanche-engine/engine"
)

func playedGame(t *testing.T) (*engine.Engine, engine.GameState) {
	t.Helper()
	e := newEngineWithCash(500)
	s, err := e.Pay(e.NewGame(), "discover", money(300))
	require.NoError(t, err)
	s, err = e.AdvanceToNextPayday(s)
	require.NoError(t, err)
	s, err = e.CompleteEarning(s, money(120))
	require.NoError(t, err)
	return e, s
}

func TestCodec_RoundTrip(t *testing.T) {
	// GIVEN: A state with payments, fees, a milestone, and an earning
	_, s := playedGame(t)

	// WHEN: Encoding and decoding
	blob, err := engine.Marshal(s)
	require.NoError(t, err)
	restored, err := engine.Unmarshal(blob)
	require.NoError(t, err)

	// THEN: The decoded state re-encodes identically
	again, err := engine.Marshal(restored)
	require.NoError(t, err)
	assert.JSONEq(t, string(blob), string(again))

	assert.Equal(t, s.CurrentDay, restored.CurrentDay)
	assert.Equal(t, s.Stage, restored.Stage)
	assert.True(t, s.TotalMoney.Equal(restored.TotalMoney))
	assert.Len(t, restored.Ledger.PayoffMilestones, 1)
	assert.Len(t, restored.Ledger.Earnings, 1)
	require.NotNil(t, account(t, restored, "mastercard").LastPaymentDay)
}

func TestCodec_ContinuesAfterRestore(t *testing.T) {
	// GIVEN: A restored game
	e, s := playedGame(t)
	blob, err := engine.Marshal(s)
	require.NoError(t, err)
	restored := e.Restore(blob)

	// WHEN: The same command runs on the original and the restored state
	a, err := e.AdvanceToNextDueDate(s)
	require.NoError(t, err)
	b, err := e.AdvanceToNextDueDate(restored)
	require.NoError(t, err)

	// THEN: The results match
	ea, err := engine.Marshal(a)
	require.NoError(t, err)
	eb, err := engine.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, string(ea), string(eb))
}

func TestUnmarshal_Rejects(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{"not json", `{{{`},
		{"empty object", `{}`},
		{"no accounts", `{"accounts":[],"current_day":3,"stage":"paying"}`},
		{"unknown stage", `{"accounts":[{"id":"visa"}],"current_day":3,"stage":"sleeping"}`},
		{"day zero", `{"accounts":[{"id":"visa"}],"current_day":0,"stage":"paying"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Unmarshal([]byte(tt.blob))
			assert.ErrorIs(t, err, engine.ErrCorruptState)
		})
	}
}

func TestRestore_FallsBackToNewGame(t *testing.T) {
	e := newEngine()

	for _, blob := range [][]byte{nil, []byte(`garbage`), []byte(`{"stage":"paying"}`)} {
		s := e.Restore(blob)
		assert.Equal(t, engine.Day(1), s.CurrentDay)
		assert.Equal(t, engine.StagePaying, s.Stage)
		assert.Len(t, s.Accounts, 3)
		assert.NotNil(t, s.Ledger.PayoffMilestones)
	}
}
