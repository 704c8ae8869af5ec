/*
scenarios_test.go - Tests for scripted demo sessions

PURPOSE:
	Tests that each scenario replays cleanly and lands in the state it
	describes, and that the loaded session behaves like any other.
*/
package api

import (
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/avalanche-engine/engine"
	"github.com/warp/avalanche-engine/factory"
)

func TestScenarios_AllReplay(t *testing.T) {
	// GIVEN: Every scenario definition
	// WHEN: Replaying its steps on a fresh game
	// THEN: No step fails
	for _, sc := range scenarios {
		t.Run(sc.ID, func(t *testing.T) {
			preset, ok := factory.LookupPreset(sc.Preset)
			require.True(t, ok)
			cfg, err := factory.NewGameFactory().ParseGameConfig(preset.JSON)
			require.NoError(t, err)
			e := engine.New(cfg, zerolog.Nop())

			_, err = playScenario(e, e.NewGame(), sc.Steps)
			assert.NoError(t, err)
		})
	}
}

func TestLoadScenario_FirstLateFee(t *testing.T) {
	_, srv := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/scenarios/first-late-fee", nil)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	g := decode[GameDTO](t, rec)
	assert.Equal(t, engine.Day(5), g.Day)
	assertMoney(t, 35, g.TotalLateFees)
	assertMoney(t, 436, accountDTO(t, g, "mastercard").Balance)

	// AND: The session is playable
	rec = do(t, srv, http.MethodPost, "/api/games/"+g.ID+"/payments",
		map[string]any{"account_id": "mastercard", "amount": 100})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestLoadScenario_Payday(t *testing.T) {
	_, srv := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/scenarios/payday", nil)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	g := decode[GameDTO](t, rec)
	assert.Equal(t, engine.Day(15), g.Day)
	assert.Equal(t, engine.StageEarning, g.Stage)
	assertMoney(t, 140, g.Cash)
}

func TestLoadScenario_LastCard(t *testing.T) {
	_, srv := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/scenarios/last-card", nil)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	g := decode[GameDTO](t, rec)
	assert.Equal(t, 1, g.AccountsRemaining)
	assertMoney(t, 450, g.Cash)
	assert.False(t, accountDTO(t, g, "discover").PaidOff)
	assert.Equal(t, engine.StagePaying, g.Stage)
}

func TestScenarios_ListAndUnknown(t *testing.T) {
	_, srv := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]ScenarioDTO](t, rec), len(scenarios))

	rec = do(t, srv, http.MethodPost, "/api/scenarios/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
