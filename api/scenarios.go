/*
scenarios.go - Scripted demo sessions

PURPOSE:
  Provides pre-built scenarios that start a session part way through a
  game, so a frontend (or a person with curl) can jump straight to an
  interesting moment: a first late fee, a payday waiting for earnings, the
  last open card.

AVAILABLE SCENARIOS:
  first-late-fee:     Classic game advanced past Mastercard's due day unpaid
  payday:             Minimums paid, waiting in the earning stage on day 15
  lowest-rate-first:  All cash on the cheapest card, then a due date passes
  last-card:          Windfall game with only Discover left to pay

HOW SCENARIOS WORK:
 1. Build an engine from the scenario's preset
 2. Start a new game and replay the scripted steps through the engine
 3. Store the resulting state as a new session

USAGE VIA API:
  GET  /api/scenarios
  POST /api/scenarios/{id}    -> 201 with the new session

ADDING NEW SCENARIOS:
 1. Add an entry to 'scenarios' with a preset and its steps
 2. Steps use the same commands as the session endpoints

SEE ALSO:
  - handlers.go: Session commands
  - factory/presets.go: Game definitions the scenarios start from
*/
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/warp/avalanche-engine/engine"
	"github.com/warp/avalanche-engine/factory"
)

// Scenario step commands.
const (
	stepPay            = "pay"
	stepEarn           = "earn"
	stepAdvancePayday  = "advance-payday"
	stepAdvanceDueDate = "advance-due-date"
)

// scenarioStep is one scripted command.
type scenarioStep struct {
	Command   string
	AccountID engine.AccountID
	Amount    engine.Money
}

type scenario struct {
	ScenarioDTO
	Steps []scenarioStep
}

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "first-late-fee",
			Name:        "First Late Fee",
			Description: "Nothing paid and Mastercard's due day has passed",
			Preset:      "classic",
		},
		Steps: []scenarioStep{
			{Command: stepAdvanceDueDate},
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "payday",
			Name:        "Payday",
			Description: "Every minimum paid, waiting for the day 15 earnings",
			Preset:      "classic",
		},
		Steps: []scenarioStep{
			{Command: stepPay, AccountID: "visa", Amount: engine.NewMoneyFromInt(25)},
			{Command: stepPay, AccountID: "mastercard", Amount: engine.NewMoneyFromInt(20)},
			{Command: stepPay, AccountID: "discover", Amount: engine.NewMoneyFromInt(15)},
			{Command: stepAdvancePayday},
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "lowest-rate-first",
			Name:        "Lowest Rate First",
			Description: "All cash went to the cheapest card and a due date passed",
			Preset:      "classic",
		},
		Steps: []scenarioStep{
			{Command: stepPay, AccountID: "discover", Amount: engine.NewMoneyFromInt(200)},
			{Command: stepAdvanceDueDate},
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "last-card",
			Name:        "Last Card",
			Description: "Mastercard and Visa are paid off; Discover remains",
			Preset:      "windfall",
		},
		Steps: []scenarioStep{
			{Command: stepPay, AccountID: "mastercard", Amount: engine.NewMoneyFromInt(400)},
			{Command: stepPay, AccountID: "visa", Amount: engine.NewMoneyFromInt(350)},
		},
	},
}

func lookupScenario(id string) (scenario, bool) {
	for _, sc := range scenarios {
		if sc.ID == id {
			return sc, true
		}
	}
	return scenario{}, false
}

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	out := make([]ScenarioDTO, len(scenarios))
	for i, sc := range scenarios {
		out[i] = sc.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, out)
}

// LoadScenario starts a new session from a scenario.
// POST /api/scenarios/{id}
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	sc, ok := lookupScenario(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown scenario: %s", chi.URLParam(r, "id")), nil)
		return
	}

	preset, ok := factory.LookupPreset(sc.Preset)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Scenario preset is missing", nil)
		return
	}

	id := uuid.NewString()
	e, err := h.newEngine(id, preset.JSON)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Invalid scenario game", err)
		return
	}

	s, err := playScenario(e, e.NewGame(), sc.Steps)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %s", sc.ID), err)
		return
	}

	if err := h.Store.Create(r.Context(), id, []byte(preset.JSON), s); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create game", err)
		return
	}

	h.Logger.Info().Str("session_id", id).Str("scenario", sc.ID).Msg("scenario loaded")
	writeJSON(w, http.StatusCreated, toGameDTO(id, s))
}

// playScenario replays steps in order and stops at the first error.
func playScenario(e *engine.Engine, s engine.GameState, steps []scenarioStep) (engine.GameState, error) {
	for i, step := range steps {
		var err error
		switch step.Command {
		case stepPay:
			s, err = e.Pay(s, step.AccountID, step.Amount)
		case stepEarn:
			s, err = e.CompleteEarning(s, step.Amount)
		case stepAdvancePayday:
			s, err = e.AdvanceToNextPayday(s)
		case stepAdvanceDueDate:
			s, err = e.AdvanceToNextDueDate(s)
		default:
			err = fmt.Errorf("unknown step command %q", step.Command)
		}
		if err != nil {
			return s, fmt.Errorf("step %d (%s): %w", i+1, step.Command, err)
		}
	}
	return s, nil
}
