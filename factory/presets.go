/*
presets.go - Named game definitions

PURPOSE:
  Ready-to-play JSON game definitions. Each preset is plain JSON so it goes
  through the same parser and validation as a user-supplied config.

AVAILABLE PRESETS:
  classic:      Three cards (1050 total), 200 starting cash
  tight-budget: Classic cards, 50 starting cash (minimums not covered)
  windfall:     Classic cards, 1200 starting cash (pay everything at once)
  store-card:   Classic cards plus a small high-APR retail card

SEE ALSO:
  - game.go: ParseGameConfig
*/
package factory

import (
	"encoding/json"
	"sort"
)

// Preset describes a named game definition.
type Preset struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	JSON        string `json:"-"`
}

// DefaultPresetID is used when a game is created without a preset.
const DefaultPresetID = "classic"

// DefaultGameJSON returns the classic three-card game.
func DefaultGameJSON() string {
	return gameJSON(200, classicAccounts())
}

// TightBudgetJSON starts with less cash than the combined minimums.
func TightBudgetJSON() string {
	return gameJSON(50, classicAccounts())
}

// WindfallJSON starts with enough cash to clear every card on day 1.
func WindfallJSON() string {
	return gameJSON(1200, classicAccounts())
}

// StoreCardJSON adds a small retail card with the highest APR.
func StoreCardJSON() string {
	accounts := append(classicAccounts(), map[string]interface{}{
		"id":              "storecard",
		"name":            "Store Card",
		"color":           "#805ad5",
		"balance":         180,
		"limit":           500,
		"interest_rate":   27,
		"minimum_payment": 10,
		"due_day":         20,
	})
	return gameJSON(200, accounts)
}

var presets = map[string]Preset{
	"classic": {
		ID:          "classic",
		Name:        "Classic",
		Description: "Three cards, 1050 in debt, 200 to start",
		JSON:        DefaultGameJSON(),
	},
	"tight-budget": {
		ID:          "tight-budget",
		Name:        "Tight Budget",
		Description: "Starting cash does not cover the minimums",
		JSON:        TightBudgetJSON(),
	},
	"windfall": {
		ID:          "windfall",
		Name:        "Windfall",
		Description: "Enough cash to pay everything on day 1",
		JSON:        WindfallJSON(),
	},
	"store-card": {
		ID:          "store-card",
		Name:        "Store Card",
		Description: "A fourth, high-APR retail card joins the classic three",
		JSON:        StoreCardJSON(),
	},
}

// Presets lists the available presets ordered by id.
func Presets() []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LookupPreset returns the preset with the given id.
func LookupPreset(id string) (Preset, bool) {
	p, ok := presets[id]
	return p, ok
}

func classicAccounts() []map[string]interface{} {
	return []map[string]interface{}{
		{
			"id":              "visa",
			"name":            "Visa Card",
			"color":           "#1a365d",
			"balance":         350,
			"limit":           3000,
			"interest_rate":   19,
			"minimum_payment": 25,
			"due_day":         15,
		},
		{
			"id":              "mastercard",
			"name":            "MasterCard",
			"color":           "#e53e3e",
			"balance":         400,
			"limit":           2000,
			"interest_rate":   23,
			"minimum_payment": 20,
			"due_day":         5,
		},
		{
			"id":              "discover",
			"name":            "Discover Card",
			"color":           "#38a169",
			"balance":         300,
			"limit":           1500,
			"interest_rate":   16,
			"minimum_payment": 15,
			"due_day":         25,
		},
	}
}

func gameJSON(cash float64, accounts []map[string]interface{}) string {
	gj := map[string]interface{}{
		"starting_cash":  cash,
		"late_fee":       35,
		"paydays":        []int{1, 15},
		"starting_stage": "paying",
		"accounts":       accounts,
	}
	b, _ := json.MarshalIndent(gj, "", "  ")
	return string(b)
}
