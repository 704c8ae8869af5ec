package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/avalanche-engine/analytics"
	"github.com/warp/avalanche-engine/engine"
	"github.com/warp/avalanche-engine/factory"
	"github.com/warp/avalanche-engine/internal/logger"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play a game with the avalanche strategy",
	Long: `Play a game from day 1 paying the highest interest rate first, and print
how long it took and what it cost.

Every payday credits the next --earning amount. Once the list runs out
the mean of the list is used; with no --earning the player earns nothing.`,
	Example: `  # Classic game earning 300 every payday
  avalanche simulate --earning 300

  # A custom game with a varying income, as JSON
  avalanche simulate --game ./game.json --earning 250,400,150 --json`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().String("preset", "", "Preset to play (default: GAME_PRESET)")
	simulateCmd.Flags().String("game", "", "Path to a game definition JSON file (overrides --preset)")
	simulateCmd.Flags().StringSlice("earning", nil, "Payday earnings, in order")
	simulateCmd.Flags().Bool("json", false, "Print the result as JSON")
}

// simulationOutput is the --json document.
type simulationOutput struct {
	Optimal analytics.OptimalResult  `json:"optimal"`
	Report  analytics.StrategyReport `json:"report"`
}

func runSimulate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("simulate")

	preset, _ := cmd.Flags().GetString("preset")
	gamePath, _ := cmd.Flags().GetString("game")
	earnings, _ := cmd.Flags().GetStringSlice("earning")
	asJSON, _ := cmd.Flags().GetBool("json")

	game, err := resolveGame(preset, gamePath)
	if err != nil {
		return err
	}
	cfg, err := factory.NewGameFactory().ParseGameConfig(game)
	if err != nil {
		return err
	}

	schedule := make([]engine.EarningEntry, 0, len(earnings))
	for _, raw := range earnings {
		amount, err := engine.ParseMoney(raw)
		if err != nil || amount.IsNegative() {
			return fmt.Errorf("invalid earning %q", raw)
		}
		schedule = append(schedule, engine.EarningEntry{Amount: amount})
	}

	log.Debug().
		Int("accounts", len(cfg.Accounts)).
		Int("earnings", len(schedule)).
		Msg("Starting simulation")

	result, err := analytics.SimulateOptimal(engine.New(cfg, log), schedule)
	if err != nil {
		return err
	}
	report := analytics.AnalyzeStrategy(result.Final)

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(simulationOutput{Optimal: result, Report: report})
	}

	if result.Completed {
		fmt.Fprintf(out, "Debt free on day %d (month %d)\n", result.Days, engine.MonthIndex(result.Days)+1)
	} else {
		fmt.Fprintf(out, "Still in debt after %d days\n", result.Days)
	}
	fmt.Fprintf(out, "Interest paid:  %s\n", result.TotalInterest)
	fmt.Fprintf(out, "Late fees:      %s\n", result.TotalLateFees)
	fmt.Fprintf(out, "Total paid:     %s\n", report.TotalPaid)
	for i, id := range result.PayoffOrder {
		fmt.Fprintf(out, "  %d. %s\n", i+1, id)
	}
	fmt.Fprintf(out, "Score:          %.0f (%s)\n", report.Score, report.Grade)
	return nil
}

// resolveGame picks the definition to play: --game, then --preset, then
// the configured default.
func resolveGame(preset, gamePath string) (string, error) {
	if gamePath != "" {
		raw, err := os.ReadFile(gamePath)
		if err != nil {
			return "", fmt.Errorf("read game: %w", err)
		}
		return string(raw), nil
	}
	if preset != "" {
		p, ok := factory.LookupPreset(preset)
		if !ok {
			return "", fmt.Errorf("unknown preset %q", preset)
		}
		return p.JSON, nil
	}
	if appConfig != nil {
		return appConfig.GameJSON()
	}
	return factory.DefaultGameJSON(), nil
}
