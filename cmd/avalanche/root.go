package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/avalanche-engine/internal/config"
	"github.com/warp/avalanche-engine/internal/logger"
)

var version = "0.1.0"

var (
	appConfig    *config.Config
	appConfigErr error
)

var rootCmd = &cobra.Command{
	Use:   "avalanche",
	Short: "Debt avalanche game engine",
	Long: `avalanche runs the credit card payoff game: a day-based simulation
where the player earns cash on paydays and spends it on cards with
different interest rates, minimum payments and due dates.

Use "serve" to expose game sessions over HTTP and "simulate" to see how
the highest-rate-first strategy plays a game from start to finish.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree. A configuration error is reported only by
// the commands that need the configuration.
func Execute(cfg *config.Config, cfgErr error) {
	appConfig, appConfigErr = cfg, cfgErr
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func requireConfig() (*config.Config, error) {
	if appConfig == nil {
		return nil, fmt.Errorf("configuration: %w", appConfigErr)
	}
	return appConfig, nil
}
