package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warp/avalanche-engine/internal/logger"
	"github.com/warp/avalanche-engine/store/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the postgres session schema",
	Long: `Run the embedded postgres migrations against DATABASE_URL and exit.
"serve" applies them on startup as well; this command is for deploys that
migrate before rolling out.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().String("database-url", "", "Postgres DSN (overrides DATABASE_URL)")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("migrate")

	dsn, _ := cmd.Flags().GetString("database-url")
	if dsn == "" {
		if appConfig != nil {
			dsn = appConfig.DatabaseURL
		}
	}
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL or --database-url is required")
	}

	st, err := postgres.Open(cmd.Context(), dsn)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer st.Close()

	log.Info().Msg("Migrations applied")
	return nil
}
