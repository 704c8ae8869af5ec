/*
main.go - Application entry point

PURPOSE:
  Loads .env and the environment configuration, sets up logging and hands
  over to the cobra command tree.

ENVIRONMENT:
  See internal/config/config.go for the full list. The most common:
    PORT           HTTP server port (default: 8080)
    STORE_BACKEND  memory | sqlite | postgres | redis (default: sqlite)
    GAME_PRESET    Default game for new sessions (default: classic)
    LOG_LEVEL      debug | info | warn | error (default: info)

SEE ALSO:
  - root.go: Command tree
  - serve.go: HTTP server
*/
package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/warp/avalanche-engine/internal/config"
	"github.com/warp/avalanche-engine/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load configuration: %v", err)
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	} else {
		if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}

	Execute(cfg, err)
}
