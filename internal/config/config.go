package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/warp/avalanche-engine/engine"
	"github.com/warp/avalanche-engine/factory"
	"github.com/warp/avalanche-engine/internal/logger"
)

// Store backends accepted by STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	// HTTP
	Port        string
	CORSOrigins []string

	// Session storage
	StoreBackend string
	SQLitePath   string
	DatabaseURL  string
	RedisAddr    string
	SessionTTL   time.Duration

	// Game: GameConfigPath wins over GamePreset when both are set.
	GameConfigPath string
	GamePreset     string

	// Logging
	LogLevel  string
	LogFormat string
	LogOutput string
}

// Load reads the environment. Call godotenv.Load first to pick up a .env file.
func Load() (*Config, error) {
	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	config := &Config{
		Port:           getEnv("PORT", "8080"),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		StoreBackend:   strings.ToLower(getEnv("STORE_BACKEND", BackendSQLite)),
		SQLitePath:     getEnv("SQLITE_PATH", "avalanche.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		SessionTTL:     ttl,
		GameConfigPath: getEnv("GAME_CONFIG", ""),
		GamePreset:     getEnv("GAME_PRESET", factory.DefaultPresetID),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "console"),
		LogOutput:      getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return config, nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("SESSION_TTL must not be negative")
	}
	return nil
}

// GameJSON returns the default game definition from GAME_CONFIG or
// GAME_PRESET. The definition is validated before it is returned.
func (c *Config) GameJSON() (string, error) {
	game := ""
	if c.GameConfigPath != "" {
		raw, err := os.ReadFile(c.GameConfigPath)
		if err != nil {
			return "", fmt.Errorf("read game config: %w", err)
		}
		game = string(raw)
	} else {
		preset, ok := factory.LookupPreset(c.GamePreset)
		if !ok {
			return "", fmt.Errorf("unknown GAME_PRESET %q", c.GamePreset)
		}
		game = preset.JSON
	}

	if _, err := factory.NewGameFactory().ParseGameConfig(game); err != nil {
		return "", err
	}
	return game, nil
}

// GameConfig resolves the engine configuration from GAME_CONFIG or GAME_PRESET.
func (c *Config) GameConfig() (engine.Config, error) {
	game, err := c.GameJSON()
	if err != nil {
		return engine.Config{}, err
	}
	return factory.NewGameFactory().ParseGameConfig(game)
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	lc := logger.DefaultConfig()
	lc.Level = c.LogLevel
	lc.Format = c.LogFormat
	lc.Output = c.LogOutput
	return lc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
