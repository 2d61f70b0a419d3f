// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"bidflow/internal/commission"
	"bidflow/internal/domain"
	"bidflow/pkg/db" // Import db package for its Config struct

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort string
	DB         db.Config

	// Recovery sweeper cadence and how long an in-flight processing claim
	// is trusted before being presumed crashed.
	SweepInterval  time.Duration
	StaleThreshold time.Duration

	// Notification backend: "log" or "asynq".
	NotifierBackend string
	RedisAddr       string

	// Seller commission tiers. Loaded from TIER_TABLE_PATH when set,
	// otherwise the compiled-in defaults.
	Tiers domain.TierTable
}

// LoadConfig loads configuration from environment variables, with a
// best-effort .env file for local development.
func LoadConfig() (*AppConfig, error) {
	_ = godotenv.Load() // Missing .env is fine outside local development

	serverPort := getEnv("SERVER_PORT", "8080")

	dbPortStr := getEnv("DB_PORT", "5432")
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	sweepInterval, err := getEnvDuration("SWEEP_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	staleThreshold, err := getEnvDuration("STALE_THRESHOLD", 60*time.Second)
	if err != nil {
		return nil, err
	}

	tiers := domain.DefaultTierTable()
	if path := os.Getenv("TIER_TABLE_PATH"); path != "" {
		tiers, err = loadTierTable(path)
		if err != nil {
			return nil, err
		}
	}

	// Commission rates default to the compiled-in values.
	if err := overrideRate("AUCTION_FEE_RATE", &commission.AuctionFeeRate); err != nil {
		return nil, err
	}
	if err := overrideRate("BUYER_PREMIUM_RATE", &commission.BuyerPremiumRate); err != nil {
		return nil, err
	}

	return &AppConfig{
		ServerPort: serverPort,
		DB: db.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "bidflowdb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		SweepInterval:   sweepInterval,
		StaleThreshold:  staleThreshold,
		NotifierBackend: getEnv("NOTIFIER_BACKEND", "log"),
		RedisAddr:       getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		Tiers:           tiers,
	}, nil
}

func overrideRate(key string, rate *decimal.Decimal) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	if d.IsNegative() || d.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("invalid %s: rate must be in [0, 1)", key)
	}
	*rate = d
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// loadTierTable reads a JSON tier table ordered highest tier first.
func loadTierTable(path string) (domain.TierTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tier table %s: %w", path, err)
	}
	var tiers domain.TierTable
	if err := json.Unmarshal(data, &tiers); err != nil {
		return nil, fmt.Errorf("failed to parse tier table %s: %w", path, err)
	}
	if len(tiers) == 0 {
		return nil, fmt.Errorf("tier table %s is empty", path)
	}
	return tiers, nil
}
