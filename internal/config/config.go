package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"bank-reconciliation-backend/internal/services/matching"
)

// InitDB opens the Postgres connection described by the environment.
// TranslateError is on so unique-constraint violations surface as
// gorm.ErrDuplicatedKey regardless of driver.
func InitDB() *gorm.DB {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			getenv("DB_HOST", "localhost"),
			getenv("DB_USER", "postgres"),
			getenv("DB_PASSWORD", "postgres"),
			getenv("DB_NAME", "reconciliation"),
			getenv("DB_PORT", "5432"),
		)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}
	return db
}

// MatchingFromEnv builds the matching configuration, starting from the
// defaults and applying any env overrides.
func MatchingFromEnv() matching.Config {
	cfg := matching.DefaultConfig()

	if v := os.Getenv("MATCH_AMOUNT_TOLERANCE"); v != "" {
		if tol, err := decimal.NewFromString(v); err == nil && tol.IsPositive() {
			cfg.AmountTolerance = tol
		}
	}
	if v := os.Getenv("MATCH_DATE_TOLERANCE_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			cfg.DateToleranceDays = days
		}
	}
	if v := os.Getenv("MATCH_AMOUNT_WEIGHT"); v != "" {
		if w, err := strconv.ParseFloat(v, 64); err == nil && w > 0 && w <= 1 {
			cfg.AmountWeight = w
			cfg.DateWeight = 1 - w
		}
	}
	if v := os.Getenv("MATCH_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxResults = n
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
