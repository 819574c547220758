package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config collects every tunable in one explicit struct. Components receive
// it (or slices of it) at construction instead of reading the environment
// themselves.
type Config struct {
	// Vocabulary sheet
	SheetPath string
	SheetName string

	// Durable state for the batch cursor
	DBDriver string
	DBDSN    string

	// Enrichment service
	APIKey      string
	APIURL      string
	Model       string
	MaxTokens   int
	Temperature float64

	// Batch refresh
	BatchSize       int
	RefreshInterval time.Duration
	AutoRefresh     bool

	// Single-word edit lock
	LockWait time.Duration

	// Quiz
	QuizQuestions int
}

// Load reads the configuration from the environment, applying defaults for
// everything except the API key
func Load() (*Config, error) {
	cfg := &Config{
		SheetPath:       envString("SHEET_PATH", "data/vocabulary.xlsx"),
		SheetName:       envString("SHEET_NAME", "Vocabulary"),
		DBDriver:        envString("DB_DRIVER", "sqlite3"),
		DBDSN:           envString("DB_DSN", "data/vocabsheet.db"),
		APIKey:          os.Getenv("OPENAI_API_KEY"),
		APIURL:          os.Getenv("OPENAI_API_URL"),
		Model:           envString("OPENAI_MODEL", "gpt-4o-mini"),
		MaxTokens:       envInt("OPENAI_MAX_TOKENS", 900),
		Temperature:     0.3,
		BatchSize:       envInt("BATCH_SIZE", 10),
		RefreshInterval: time.Duration(envInt("REFRESH_INTERVAL_MINUTES", 5)) * time.Minute,
		AutoRefresh:     envBool("AUTO_REFRESH", true),
		LockWait:        time.Duration(envInt("LOCK_WAIT_SECONDS", 10)) * time.Second,
		QuizQuestions:   envInt("QUIZ_QUESTIONS", 10),
	}

	if cfg.BatchSize < 1 {
		return nil, fmt.Errorf("BATCH_SIZE must be at least 1")
	}
	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
