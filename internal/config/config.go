package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Discord Bot. The bot is disabled without a token.
	DiscordToken string `env:"DISCORD_TOKEN"`

	// Database for the calculation quota. postgres:// or sqlite:
	DatabaseURL string `env:"DATABASE_URL"`

	// Wizard HTTP API
	WebBind string `env:"WEB_BIND" envDefault:"0.0.0.0:3000"`

	// Session
	JWTSecret       string        `env:"JWT_SECRET" envDefault:"dev-only-change-me"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	DefaultLanguage string        `env:"DEFAULT_LANGUAGE" envDefault:"en"`

	// Settlement client
	CalculatorURL          string        `env:"CALCULATOR_URL" envDefault:"http://127.0.0.1:8000"`
	CalculatorTimeout      time.Duration `env:"CALCULATOR_TIMEOUT" envDefault:"30s"`
	CalculatorClientID     string        `env:"CALCULATOR_CLIENT_ID"`
	CalculatorClientSecret string        `env:"CALCULATOR_CLIENT_SECRET"`
	CalculatorTokenURL     string        `env:"CALCULATOR_TOKEN_URL"`

	// Calculation service
	CalculatorBind string `env:"CALCULATOR_BIND" envDefault:"0.0.0.0:8000"`
	DailyQuota     int    `env:"DAILY_QUOTA" envDefault:"3"`
	OpenAIAPIKey   string `env:"OPENAI_API_KEY"`
	OpenAIModel    string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL  string `env:"OPENAI_BASE_URL"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() (*Config, error) {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive")
	}
	if cfg.CalculatorTimeout <= 0 {
		return nil, fmt.Errorf("CALCULATOR_TIMEOUT must be positive")
	}
	return cfg, nil
}

// ValidateCalculator checks the settings the calculation service needs.
func (c *Config) ValidateCalculator() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.DailyQuota < 1 {
		return fmt.Errorf("DAILY_QUOTA must be at least 1")
	}
	return nil
}
