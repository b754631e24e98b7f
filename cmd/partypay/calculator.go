package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/susu3304/partypay/internal/calculator"
	"github.com/susu3304/partypay/internal/config"
	"github.com/susu3304/partypay/internal/db"
)

func init() {
	rootCmd.AddCommand(calculatorCmd)
}

var calculatorCmd = &cobra.Command{
	Use:   "calculator",
	Short: "Run the settlement calculation service",
	Long: `Serve POST /api/calculate/. Each client IP gets DAILY_QUOTA
calculations per UTC day, counted in DATABASE_URL.`,
	Args: cobra.NoArgs,
	RunE: runCalculator,
}

func runCalculator(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateCalculator(); err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	computer := calculator.NewOpenAIComputer(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	quota := calculator.NewQuota(store, cfg.DailyQuota)
	return calculator.NewServer(cfg.CalculatorBind, computer, quota, logger.Named("calculator")).Start(ctx)
}
