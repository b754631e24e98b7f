package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/susu3304/partypay/internal/api"
	"github.com/susu3304/partypay/internal/bot"
	"github.com/susu3304/partypay/internal/commands"
	"github.com/susu3304/partypay/internal/config"
	"github.com/susu3304/partypay/internal/i18n"
	"github.com/susu3304/partypay/internal/render"
	"github.com/susu3304/partypay/internal/session"
	"github.com/susu3304/partypay/internal/settlement"
)

const sweepInterval = time.Minute

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the wizard API and the Discord bot",
	Long: `Serve the wizard over HTTP. When DISCORD_TOKEN is set the /party
command is served on Discord too.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := settlement.NewClient(settlement.Options{
		BaseURL:      cfg.CalculatorURL,
		Timeout:      cfg.CalculatorTimeout,
		ClientID:     cfg.CalculatorClientID,
		ClientSecret: cfg.CalculatorClientSecret,
		TokenURL:     cfg.CalculatorTokenURL,
	})
	sessions := session.NewManager(client, render.New(render.DefaultScale), logger.Named("session"))

	var discordBot *bot.Bot
	if cfg.DiscordToken != "" {
		party := commands.NewParty(sessions, i18n.Parse(cfg.DefaultLanguage), logger.Named("party"))
		discordBot, err = bot.New(cfg.DiscordToken, party, logger.Named("bot"))
		if err != nil {
			return err
		}
		if err := discordBot.Start(); err != nil {
			return err
		}
		defer discordBot.Stop()
	} else {
		logger.Info("DISCORD_TOKEN not set, discord bot disabled")
	}

	janitor := session.NewJanitor(sessions, cfg.SessionTTL, sweepInterval, func(s *session.Session) {
		logger.Debug("session expired", zap.String("id", s.ID))
		if discordBot != nil {
			discordBot.NotifyExpired(s.Key, i18n.T(s.Language(), "sessionExpired"))
		}
	})
	janitor.Start()
	defer janitor.Stop()

	err = api.New(cfg, sessions, logger.Named("api")).Start(ctx)
	logger.Info("shutting down")
	return err
}
