package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/susu3304/partypay/internal/commands"
)

type Bot struct {
	session  *discordgo.Session
	party    *commands.Party
	notifier *expiryNotifier
	logger   *zap.Logger
}

func New(token string, party *commands.Party, logger *zap.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bot := &Bot{
		session:  session,
		party:    party,
		notifier: newExpiryNotifier(session, logger),
		logger:   logger,
	}

	// Register event handlers
	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onGuildCreate)
	session.AddHandler(bot.onInteractionCreate)

	session.Identify.Intents = discordgo.IntentsGuilds

	return bot, nil
}

func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	b.notifier.start()
	b.logger.Info("discord bot is running")
	return nil
}

func (b *Bot) Stop() error {
	b.notifier.stop()
	return b.session.Close()
}

// NotifyExpired posts the expiry notice to the channel that owned the
// session. It never blocks; see session.Janitor.
func (b *Bot) NotifyExpired(channelID, content string) {
	b.notifier.enqueue(channelID, content)
}
