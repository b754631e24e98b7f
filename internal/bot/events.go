package bot

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/susu3304/partypay/internal/commands"
)

func (b *Bot) onReady(s *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("connected", zap.String("user", event.User.Username))

	// Register commands for all guilds
	for _, guild := range event.Guilds {
		if err := b.registerGuildCommands(guild.ID); err != nil {
			b.logger.Warn("failed to register commands", zap.String("guild", guild.ID), zap.Error(err))
		}
	}
}

func (b *Bot) onGuildCreate(s *discordgo.Session, event *discordgo.GuildCreate) {
	b.logger.Info("guild available, ensuring commands", zap.String("guild", event.ID), zap.String("name", event.Name))
	if err := b.registerGuildCommands(event.ID); err != nil {
		b.logger.Warn("failed to register commands", zap.String("guild", event.ID), zap.Error(err))
	}
}

func (b *Bot) registerGuildCommands(guildID string) error {
	cmds := commands.GetCommands()
	// Delete existing commands and register new ones
	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, guildID, cmds)
	if err != nil {
		return err
	}

	b.logger.Debug("registered application commands", zap.String("guild", guildID))
	return nil
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if i.ApplicationCommandData().Name == "party" {
			b.party.HandleCommand(s, i)
		}
	case discordgo.InteractionModalSubmit:
		b.party.HandleModalSubmit(s, i)
	}
}
