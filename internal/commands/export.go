package commands

import (
	"bytes"
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/susu3304/partypay/internal/export"
	"github.com/susu3304/partypay/internal/i18n"
	"github.com/susu3304/partypay/internal/session"
)

const exportTimeout = 30 * time.Second

func discordFile(img export.Image) *discordgo.File {
	return &discordgo.File{Name: img.Name, ContentType: img.MIME, Reader: bytes.NewReader(img.Data)}
}

// channels maps the export channels onto Discord: share posts to the
// channel, download sends an ephemeral attachment to the caller and there is
// no clipboard.
func channels(s Discord, i *discordgo.InteractionCreate, shareText string) export.Channels {
	return export.Channels{
		Download: export.StrategyFunc(func(ctx context.Context, img export.Image) error {
			_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
				Files: []*discordgo.File{discordFile(img)},
				Flags: discordgo.MessageFlagsEphemeral,
			}, discordgo.WithContext(ctx))
			return err
		}),
		Clipboard: export.Unavailable{},
		Share: export.StrategyFunc(func(ctx context.Context, img export.Image) error {
			_, err := s.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
				Content: shareText,
				Files:   []*discordgo.File{discordFile(img)},
			}, discordgo.WithContext(ctx))
			return err
		}),
	}
}

func (p *Party) export(s Discord, i *discordgo.InteractionCreate, sess *session.Session, name string) {
	lang := sess.Language()
	if sess.Result() == nil {
		respondText(s, i, i18n.T(lang, "nothingToExport"))
		return
	}
	action, _ := export.ParseAction(name)

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		p.logger.Warn("failed to defer response", zap.String("channel", i.ChannelID), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()
	report := sess.Export.Run(ctx, action, channels(s, i, i18n.T(lang, "shareText")))
	if report.Notice == nil {
		return
	}
	editText(s, i, i18n.T(lang, report.Notice.Key))
}
