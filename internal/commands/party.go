package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/susu3304/partypay/internal/i18n"
	"github.com/susu3304/partypay/internal/ledger"
	"github.com/susu3304/partypay/internal/session"
	"github.com/susu3304/partypay/internal/settlement"
	"github.com/susu3304/partypay/internal/wizard"
)

// messageLimit is Discord's content limit.
const messageLimit = 2000

const calculateTimeout = time.Minute

// Discord is the part of *discordgo.Session the handlers use.
type Discord interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Party handles /party. Each channel owns at most one session.
type Party struct {
	sessions    *session.Manager
	defaultLang language.Tag
	logger      *zap.Logger
}

func NewParty(sessions *session.Manager, defaultLang language.Tag, logger *zap.Logger) *Party {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Party{sessions: sessions, defaultLang: defaultLang, logger: logger}
}

func (p *Party) HandleCommand(s Discord, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		respondText(s, i, i18n.T(p.defaultLang, "invalidInput"))
		return
	}
	sub := data.Options[0]
	channelID := i.ChannelID

	switch sub.Name {
	case "start":
		lang := p.defaultLang
		if code := getStringOption(sub.Options, "language"); code != nil {
			lang = i18n.Parse(*code)
		}
		sess, created := p.sessions.Create(channelID, lang)
		if !created {
			respondText(s, i, p.stepLine(sess))
			return
		}
		respondText(s, i, i18n.T(lang, "sessionStarted")+"\n"+p.stepLine(sess))
		return
	}

	sess, err := p.sessions.ByKey(channelID)
	if err != nil {
		respondText(s, i, i18n.T(p.defaultLang, "sessionMissing"))
		return
	}
	lang := sess.Language()

	switch sub.Name {
	case "stop":
		p.sessions.Dispose(sess.ID)
		respondText(s, i, i18n.T(lang, "sessionStopped"))
	case "lang":
		if code := getStringOption(sub.Options, "language"); code != nil {
			sess.SetLanguage(i18n.Parse(*code))
		}
		respondText(s, i, i18n.T(sess.Language(), "languageChanged"))
	case "add":
		names := splitNames(deref(getStringOption(sub.Options, "names")))
		var added []string
		for _, name := range names {
			if sess.Ledger.AddParticipant(name) {
				added = append(added, name)
			}
		}
		if len(added) == 0 {
			respondText(s, i, i18n.T(lang, "nothingChanged"))
			return
		}
		respondText(s, i, i18n.T(lang, "participantAdded", strings.Join(added, "، ")))
	case "remove":
		name := strings.TrimSpace(deref(getStringOption(sub.Options, "name")))
		if !sess.Ledger.RemoveParticipant(name) {
			respondText(s, i, i18n.T(lang, "nothingChanged"))
			return
		}
		respondText(s, i, i18n.T(lang, "participantRemoved", name))
	case "expense":
		if err := s.InteractionRespond(i.Interaction, expenseModal(lang)); err != nil {
			p.logger.Warn("failed to open expense modal", zap.String("channel", channelID), zap.Error(err))
		}
	case "unexpense":
		n := derefInt(getIntOption(sub.Options, "number"))
		if !sess.Ledger.RemoveExpense(int(n) - 1) {
			respondText(s, i, i18n.T(lang, "nothingChanged"))
			return
		}
		respondText(s, i, i18n.T(lang, "expenseRemoved", n))
	case "pay":
		name := deref(getStringOption(sub.Options, "name"))
		amount, err := ledger.ParseAmount(deref(getStringOption(sub.Options, "amount")))
		if err == nil {
			err = sess.Ledger.AddPayer(ledger.Payer{Name: strings.TrimSpace(name), Amount: amount})
		}
		if err != nil {
			respondText(s, i, invalidText(lang, err))
			return
		}
		respondText(s, i, i18n.T(lang, "payerAdded", strings.TrimSpace(name), formatAmount(lang, amount)))
	case "unpay":
		n := derefInt(getIntOption(sub.Options, "number"))
		if !sess.Ledger.RemovePayer(int(n) - 1) {
			respondText(s, i, i18n.T(lang, "nothingChanged"))
			return
		}
		respondText(s, i, i18n.T(lang, "payerRemoved", n))
	case "next":
		var blocked *wizard.BlockedError
		if err := sess.Wizard.Next(); errors.As(err, &blocked) {
			respondText(s, i, i18n.T(lang, blocked.MessageKey))
			return
		}
		respondText(s, i, p.stepLine(sess))
	case "back":
		sess.Wizard.Previous()
		respondText(s, i, p.stepLine(sess))
	case "goto":
		step := wizard.Step(derefInt(getIntOption(sub.Options, "step")) - 1)
		if !sess.Wizard.GoTo(step) {
			respondText(s, i, i18n.T(lang, "stepUnavailable"))
			return
		}
		respondText(s, i, p.stepLine(sess))
	case "status":
		respondText(s, i, statusText(sess))
	case "calculate":
		p.calculate(s, i, sess)
	case "copy", "download", "share":
		p.export(s, i, sess, sub.Name)
	default:
		respondText(s, i, i18n.T(lang, "invalidInput"))
	}
}

func (p *Party) stepLine(sess *session.Session) string {
	lang := sess.Language()
	step := sess.Wizard.Current()
	return i18n.T(lang, "stepChanged", int(step)+1, wizard.TotalSteps, i18n.T(lang, step.String()))
}

func (p *Party) calculate(s Discord, i *discordgo.InteractionCreate, sess *session.Session) {
	lang := sess.Language()
	if sess.Calc.State().Busy() {
		respondText(s, i, i18n.T(lang, "calculating"))
		return
	}
	if !sess.Ledger.Snapshot().Complete() {
		respondText(s, i, i18n.T(lang, settlement.GenericErrorKey))
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		p.logger.Warn("failed to defer response", zap.String("channel", i.ChannelID), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), calculateTimeout)
	defer cancel()
	var content string
	res, err := sess.Calc.Run(ctx, sess.Ledger.Snapshot())
	switch {
	case errors.Is(err, settlement.ErrInFlight):
		content = i18n.T(lang, "calculating")
	case err != nil:
		content = i18n.T(lang, settlement.GenericErrorKey) + "\n" + i18n.T(lang, "tryAgain") + ": /party calculate"
	default:
		content = resultText(lang, res)
	}
	editText(s, i, content)
}

func respondText(s Discord, i *discordgo.InteractionCreate, content string) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: truncate(content)},
	})
}

func editText(s Discord, i *discordgo.InteractionCreate, content string) {
	content = truncate(content)
	s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content})
}

func invalidText(lang language.Tag, err error) string {
	msg := i18n.T(lang, "invalidInput")
	var ve *ledger.ValidationError
	if errors.As(err, &ve) {
		msg += fmt.Sprintf(" (%s)", ve.Field)
	}
	return msg
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= messageLimit {
		return s
	}
	return string(r[:messageLimit-1]) + "…"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int64) int64 {
	if n == nil {
		return 0
	}
	return *n
}
