package commands

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/susu3304/partypay/internal/i18n"
	"github.com/susu3304/partypay/internal/ledger"
)

const expenseModalID = "party_expense"

func expenseModal(lang language.Tag) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: expenseModalID,
			Title:    i18n.T(lang, "addExpense"),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "item",
							Label:       i18n.T(lang, "itemName"),
							Style:       discordgo.TextInputShort,
							Placeholder: i18n.T(lang, "itemNamePlaceholder"),
							Required:    true,
							MaxLength:   200,
						},
					},
				},
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:  "amount",
							Label:     i18n.T(lang, "amount"),
							Style:     discordgo.TextInputShort,
							Required:  true,
							MaxLength: 20,
						},
					},
				},
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "consumers",
							Label:       i18n.T(lang, "consumers"),
							Style:       discordgo.TextInputParagraph,
							Placeholder: i18n.T(lang, "consumersHint"),
							Required:    true,
						},
					},
				},
			},
		},
	}
}

// modalValues collects the text inputs of a submitted modal by custom id.
func modalValues(data discordgo.ModalSubmitInteractionData) map[string]string {
	values := make(map[string]string)
	for _, component := range data.Components {
		if actionRow, ok := component.(*discordgo.ActionsRow); ok {
			for _, c := range actionRow.Components {
				if input, ok := c.(*discordgo.TextInput); ok {
					values[input.CustomID] = input.Value
				}
			}
		}
	}
	return values
}

func (p *Party) HandleModalSubmit(s Discord, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	if data.CustomID != expenseModalID {
		return
	}

	sess, err := p.sessions.ByKey(i.ChannelID)
	if err != nil {
		respondText(s, i, i18n.T(p.defaultLang, "sessionMissing"))
		return
	}
	lang := sess.Language()

	values := modalValues(data)
	amount, err := ledger.ParseAmount(values["amount"])
	if err == nil {
		consumers := parseConsumers(values["consumers"], sess.Ledger.Snapshot().Participants)
		err = sess.Ledger.AddExpense(ledger.Expense{Item: values["item"], Amount: amount, Consumers: consumers})
	}
	if err != nil {
		p.logger.Debug("expense refused", zap.String("channel", i.ChannelID), zap.Error(err))
		respondText(s, i, invalidText(lang, err))
		return
	}
	respondText(s, i, i18n.T(lang, "expenseAdded", strings.TrimSpace(values["item"]), formatAmount(lang, amount)))
}
