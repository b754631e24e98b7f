package commands

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/text/language"
	"golang.org/x/text/number"

	"github.com/susu3304/partypay/internal/i18n"
)

func getStringOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) *string {
	for _, o := range opts {
		if o.Name == name {
			v := o.StringValue()
			return &v
		}
	}
	return nil
}

func getIntOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) *int64 {
	for _, o := range opts {
		if o.Name == name {
			v := o.IntValue()
			return &v
		}
	}
	return nil
}

// splitNames splits a comma separated list, accepting the Persian comma too.
// Blank entries are dropped.
func splitNames(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == '،' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// parseConsumers resolves the consumers field of the expense modal. "*" or
// "all" selects every participant.
func parseConsumers(text string, participants []string) []string {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "*", "all", "همه":
		return append([]string{}, participants...)
	}
	return splitNames(text)
}

func formatAmount(lang language.Tag, v float64) string {
	return i18n.Printer(lang).Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

func boolPtr(b bool) *bool {
	return &b
}
