package commands

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/susu3304/partypay/internal/i18n"
	"github.com/susu3304/partypay/internal/ledger"
	"github.com/susu3304/partypay/internal/session"
	"github.com/susu3304/partypay/internal/settlement"
	"github.com/susu3304/partypay/internal/wizard"
)

func statusText(sess *session.Session) string {
	lang := sess.Language()
	l := sess.Ledger.Snapshot()
	step := sess.Wizard.Current()
	t := func(key string, args ...any) string { return i18n.T(lang, key, args...) }

	var b strings.Builder
	b.WriteString(t("stepChanged", int(step)+1, wizard.TotalSteps, t(step.String())))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "**%s** (%d %s)\n", t("participants"), len(l.Participants), t("participantsCount"))
	if len(l.Participants) == 0 {
		fmt.Fprintf(&b, "%s\n", t("noParticipants"))
	} else {
		fmt.Fprintf(&b, "%s\n", strings.Join(l.Participants, "، "))
	}

	fmt.Fprintf(&b, "\n**%s**\n", t("expenses"))
	if len(l.Expenses) == 0 {
		fmt.Fprintf(&b, "%s\n", t("noExpenses"))
	}
	for idx, e := range l.Expenses {
		fmt.Fprintf(&b, "%d. %s: %s (%s)\n", idx+1, e.Item, formatAmount(lang, e.Amount), strings.Join(e.Consumers, "، "))
	}
	fmt.Fprintf(&b, "%s: %s\n", t("totalExpenses"), formatAmount(lang, ledger.TotalExpenses(l)))

	fmt.Fprintf(&b, "\n**%s**\n", t("payers"))
	if len(l.Payers) == 0 {
		fmt.Fprintf(&b, "%s\n", t("noPayers"))
	}
	for idx, p := range l.Payers {
		fmt.Fprintf(&b, "%d. %s %s %s\n", idx+1, p.Name, t("paid"), formatAmount(lang, p.Amount))
	}
	fmt.Fprintf(&b, "%s: %s\n", t("totalPaid"), formatAmount(lang, ledger.TotalPaid(l)))

	if len(l.Expenses) > 0 && len(l.Payers) > 0 {
		if ledger.IsBalanced(l) {
			b.WriteString(t("balanceOk"))
		} else {
			b.WriteString("⚠️ " + t("balanceWarning"))
		}
		b.WriteString("\n")
	}

	switch st := sess.Calc.State(); st.Phase {
	case settlement.InFlight:
		fmt.Fprintf(&b, "\n%s\n", t("calculating"))
	case settlement.Failed:
		fmt.Fprintf(&b, "\n%s\n", t(st.ErrorKey))
	case settlement.Succeeded:
		fmt.Fprintf(&b, "\n%s\n", resultText(lang, st.Result))
	}
	return b.String()
}

// maxReasoning keeps the reply inside one Discord message.
const maxReasoning = 800

func resultText(lang language.Tag, res *settlement.Result) string {
	t := func(key string) string { return i18n.T(lang, key) }
	amount := func(v float64) string { return formatAmount(lang, v) }

	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n", t("resultTitle"))
	for _, row := range res.Table {
		balance := amount(row.Balance)
		if row.Balance > 0 {
			balance = "+" + balance
		}
		fmt.Fprintf(&b, "• %s: %s %s, %s %s, %s %s (%s)\n",
			row.Name, t("share"), amount(row.Share), t("paidAmount"), amount(row.Paid), t("finalBalance"), balance, row.Status)
	}
	if len(res.Settlements) > 0 {
		fmt.Fprintf(&b, "\n**%s**\n", t("settlementPlan"))
		for _, s := range res.Settlements {
			fmt.Fprintf(&b, "%s → %s: %s\n", s.From, s.To, amount(s.Amount))
		}
	}
	if reasoning := strings.TrimSpace(res.Reasoning); reasoning != "" {
		if r := []rune(reasoning); len(r) > maxReasoning {
			reasoning = string(r[:maxReasoning]) + "…"
		}
		fmt.Fprintf(&b, "\n**%s**\n%s\n", t("viewDetails"), reasoning)
	}
	return b.String()
}
