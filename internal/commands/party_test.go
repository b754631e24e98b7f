package commands

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/susu3304/partypay/internal/i18n"
	"github.com/susu3304/partypay/internal/session"
	"github.com/susu3304/partypay/internal/settlement"
)

type fakeDiscord struct {
	mu        sync.Mutex
	responses []*discordgo.InteractionResponse
	edits     []string
	followups []*discordgo.WebhookParams
	posts     []*discordgo.MessageSend
	postErr   error
}

func (f *fakeDiscord) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeDiscord) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, *edit.Content)
	return &discordgo.Message{}, nil
}

func (f *fakeDiscord) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followups = append(f.followups, data)
	return &discordgo.Message{}, nil
}

func (f *fakeDiscord) ChannelMessageSendComplex(_ string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postErr != nil {
		return nil, f.postErr
	}
	f.posts = append(f.posts, data)
	return &discordgo.Message{}, nil
}

func (f *fakeDiscord) lastText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.responses[len(f.responses)-1]
	if r.Data == nil {
		return ""
	}
	return r.Data.Content
}

func (f *fakeDiscord) lastEdit() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.edits[len(f.edits)-1]
}

type stubCalculator struct{}

func (stubCalculator) Calculate(context.Context, settlement.Request) (*settlement.Result, error) {
	return &settlement.Result{
		Table: []settlement.Row{
			{Name: "A", Share: 10, Paid: 20, Balance: 10, Status: "creditor"},
			{Name: "B", Share: 10, Paid: 0, Balance: -10, Status: "debtor"},
		},
		Settlements: []settlement.Transfer{{From: "B", To: "A", Amount: 10}},
		Reasoning:   "B ate half",
	}, nil
}

func stringOpt(name, v string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: v}
}

func intOpt(name string, v int) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(v)}
}

func command(sub string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		ChannelID: "chan-1",
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "party",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: sub, Type: discordgo.ApplicationCommandOptionSubCommand, Options: opts},
			},
		},
	}}
}

func expenseSubmit(item, amount, consumers string) *discordgo.InteractionCreate {
	row := func(id, value string) discordgo.MessageComponent {
		return &discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.TextInput{CustomID: id, Value: value},
		}}
	}
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionModalSubmit,
		ChannelID: "chan-1",
		Data: discordgo.ModalSubmitInteractionData{
			CustomID:   expenseModalID,
			Components: []discordgo.MessageComponent{row("item", item), row("amount", amount), row("consumers", consumers)},
		},
	}}
}

func newParty() (*Party, *fakeDiscord) {
	m := session.NewManager(stubCalculator{}, nil, nil)
	return NewParty(m, i18n.English, nil), &fakeDiscord{}
}

func setUpLedger(t *testing.T, p *Party, d *fakeDiscord) {
	t.Helper()
	p.HandleCommand(d, command("start"))
	p.HandleCommand(d, command("add", stringOpt("names", "A, B")))
	p.HandleModalSubmit(d, expenseSubmit("Pizza", "20", "*"))
	require.Equal(t, "Added expense Pizza (20)", d.lastText())
	p.HandleCommand(d, command("pay", stringOpt("name", "A"), stringOpt("amount", "20")))
	require.Equal(t, "Recorded A paid 20", d.lastText())
}

func TestSessionRequired(t *testing.T) {
	p, d := newParty()
	p.HandleCommand(d, command("status"))
	assert.Equal(t, i18n.T(i18n.English, "sessionMissing"), d.lastText())
}

func TestWizardCommands(t *testing.T) {
	p, d := newParty()
	p.HandleCommand(d, command("start"))
	assert.Contains(t, d.lastText(), "Step 1/4: Participants")

	p.HandleCommand(d, command("add", stringOpt("names", "A")))
	p.HandleCommand(d, command("next"))
	assert.Equal(t, "Please add participants first", d.lastText())

	p.HandleCommand(d, command("add", stringOpt("names", "A،B")))
	assert.Equal(t, "Added B", d.lastText())
	p.HandleCommand(d, command("next"))
	assert.Equal(t, "Step 2/4: Expenses", d.lastText())

	p.HandleCommand(d, command("goto", intOpt("step", 4)))
	assert.Equal(t, "That step is not available yet", d.lastText())
	p.HandleCommand(d, command("goto", intOpt("step", 1)))
	assert.Equal(t, "Step 1/4: Participants", d.lastText())
	p.HandleCommand(d, command("goto", intOpt("step", 4)))
	assert.Equal(t, "Step 4/4: Results", d.lastText(), "forward jump only checks the current step")
	p.HandleCommand(d, command("back"))
	assert.Equal(t, "Step 3/4: Payers", d.lastText())
}

func TestLedgerCommands(t *testing.T) {
	p, d := newParty()
	setUpLedger(t, p, d)

	p.HandleCommand(d, command("status"))
	status := d.lastText()
	assert.Contains(t, status, "1. Pizza: 20 (A، B)")
	assert.Contains(t, status, "1. A paid 20")
	assert.Contains(t, status, "Balance is correct")

	p.HandleModalSubmit(d, expenseSubmit("Tea", "abc", "A"))
	assert.Equal(t, "That input was not accepted (amount)", d.lastText())
	p.HandleModalSubmit(d, expenseSubmit("Tea", "3", "Z"))
	assert.Equal(t, "That input was not accepted (consumers)", d.lastText())

	p.HandleCommand(d, command("unpay", intOpt("number", 2)))
	assert.Equal(t, "Nothing changed", d.lastText())
	p.HandleCommand(d, command("remove", stringOpt("name", "A")))
	assert.Equal(t, "Removed A", d.lastText())

	p.HandleCommand(d, command("status"))
	status = d.lastText()
	assert.Contains(t, status, "1. Pizza: 20 (B)")
	assert.Contains(t, status, "No payments recorded yet")
}

func TestCalculateAndExport(t *testing.T) {
	p, d := newParty()
	setUpLedger(t, p, d)

	p.HandleCommand(d, command("share"))
	assert.Equal(t, "Calculate first to export the result", d.lastText())

	p.HandleCommand(d, command("calculate"))
	assert.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, d.responses[len(d.responses)-1].Type)
	result := d.lastEdit()
	assert.Contains(t, result, "B → A: 10")
	assert.Contains(t, result, "+10")
	assert.Contains(t, result, "B ate half")

	p.HandleCommand(d, command("share"))
	assert.Equal(t, "Shared successfully!", d.lastEdit())
	require.Len(t, d.posts, 1)
	require.Len(t, d.posts[0].Files, 1)
	assert.True(t, strings.HasPrefix(d.posts[0].Files[0].Name, "partypay-result-"))
	assert.Equal(t, "image/png", d.posts[0].Files[0].ContentType)

	p.HandleCommand(d, command("copy"))
	assert.Equal(t, "Image downloaded successfully!", d.lastEdit(), "no clipboard on Discord")
	require.Len(t, d.followups, 1)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, d.followups[0].Flags)

	d.postErr = errors.New("missing permissions")
	p.HandleCommand(d, command("share"))
	assert.Equal(t, "Image downloaded successfully!", d.lastEdit())
	assert.Len(t, d.followups, 2)
}

func TestLanguage(t *testing.T) {
	p, d := newParty()
	p.HandleCommand(d, command("start", stringOpt("language", "fa")))
	assert.Contains(t, d.lastText(), "مرحله")

	p.HandleCommand(d, command("lang", stringOpt("language", "en")))
	assert.Equal(t, "Language set to English", d.lastText())
}

func TestStop(t *testing.T) {
	p, d := newParty()
	p.HandleCommand(d, command("start"))
	p.HandleCommand(d, command("stop"))
	assert.Equal(t, "Session closed", d.lastText())
	p.HandleCommand(d, command("status"))
	assert.Equal(t, i18n.T(i18n.English, "sessionMissing"), d.lastText())
}

func TestParseConsumers(t *testing.T) {
	participants := []string{"A", "B"}
	assert.Equal(t, participants, parseConsumers(" * ", participants))
	assert.Equal(t, participants, parseConsumers("All", participants))
	assert.Equal(t, []string{"A", "C"}, parseConsumers("A, ,C", participants))
	assert.Empty(t, parseConsumers("", participants))
}

func TestGetCommands(t *testing.T) {
	cmds := GetCommands()
	require.Len(t, cmds, 1)
	assert.Equal(t, "party", cmds[0].Name)

	var subs []string
	for _, o := range cmds[0].Options {
		assert.Equal(t, discordgo.ApplicationCommandOptionSubCommand, o.Type)
		subs = append(subs, o.Name)
	}
	assert.ElementsMatch(t, []string{
		"start", "stop", "lang", "add", "remove", "expense", "unexpense", "pay", "unpay",
		"next", "back", "goto", "status", "calculate", "copy", "download", "share",
	}, subs)
}
