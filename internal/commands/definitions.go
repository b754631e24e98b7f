package commands

import "github.com/bwmarrin/discordgo"

var languageChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "English", Value: "en"},
	{Name: "فارسی", Value: "fa"},
}

func GetCommands() []*discordgo.ApplicationCommand {
	minIndex := 1.0
	minStep := 1.0
	return []*discordgo.ApplicationCommand{
		{
			Name:         "party",
			Description:  "Split party expenses with PartyPay",
			DMPermission: boolPtr(false),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "start",
					Description: "Start a session in this channel",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "language",
							Description: "Reply language",
							Choices:     languageChoices,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "stop",
					Description: "Close the session of this channel",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "lang",
					Description: "Change the reply language",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "language",
							Description: "Reply language",
							Required:    true,
							Choices:     languageChoices,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Add participants",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "names",
							Description: "Names separated by commas",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove a participant with their expenses and payments",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Participant name",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "expense",
					Description: "Add an expense",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "unexpense",
					Description: "Remove an expense",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "number",
							Description: "Expense number from /party status",
							Required:    true,
							MinValue:    &minIndex,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "pay",
					Description: "Record a payment",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Who paid",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "amount",
							Description: "Amount paid",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "unpay",
					Description: "Remove a payment",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "number",
							Description: "Payment number from /party status",
							Required:    true,
							MinValue:    &minIndex,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "next",
					Description: "Go to the next step",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "back",
					Description: "Go to the previous step",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "goto",
					Description: "Jump to a step",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "step",
							Description: "Step number",
							Required:    true,
							MinValue:    &minStep,
							MaxValue:    4,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "status",
					Description: "Show the session",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "calculate",
					Description: "Calculate the settlement",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "copy",
					Description: "Copy the result image",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "download",
					Description: "Download the result image",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "share",
					Description: "Post the result image to the channel",
				},
			},
		},
	}
}
