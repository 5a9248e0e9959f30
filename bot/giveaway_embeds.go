package bot

import (
	"fmt"
	"strconv"

	"warden/bot/common"
	"warden/models"

	"github.com/bwmarrin/discordgo"
)

const giveawayEnterPrefix = "giveaway_enter_"

const (
	colorGiveaway = 0xF1C40F // gold
	colorNeutral  = 0x95A5A6 // gray
)

func enterButton(giveawayID int64) discordgo.Button {
	return discordgo.Button{
		Label:    "Enter Giveaway",
		Style:    discordgo.PrimaryButton,
		CustomID: giveawayEnterPrefix + strconv.FormatInt(giveawayID, 10),
		Emoji:    &discordgo.ComponentEmoji{Name: "🎉"},
	}
}

func giveawayAnnounceEmbed(giveaway *models.Giveaway, hostName string) *discordgo.MessageEmbed {
	description := giveaway.Description
	if description == "" {
		description = "Press the button below to enter!"
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎉 %s", giveaway.Name),
		Description: description,
		Color:       colorGiveaway,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Winners",
				Value:  strconv.Itoa(giveaway.MaxWinners),
				Inline: true,
			},
			{
				Name:   "Ends",
				Value:  common.FormatDiscordTimestamp(giveaway.EndTime, "R"),
				Inline: true,
			},
			{
				Name:   "Hosted by",
				Value:  hostName,
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Giveaway #%d", giveaway.ID),
		},
	}
}

func giveawayListEmbed(giveaways []*models.Giveaway) *discordgo.MessageEmbed {
	if len(giveaways) == 0 {
		return &discordgo.MessageEmbed{
			Title:       "Active Giveaways",
			Description: "There are no giveaways running right now.",
			Color:       colorNeutral,
		}
	}

	fields := make([]*discordgo.MessageEmbedField, 0, len(giveaways))
	for _, giveaway := range giveaways {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: fmt.Sprintf("#%d %s", giveaway.ID, giveaway.Name),
			Value: fmt.Sprintf("%d winner(s) • ends %s",
				giveaway.MaxWinners,
				common.FormatDiscordTimestamp(giveaway.EndTime, "R")),
		})
	}

	return &discordgo.MessageEmbed{
		Title:  "Active Giveaways",
		Color:  colorGiveaway,
		Fields: fields,
	}
}
