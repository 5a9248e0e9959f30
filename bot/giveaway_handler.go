package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"warden/bot/common"
	"warden/models"
	"warden/service"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleGiveawayCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		common.RespondWithError(s, i, "Invalid command usage.")
		return
	}

	switch options[0].Name {
	case "start":
		b.handleGiveawayStart(s, i, options[0].Options)
	case "close":
		b.handleGiveawayClose(s, i, options[0].Options)
	case "reroll":
		b.handleGiveawayReroll(s, i, options[0].Options)
	case "list":
		b.handleGiveawayList(s, i)
	}
}

func (b *Bot) handleGiveawayStart(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	var name, duration, description string
	var winners int64
	for _, opt := range options {
		switch opt.Name {
		case "name":
			name = opt.StringValue()
		case "duration":
			duration = opt.StringValue()
		case "winners":
			winners = opt.IntValue()
		case "description":
			description = opt.StringValue()
		}
	}

	creatorID, err := common.InteractionUserID(i)
	if err != nil {
		log.Errorf("Error parsing Discord ID: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	channelID, err := strconv.ParseInt(i.ChannelID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing channel ID %s: %v", i.ChannelID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	guildID, err := strconv.ParseInt(i.GuildID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing guild ID %s: %v", i.GuildID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if winners <= 0 {
		common.RespondWithError(s, i, "Number of winners must be positive.")
		return
	}

	giveaway, err := b.giveawayService.Create(ctx, service.CreateGiveawayParams{
		Name:         name,
		Description:  description,
		MaxWinners:   int(winners),
		DurationSpec: duration,
		ChannelID:    channelID,
		CreatorID:    creatorID,
		GuildID:      guildID,
	})
	if err != nil {
		if errors.Is(err, models.ErrInvalidDuration) {
			common.RespondWithError(s, i, "Invalid duration. Use a number followed by m, h or d, e.g. `30m`, `2h`, `3d`.")
			return
		}
		log.Errorf("Error creating giveaway: %v", err)
		common.RespondWithError(s, i, "Unable to create giveaway. Please try again.")
		return
	}

	// The announcement doubles as the entry point; the button carries the id
	embed := giveawayAnnounceEmbed(giveaway, common.InteractionDisplayName(i))
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{enterButton(giveaway.ID)},
		},
	}
	if err := common.RespondWithEmbed(s, i, embed, components, false); err != nil {
		log.Errorf("Error responding to giveaway start: %v", err)
	}

	b.giveawayService.Schedule(giveaway.ID, giveaway.EndTime)
}

func (b *Bot) handleGiveawayClose(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	var giveawayID int64
	for _, opt := range options {
		if opt.Name == "id" {
			giveawayID = opt.IntValue()
		}
	}

	if err := b.giveawayService.Close(ctx, giveawayID); err != nil {
		if errors.Is(err, models.ErrGiveawayNotFound) {
			common.RespondWithError(s, i, fmt.Sprintf("Giveaway #%d does not exist.", giveawayID))
			return
		}
		log.Errorf("Error closing giveaway %d: %v", giveawayID, err)
		common.RespondWithError(s, i, "Unable to close giveaway. Please try again.")
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Giveaway #%d closed.", giveawayID), true); err != nil {
		log.Errorf("Error responding to giveaway close: %v", err)
	}
}

func (b *Bot) handleGiveawayReroll(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	var giveawayID int64
	for _, opt := range options {
		if opt.Name == "id" {
			giveawayID = opt.IntValue()
		}
	}

	winners, err := b.giveawayService.Reroll(ctx, giveawayID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrGiveawayNotFound):
			common.RespondWithError(s, i, fmt.Sprintf("Giveaway #%d does not exist.", giveawayID))
		case errors.Is(err, models.ErrNoEntries):
			common.RespondWithError(s, i, fmt.Sprintf("Giveaway #%d has no entries to draw from.", giveawayID))
		default:
			log.Errorf("Error rerolling giveaway %d: %v", giveawayID, err)
			common.RespondWithError(s, i, "Unable to reroll giveaway. Please try again.")
		}
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Giveaway #%d rerolled with %d winner(s).", giveawayID, len(winners)), true); err != nil {
		log.Errorf("Error responding to giveaway reroll: %v", err)
	}
}

func (b *Bot) handleGiveawayList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, err := strconv.ParseInt(i.GuildID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing guild ID %s: %v", i.GuildID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	giveaways, err := b.giveawayService.ListActive(ctx, guildID)
	if err != nil {
		log.Errorf("Error listing giveaways: %v", err)
		common.RespondWithError(s, i, "Unable to list giveaways. Please try again.")
		return
	}

	if err := common.RespondWithEmbed(s, i, giveawayListEmbed(giveaways), nil, true); err != nil {
		log.Errorf("Error responding to giveaway list: %v", err)
	}
}

func (b *Bot) handleGiveawayEnter(s *discordgo.Session, i *discordgo.InteractionCreate, rawID string) {
	ctx := context.Background()

	giveawayID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing giveaway ID %s: %v", rawID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	discordID, err := common.InteractionUserID(i)
	if err != nil {
		log.Errorf("Error parsing Discord ID: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	count, err := b.giveawayService.Enter(ctx, giveawayID, discordID, common.InteractionDisplayName(i))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrAlreadyEntered):
			common.RespondWithError(s, i, "You have already entered this giveaway.")
		case errors.Is(err, models.ErrGiveawayNotActive):
			common.RespondWithError(s, i, "This giveaway has already ended.")
		case errors.Is(err, models.ErrGiveawayNotFound):
			common.RespondWithError(s, i, "This giveaway no longer exists.")
		default:
			log.Errorf("Error entering giveaway %d for user %d: %v", giveawayID, discordID, err)
			common.RespondWithError(s, i, "Unable to enter giveaway. Please try again.")
		}
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("You're in! %d participant(s) so far.", count), true); err != nil {
		log.Errorf("Error responding to giveaway entry: %v", err)
	}
}
