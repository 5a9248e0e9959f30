package bot

import (
	"context"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"warden/events"
	"warden/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string
}

type Bot struct {
	config          Config
	session         *discordgo.Session
	guildID         int64
	giveawayService service.GiveawayService
	serverService   service.ServerService
	eventBus        *events.Bus
}

func New(config Config, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsAllWithoutPrivileged | discordgo.IntentsGuildMembers

	guildID, err := strconv.ParseInt(config.GuildID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid guild id %q: %w", config.GuildID, err)
	}

	bot := &Bot{
		config:   config,
		session:  dg,
		guildID:  guildID,
		eventBus: eventBus,
	}

	// Register slash command handlers
	dg.AddHandler(bot.handleCommands)

	// Register component interaction handlers
	dg.AddHandler(bot.handleGiveawayInteractions)

	return bot, nil
}

// SetServices injects the services the handlers call. The bot is constructed
// before the services because it doubles as the engine's Notifier.
func (b *Bot) SetServices(giveawayService service.GiveawayService, serverService service.ServerService) {
	b.giveawayService = giveawayService
	b.serverService = serverService
}

// Open connects to the gateway and registers the slash commands
func (b *Bot) Open() error {
	if b.giveawayService == nil || b.serverService == nil {
		return fmt.Errorf("services not set")
	}

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	if err := b.registerCommands(); err != nil {
		b.session.Close()
		return fmt.Errorf("error registering commands: %w", err)
	}

	// Keep the bot presence showing how many giveaways are running
	b.eventBus.Subscribe(events.EventTypeGiveawayCreated, func(ctx context.Context, event events.Event) {
		b.refreshPresence(ctx)
	})
	b.eventBus.Subscribe(events.EventTypeGiveawayClosed, func(ctx context.Context, event events.Event) {
		b.refreshPresence(ctx)
	})
	b.refreshPresence(context.Background())

	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// PostAnnouncement posts a message to a channel. Implements service.Notifier.
func (b *Bot) PostAnnouncement(ctx context.Context, channelID int64, message string) error {
	_, err := b.session.ChannelMessageSend(strconv.FormatInt(channelID, 10), message)
	if err != nil {
		return fmt.Errorf("failed to post announcement to channel %d: %w", channelID, err)
	}
	return nil
}

// DirectNotify sends a direct message to a user. Implements service.Notifier.
func (b *Bot) DirectNotify(ctx context.Context, discordID int64, message string) error {
	channel, err := b.session.UserChannelCreate(strconv.FormatInt(discordID, 10))
	if err != nil {
		return fmt.Errorf("failed to open DM channel for user %d: %w", discordID, err)
	}
	if _, err := b.session.ChannelMessageSend(channel.ID, message); err != nil {
		return fmt.Errorf("failed to DM user %d: %w", discordID, err)
	}
	return nil
}

func (b *Bot) refreshPresence(ctx context.Context) {
	giveaways, err := b.giveawayService.ListActive(ctx, b.guildID)
	if err != nil {
		log.Errorf("Failed to list active giveaways for presence update: %v", err)
		return
	}

	status := ""
	switch len(giveaways) {
	case 0:
	case 1:
		status = "1 giveaway"
	default:
		status = fmt.Sprintf("%d giveaways", len(giveaways))
	}

	if err := b.session.UpdateWatchStatus(0, status); err != nil {
		log.Errorf("Failed to update presence: %v", err)
	}
}
