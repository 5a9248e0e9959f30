package bot

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"warden/bot/common"
	"warden/models"
	"warden/rcon"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleServerCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		common.RespondWithError(s, i, "Invalid command usage.")
		return
	}

	sub := options[0]
	opts := make(map[string]string)
	for _, opt := range sub.Options {
		opts[opt.Name] = opt.StringValue()
	}

	switch sub.Name {
	case "add":
		b.handleServerAdd(s, i, opts)
	case "remove":
		b.handleServerRemove(s, i, opts["nickname"])
	case "connect":
		b.handleServerConnect(s, i, opts["nickname"])
	case "disconnect":
		b.handleServerDisconnect(s, i, opts["nickname"])
	case "run":
		b.handleServerRun(s, i, opts["nickname"], opts["command"])
	case "say":
		b.handleServerSay(s, i, opts["nickname"], opts["message"])
	case "list":
		b.handleServerList(s, i)
	}
}

func (b *Bot) handleServerAdd(s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]string) {
	ctx := context.Background()

	creatorID, err := common.InteractionUserID(i)
	if err != nil {
		log.Errorf("Error parsing Discord ID: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	conn, err := b.serverService.AddConnection(ctx, opts["nickname"], opts["address"], opts["region"], opts["password"], creatorID)
	if err != nil {
		if errors.Is(err, models.ErrDuplicateNickname) {
			common.RespondWithError(s, i, fmt.Sprintf("A server named **%s** already exists.", opts["nickname"]))
			return
		}
		log.Errorf("Error adding server %s: %v", opts["nickname"], err)
		common.RespondWithError(s, i, "Unable to add server. Please try again.")
		return
	}

	// The password was in the slash command; keep the confirmation ephemeral
	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Server **%s** (%s) registered. Use `/server connect` to open the session.", conn.Nickname, conn.Address), true); err != nil {
		log.Errorf("Error responding to server add: %v", err)
	}
}

func (b *Bot) handleServerRemove(s *discordgo.Session, i *discordgo.InteractionCreate, nickname string) {
	ctx := context.Background()

	if err := b.serverService.RemoveConnection(ctx, nickname); err != nil {
		if errors.Is(err, models.ErrConnectionNotFound) {
			common.RespondWithError(s, i, fmt.Sprintf("No server named **%s**.", nickname))
			return
		}
		log.Errorf("Error removing server %s: %v", nickname, err)
		common.RespondWithError(s, i, "Unable to remove server. Please try again.")
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Server **%s** removed.", nickname), true); err != nil {
		log.Errorf("Error responding to server remove: %v", err)
	}
}

func (b *Bot) handleServerConnect(s *discordgo.Session, i *discordgo.InteractionCreate, nickname string) {
	ctx := context.Background()

	// Dialing can take several seconds against an unreachable host
	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Error deferring server connect response: %v", err)
		return
	}

	if err := b.serverService.Connect(ctx, nickname); err != nil {
		switch {
		case errors.Is(err, models.ErrConnectionNotFound):
			common.FollowUpWithContent(s, i, fmt.Sprintf("❌ No server named **%s**.", nickname), true)
		case errors.Is(err, models.ErrAlreadyConnected):
			common.FollowUpWithContent(s, i, fmt.Sprintf("❌ Server **%s** is already connected.", nickname), true)
		case errors.Is(err, rcon.ErrAuthFailed):
			common.FollowUpWithContent(s, i, fmt.Sprintf("❌ Server **%s** rejected the password.", nickname), true)
		default:
			log.Errorf("Error connecting to server %s: %v", nickname, err)
			common.FollowUpWithContent(s, i, fmt.Sprintf("❌ Could not connect to **%s**: %v", nickname, err), true)
		}
		return
	}

	common.FollowUpWithContent(s, i, fmt.Sprintf("✅ Connected to **%s**.", nickname), true)
}

func (b *Bot) handleServerDisconnect(s *discordgo.Session, i *discordgo.InteractionCreate, nickname string) {
	ctx := context.Background()

	if err := b.serverService.Disconnect(ctx, nickname); err != nil {
		switch {
		case errors.Is(err, models.ErrConnectionNotFound):
			common.RespondWithError(s, i, fmt.Sprintf("No server named **%s**.", nickname))
		case errors.Is(err, models.ErrNotConnected):
			common.RespondWithError(s, i, fmt.Sprintf("Server **%s** is not connected.", nickname))
		default:
			log.Errorf("Error disconnecting server %s: %v", nickname, err)
			common.RespondWithError(s, i, "Unable to disconnect server. Please try again.")
		}
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Disconnected from **%s**.", nickname), true); err != nil {
		log.Errorf("Error responding to server disconnect: %v", err)
	}
}

func (b *Bot) handleServerRun(s *discordgo.Session, i *discordgo.InteractionCreate, nickname, command string) {
	ctx := context.Background()

	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Error deferring server run response: %v", err)
		return
	}

	response, err := b.serverService.SendCommand(ctx, nickname, command)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrConnectionNotFound):
			common.FollowUpWithContent(s, i, fmt.Sprintf("❌ No server named **%s**.", nickname), true)
		case errors.Is(err, models.ErrNotConnected):
			common.FollowUpWithContent(s, i, fmt.Sprintf("❌ Server **%s** is not connected. Use `/server connect` first.", nickname), true)
		case errors.Is(err, rcon.ErrTimeout):
			common.FollowUpWithContent(s, i, fmt.Sprintf("❌ Server **%s** did not answer in time.", nickname), true)
		default:
			log.Errorf("Error running command on server %s: %v", nickname, err)
			common.FollowUpWithContent(s, i, fmt.Sprintf("❌ Command failed on **%s**: %v", nickname, err), true)
		}
		return
	}

	common.FollowUpWithContent(s, i, formatCommandOutput(response), true)
}

func (b *Bot) handleServerSay(s *discordgo.Session, i *discordgo.InteractionCreate, nickname, message string) {
	ctx := context.Background()

	if err := b.serverService.Broadcast(ctx, nickname, message); err != nil {
		switch {
		case errors.Is(err, models.ErrConnectionNotFound):
			common.RespondWithError(s, i, fmt.Sprintf("No server named **%s**.", nickname))
		case errors.Is(err, models.ErrNotConnected):
			common.RespondWithError(s, i, fmt.Sprintf("Server **%s** is not connected. Use `/server connect` first.", nickname))
		default:
			log.Errorf("Error broadcasting on server %s: %v", nickname, err)
			common.RespondWithError(s, i, "Unable to broadcast message. Please try again.")
		}
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Broadcast sent to **%s**.", nickname), true); err != nil {
		log.Errorf("Error responding to server say: %v", err)
	}
}

func (b *Bot) handleServerList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	connections, err := b.serverService.ListConnections(ctx)
	if err != nil {
		log.Errorf("Error listing servers: %v", err)
		common.RespondWithError(s, i, "Unable to list servers. Please try again.")
		return
	}

	if err := common.RespondWithEmbed(s, i, serverListEmbed(connections), nil, true); err != nil {
		log.Errorf("Error responding to server list: %v", err)
	}
}

// formatCommandOutput wraps the raw RCON reply in a code block, truncated to
// fit Discord's message limit
func formatCommandOutput(response string) string {
	const maxLen = 1900
	if response == "" {
		return "✅ Command executed (no output)."
	}
	if len(response) > maxLen {
		response = response[:maxLen] + "\n... (truncated)"
	}
	return fmt.Sprintf("```\n%s\n```", response)
}

func serverListEmbed(connections []*models.ServerConnection) *discordgo.MessageEmbed {
	if len(connections) == 0 {
		return &discordgo.MessageEmbed{
			Title:       "Registered Servers",
			Description: "No servers registered. Use `/server add` to register one.",
			Color:       colorNeutral,
		}
	}

	fields := make([]*discordgo.MessageEmbedField, 0, len(connections))
	for _, conn := range connections {
		region := conn.Region
		if region == "" {
			region = "unknown region"
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s %s", statusEmoji(conn.Status), conn.Nickname),
			Value: fmt.Sprintf("%s (%s) • %s", conn.Address, region, conn.Status),
		})
	}

	return &discordgo.MessageEmbed{
		Title:  "Registered Servers",
		Color:  0x3498DB,
		Fields: fields,
	}
}

func statusEmoji(status models.ConnectionStatus) string {
	switch status {
	case models.ConnectionStatusConnected:
		return "🟢"
	case models.ConnectionStatusError:
		return "🔴"
	default:
		return "⚪"
	}
}
