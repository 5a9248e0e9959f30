package testutil

import (
	"fmt"
	"time"

	"warden/models"
)

// CreateTestGiveaway creates an active test giveaway ending one hour from now
func CreateTestGiveaway(guildID int64) *models.Giveaway {
	return &models.Giveaway{
		Name:        "Test Giveaway",
		Description: "A test prize",
		MaxWinners:  1,
		ChannelID:   555000111,
		CreatorID:   100,
		GuildID:     guildID,
		EndTime:     time.Now().Add(time.Hour).UTC().Truncate(time.Microsecond),
		Status:      models.GiveawayStatusActive,
	}
}

// CreateTestGiveawayEndingAt creates an active test giveaway with a specific end time
func CreateTestGiveawayEndingAt(guildID int64, endTime time.Time) *models.Giveaway {
	giveaway := CreateTestGiveaway(guildID)
	giveaway.EndTime = endTime
	return giveaway
}

// CreateTestEntry creates a test entry for a giveaway
func CreateTestEntry(giveawayID, discordID int64) *models.GiveawayEntry {
	return &models.GiveawayEntry{
		GiveawayID:  giveawayID,
		DiscordID:   discordID,
		DisplayName: fmt.Sprintf("user-%d", discordID),
	}
}

// CreateTestWinner creates a test winner record for a giveaway
func CreateTestWinner(giveawayID, discordID int64) *models.GiveawayWinner {
	return &models.GiveawayWinner{
		GiveawayID:  giveawayID,
		DiscordID:   discordID,
		DisplayName: fmt.Sprintf("user-%d", discordID),
	}
}

// CreateTestServerConnection creates a test server connection descriptor
func CreateTestServerConnection(nickname string) *models.ServerConnection {
	return &models.ServerConnection{
		Nickname:  nickname,
		Address:   "203.0.113.10:27015",
		Region:    "eu",
		Password:  "test_password",
		Status:    models.ConnectionStatusDisconnected,
		CreatorID: 100,
	}
}
