package models

import (
	"time"
)

// GiveawayStatus represents the lifecycle status of a giveaway
type GiveawayStatus string

const (
	GiveawayStatusActive GiveawayStatus = "active"
	GiveawayStatusEnded  GiveawayStatus = "ended"
)

// Giveaway represents a time-boxed prize drawing
type Giveaway struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	MaxWinners  int            `db:"max_winners"`
	ChannelID   int64          `db:"channel_id"`
	CreatorID   int64          `db:"creator_id"`
	GuildID     int64          `db:"guild_id"`
	EndTime     time.Time      `db:"end_time"`
	Status      GiveawayStatus `db:"status"`
	CreatedAt   time.Time      `db:"created_at"`
}

// IsActive checks if the giveaway is still accepting entries
func (g *Giveaway) IsActive() bool {
	return g.Status == GiveawayStatusActive
}

// IsOverdue checks if the giveaway's end time has already passed
func (g *Giveaway) IsOverdue(now time.Time) bool {
	return !g.EndTime.After(now)
}
