package models

import (
	"time"
)

// GiveawayEntry represents a single entrant's registration into one giveaway.
// A user can hold at most one entry per giveaway; the unique index on
// (giveaway_id, discord_id) is what enforces this, not application code.
type GiveawayEntry struct {
	ID          int64     `db:"id"`
	GiveawayID  int64     `db:"giveaway_id"`
	DiscordID   int64     `db:"discord_id"`
	DisplayName string    `db:"display_name"`
	CreatedAt   time.Time `db:"created_at"`
}
