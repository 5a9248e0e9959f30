package models

import (
	"time"
)

// GiveawayWinner represents an entrant selected when a giveaway closed.
// Winners are written in bulk at close time and fully replaced on reroll.
type GiveawayWinner struct {
	ID          int64     `db:"id"`
	GiveawayID  int64     `db:"giveaway_id"`
	DiscordID   int64     `db:"discord_id"`
	DisplayName string    `db:"display_name"`
	CreatedAt   time.Time `db:"created_at"`
}
