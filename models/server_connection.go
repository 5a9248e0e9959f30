package models

import (
	"time"
)

// ConnectionStatus represents the last known transport state of a server connection.
// The persisted status is advisory; the in-memory session registry is the
// source of truth for whether a connection is usable right now.
type ConnectionStatus string

const (
	ConnectionStatusConnected    ConnectionStatus = "connected"
	ConnectionStatusDisconnected ConnectionStatus = "disconnected"
	ConnectionStatusError        ConnectionStatus = "error"
)

// ServerConnection represents a named, persisted descriptor for a remote
// game-server RCON channel
type ServerConnection struct {
	ID        int64            `db:"id"`
	Nickname  string           `db:"nickname"`
	Address   string           `db:"address"`
	Region    string           `db:"region"`
	Password  string           `db:"password"`
	Status    ConnectionStatus `db:"status"`
	CreatorID int64            `db:"creator_id"`
	CreatedAt time.Time        `db:"created_at"`
	UpdatedAt time.Time        `db:"updated_at"`
}
