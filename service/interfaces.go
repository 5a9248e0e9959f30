package service

import (
	"context"
	"time"

	"warden/models"
)

// GiveawayRepository defines the interface for giveaway data access
type GiveawayRepository interface {
	// Create persists a new giveaway and fills in its assigned id
	Create(ctx context.Context, giveaway *models.Giveaway) error

	// GetByID retrieves a giveaway by its ID, nil if not found
	GetByID(ctx context.Context, id int64) (*models.Giveaway, error)

	// MarkEnded conditionally transitions active->ended; the bool reports
	// whether this call performed the transition
	MarkEnded(ctx context.Context, id int64) (bool, error)

	// GetActiveByGuild returns active giveaways for a guild ordered by end time
	GetActiveByGuild(ctx context.Context, guildID int64) ([]*models.Giveaway, error)

	// GetAllActive returns every active giveaway across all guilds
	GetAllActive(ctx context.Context) ([]*models.Giveaway, error)
}

// GiveawayEntryRepository defines the interface for giveaway entry data access
type GiveawayEntryRepository interface {
	// Create inserts an entry; returns models.ErrAlreadyEntered on the
	// (giveaway_id, discord_id) unique constraint
	Create(ctx context.Context, entry *models.GiveawayEntry) error

	// GetByGiveaway returns all entries for a giveaway
	GetByGiveaway(ctx context.Context, giveawayID int64) ([]*models.GiveawayEntry, error)

	// CountByGiveaway returns the total entry count for a giveaway
	CountByGiveaway(ctx context.Context, giveawayID int64) (int64, error)
}

// GiveawayWinnerRepository defines the interface for giveaway winner data access
type GiveawayWinnerRepository interface {
	// CreateBatch inserts all winners drawn at close time
	CreateBatch(ctx context.Context, winners []*models.GiveawayWinner) error

	// Replace atomically deletes prior winners and inserts the new set
	Replace(ctx context.Context, giveawayID int64, winners []*models.GiveawayWinner) error

	// GetByGiveaway returns all winners for a giveaway
	GetByGiveaway(ctx context.Context, giveawayID int64) ([]*models.GiveawayWinner, error)
}

// ServerConnectionRepository defines the interface for server connection data access
type ServerConnectionRepository interface {
	// Create persists a new connection descriptor; returns
	// models.ErrDuplicateNickname on the nickname unique constraint
	Create(ctx context.Context, conn *models.ServerConnection) error

	// GetByNickname retrieves a connection descriptor, nil if not found
	GetByNickname(ctx context.Context, nickname string) (*models.ServerConnection, error)

	// UpdateStatus records the last known transport state
	UpdateStatus(ctx context.Context, nickname string, status models.ConnectionStatus) error

	// Delete removes a descriptor and reports whether a record existed
	Delete(ctx context.Context, nickname string) (bool, error)

	// GetAll returns all connection descriptors
	GetAll(ctx context.Context) ([]*models.ServerConnection, error)
}

// Notifier delivers human-readable announcements. Implementations may fail
// per recipient; callers treat each delivery independently.
type Notifier interface {
	// PostAnnouncement posts a message to a channel
	PostAnnouncement(ctx context.Context, channelID int64, message string) error

	// DirectNotify sends a direct message to a user
	DirectNotify(ctx context.Context, discordID int64, message string) error
}

// Session is a live command transport to a remote game server
type Session interface {
	// Execute sends a command and waits for its response
	Execute(ctx context.Context, command string) (string, error)

	// Close tears down the transport
	Close() error
}

// SessionDialer opens a command transport session against a remote server
type SessionDialer func(ctx context.Context, address, password string) (Session, error)

// CreateGiveawayParams holds the inputs for creating a giveaway
type CreateGiveawayParams struct {
	Name         string
	Description  string
	MaxWinners   int
	DurationSpec string
	ChannelID    int64
	CreatorID    int64
	GuildID      int64
}

// GiveawayService owns the giveaway lifecycle: create, enter, scheduled or
// manual close, winner selection and reroll
type GiveawayService interface {
	// Create validates inputs, persists a new active giveaway and returns it.
	// The caller announces it and then calls Schedule.
	Create(ctx context.Context, params CreateGiveawayParams) (*models.Giveaway, error)

	// Enter registers an entrant; returns the updated entry count on success.
	// Named outcomes: models.ErrGiveawayNotFound, models.ErrGiveawayNotActive,
	// models.ErrAlreadyEntered.
	Enter(ctx context.Context, giveawayID, discordID int64, displayName string) (int64, error)

	// Close ends a giveaway, draws winners and announces them. Idempotent:
	// closing an already-ended giveaway is a no-op.
	Close(ctx context.Context, giveawayID int64) error

	// Reroll replaces the winner set using the same entry pool and announces
	// the redraw. Status is unaffected.
	Reroll(ctx context.Context, giveawayID int64) ([]*models.GiveawayWinner, error)

	// ListActive returns active giveaways for a guild ordered by end time
	ListActive(ctx context.Context, guildID int64) ([]*models.Giveaway, error)

	// Schedule registers the one-shot close timer for a giveaway, replacing
	// any pending timer for the same id
	Schedule(giveawayID int64, endTime time.Time)

	// Start reloads all active giveaways from the store and reschedules
	// them; overdue giveaways are closed immediately
	Start(ctx context.Context) error

	// Stop cancels all pending close timers
	Stop()
}

// ServerService owns named remote-server connections and their live sessions
type ServerService interface {
	// AddConnection persists a new connection descriptor in disconnected state
	AddConnection(ctx context.Context, nickname, address, region, password string, creatorID int64) (*models.ServerConnection, error)

	// RemoveConnection tears down any live session and deletes the descriptor
	RemoveConnection(ctx context.Context, nickname string) error

	// Connect opens a transport session for a persisted connection
	Connect(ctx context.Context, nickname string) error

	// Disconnect closes the live session for a connection
	Disconnect(ctx context.Context, nickname string) error

	// SendCommand executes a command on a connected server
	SendCommand(ctx context.Context, nickname, command string) (string, error)

	// Broadcast sends an in-game chat announcement; the reply is discarded
	Broadcast(ctx context.Context, nickname, message string) error

	// ListConnections returns all persisted connection descriptors
	ListConnections(ctx context.Context) ([]*models.ServerConnection, error)

	// CloseAll closes every live session; used during shutdown
	CloseAll()
}
