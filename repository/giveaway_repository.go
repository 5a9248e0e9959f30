package repository

import (
	"context"
	"fmt"

	"warden/database"
	"warden/models"

	"github.com/jackc/pgx/v5"
)

// GiveawayRepository implements the GiveawayRepository interface
type GiveawayRepository struct {
	q queryable
}

// NewGiveawayRepository creates a new giveaway repository
func NewGiveawayRepository(db *database.DB) *GiveawayRepository {
	return &GiveawayRepository{q: db.Pool}
}

// Create persists a new giveaway and fills in its assigned id and timestamps
func (r *GiveawayRepository) Create(ctx context.Context, giveaway *models.Giveaway) error {
	query := `
		INSERT INTO giveaways (name, description, max_winners, channel_id, creator_id, guild_id, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		giveaway.Name,
		giveaway.Description,
		giveaway.MaxWinners,
		giveaway.ChannelID,
		giveaway.CreatorID,
		giveaway.GuildID,
		giveaway.EndTime,
		giveaway.Status,
	).Scan(&giveaway.ID, &giveaway.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create giveaway: %w", err)
	}

	return nil
}

// GetByID retrieves a giveaway by its ID
func (r *GiveawayRepository) GetByID(ctx context.Context, id int64) (*models.Giveaway, error) {
	query := `
		SELECT id, name, description, max_winners, channel_id, creator_id, guild_id, end_time, status, created_at
		FROM giveaways
		WHERE id = $1
	`

	var giveaway models.Giveaway
	err := r.q.QueryRow(ctx, query, id).Scan(
		&giveaway.ID,
		&giveaway.Name,
		&giveaway.Description,
		&giveaway.MaxWinners,
		&giveaway.ChannelID,
		&giveaway.CreatorID,
		&giveaway.GuildID,
		&giveaway.EndTime,
		&giveaway.Status,
		&giveaway.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get giveaway %d: %w", id, err)
	}

	return &giveaway, nil
}

// MarkEnded transitions a giveaway from active to ended and reports whether
// this call won the transition. A false return means the giveaway was already
// ended (or does not exist); exactly one concurrent caller observes true.
func (r *GiveawayRepository) MarkEnded(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE giveaways
		SET status = 'ended'
		WHERE id = $1 AND status = 'active'
	`

	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark giveaway %d ended: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}

// GetActiveByGuild returns all active giveaways for a guild ordered by end time
func (r *GiveawayRepository) GetActiveByGuild(ctx context.Context, guildID int64) ([]*models.Giveaway, error) {
	query := `
		SELECT id, name, description, max_winners, channel_id, creator_id, guild_id, end_time, status, created_at
		FROM giveaways
		WHERE guild_id = $1 AND status = 'active'
		ORDER BY end_time ASC
	`

	rows, err := r.q.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active giveaways for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	return scanGiveaways(rows)
}

// GetAllActive returns every active giveaway across all guilds ordered by end
// time. Used at startup to rebuild the close schedule.
func (r *GiveawayRepository) GetAllActive(ctx context.Context) ([]*models.Giveaway, error) {
	query := `
		SELECT id, name, description, max_winners, channel_id, creator_id, guild_id, end_time, status, created_at
		FROM giveaways
		WHERE status = 'active'
		ORDER BY end_time ASC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get active giveaways: %w", err)
	}
	defer rows.Close()

	return scanGiveaways(rows)
}

func scanGiveaways(rows pgx.Rows) ([]*models.Giveaway, error) {
	var giveaways []*models.Giveaway
	for rows.Next() {
		var giveaway models.Giveaway
		err := rows.Scan(
			&giveaway.ID,
			&giveaway.Name,
			&giveaway.Description,
			&giveaway.MaxWinners,
			&giveaway.ChannelID,
			&giveaway.CreatorID,
			&giveaway.GuildID,
			&giveaway.EndTime,
			&giveaway.Status,
			&giveaway.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan giveaway: %w", err)
		}
		giveaways = append(giveaways, &giveaway)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate giveaways: %w", err)
	}

	return giveaways, nil
}
