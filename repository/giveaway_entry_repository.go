package repository

import (
	"context"
	"fmt"

	"warden/database"
	"warden/models"
)

// GiveawayEntryRepository implements the GiveawayEntryRepository interface
type GiveawayEntryRepository struct {
	q queryable
}

// NewGiveawayEntryRepository creates a new giveaway entry repository
func NewGiveawayEntryRepository(db *database.DB) *GiveawayEntryRepository {
	return &GiveawayEntryRepository{q: db.Pool}
}

// Create inserts an entry for a user. The unique constraint on
// (giveaway_id, discord_id) is the sole guard against duplicate entries;
// a violation is reported as models.ErrAlreadyEntered, not as a failure.
func (r *GiveawayEntryRepository) Create(ctx context.Context, entry *models.GiveawayEntry) error {
	query := `
		INSERT INTO giveaway_entries (giveaway_id, discord_id, display_name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.GiveawayID,
		entry.DiscordID,
		entry.DisplayName,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrAlreadyEntered
		}
		return fmt.Errorf("failed to create entry for giveaway %d: %w", entry.GiveawayID, err)
	}

	return nil
}

// GetByGiveaway returns all entries for a giveaway in entry order
func (r *GiveawayEntryRepository) GetByGiveaway(ctx context.Context, giveawayID int64) ([]*models.GiveawayEntry, error) {
	query := `
		SELECT id, giveaway_id, discord_id, display_name, created_at
		FROM giveaway_entries
		WHERE giveaway_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.q.Query(ctx, query, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entries for giveaway %d: %w", giveawayID, err)
	}
	defer rows.Close()

	var entries []*models.GiveawayEntry
	for rows.Next() {
		var entry models.GiveawayEntry
		err := rows.Scan(
			&entry.ID,
			&entry.GiveawayID,
			&entry.DiscordID,
			&entry.DisplayName,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}

	return entries, nil
}

// CountByGiveaway returns the total number of entries for a giveaway
func (r *GiveawayEntryRepository) CountByGiveaway(ctx context.Context, giveawayID int64) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM giveaway_entries
		WHERE giveaway_id = $1
	`

	var count int64
	if err := r.q.QueryRow(ctx, query, giveawayID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count entries for giveaway %d: %w", giveawayID, err)
	}

	return count, nil
}
