package repository

import (
	"context"
	"fmt"

	"warden/database"
	"warden/models"

	"github.com/jackc/pgx/v5"
)

// GiveawayWinnerRepository implements the GiveawayWinnerRepository interface
type GiveawayWinnerRepository struct {
	q  queryable
	db *database.DB
}

// NewGiveawayWinnerRepository creates a new giveaway winner repository
func NewGiveawayWinnerRepository(db *database.DB) *GiveawayWinnerRepository {
	return &GiveawayWinnerRepository{q: db.Pool, db: db}
}

// CreateBatch inserts all winners for a giveaway
func (r *GiveawayWinnerRepository) CreateBatch(ctx context.Context, winners []*models.GiveawayWinner) error {
	return createWinners(ctx, r.q, winners)
}

// Replace atomically swaps the winner set for a giveaway: prior winners are
// deleted and the new set inserted in a single transaction. Used by reroll.
func (r *GiveawayWinnerRepository) Replace(ctx context.Context, giveawayID int64, winners []*models.GiveawayWinner) error {
	if r.db == nil {
		return fmt.Errorf("replace requires a pool-backed repository")
	}

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM giveaway_winners WHERE giveaway_id = $1`, giveawayID); err != nil {
			return fmt.Errorf("failed to delete winners for giveaway %d: %w", giveawayID, err)
		}
		return createWinners(ctx, tx, winners)
	})
}

func createWinners(ctx context.Context, q queryable, winners []*models.GiveawayWinner) error {
	query := `
		INSERT INTO giveaway_winners (giveaway_id, discord_id, display_name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	for _, winner := range winners {
		err := q.QueryRow(ctx, query,
			winner.GiveawayID,
			winner.DiscordID,
			winner.DisplayName,
		).Scan(&winner.ID, &winner.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create winner for giveaway %d: %w", winner.GiveawayID, err)
		}
	}

	return nil
}

// GetByGiveaway returns all winners for a giveaway in selection order
func (r *GiveawayWinnerRepository) GetByGiveaway(ctx context.Context, giveawayID int64) ([]*models.GiveawayWinner, error) {
	query := `
		SELECT id, giveaway_id, discord_id, display_name, created_at
		FROM giveaway_winners
		WHERE giveaway_id = $1
		ORDER BY id ASC
	`

	rows, err := r.q.Query(ctx, query, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to get winners for giveaway %d: %w", giveawayID, err)
	}
	defer rows.Close()

	var winners []*models.GiveawayWinner
	for rows.Next() {
		var winner models.GiveawayWinner
		err := rows.Scan(
			&winner.ID,
			&winner.GiveawayID,
			&winner.DiscordID,
			&winner.DisplayName,
			&winner.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan winner: %w", err)
		}
		winners = append(winners, &winner)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate winners: %w", err)
	}

	return winners, nil
}
