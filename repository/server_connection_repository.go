package repository

import (
	"context"
	"fmt"

	"warden/database"
	"warden/models"

	"github.com/jackc/pgx/v5"
)

// ServerConnectionRepository implements the ServerConnectionRepository interface
type ServerConnectionRepository struct {
	q queryable
}

// NewServerConnectionRepository creates a new server connection repository
func NewServerConnectionRepository(db *database.DB) *ServerConnectionRepository {
	return &ServerConnectionRepository{q: db.Pool}
}

// Create persists a new server connection descriptor. The unique constraint
// on nickname closes the check-then-insert race; a violation is reported as
// models.ErrDuplicateNickname.
func (r *ServerConnectionRepository) Create(ctx context.Context, conn *models.ServerConnection) error {
	query := `
		INSERT INTO server_connections (nickname, address, region, password, status, creator_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		conn.Nickname,
		conn.Address,
		conn.Region,
		conn.Password,
		conn.Status,
		conn.CreatorID,
	).Scan(&conn.ID, &conn.CreatedAt, &conn.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateNickname
		}
		return fmt.Errorf("failed to create server connection %q: %w", conn.Nickname, err)
	}

	return nil
}

// GetByNickname retrieves a server connection by its nickname
func (r *ServerConnectionRepository) GetByNickname(ctx context.Context, nickname string) (*models.ServerConnection, error) {
	query := `
		SELECT id, nickname, address, region, password, status, creator_id, created_at, updated_at
		FROM server_connections
		WHERE nickname = $1
	`

	var conn models.ServerConnection
	err := r.q.QueryRow(ctx, query, nickname).Scan(
		&conn.ID,
		&conn.Nickname,
		&conn.Address,
		&conn.Region,
		&conn.Password,
		&conn.Status,
		&conn.CreatorID,
		&conn.CreatedAt,
		&conn.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get server connection %q: %w", nickname, err)
	}

	return &conn, nil
}

// UpdateStatus records the last known transport state for a connection
func (r *ServerConnectionRepository) UpdateStatus(ctx context.Context, nickname string, status models.ConnectionStatus) error {
	query := `
		UPDATE server_connections
		SET status = $1, updated_at = NOW()
		WHERE nickname = $2
	`

	result, err := r.q.Exec(ctx, query, status, nickname)
	if err != nil {
		return fmt.Errorf("failed to update status for server connection %q: %w", nickname, err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrConnectionNotFound
	}

	return nil
}

// Delete removes a server connection descriptor and reports whether a record existed
func (r *ServerConnectionRepository) Delete(ctx context.Context, nickname string) (bool, error) {
	query := `
		DELETE FROM server_connections
		WHERE nickname = $1
	`

	result, err := r.q.Exec(ctx, query, nickname)
	if err != nil {
		return false, fmt.Errorf("failed to delete server connection %q: %w", nickname, err)
	}

	return result.RowsAffected() > 0, nil
}

// GetAll returns all server connection descriptors ordered by nickname
func (r *ServerConnectionRepository) GetAll(ctx context.Context) ([]*models.ServerConnection, error) {
	query := `
		SELECT id, nickname, address, region, password, status, creator_id, created_at, updated_at
		FROM server_connections
		ORDER BY nickname ASC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get server connections: %w", err)
	}
	defer rows.Close()

	var conns []*models.ServerConnection
	for rows.Next() {
		var conn models.ServerConnection
		err := rows.Scan(
			&conn.ID,
			&conn.Nickname,
			&conn.Address,
			&conn.Region,
			&conn.Password,
			&conn.Status,
			&conn.CreatorID,
			&conn.CreatedAt,
			&conn.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan server connection: %w", err)
		}
		conns = append(conns, &conn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate server connections: %w", err)
	}

	return conns, nil
}
