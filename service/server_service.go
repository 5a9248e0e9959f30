package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"warden/events"
	"warden/models"

	log "github.com/sirupsen/logrus"
)

// serverService tracks named remote-server connections. The in-memory
// session map is the single source of truth for whether a connection is
// usable; the persisted status column is advisory and may be stale.
type serverService struct {
	connRepo ServerConnectionRepository
	dial     SessionDialer
	eventBus *events.Bus

	mu       sync.RWMutex
	sessions map[string]Session
}

// NewServerService creates a new server connection service
func NewServerService(connRepo ServerConnectionRepository, dial SessionDialer, eventBus *events.Bus) ServerService {
	return &serverService{
		connRepo: connRepo,
		dial:     dial,
		eventBus: eventBus,
		sessions: make(map[string]Session),
	}
}

// AddConnection persists a new connection descriptor in disconnected state.
// No transport session is opened.
func (s *serverService) AddConnection(ctx context.Context, nickname, address, region, password string, creatorID int64) (*models.ServerConnection, error) {
	if nickname == "" {
		return nil, errors.New("nickname cannot be empty")
	}
	if address == "" {
		return nil, errors.New("address cannot be empty")
	}

	conn := &models.ServerConnection{
		Nickname:  nickname,
		Address:   address,
		Region:    region,
		Password:  password,
		Status:    models.ConnectionStatusDisconnected,
		CreatorID: creatorID,
	}

	if err := s.connRepo.Create(ctx, conn); err != nil {
		if errors.Is(err, models.ErrDuplicateNickname) {
			return nil, models.ErrDuplicateNickname
		}
		return nil, fmt.Errorf("failed to create connection: %w", err)
	}

	return conn, nil
}

// Connect opens a transport session using the persisted address and the
// credential stored on the record. On handshake failure the persisted status
// drops to error and the session map is left untouched.
func (s *serverService) Connect(ctx context.Context, nickname string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[nickname]; ok {
		return models.ErrAlreadyConnected
	}

	conn, err := s.connRepo.GetByNickname(ctx, nickname)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	if conn == nil {
		return models.ErrConnectionNotFound
	}

	session, err := s.dial(ctx, conn.Address, conn.Password)
	if err != nil {
		s.persistStatus(ctx, nickname, string(conn.Status), models.ConnectionStatusError)
		return fmt.Errorf("failed to connect to %q: %w", nickname, err)
	}

	s.sessions[nickname] = session
	s.persistStatus(ctx, nickname, string(conn.Status), models.ConnectionStatusConnected)

	log.WithFields(log.Fields{
		"nickname": nickname,
		"address":  conn.Address,
	}).Info("Server connection established")

	return nil
}

// Disconnect closes the live session for a connection
func (s *serverService) Disconnect(ctx context.Context, nickname string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[nickname]
	if !ok {
		return models.ErrNotConnected
	}

	if err := session.Close(); err != nil {
		log.WithError(err).WithField("nickname", nickname).Warn("Error closing session")
	}
	delete(s.sessions, nickname)

	s.persistStatus(ctx, nickname, string(models.ConnectionStatusConnected), models.ConnectionStatusDisconnected)

	return nil
}

// RemoveConnection tears down any live session, then deletes the descriptor
func (s *serverService) RemoveConnection(ctx context.Context, nickname string) error {
	s.mu.Lock()
	if session, ok := s.sessions[nickname]; ok {
		if err := session.Close(); err != nil {
			log.WithError(err).WithField("nickname", nickname).Warn("Error closing session during removal")
		}
		delete(s.sessions, nickname)
	}
	s.mu.Unlock()

	found, err := s.connRepo.Delete(ctx, nickname)
	if err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}
	if !found {
		return models.ErrConnectionNotFound
	}

	return nil
}

// SendCommand executes a command on a connected server. Only the in-memory
// map is consulted: a persisted connected status without a live session is
// reported as not connected.
func (s *serverService) SendCommand(ctx context.Context, nickname, command string) (string, error) {
	s.mu.RLock()
	session, ok := s.sessions[nickname]
	s.mu.RUnlock()

	if !ok {
		return "", models.ErrNotConnected
	}

	// A single slow command does not mean the session is dead; timeouts do
	// not downgrade the persisted status.
	response, err := session.Execute(ctx, command)
	if err != nil {
		return "", fmt.Errorf("command failed on %q: %w", nickname, err)
	}

	return response, nil
}

// Broadcast sends an in-game chat announcement and discards the reply
func (s *serverService) Broadcast(ctx context.Context, nickname, message string) error {
	_, err := s.SendCommand(ctx, nickname, fmt.Sprintf("say %s", message))
	return err
}

// ListConnections returns all persisted connection descriptors
func (s *serverService) ListConnections(ctx context.Context) ([]*models.ServerConnection, error) {
	conns, err := s.connRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	return conns, nil
}

// CloseAll closes every live session. Persisted statuses are left alone;
// they are reconciled on the next connect attempt.
func (s *serverService) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for nickname, session := range s.sessions {
		if err := session.Close(); err != nil {
			log.WithError(err).WithField("nickname", nickname).Warn("Error closing session during shutdown")
		}
		delete(s.sessions, nickname)
	}
}

// persistStatus writes the advisory status column and emits the transition.
// A write failure is logged, not propagated: status is informational.
func (s *serverService) persistStatus(ctx context.Context, nickname, oldStatus string, status models.ConnectionStatus) {
	if err := s.connRepo.UpdateStatus(ctx, nickname, status); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"nickname": nickname,
			"status":   status,
		}).Warn("Failed to persist connection status")
		return
	}

	s.eventBus.Emit(ctx, events.ConnectionStatusChangedEvent{
		Nickname:  nickname,
		OldStatus: oldStatus,
		NewStatus: string(status),
	})
}
