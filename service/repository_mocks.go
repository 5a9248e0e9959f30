package service

import (
	"context"

	"warden/models"

	"github.com/stretchr/testify/mock"
)

// MockGiveawayRepository is a mock implementation of GiveawayRepository
type MockGiveawayRepository struct {
	mock.Mock
}

func (m *MockGiveawayRepository) Create(ctx context.Context, giveaway *models.Giveaway) error {
	args := m.Called(ctx, giveaway)
	return args.Error(0)
}

func (m *MockGiveawayRepository) GetByID(ctx context.Context, id int64) (*models.Giveaway, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Giveaway), args.Error(1)
}

func (m *MockGiveawayRepository) MarkEnded(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockGiveawayRepository) GetActiveByGuild(ctx context.Context, guildID int64) ([]*models.Giveaway, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Giveaway), args.Error(1)
}

func (m *MockGiveawayRepository) GetAllActive(ctx context.Context) ([]*models.Giveaway, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Giveaway), args.Error(1)
}

// MockGiveawayEntryRepository is a mock implementation of GiveawayEntryRepository
type MockGiveawayEntryRepository struct {
	mock.Mock
}

func (m *MockGiveawayEntryRepository) Create(ctx context.Context, entry *models.GiveawayEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockGiveawayEntryRepository) GetByGiveaway(ctx context.Context, giveawayID int64) ([]*models.GiveawayEntry, error) {
	args := m.Called(ctx, giveawayID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GiveawayEntry), args.Error(1)
}

func (m *MockGiveawayEntryRepository) CountByGiveaway(ctx context.Context, giveawayID int64) (int64, error) {
	args := m.Called(ctx, giveawayID)
	return args.Get(0).(int64), args.Error(1)
}

// MockGiveawayWinnerRepository is a mock implementation of GiveawayWinnerRepository
type MockGiveawayWinnerRepository struct {
	mock.Mock
}

func (m *MockGiveawayWinnerRepository) CreateBatch(ctx context.Context, winners []*models.GiveawayWinner) error {
	args := m.Called(ctx, winners)
	return args.Error(0)
}

func (m *MockGiveawayWinnerRepository) Replace(ctx context.Context, giveawayID int64, winners []*models.GiveawayWinner) error {
	args := m.Called(ctx, giveawayID, winners)
	return args.Error(0)
}

func (m *MockGiveawayWinnerRepository) GetByGiveaway(ctx context.Context, giveawayID int64) ([]*models.GiveawayWinner, error) {
	args := m.Called(ctx, giveawayID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GiveawayWinner), args.Error(1)
}

// MockServerConnectionRepository is a mock implementation of ServerConnectionRepository
type MockServerConnectionRepository struct {
	mock.Mock
}

func (m *MockServerConnectionRepository) Create(ctx context.Context, conn *models.ServerConnection) error {
	args := m.Called(ctx, conn)
	return args.Error(0)
}

func (m *MockServerConnectionRepository) GetByNickname(ctx context.Context, nickname string) (*models.ServerConnection, error) {
	args := m.Called(ctx, nickname)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServerConnection), args.Error(1)
}

func (m *MockServerConnectionRepository) UpdateStatus(ctx context.Context, nickname string, status models.ConnectionStatus) error {
	args := m.Called(ctx, nickname, status)
	return args.Error(0)
}

func (m *MockServerConnectionRepository) Delete(ctx context.Context, nickname string) (bool, error) {
	args := m.Called(ctx, nickname)
	return args.Bool(0), args.Error(1)
}

func (m *MockServerConnectionRepository) GetAll(ctx context.Context) ([]*models.ServerConnection, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ServerConnection), args.Error(1)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) PostAnnouncement(ctx context.Context, channelID int64, message string) error {
	args := m.Called(ctx, channelID, message)
	return args.Error(0)
}

func (m *MockNotifier) DirectNotify(ctx context.Context, discordID int64, message string) error {
	args := m.Called(ctx, discordID, message)
	return args.Error(0)
}

// MockSession is a mock implementation of Session
type MockSession struct {
	mock.Mock
}

func (m *MockSession) Execute(ctx context.Context, command string) (string, error) {
	args := m.Called(ctx, command)
	return args.String(0), args.Error(1)
}

func (m *MockSession) Close() error {
	args := m.Called()
	return args.Error(0)
}
