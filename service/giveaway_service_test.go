package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"warden/events"
	"warden/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newGiveawayServiceForTest(
	giveawayRepo *MockGiveawayRepository,
	entryRepo *MockGiveawayEntryRepository,
	winnerRepo *MockGiveawayWinnerRepository,
	notifier *MockNotifier,
) (GiveawayService, *Scheduler, *events.Bus) {
	scheduler := NewScheduler()
	eventBus := events.NewBus()
	svc := NewGiveawayService(giveawayRepo, entryRepo, winnerRepo, notifier, scheduler, eventBus)
	return svc, scheduler, eventBus
}

func activeGiveaway(id int64, maxWinners int) *models.Giveaway {
	return &models.Giveaway{
		ID:          id,
		Name:        "Steam Key",
		Description: "A game key",
		MaxWinners:  maxWinners,
		ChannelID:   555,
		CreatorID:   1,
		GuildID:     42,
		EndTime:     time.Now().Add(time.Hour),
		Status:      models.GiveawayStatusActive,
	}
}

func entriesFor(giveawayID int64, discordIDs ...int64) []*models.GiveawayEntry {
	entries := make([]*models.GiveawayEntry, 0, len(discordIDs))
	for _, id := range discordIDs {
		entries = append(entries, &models.GiveawayEntry{
			GiveawayID:  giveawayID,
			DiscordID:   id,
			DisplayName: "user",
		})
	}
	return entries
}

func TestGiveawayService_Create_Success(t *testing.T) {
	ctx := context.Background()

	mockGiveawayRepo := new(MockGiveawayRepository)
	mockEntryRepo := new(MockGiveawayEntryRepository)
	mockWinnerRepo := new(MockGiveawayWinnerRepository)
	mockNotifier := new(MockNotifier)

	svc, scheduler, _ := newGiveawayServiceForTest(mockGiveawayRepo, mockEntryRepo, mockWinnerRepo, mockNotifier)
	defer scheduler.Stop()

	mockGiveawayRepo.On("Create", ctx, mock.AnythingOfType("*models.Giveaway")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Giveaway).ID = 7
	}).Return(nil)

	before := time.Now()
	giveaway, err := svc.Create(ctx, CreateGiveawayParams{
		Name:         "Steam Key",
		Description:  "A game key",
		MaxWinners:   2,
		DurationSpec: "2h",
		ChannelID:    555,
		CreatorID:    1,
		GuildID:      42,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), giveaway.ID)
	assert.Equal(t, models.GiveawayStatusActive, giveaway.Status)
	assert.Equal(t, 2, giveaway.MaxWinners)

	// End time is anchored to creation time plus the parsed duration
	assert.WithinDuration(t, before.Add(2*time.Hour), giveaway.EndTime, 5*time.Second)

	mockGiveawayRepo.AssertExpectations(t)
}

func TestGiveawayService_Create_EmptyName(t *testing.T) {
	ctx := context.Background()

	mockGiveawayRepo := new(MockGiveawayRepository)
	svc, scheduler, _ := newGiveawayServiceForTest(mockGiveawayRepo, new(MockGiveawayEntryRepository), new(MockGiveawayWinnerRepository), new(MockNotifier))
	defer scheduler.Stop()

	_, err := svc.Create(ctx, CreateGiveawayParams{Name: "", MaxWinners: 1, DurationSpec: "1h"})

	assert.Error(t, err)
	mockGiveawayRepo.AssertNotCalled(t, "Create")
}

func TestGiveawayService_Create_InvalidDuration(t *testing.T) {
	ctx := context.Background()

	mockGiveawayRepo := new(MockGiveawayRepository)
	svc, scheduler, _ := newGiveawayServiceForTest(mockGiveawayRepo, new(MockGiveawayEntryRepository), new(MockGiveawayWinnerRepository), new(MockNotifier))
	defer scheduler.Stop()

	_, err := svc.Create(ctx, CreateGiveawayParams{Name: "Prize", MaxWinners: 1, DurationSpec: "1.5h"})

	assert.ErrorIs(t, err, models.ErrInvalidDuration)
	mockGiveawayRepo.AssertNotCalled(t, "Create")
}

func TestGiveawayService_Enter_Success(t *testing.T) {
	ctx := context.Background()

	mockGiveawayRepo := new(MockGiveawayRepository)
	mockEntryRepo := new(MockGiveawayEntryRepository)
	svc, scheduler, _ := newGiveawayServiceForTest(mockGiveawayRepo, mockEntryRepo, new(MockGiveawayWinnerRepository), new(MockNotifier))
	defer scheduler.Stop()

	mockGiveawayRepo.On("GetByID", ctx, int64(7)).Return(activeGiveaway(7, 1), nil)
	mockEntryRepo.On("Create", ctx, mock.MatchedBy(func(e *models.GiveawayEntry) bool {
		return e.GiveawayID == 7 && e.DiscordID == 123 && e.DisplayName == "alice"
	})).Return(nil)
	mockEntryRepo.On("CountByGiveaway", ctx, int64(7)).Return(int64(5), nil)

	count, err := svc.Enter(ctx, 7, 123, "alice")

	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
	mockGiveawayRepo.AssertExpectations(t)
	mockEntryRepo.AssertExpectations(t)
}

func TestGiveawayService_Enter_NotFound(t *testing.T) {
	ctx := context.Background()

	mockGiveawayRepo := new(MockGiveawayRepository)
	mockEntryRepo := new(MockGiveawayEntryRepository)
	svc, scheduler, _ := newGiveawayServiceForTest(mockGiveawayRepo, mockEntryRepo, new(MockGiveawayWinnerRepository), new(MockNotifier))
	defer scheduler.Stop()

	mockGiveawayRepo.On("GetByID", ctx, int64(99)).Return(nil, nil)

	_, err := svc.Enter(ctx, 99, 123, "alice")

	assert.ErrorIs(t, err, models.ErrGiveawayNotFound)
	mockEntryRepo.AssertNotCalled(t, "Create")
}

func TestGiveawayService_Enter_Ended(t *testing.T) {
	ctx := context.Background()

	mockGiveawayRepo := new(MockGiveawayRepository)
	mockEntryRepo := new(MockGiveawayEntryRepository)
	svc, scheduler, _ := newGiveawayServiceForTest(mockGiveawayRepo, mockEntryRepo, new(MockGiveawayWinnerRepository), new(MockNotifier))
	defer scheduler.Stop()

	ended := activeGiveaway(7, 1)
	ended.Status = models.GiveawayStatusEnded
	mockGiveawayRepo.On("GetByID", ctx, int64(7)).Return(ended, nil)

	_, err := svc.Enter(ctx, 7, 123, "alice")

	assert.ErrorIs(t, err, models.ErrGiveawayNotActive)
	mockEntryRepo.AssertNotCalled(t, "Create")
}

func TestGiveawayService_Enter_Duplicate(t *testing.T) {
	ctx := context.Background()

	mockGiveawayRepo := new(MockGiveawayRepository)
	mockEntryRepo := new(MockGiveawayEntryRepository)
	svc, scheduler, _ := newGiveawayServiceForTest(mockGiveawayRepo, mockEntryRepo, new(MockGiveawayWinnerRepository), new(MockNotifier))
	defer scheduler.Stop()

	mockGiveawayRepo.On("GetByID", ctx, int64(7)).Return(activeGiveaway(7, 1), nil)
	mockEntryRepo.On("Create", ctx, mock.Anything).Return(models.ErrAlreadyEntered)

	_, err := svc.Enter(ctx, 7, 123, "alice")

	assert.ErrorIs(t, err, models.ErrAlreadyEntered)
	mockEntryRepo.AssertNotCalled(t, "CountByGiveaway")
}

func TestGiveawayService_Close_DrawsAndAnnounces(t *testing.T) {
	ctx := context.Background()

	mockGiveawayRepo := new(MockGiveawayRepository)
	mockEntryRepo := new(MockGiveawayEntryRepository)
	mockWinnerRepo := new(MockGiveawayWinnerRepository)
	mockNotifier := new(MockNotifier)

	svc, scheduler, eventBus := newGiveawayServiceForTest(mockGiveawayRepo, mockEntryRepo, mockWinnerRepo, mockNotifier)
	defer scheduler.Stop()

	closed := make(chan events.GiveawayClosedEvent, 1)
	eventBus.Subscribe(events.EventTypeGiveawayClosed, func(ctx context.Context, event events.Event) {
		closed <- event.(events.GiveawayClosedEvent)
	})

	mockGiveawayRepo.On("GetByID", ctx, int64(7)).Return(activeGiveaway(7, 2), nil)
	mockGiveawayRepo.On("MarkEnded", ctx, int64(7)).Return(true, nil)
	mockEntryRepo.On("GetByGiveaway", ctx, int64(7)).Return(entriesFor(7, 101, 102, 103), nil)
	mockWinnerRepo.On("CreateBatch", ctx, mock.MatchedBy(func(winners []*models.GiveawayWinner) bool {
		return len(winners) == 2
	})).Return(nil)
	mockNotifier.On("PostAnnouncement", ctx, int64(555), mock.AnythingOfType("string")).Return(nil)
	mockNotifier.On("DirectNotify", ctx, mock.AnythingOfType("int64"), mock.AnythingOfType("string")).Return(nil).Times(2)

	err := svc.Close(ctx, 7)

	require.NoError(t, err)
	mockGiveawayRepo.AssertExpectations(t)
	mockWinnerRepo.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)

	select {
	case event := <-closed:
		assert.Equal(t, int64(7), event.GiveawayID)
		assert.Equal(t, 2, event.WinnerCount)
		assert.Equal(t, 3, event.EntryCount)
	case <-time.After(2 * time.Second):
		t.Fatal("GiveawayClosedEvent was not emitted")
	}
}

func TestGiveawayService_Close_AlreadyEnded(t *testing.T) {
	ctx := context.Background()

	mockGiveawayRepo := new(MockGiveawayRepository)
	mockEntryRepo := new(MockGiveawayEntryRepository)
	mockWinnerRepo := new(MockGiveawayWinnerRepository)
	mockNotifier := new(MockNotifier)

	svc, scheduler, _ := newGiveawayServiceForTest(mockGiveawayRepo, mockEntryRepo, mockWinnerRepo, mockNotifier)
	defer scheduler.Stop()

	mockGiveawayRepo.On("GetByID", ctx, int64(7)).Return(activeGiveaway(7, 2), nil)
	mockGiveawayRepo.On("MarkEnded", ctx, int64(7)).Return(false, nil)

	// Losing the close race is a silent no-op: no draw, no announcement
	err := svc.Close(ctx, 7)

	require.NoError(t, err)
	mockEntryRepo.AssertNotCalled(t, "GetByGiveaway")
	mockWinnerRepo.AssertNotCalled(t, "CreateBatch")
	mockNotifier.AssertNotCalled(t, "PostAnnouncement")
}

func TestGiveawayService_Close_NotFound(t *testing.T) {
	ctx := context.Background()

	mockGiveawayRepo := new(MockGiveawayRepository)
	svc, scheduler, _ := newGiveawayServiceForTest(mockGiveawayRepo, new(MockGiveawayEntryRepository), new(MockGiveawayWinnerRepository), new(MockNotifier))
	defer scheduler.Stop()

	mockGiveawayRepo.On("GetByID", ctx, int64(99)).Return(nil, nil)

	err := svc.Close(ctx, 99)

	assert.ErrorIs(t, err, models.ErrGiveawayNotFound)
}

func TestGiveawayService_Close_NoEntries(t *testing.T) {
	ctx := context.Background()

	mockGiveawayRepo := new(MockGiveawayRepository)
	mockEntryRepo := new(MockGiveawayEntryRepository)
	mockWinnerRepo := new(MockGiveawayWinnerRepository)
	mockNotifier := new(MockNotifier)

	svc, scheduler, _ := newGiveawayServiceForTest(mockGiveawayRepo, mockEntryRepo, mockWinnerRepo, mockNotifier)
	defer scheduler.Stop()

	mockGiveawayRepo.On("GetByID", ctx, int64(7)).Return(activeGiveaway(7, 2), nil)
	mockGiveawayRepo.On("MarkEnded", ctx, int64(7)).Return(true, nil)
	mockEntryRepo.On("GetByGiveaway", ctx, int64(7)).Return([]*models.GiveawayEntry{}, nil)
	mockNotifier.On("PostAnnouncement", ctx, int64(555), mock.MatchedBy(func(msg string) bool {
		return len(msg) > 0
	})).Return(nil)

	err := svc.Close(ctx, 7)

	require.NoError(t, err)
	mockWinnerRepo.AssertNotCalled(t, "CreateBatch")
	mockNotifier.AssertNotCalled(t, "DirectNotify")
	mockNotifier.AssertExpectations(t)
}

func TestGiveawayService_Close_FewerEntriesThanWinners(t *testing.T) {
	ctx := context.Background()

	mockGiveawayRepo := new(MockGiveawayRepository)
	mockEntryRepo := new(MockGiveawayEntryRepository)
	mockWinnerRepo := new(MockGiveawayWinnerRepository)
	mockNotifier := new(MockNotifier)

	svc, scheduler, _ := newGiveawayServiceForTest(mockGiveawayRepo, mockEntryRepo, mockWinnerRepo, mockNotifier)
	defer scheduler.Stop()

	mockGiveawayRepo.On("GetByID", ctx, int64(7)).Return(activeGiveaway(7, 5), nil)
	mockGiveawayRepo.On("MarkEnded", ctx, int64(7)).Return(true, nil)
	mockEntryRepo.On("GetByGiveaway", ctx, int64(7)).Return(entriesFor(7, 101, 102), nil)
	mockWinnerRepo.On("CreateBatch", ctx, mock.MatchedBy(func(winners []*models.GiveawayWinner) bool {
		return len(winners) == 2
	})).Return(nil)
	mockNotifier.On("PostAnnouncement", ctx, int64(555), mock.AnythingOfType("string")).Return(nil)
	mockNotifier.On("DirectNotify", ctx, mock.AnythingOfType("int64"), mock.AnythingOfType("string")).Return(nil).Times(2)

	err := svc.Close(ctx, 7)

	require.NoError(t, err)
	mockWinnerRepo.AssertExpectations(t)
}

func TestGiveawayService_Close_NotifyFailureDoesNotFailClose(t *testing.T) {
	ctx := context.Background()

	mockGiveawayRepo := new(MockGiveawayRepository)
	mockEntryRepo := new(MockGiveawayEntryRepository)
	mockWinnerRepo := new(MockGiveawayWinnerRepository)
	mockNotifier := new(MockNotifier)

	svc, scheduler, _ := newGiveawayServiceForTest(mockGiveawayRepo, mockEntryRepo, mockWinnerRepo, mockNotifier)
	defer scheduler.Stop()

	mockGiveawayRepo.On("GetByID", ctx, int64(7)).Return(activeGiveaway(7, 1), nil)
	mockGiveawayRepo.On("MarkEnded", ctx, int64(7)).Return(true, nil)
	mockEntryRepo.On("GetByGiveaway", ctx, int64(7)).Return(entriesFor(7, 101), nil)
	mockWinnerRepo.On("CreateBatch", ctx, mock.Anything).Return(nil)
	mockNotifier.On("PostAnnouncement", ctx, int64(555), mock.AnythingOfType("string")).Return(errors.New("channel gone"))
	mockNotifier.On("DirectNotify", ctx, int64(101), mock.AnythingOfType("string")).Return(errors.New("DMs closed"))

	err := svc.Close(ctx, 7)

	assert.NoError(t, err)
}

func TestGiveawayService_Reroll_ReplacesWinners(t *testing.T) {
	ctx := context.Background()

	mockGiveawayRepo := new(MockGiveawayRepository)
	mockEntryRepo := new(MockGiveawayEntryRepository)
	mockWinnerRepo := new(MockGiveawayWinnerRepository)
	mockNotifier := new(MockNotifier)

	svc, scheduler, _ := newGiveawayServiceForTest(mockGiveawayRepo, mockEntryRepo, mockWinnerRepo, mockNotifier)
	defer scheduler.Stop()

	ended := activeGiveaway(7, 1)
	ended.Status = models.GiveawayStatusEnded
	mockGiveawayRepo.On("GetByID", ctx, int64(7)).Return(ended, nil)
	mockEntryRepo.On("GetByGiveaway", ctx, int64(7)).Return(entriesFor(7, 101, 102, 103), nil)
	mockWinnerRepo.On("Replace", ctx, int64(7), mock.MatchedBy(func(winners []*models.GiveawayWinner) bool {
		return len(winners) == 1
	})).Return(nil)
	mockNotifier.On("PostAnnouncement", ctx, int64(555), mock.AnythingOfType("string")).Return(nil)
	mockNotifier.On("DirectNotify", ctx, mock.AnythingOfType("int64"), mock.AnythingOfType("string")).Return(nil)

	winners, err := svc.Reroll(ctx, 7)

	require.NoError(t, err)
	assert.Len(t, winners, 1)
	mockWinnerRepo.AssertExpectations(t)
	mockWinnerRepo.AssertNotCalled(t, "CreateBatch")
}

func TestGiveawayService_Reroll_NoEntries(t *testing.T) {
	ctx := context.Background()

	mockGiveawayRepo := new(MockGiveawayRepository)
	mockEntryRepo := new(MockGiveawayEntryRepository)
	mockWinnerRepo := new(MockGiveawayWinnerRepository)

	svc, scheduler, _ := newGiveawayServiceForTest(mockGiveawayRepo, mockEntryRepo, mockWinnerRepo, new(MockNotifier))
	defer scheduler.Stop()

	mockGiveawayRepo.On("GetByID", ctx, int64(7)).Return(activeGiveaway(7, 1), nil)
	mockEntryRepo.On("GetByGiveaway", ctx, int64(7)).Return([]*models.GiveawayEntry{}, nil)

	_, err := svc.Reroll(ctx, 7)

	assert.ErrorIs(t, err, models.ErrNoEntries)
	mockWinnerRepo.AssertNotCalled(t, "Replace")
}

func TestGiveawayService_Reroll_NotFound(t *testing.T) {
	ctx := context.Background()

	mockGiveawayRepo := new(MockGiveawayRepository)
	svc, scheduler, _ := newGiveawayServiceForTest(mockGiveawayRepo, new(MockGiveawayEntryRepository), new(MockGiveawayWinnerRepository), new(MockNotifier))
	defer scheduler.Stop()

	mockGiveawayRepo.On("GetByID", ctx, int64(99)).Return(nil, nil)

	_, err := svc.Reroll(ctx, 99)

	assert.ErrorIs(t, err, models.ErrGiveawayNotFound)
}

func TestGiveawayService_Start_ReschedulesActive(t *testing.T) {
	ctx := context.Background()

	mockGiveawayRepo := new(MockGiveawayRepository)
	svc, scheduler, _ := newGiveawayServiceForTest(mockGiveawayRepo, new(MockGiveawayEntryRepository), new(MockGiveawayWinnerRepository), new(MockNotifier))
	defer scheduler.Stop()

	future := activeGiveaway(1, 1)
	mockGiveawayRepo.On("GetAllActive", ctx).Return([]*models.Giveaway{future}, nil)

	err := svc.Start(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, scheduler.Pending())
}

func TestGiveawayService_Start_ClosesOverdue(t *testing.T) {
	ctx := context.Background()

	mockGiveawayRepo := new(MockGiveawayRepository)
	mockEntryRepo := new(MockGiveawayEntryRepository)
	mockWinnerRepo := new(MockGiveawayWinnerRepository)
	mockNotifier := new(MockNotifier)

	svc, scheduler, _ := newGiveawayServiceForTest(mockGiveawayRepo, mockEntryRepo, mockWinnerRepo, mockNotifier)
	defer scheduler.Stop()

	overdue := activeGiveaway(3, 1)
	overdue.EndTime = time.Now().Add(-time.Hour)

	announced := make(chan struct{})
	mockGiveawayRepo.On("GetAllActive", ctx).Return([]*models.Giveaway{overdue}, nil)
	mockGiveawayRepo.On("GetByID", mock.Anything, int64(3)).Return(overdue, nil)
	mockGiveawayRepo.On("MarkEnded", mock.Anything, int64(3)).Return(true, nil)
	mockEntryRepo.On("GetByGiveaway", mock.Anything, int64(3)).Return([]*models.GiveawayEntry{}, nil)
	mockNotifier.On("PostAnnouncement", mock.Anything, int64(555), mock.AnythingOfType("string")).Run(func(mock.Arguments) {
		close(announced)
	}).Return(nil)

	err := svc.Start(ctx)
	require.NoError(t, err)

	select {
	case <-announced:
	case <-time.After(2 * time.Second):
		t.Fatal("overdue giveaway was not closed on startup")
	}
}

func TestDrawWinners_AllEntriesWhenFewerThanMax(t *testing.T) {
	giveaway := activeGiveaway(7, 10)
	entries := entriesFor(7, 101, 102, 103)

	winners, err := drawWinners(giveaway, entries)

	require.NoError(t, err)
	require.Len(t, winners, 3)

	ids := make(map[int64]bool)
	for _, winner := range winners {
		ids[winner.DiscordID] = true
	}
	assert.True(t, ids[101] && ids[102] && ids[103])
}

func TestDrawWinners_NoDuplicates(t *testing.T) {
	giveaway := activeGiveaway(7, 3)
	entries := entriesFor(7, 101, 102, 103, 104, 105, 106, 107, 108)

	// The draw is random; repeat it to catch duplicate selections
	for run := 0; run < 100; run++ {
		winners, err := drawWinners(giveaway, entries)
		require.NoError(t, err)
		require.Len(t, winners, 3)

		seen := make(map[int64]bool)
		for _, winner := range winners {
			assert.False(t, seen[winner.DiscordID], "duplicate winner %d", winner.DiscordID)
			seen[winner.DiscordID] = true
		}
	}
}

func TestDrawWinners_InputUnmodified(t *testing.T) {
	giveaway := activeGiveaway(7, 2)
	entries := entriesFor(7, 101, 102, 103, 104)

	_, err := drawWinners(giveaway, entries)
	require.NoError(t, err)

	assert.Equal(t, int64(101), entries[0].DiscordID)
	assert.Equal(t, int64(102), entries[1].DiscordID)
	assert.Equal(t, int64(103), entries[2].DiscordID)
	assert.Equal(t, int64(104), entries[3].DiscordID)
}
