package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"warden/events"
	"warden/models"

	log "github.com/sirupsen/logrus"
)

type giveawayService struct {
	giveawayRepo GiveawayRepository
	entryRepo    GiveawayEntryRepository
	winnerRepo   GiveawayWinnerRepository
	notifier     Notifier
	scheduler    *Scheduler
	eventBus     *events.Bus
}

// NewGiveawayService creates a new giveaway service
func NewGiveawayService(
	giveawayRepo GiveawayRepository,
	entryRepo GiveawayEntryRepository,
	winnerRepo GiveawayWinnerRepository,
	notifier Notifier,
	scheduler *Scheduler,
	eventBus *events.Bus,
) GiveawayService {
	return &giveawayService{
		giveawayRepo: giveawayRepo,
		entryRepo:    entryRepo,
		winnerRepo:   winnerRepo,
		notifier:     notifier,
		scheduler:    scheduler,
		eventBus:     eventBus,
	}
}

// Create validates inputs and persists a new active giveaway
func (s *giveawayService) Create(ctx context.Context, params CreateGiveawayParams) (*models.Giveaway, error) {
	if params.Name == "" {
		return nil, errors.New("giveaway name cannot be empty")
	}
	if params.MaxWinners <= 0 {
		return nil, errors.New("max winners must be positive")
	}

	duration, err := ParseDuration(params.DurationSpec)
	if err != nil {
		return nil, err
	}

	giveaway := &models.Giveaway{
		Name:        params.Name,
		Description: params.Description,
		MaxWinners:  params.MaxWinners,
		ChannelID:   params.ChannelID,
		CreatorID:   params.CreatorID,
		GuildID:     params.GuildID,
		EndTime:     time.Now().Add(duration),
		Status:      models.GiveawayStatusActive,
	}

	if err := s.giveawayRepo.Create(ctx, giveaway); err != nil {
		return nil, fmt.Errorf("failed to create giveaway: %w", err)
	}

	s.eventBus.Emit(ctx, events.GiveawayCreatedEvent{
		GiveawayID: giveaway.ID,
		GuildID:    giveaway.GuildID,
		ChannelID:  giveaway.ChannelID,
		Name:       giveaway.Name,
	})

	return giveaway, nil
}

// Enter registers an entrant for an active giveaway
func (s *giveawayService) Enter(ctx context.Context, giveawayID, discordID int64, displayName string) (int64, error) {
	// Status is re-checked against the store on every attempt, never cached
	giveaway, err := s.giveawayRepo.GetByID(ctx, giveawayID)
	if err != nil {
		return 0, fmt.Errorf("failed to get giveaway: %w", err)
	}
	if giveaway == nil {
		return 0, models.ErrGiveawayNotFound
	}
	if !giveaway.IsActive() {
		return 0, models.ErrGiveawayNotActive
	}

	entry := &models.GiveawayEntry{
		GiveawayID:  giveawayID,
		DiscordID:   discordID,
		DisplayName: displayName,
	}

	// The unique constraint is the only duplicate guard; concurrent attempts
	// from the same user race down to one accepted insert.
	if err := s.entryRepo.Create(ctx, entry); err != nil {
		if errors.Is(err, models.ErrAlreadyEntered) {
			return 0, models.ErrAlreadyEntered
		}
		return 0, fmt.Errorf("failed to create entry: %w", err)
	}

	count, err := s.entryRepo.CountByGiveaway(ctx, giveawayID)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}

	return count, nil
}

// Close ends a giveaway, draws winners and announces them. The conditional
// status update arbitrates between a timer fire and a manual close: only the
// invocation that flips active->ended proceeds to draw winners.
func (s *giveawayService) Close(ctx context.Context, giveawayID int64) error {
	giveaway, err := s.giveawayRepo.GetByID(ctx, giveawayID)
	if err != nil {
		return fmt.Errorf("failed to get giveaway: %w", err)
	}
	if giveaway == nil {
		return models.ErrGiveawayNotFound
	}

	won, err := s.giveawayRepo.MarkEnded(ctx, giveawayID)
	if err != nil {
		return fmt.Errorf("failed to mark giveaway ended: %w", err)
	}
	if !won {
		// Already ended; the other racer is (or was) doing the draw
		return nil
	}

	// The timer is now stale if this was a manual close
	s.scheduler.Cancel(giveawayID)

	entries, err := s.entryRepo.GetByGiveaway(ctx, giveawayID)
	if err != nil {
		return fmt.Errorf("failed to load entries: %w", err)
	}

	if len(entries) == 0 {
		s.announce(ctx, giveaway.ChannelID, fmt.Sprintf("The giveaway **%s** has ended with no entries. No winners this time!", giveaway.Name))
		s.eventBus.Emit(ctx, events.GiveawayClosedEvent{
			GiveawayID: giveaway.ID,
			GuildID:    giveaway.GuildID,
			ChannelID:  giveaway.ChannelID,
		})
		return nil
	}

	winners, err := drawWinners(giveaway, entries)
	if err != nil {
		return fmt.Errorf("failed to draw winners: %w", err)
	}

	if err := s.winnerRepo.CreateBatch(ctx, winners); err != nil {
		return fmt.Errorf("failed to persist winners: %w", err)
	}

	s.announceWinners(ctx, giveaway, winners)

	s.eventBus.Emit(ctx, events.GiveawayClosedEvent{
		GiveawayID:  giveaway.ID,
		GuildID:     giveaway.GuildID,
		ChannelID:   giveaway.ChannelID,
		WinnerCount: len(winners),
		EntryCount:  len(entries),
	})

	return nil
}

// Reroll replaces the winner set for a giveaway with a fresh draw over the
// same entries. Valid regardless of status; an ended giveaway stays ended.
func (s *giveawayService) Reroll(ctx context.Context, giveawayID int64) ([]*models.GiveawayWinner, error) {
	giveaway, err := s.giveawayRepo.GetByID(ctx, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to get giveaway: %w", err)
	}
	if giveaway == nil {
		return nil, models.ErrGiveawayNotFound
	}

	entries, err := s.entryRepo.GetByGiveaway(ctx, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, models.ErrNoEntries
	}

	winners, err := drawWinners(giveaway, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to draw winners: %w", err)
	}

	if err := s.winnerRepo.Replace(ctx, giveawayID, winners); err != nil {
		return nil, fmt.Errorf("failed to replace winners: %w", err)
	}

	s.announce(ctx, giveaway.ChannelID, fmt.Sprintf("The giveaway **%s** has been rerolled! New winner(s): %s", giveaway.Name, winnerMentions(winners)))
	for _, winner := range winners {
		if err := s.notifier.DirectNotify(ctx, winner.DiscordID, fmt.Sprintf("Congratulations! You won the rerolled giveaway **%s**: %s", giveaway.Name, giveaway.Description)); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"giveawayID": giveawayID,
				"discordID":  winner.DiscordID,
			}).Warn("Failed to notify reroll winner")
		}
	}

	return winners, nil
}

// ListActive returns active giveaways for a guild ordered by end time
func (s *giveawayService) ListActive(ctx context.Context, guildID int64) ([]*models.Giveaway, error) {
	giveaways, err := s.giveawayRepo.GetActiveByGuild(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active giveaways: %w", err)
	}
	return giveaways, nil
}

// Schedule registers the one-shot close timer for a giveaway
func (s *giveawayService) Schedule(giveawayID int64, endTime time.Time) {
	s.scheduler.Schedule(giveawayID, endTime, func() {
		// Timers outlive the request that created them
		ctx := context.Background()
		if err := s.Close(ctx, giveawayID); err != nil {
			log.WithError(err).WithField("giveawayID", giveawayID).Error("Scheduled giveaway close failed")
		}
	})
}

// Start rebuilds the close schedule from the store after a restart.
// Overdue giveaways get a zero delay and close immediately.
func (s *giveawayService) Start(ctx context.Context) error {
	giveaways, err := s.giveawayRepo.GetAllActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active giveaways: %w", err)
	}

	now := time.Now()
	for _, giveaway := range giveaways {
		if giveaway.IsOverdue(now) {
			log.WithField("giveawayID", giveaway.ID).Info("Closing overdue giveaway from startup reload")
		}
		s.Schedule(giveaway.ID, giveaway.EndTime)
	}

	log.WithField("count", len(giveaways)).Info("Rescheduled active giveaways")
	return nil
}

// Stop cancels all pending close timers
func (s *giveawayService) Stop() {
	s.scheduler.Stop()
}

// announce posts a channel announcement; a delivery failure is logged and
// never fails the operation that produced it
func (s *giveawayService) announce(ctx context.Context, channelID int64, message string) {
	if err := s.notifier.PostAnnouncement(ctx, channelID, message); err != nil {
		log.WithError(err).WithField("channelID", channelID).Warn("Failed to post giveaway announcement")
	}
}

// announceWinners posts the channel announcement and notifies each winner
// individually. Per-winner failures are logged and skipped.
func (s *giveawayService) announceWinners(ctx context.Context, giveaway *models.Giveaway, winners []*models.GiveawayWinner) {
	s.announce(ctx, giveaway.ChannelID, fmt.Sprintf("The giveaway **%s** has ended! Congratulations to: %s", giveaway.Name, winnerMentions(winners)))

	for _, winner := range winners {
		if err := s.notifier.DirectNotify(ctx, winner.DiscordID, fmt.Sprintf("Congratulations! You won the giveaway **%s**: %s", giveaway.Name, giveaway.Description)); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"giveawayID": giveaway.ID,
				"discordID":  winner.DiscordID,
			}).Warn("Failed to notify giveaway winner")
		}
	}
}

// drawWinners selects min(maxWinners, len(entries)) winners with a partial
// Fisher-Yates shuffle. Every index comes from crypto/rand so the draw is
// unpredictable: each entry has equal probability and each k-subset is
// equiprobable.
func drawWinners(giveaway *models.Giveaway, entries []*models.GiveawayEntry) ([]*models.GiveawayWinner, error) {
	k := giveaway.MaxWinners
	if len(entries) < k {
		k = len(entries)
	}

	pool := make([]*models.GiveawayEntry, len(entries))
	copy(pool, entries)

	for i := 0; i < k; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(pool)-i)))
		if err != nil {
			return nil, fmt.Errorf("random generation failed: %w", err)
		}
		j := i + int(n.Int64())
		pool[i], pool[j] = pool[j], pool[i]
	}

	winners := make([]*models.GiveawayWinner, 0, k)
	for _, entry := range pool[:k] {
		winners = append(winners, &models.GiveawayWinner{
			GiveawayID:  giveaway.ID,
			DiscordID:   entry.DiscordID,
			DisplayName: entry.DisplayName,
		})
	}

	return winners, nil
}

func winnerMentions(winners []*models.GiveawayWinner) string {
	mentions := make([]string, 0, len(winners))
	for _, winner := range winners {
		mentions = append(mentions, fmt.Sprintf("<@%d>", winner.DiscordID))
	}
	return strings.Join(mentions, ", ")
}
