package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"warden/bot"
	"warden/config"
	"warden/database"
	"warden/events"
	"warden/rcon"
	"warden/repository"
	"warden/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting warden bot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize repositories
	giveawayRepo := repository.NewGiveawayRepository(db)
	entryRepo := repository.NewGiveawayEntryRepository(db)
	winnerRepo := repository.NewGiveawayWinnerRepository(db)
	connRepo := repository.NewServerConnectionRepository(db)

	// Initialize Discord bot first; it implements the Notifier port the
	// giveaway engine announces through
	log.Println("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:   cfg.DiscordToken,
		GuildID: cfg.DiscordGuildID,
	}
	discordBot, err := bot.New(botConfig, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	// Initialize services
	log.Println("Initializing services...")
	scheduler := service.NewScheduler()
	giveawayService := service.NewGiveawayService(giveawayRepo, entryRepo, winnerRepo, discordBot, scheduler, eventBus)
	serverService := service.NewServerService(connRepo, func(ctx context.Context, address, password string) (service.Session, error) {
		return rcon.Dial(ctx, address, password)
	}, eventBus)
	discordBot.SetServices(giveawayService, serverService)

	// Open the Discord session and register commands
	if err := discordBot.Open(); err != nil {
		return fmt.Errorf("failed to open Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// Rebuild close timers for giveaways that were active when the process
	// last stopped; overdue ones close immediately
	if err := giveawayService.Start(ctx); err != nil {
		return fmt.Errorf("failed to reschedule active giveaways: %w", err)
	}

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down bot...")

	giveawayService.Stop()
	serverService.CloseAll()

	// Close Discord bot connection
	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
