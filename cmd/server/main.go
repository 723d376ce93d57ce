package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"magizhquiz/internal/config"
	"magizhquiz/internal/database"
	"magizhquiz/internal/handlers"
	"magizhquiz/internal/repository"
	"magizhquiz/internal/security"
	"magizhquiz/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	deckRepo := repository.NewDeckRepository(db)
	cardRepo := repository.NewCardRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	planRepo := repository.NewStudyPlanRepository(db)

	// Security primitives
	tokens := security.NewTokenManager(cfg.TokenSecret, cfg.TokenDuration)
	stateSigner := security.NewStateSigner(cfg.TokenSecret)
	rateLimiter := security.NewRateLimiter(20, time.Minute)

	// Initialize services
	oauthConfig := service.NewGoogleOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectBase)
	authService := service.NewAuthService(userRepo, tokens, stateSigner, oauthConfig, cfg.DemoLoginEnabled)
	deckService := service.NewDeckService(deckRepo, cardRepo, progressRepo)
	cardService := service.NewCardService(cardRepo, deckRepo, progressRepo)
	scheduler := service.NewSpacedRepetitionService(planRepo, cardRepo)
	gamification := service.NewGamificationService(progressRepo, quizRepo, deckRepo)
	quizService := service.NewQuizService(quizRepo, cardRepo, deckRepo, progressRepo, scheduler, gamification)
	analytics := service.NewAnalyticsService(quizRepo, deckRepo, progressRepo, scheduler)
	transfer := service.NewTransferService(deckRepo, cardRepo, progressRepo)

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.FrontendBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	// Initialize handlers
	middleware := handlers.NewMiddleware(tokens, rateLimiter)
	studyHandler := handlers.NewStudyHandler(cardService)
	h := &handlers.Handlers{
		Auth:      handlers.NewAuthHandler(authService, emailService, tokens, cfg.FrontendBaseURL),
		Deck:      handlers.NewDeckHandler(deckService),
		Card:      handlers.NewCardHandler(cardService, scheduler),
		Study:     studyHandler,
		Quiz:      handlers.NewQuizHandler(quizService),
		User:      handlers.NewUserHandler(userRepo, deckService, gamification),
		Analytics: handlers.NewAnalyticsHandler(analytics),
		Transfer:  handlers.NewTransferHandler(transfer, userRepo),
	}

	router := handlers.NewRouter(h, middleware, cfg.FrontendBaseURL)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Background cleanup of abandoned sessions
	go cleanupLoop(studyHandler, quizRepo)

	// Daily streak reminder emails, skipped entirely when SES is not configured
	if emailService.IsEnabled() {
		go streakReminderLoop(emailService, progressRepo)
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// streakReminderLoop mails users whose streak breaks unless they practice
// today. Streak activity dates are stored at UTC midnight, so the at-risk
// window is computed in UTC.
func streakReminderLoop(emailService *service.EmailService, progressRepo *repository.ProgressRepository) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now().UTC()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

		reminders, err := progressRepo.ListStreaksAtRisk(today)
		if err != nil {
			log.Printf("Failed to list streaks at risk: %v", err)
			continue
		}

		for _, rem := range reminders {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			if err := emailService.SendStreakReminderEmail(ctx, rem.Email, rem.Name, rem.CurrentStreak); err != nil {
				log.Printf("Failed to send streak reminder to %s: %v", rem.Email, err)
			}
			cancel()
		}
	}
}

// cleanupLoop drops idle in-memory study sessions and unfinished quiz
// sessions that were abandoned
func cleanupLoop(studyHandler *handlers.StudyHandler, quizRepo *repository.QuizRepository) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if removed := studyHandler.CleanupStale(4 * time.Hour); removed > 0 {
			log.Printf("Cleaned up %d idle study sessions", removed)
		}

		cutoff := time.Now().Add(-24 * time.Hour)
		removed, err := quizRepo.DeleteStaleSessions(cutoff)
		if err != nil {
			log.Printf("Failed to clean up stale quiz sessions: %v", err)
			continue
		}
		if removed > 0 {
			log.Printf("Cleaned up %d abandoned quiz sessions", removed)
		}
	}
}
