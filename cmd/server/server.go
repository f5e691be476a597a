package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"chatbot-research/experiment-api/internal/config"
	"chatbot-research/experiment-api/internal/domain/audit"
	"chatbot-research/experiment-api/internal/domain/chat"
	"chatbot-research/experiment-api/internal/domain/export"
	"chatbot-research/experiment-api/internal/domain/participant"
	"chatbot-research/experiment-api/internal/domain/session"
	"chatbot-research/experiment-api/internal/infrastructure/database"
	"chatbot-research/experiment-api/internal/infrastructure/llmprovider"
	"chatbot-research/experiment-api/internal/infrastructure/logger"
	"chatbot-research/experiment-api/internal/infrastructure/observability"
	conditionrepo "chatbot-research/experiment-api/internal/infrastructure/repository/condition"
	eventrepo "chatbot-research/experiment-api/internal/infrastructure/repository/event"
	exportrepo "chatbot-research/experiment-api/internal/infrastructure/repository/export"
	messagerepo "chatbot-research/experiment-api/internal/infrastructure/repository/message"
	participantrepo "chatbot-research/experiment-api/internal/infrastructure/repository/participant"
	sessionrepo "chatbot-research/experiment-api/internal/infrastructure/repository/session"
	"chatbot-research/experiment-api/internal/interfaces/httpserver"
	"chatbot-research/experiment-api/internal/worker"
)

// Application bundles the HTTP server with its process-level logger.
type Application struct {
	httpServer *httpserver.HTTPServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HTTPServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	participantRepository := participantrepo.NewRepository(db)
	conditionRepository := conditionrepo.NewRepository(db)
	sessionRepository := sessionrepo.NewRepository(db)
	messageRepository := messagerepo.NewRepository(db)
	eventRepository := eventrepo.NewRepository(db)
	exportRepository := exportrepo.NewRepository(db)

	auditLogger := audit.NewLogger(eventRepository, log)
	llmClient := llmprovider.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMCallTimeout)

	participantService := participant.NewService(participantRepository, conditionRepository, log)
	sessionService := session.NewService(
		sessionRepository,
		conditionRepository,
		participantService,
		participantRepository,
		auditLogger,
		cfg.SurveyRedirectBaseURL,
		log,
	)
	chatService := chat.NewService(
		sessionRepository,
		sessionService,
		conditionRepository,
		messageRepository,
		llmClient,
		auditLogger,
		cfg.MemoryWindow,
		log,
	)
	exportService := export.NewService(exportRepository, sessionRepository, log)

	reaper := worker.NewReaper(sessionRepository, worker.Config{
		Interval:    cfg.ReaperInterval,
		IdleTimeout: cfg.SessionIdleTimeout,
	}, log)
	reaper.Start(ctx)
	defer reaper.Stop()

	httpServer := httpserver.New(cfg, log, sessionService, chatService, exportService)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
