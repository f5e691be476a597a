//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"chatbot-research/experiment-api/internal/config"
	"chatbot-research/experiment-api/internal/domain/audit"
	"chatbot-research/experiment-api/internal/domain/chat"
	"chatbot-research/experiment-api/internal/domain/condition"
	"chatbot-research/experiment-api/internal/domain/export"
	"chatbot-research/experiment-api/internal/domain/llm"
	"chatbot-research/experiment-api/internal/domain/participant"
	"chatbot-research/experiment-api/internal/domain/session"
	"chatbot-research/experiment-api/internal/infrastructure/database"
	"chatbot-research/experiment-api/internal/infrastructure/llmprovider"
	"chatbot-research/experiment-api/internal/infrastructure/logger"
	conditionrepo "chatbot-research/experiment-api/internal/infrastructure/repository/condition"
	eventrepo "chatbot-research/experiment-api/internal/infrastructure/repository/event"
	exportrepo "chatbot-research/experiment-api/internal/infrastructure/repository/export"
	messagerepo "chatbot-research/experiment-api/internal/infrastructure/repository/message"
	participantrepo "chatbot-research/experiment-api/internal/infrastructure/repository/participant"
	sessionrepo "chatbot-research/experiment-api/internal/infrastructure/repository/session"
	"chatbot-research/experiment-api/internal/interfaces/httpserver"
)

var repositorySet = wire.NewSet(
	participantrepo.NewRepository,
	wire.Bind(new(participant.Repository), new(*participantrepo.Repository)),
	conditionrepo.NewRepository,
	wire.Bind(new(condition.Repository), new(*conditionrepo.Repository)),
	sessionrepo.NewRepository,
	wire.Bind(new(session.Repository), new(*sessionrepo.Repository)),
	messagerepo.NewRepository,
	wire.Bind(new(chat.MessageRepository), new(*messagerepo.Repository)),
	eventrepo.NewRepository,
	wire.Bind(new(audit.Repository), new(*eventrepo.Repository)),
	exportrepo.NewRepository,
	wire.Bind(new(export.Repository), new(*exportrepo.Repository)),
)

var serviceSet = wire.NewSet(
	audit.NewLogger,
	newLLMProvider,
	wire.Bind(new(llm.Provider), new(*llmprovider.Client)),
	participant.NewService,
	wire.Bind(new(participant.Service), new(*participant.ServiceImpl)),
	newSessionService,
	wire.Bind(new(session.Service), new(*session.ServiceImpl)),
	newChatService,
	wire.Bind(new(chat.Service), new(*chat.ServiceImpl)),
	export.NewService,
	wire.Bind(new(export.Service), new(*export.ServiceImpl)),
)

// BuildApplication demonstrates how to assemble the experiment service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newDatabaseConfig,
		newGormDB,
		repositorySet,
		serviceSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func newLLMProvider(cfg *config.Config) *llmprovider.Client {
	return llmprovider.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMCallTimeout)
}

func newSessionService(
	sessions session.Repository,
	conditions condition.Repository,
	participants participant.Service,
	people participant.Repository,
	auditLog *audit.Logger,
	cfg *config.Config,
	log zerolog.Logger,
) *session.ServiceImpl {
	return session.NewService(sessions, conditions, participants, people, auditLog, cfg.SurveyRedirectBaseURL, log)
}

func newChatService(
	sessions session.Repository,
	lifecycle session.Service,
	conditions condition.Repository,
	messages chat.MessageRepository,
	provider llm.Provider,
	auditLog *audit.Logger,
	cfg *config.Config,
	log zerolog.Logger,
) *chat.ServiceImpl {
	return chat.NewService(sessions, lifecycle, conditions, messages, provider, auditLog, cfg.MemoryWindow, log)
}
