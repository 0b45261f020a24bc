package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/nthottathil/bridge-web-app/internal/config"
	httpdelivery "github.com/nthottathil/bridge-web-app/internal/delivery/http"
	"github.com/nthottathil/bridge-web-app/internal/delivery/http/handler"
	"github.com/nthottathil/bridge-web-app/internal/delivery/http/middleware"
	"github.com/nthottathil/bridge-web-app/internal/infrastructure/database"
	"github.com/nthottathil/bridge-web-app/internal/infrastructure/email"
	"github.com/nthottathil/bridge-web-app/internal/infrastructure/gemini"
	"github.com/nthottathil/bridge-web-app/internal/infrastructure/server"
	"github.com/nthottathil/bridge-web-app/internal/repository/postgres"
	"github.com/nthottathil/bridge-web-app/internal/usecase/auth"
	"github.com/nthottathil/bridge-web-app/internal/usecase/group"
	"github.com/nthottathil/bridge-web-app/internal/usecase/match"
	"github.com/nthottathil/bridge-web-app/internal/usecase/user"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *sqlx.DB
	Redis  *redis.Client
	Server *server.Server
	Gemini *gemini.Client
}

// NewContainer wires repositories, use cases, handlers and the server.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Redis is optional; the match feed just runs uncached without it.
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient, err = database.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, match feed caching disabled", zap.Error(err))
			redisClient = nil
		}
	}

	// Gemini is optional; groups simply get no icebreakers without it.
	var geminiClient *gemini.Client
	var icebreakers match.IcebreakerSource
	if cfg.GeminiAPIKey != "" {
		geminiClient, err = gemini.NewClient(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			logger.Warn("gemini unavailable, icebreakers disabled", zap.Error(err))
		} else {
			icebreakers = geminiClient
		}
	}

	mailer := email.NewMailer(&cfg.Email, logger)

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	requestRepo := postgres.NewMatchRequestRepository(db)
	groupRepo := postgres.NewGroupRepository(db)
	messageRepo := postgres.NewMessageRepository(db)
	txManager := postgres.NewTxManager(db)

	// Use cases
	authUseCase := auth.NewAuthUseCase(
		userRepo,
		mailer,
		cfg.JWT.Secret,
		cfg.JWT.ExpiryDay,
		logger,
	)

	userUseCase := user.NewUserUseCase(userRepo, logger)

	matchUseCase := match.NewMatchUseCase(
		userRepo,
		requestRepo,
		groupRepo,
		txManager,
		mailer,
		icebreakers,
		redisClient,
		logger,
	)

	groupUseCase := group.NewGroupUseCase(
		groupRepo,
		userRepo,
		messageRepo,
		logger,
	)

	// Handlers
	authHandler := handler.NewAuthHandler(authUseCase)
	userHandler := handler.NewUserHandler(userUseCase)
	matchHandler := handler.NewMatchHandler(matchUseCase)
	groupHandler := handler.NewGroupHandler(groupUseCase)

	authMiddleware := middleware.NewAuthMiddleware(authUseCase)

	router := httpdelivery.NewRouter(
		authHandler,
		userHandler,
		matchHandler,
		groupHandler,
		authMiddleware,
		logger,
	)

	srv := server.NewServer(&cfg.Server, router.Setup(), logger)

	return &Container{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Redis:  redisClient,
		Server: srv,
		Gemini: geminiClient,
	}, nil
}

// Close closes all connections.
func (c *Container) Close() error {
	if c.Gemini != nil {
		c.Gemini.Close()
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("error closing redis", zap.Error(err))
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
