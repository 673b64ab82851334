package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/campus-auth/internal/api/http"
	"github.com/spec-kit/campus-auth/internal/api/http/handlers"
	"github.com/spec-kit/campus-auth/internal/auth"
	"github.com/spec-kit/campus-auth/internal/config"
	"github.com/spec-kit/campus-auth/internal/domain"
	"github.com/spec-kit/campus-auth/internal/events"
	"github.com/spec-kit/campus-auth/internal/observability"
	"github.com/spec-kit/campus-auth/internal/persistence"
	"github.com/spec-kit/campus-auth/internal/repository"
	"github.com/spec-kit/campus-auth/internal/service"
	"github.com/spec-kit/campus-auth/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	credentials := buildCredentialStore(pg, cfg.Auth, logger)
	sessions := buildSessionRegistry(redis, cfg.Auth, logger)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		Credentials: credentials,
		Sessions:    sessions,
		Dispatcher:  dispatcher,
		Logger:      logger,
		Metrics:     metrics,
	})
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.BearerTTLMinutes)
	authMiddleware := auth.NewMiddleware(tokenManager, authService)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	authHandler := handlers.NewAuthHandler(authService, tokenManager)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Auth:           authHandler,
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// buildCredentialStore prefers Postgres; without a DSN it falls back to
// the in-memory demo accounts.
func buildCredentialStore(pg *persistence.Postgres, cfg config.AuthConfig, logger *zap.Logger) repository.CredentialStore {
	if pg.PoolHandle() != nil {
		return repository.NewPgCredentialStore(pg.PoolHandle())
	}

	store := repository.NewMemoryCredentialStore()
	seedDemoAccounts(store, cfg.BcryptCost, logger)
	return store
}

func buildSessionRegistry(redis *persistence.Redis, cfg config.AuthConfig, logger *zap.Logger) service.SessionRegistry {
	if cfg.SessionStore == "redis" {
		logger.Info("using redis session registry")
		return persistence.NewRedisSessionRegistry(redis)
	}
	return service.NewMemorySessionRegistry()
}

func seedDemoAccounts(store *repository.MemoryCredentialStore, cost int, logger *zap.Logger) {
	demo := []struct {
		username string
		password string
		role     domain.UserRole
	}{
		{"student1", "studentpass", domain.RoleStudent},
		{"instructor1", "instructorpass", domain.RoleInstructor},
		{"staff1", "staffpass", domain.RoleStaff},
		{"admin", "adminpass", domain.RoleAdministrator},
	}

	for _, account := range demo {
		hash, err := auth.HashPassword(account.password, cost)
		if err != nil {
			logger.Warn("failed to seed demo account", zap.String("username", account.username), zap.Error(err))
			continue
		}
		store.Put(domain.Account{
			Username:     account.username,
			Role:         account.role,
			PasswordHash: hash,
		})
	}
	logger.Info("seeded demo accounts", zap.Int("count", len(demo)))
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
