package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-account-service/internal/config"
	"go-account-service/internal/database"
	"go-account-service/internal/handler"
	"go-account-service/internal/logger"
	"go-account-service/internal/middleware"
	"go-account-service/internal/repository"
	"go-account-service/internal/router"
	"go-account-service/internal/service"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.SetDefault(logger.New(os.Stdout, cfg.LogFormat, cfg.LogLevel))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("applying migrations")
	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	pool := db.Pool
	accountRepo := repository.NewAccountRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	positionRepo := repository.NewPositionRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	slog.Info("database ready")

	hasher := service.NewBcryptHasher(cfg.BcryptCost)
	policy := service.PasswordPolicy{
		MinLength:          cfg.PasswordMinLength,
		RequireUppercase:   cfg.PasswordRequireUpper,
		RequireLowercase:   cfg.PasswordRequireLower,
		RequireDigit:       cfg.PasswordRequireDigit,
		RequireSpecialChar: cfg.PasswordRequireSpecial,
	}

	roleService := service.NewRoleService(roleRepo, cfg.DefaultRole, cfg.AdminRole)
	if err := roleService.EnsureDefaults(ctx, cfg.DefaultRole, cfg.AdminRole); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure default roles: %w", err)
	}

	accountService := service.NewAccountService(accountRepo, hasher, policy, cfg.DefaultRole)
	if cfg.SeedAdminUsername != "" {
		if err := accountService.SeedAdmin(ctx, cfg.SeedAdminUsername, cfg.SeedAdminEmail, cfg.SeedAdminPassword, cfg.AdminRole); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to seed admin account: %w", err)
		}
		slog.Info("admin account ensured", "username", cfg.SeedAdminUsername)
	}

	verifier, err := service.NewCredentialVerifier(accountRepo, hasher)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize credential verifier: %w", err)
	}

	issuer, err := service.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL, nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}

	authService := service.NewAuthService(verifier, service.NewRoleResolver(accountRepo), issuer, cfg.DefaultRole)
	authMiddleware := middleware.NewAuthMiddleware(authService)
	auditService := service.NewAuditService(auditRepo)
	positionService := service.NewPositionService(positionRepo)

	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		Account:  handler.NewAccountHandler(accountService, authService, auditService, cfg.AdminRole),
		Role:     handler.NewRoleHandler(roleService, auditService),
		Position: handler.NewPositionHandler(positionService, auditService),
		Audit:    handler.NewAuditHandler(auditService),
		Health:   handler.NewHealthHandler(db),
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			func() {
				db.Close()
			},
		},
	}, nil
}

func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		a.cleanup()
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		slog.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Drain in-flight requests before the pool goes away.
	shutdownErr := a.server.Shutdown(ctx)
	a.cleanup()
	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}

func (a *App) cleanup() {
	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}
}
