package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ticketdesk/complain-service/internal/auth"
	"github.com/ticketdesk/complain-service/internal/config"
	"github.com/ticketdesk/complain-service/internal/domain"
	"github.com/ticketdesk/complain-service/internal/observability"
	"github.com/ticketdesk/complain-service/internal/persistence"
	"github.com/ticketdesk/complain-service/internal/repository"
)

// create-admin seeds an administrator account. It does nothing when the
// email is already registered.
func main() {
	name := flag.String("name", "Administrator", "display name")
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password")
	flag.Parse()

	if strings.TrimSpace(*email) == "" || *password == "" {
		log.Fatal("-email and -password are required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	users := repository.NewUserRepository(pg.Pool)
	address := domain.NormalizeEmail(*email)

	existing, err := users.GetByEmail(ctx, address)
	switch {
	case err == nil:
		logger.Info("admin already exists", zap.String("user_id", existing.ID), zap.String("email", address))
		return
	case !errors.Is(err, pgx.ErrNoRows):
		logger.Fatal("failed to look up user", zap.Error(err))
	}

	hash, err := auth.NewPasswordHasher(cfg.Auth.BcryptCost).Hash(*password)
	if err != nil {
		logger.Fatal("failed to hash password", zap.Error(err))
	}

	admin := &domain.User{
		Name:         strings.TrimSpace(*name),
		Email:        address,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		logger.Fatal("failed to create admin", zap.Error(err))
	}

	logger.Info("admin created", zap.String("user_id", admin.ID), zap.String("email", admin.Email))
}
