// Command create-admin bootstraps an administrator account.
// An existing user with the given email is promoted; otherwise a new account is created.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vendora/vendora-api/internal/config"
	"github.com/vendora/vendora-api/internal/domain/user"
	"github.com/vendora/vendora-api/internal/pkg/database"
	"github.com/vendora/vendora-api/internal/pkg/logger"
	"github.com/vendora/vendora-api/internal/pkg/password"
	"github.com/vendora/vendora-api/internal/pkg/session"
)

var errPasswordRequired = errors.New("password is required to create a new admin")

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Create(ctx context.Context, u *user.User) error
	SetRole(ctx context.Context, id uuid.UUID, role session.Role) error
}

func main() {
	email := flag.String("email", "", "admin email")
	pass := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "password for a new account (defaults to $ADMIN_PASSWORD)")
	name := flag.String("name", "Administrator", "full name for a new account")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "usage: create-admin -email admin@example.com [-password secret] [-name Name]")
		os.Exit(2)
	}

	cfg := config.Load()
	logCloser, err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise logger")
	}
	defer logCloser.Close()

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg.DatabaseURL, database.PoolConfig{MaxOpen: 1, MaxIdle: 1})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	u, created, err := ensureAdmin(ctx, user.NewRepository(db), *email, *pass, *name)
	if err != nil {
		log.Fatal().Err(err).Str("email", *email).Msg("Failed to bootstrap admin")
	}

	log.Info().
		Str("user_id", u.ID.String()).
		Str("email", u.Email).
		Bool("created", created).
		Msg("Admin ready")
}

func ensureAdmin(ctx context.Context, users userStore, email, pass, name string) (*user.User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		return nil, false, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		if existing.Role != session.RoleAdmin {
			if err := users.SetRole(ctx, existing.ID, session.RoleAdmin); err != nil {
				return nil, false, fmt.Errorf("promote user: %w", err)
			}
			existing.Role = session.RoleAdmin
		}
		return existing, false, nil
	}

	if pass == "" {
		return nil, false, errPasswordRequired
	}
	hash, err := password.Hash(pass)
	if err != nil {
		return nil, false, err
	}

	u := &user.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(name),
		Role:         session.RoleAdmin,
		IsActive:     true,
	}
	if err := users.Create(ctx, u); err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	return u, true, nil
}
