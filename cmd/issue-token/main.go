// Command issue-token registers a user and prints a bearer token for it.
// It stands in for the Google sign-in exchange during development.
//
// Usage:
//
//	issue-token -email alice@example.com -name Alice
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/config"
	"github.com/mmynk/settleup/internal/service"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/internal/storage/postgres"
	"github.com/mmynk/settleup/internal/storage/sqlite"
	"github.com/mmynk/settleup/pkg/logging"
)

func main() {
	email := flag.String("email", "", "email address of the user (required)")
	name := flag.String("name", "", "display name of the user (required)")
	avatar := flag.String("avatar", "", "avatar URL")
	googleID := flag.String("google-id", "", "Google account subject")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := run(context.Background(), cfg, service.Profile{
		Email:    *email,
		Name:     *name,
		Avatar:   *avatar,
		GoogleID: *googleID,
	}); err != nil {
		slog.Error("Failed to issue token", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, profile service.Profile) error {
	var (
		store storage.Store
		err   error
	)
	if cfg.DBBackend == config.BackendPostgres {
		store, err = postgres.New(ctx, cfg.DatabaseURL)
	} else {
		store, err = sqlite.New(cfg.DBPath)
	}
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	users := service.NewUserService(store, auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL))
	user, token, err := users.SignIn(ctx, profile)
	if err != nil {
		return err
	}

	slog.Info("Token issued", "user_id", user.ID, "email", user.Email, "expires_in", cfg.TokenTTL)
	fmt.Println(token)
	return nil
}
