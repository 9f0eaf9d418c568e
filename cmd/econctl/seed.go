package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	indicatorrepo "github.com/Gelzieny/remix-of-economic-insight/internal/indicator/repository"
	"github.com/Gelzieny/remix-of-economic-insight/internal/indicator/seed"
	"github.com/Gelzieny/remix-of-economic-insight/internal/security"
	subscriberrepo "github.com/Gelzieny/remix-of-economic-insight/internal/subscriber/repository"
	subscriberservice "github.com/Gelzieny/remix-of-economic-insight/internal/subscriber/service"
	userdomain "github.com/Gelzieny/remix-of-economic-insight/internal/user/domain"
	userrepo "github.com/Gelzieny/remix-of-economic-insight/internal/user/repository"
)

const (
	devUserEmail = "dev@example.com"
	devPassword  = "password123"
)

var (
	seedMonths  int
	seedDevUser bool
)

func init() {
	seedCmd.Flags().IntVar(&seedMonths, "months", seed.DefaultMonths, "months of reference history to write")
	seedCmd.Flags().BoolVar(&seedDevUser, "dev-user", false, "also create "+devUserEmail+" (password "+devPassword+") subscribed to the report")
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the system reference series",
	Long: `Write monthly reference readings for every indicator, owned by the system user.
Idempotent: months that already have a reading are skipped.

Examples:
  # Three years of history
  econctl seed

  # Local development: history plus a subscribed dev user
  econctl seed --months 24 --dev-user`,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	n, err := seed.Run(ctx, indicatorrepo.NewPostgresRepository(e.db), time.Now(), seedMonths)
	if err != nil {
		return err
	}
	e.logger.Info("reference series seeded", zap.Int("inserted", n), zap.Int("months", seedMonths))

	if seedDevUser {
		if err := seedDev(ctx, e); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "inserted %d readings\n", n)
	return nil
}

func seedDev(ctx context.Context, e *env) error {
	users := userrepo.NewPostgresRepository(e.db)
	u, err := users.GetByEmail(ctx, devUserEmail)
	if err != nil {
		return fmt.Errorf("seed check: %w", err)
	}
	if u != nil {
		e.logger.Info("dev user already exists, skipping", zap.String("email", devUserEmail))
		return nil
	}
	hash, err := security.NewHasher(e.cfg.BcryptCost).Hash(devPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	u = &userdomain.User{ID: uuid.New().String(), Email: devUserEmail, PasswordHash: hash, CreatedAt: now, UpdatedAt: now}
	if err := u.Validate(); err != nil {
		return err
	}
	if err := users.Create(ctx, u); err != nil {
		return fmt.Errorf("create dev user: %w", err)
	}
	subs := subscriberservice.NewService(subscriberrepo.NewPostgresRepository(e.db), users)
	if err := subs.SetActive(ctx, u.ID, true); err != nil {
		return fmt.Errorf("subscribe dev user: %w", err)
	}
	e.logger.Info("dev user created", zap.String("email", devUserEmail), zap.String("user_id", u.ID))
	return nil
}
