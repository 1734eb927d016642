package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"savingz.backend/internal/config"
	"savingz.backend/internal/domain/entities"
	domainrepo "savingz.backend/internal/domain/repositories"
	"savingz.backend/internal/infrastructure/datasources/postgres"
	"savingz.backend/internal/infrastructure/repositories"
)

type adminRoleDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config) (domainrepo.UserRepository, io.Closer, error)
	out     io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultAdminRoleDeps() adminRoleDeps {
	return adminRoleDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: func(cfg *config.Config) (domainrepo.UserRepository, io.Closer, error) {
			db, err := postgres.NewConnection(cfg.Database)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to connect db: %w", err)
			}
			sqlDB, err := db.DB()
			if err != nil {
				return nil, nil, fmt.Errorf("failed to init sql db: %w", err)
			}
			return repositories.NewUserRepository(db), sqlDB, nil
		},
		out: os.Stdout,
	}
}

func parseEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("--email is required")
	}
	if !strings.Contains(email, "@") {
		return "", fmt.Errorf("invalid email %q", email)
	}
	return email, nil
}

func runAdminRole(args []string, deps adminRoleDeps) error {
	def := defaultAdminRoleDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.prepare == nil {
		deps.prepare = def.prepare
	}
	if deps.out == nil {
		deps.out = def.out
	}

	fs := flag.NewFlagSet("admin-role", flag.ContinueOnError)
	emailFlag := fs.String("email", "", "email of the registered user (required)")
	revokeFlag := fs.Bool("revoke", false, "remove the admin role instead of granting it")
	if err := fs.Parse(args); err != nil {
		return err
	}

	email, err := parseEmail(*emailFlag)
	if err != nil {
		return err
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := deps.loadCfg()
	users, closer, err := deps.prepare(cfg)
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()

	ctx := context.Background()
	user, err := users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to load user %s: %w", email, err)
	}

	role := entities.UserRoleAdmin
	if *revokeFlag {
		role = entities.UserRoleUser
	}
	if user.Role == role {
		_, _ = fmt.Fprintf(deps.out, "user %s already has role=%q\n", email, role)
		return nil
	}

	if err := users.UpdateRole(ctx, user.ID, role); err != nil {
		return fmt.Errorf("failed updating role: %w", err)
	}

	_, _ = fmt.Fprintln(deps.out, "Updated user role")
	_, _ = fmt.Fprintf(deps.out, "user_id=%s\n", user.ID)
	_, _ = fmt.Fprintf(deps.out, "email=%s\n", email)
	_, _ = fmt.Fprintf(deps.out, "role=%q\n", role)
	return nil
}

func main() {
	if err := runAdminRole(os.Args[1:], defaultAdminRoleDeps()); err != nil {
		log.Fatal(err)
	}
}
