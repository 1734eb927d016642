package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"savingz.backend/internal/config"
	"savingz.backend/pkg/identity"
)

// issuer mints a token for uid and email
type issuer interface {
	Issue(uid, email string) (string, error)
}

var newIssuer = func(secret string, expiry time.Duration) issuer {
	return identity.NewLocalService(secret, expiry)
}

func runDevToken(args []string, cfg config.IdentityConfig, out io.Writer) error {
	fs := flag.NewFlagSet("devtoken", flag.ContinueOnError)
	uid := fs.String("uid", "", "subject uid to assert (required)")
	email := fs.String("email", "", "email claim (optional)")
	expiry := fs.Duration("expiry", cfg.LocalTokenExpiry, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *uid == "" {
		return fmt.Errorf("--uid is required")
	}
	if cfg.Provider != "local" {
		log.Printf("IDENTITY_PROVIDER is %q; the server only accepts these tokens with IDENTITY_PROVIDER=local", cfg.Provider)
	}

	token, err := newIssuer(cfg.LocalSecret, *expiry).Issue(*uid, *email)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}
	_, _ = fmt.Fprintln(out, token)
	return nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	if err := runDevToken(os.Args[1:], config.Load().Identity, os.Stdout); err != nil {
		log.Fatal(err)
	}
}
