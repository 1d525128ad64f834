package main

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/nerrad567/gateway-fleet-core/internal/auth"
	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/config"
)

// runToken implements the "token" subcommand: it signs an access token with
// the configured JWT secret and prints it.
func runToken(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(out)
	subject := fs.String("subject", "operator", "token subject")
	role := fs.String("role", string(auth.RoleOperator), "role: viewer, operator or admin")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !auth.IsValidRole(auth.Role(*role)) {
		return fmt.Errorf("unknown role %q", *role)
	}

	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}
	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Security.JWT.Secret == "" {
		return fmt.Errorf("security.jwt.secret is not set")
	}

	token, err := auth.GenerateAccessToken(*subject, auth.Role(*role), cfg.Security.JWT.Secret, *ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
