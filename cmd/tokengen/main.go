// Package main implements tokengen, a development tool that mints access
// tokens the API hosts accept. Point it at the same configuration the hosts
// use so the signing secret matches.
package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gridstonehq/gridstone-api/internal/config"
	"github.com/gridstonehq/gridstone-api/internal/service/auth"
)

func main() {
	configPath := flag.String("config", "",
		"path to a YAML config file (defaults to ./config.yaml, then environment)")
	subject := flag.String("subject", "",
		"caller UUID to embed as the token subject (random when empty)")
	name := flag.String("name", "dev-caller", "display name claim")
	scopes := flag.String("scopes", "api:read,api:write", "comma-separated scope claims")
	flag.Parse()

	if err := run(*configPath, *subject, *name, *scopes); err != nil {
		stdlog.Fatalf("tokengen: %v", err)
	}
}

func run(configPath, subject, name, scopes string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	tokenService, err := auth.NewHMACTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	subjectID := uuid.New()
	if subject != "" {
		subjectID, err = uuid.Parse(subject)
		if err != nil {
			return fmt.Errorf("invalid subject %q: %w", subject, err)
		}
	}

	token, err := tokenService.IssueToken(
		context.Background(), subjectID, name, splitScopes(scopes))
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	expiry := time.Now().Add(time.Duration(cfg.Auth.TokenLifetimeMinutes) * time.Minute)
	fmt.Printf("Subject: %s\nExpires: %s\nToken:   %s\n",
		subjectID, expiry.Format(time.RFC3339), token)
	return nil
}

// splitScopes turns the comma-separated flag value into clean scope claims.
func splitScopes(raw string) []string {
	parts := strings.Split(raw, ",")
	scopes := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			scopes = append(scopes, trimmed)
		}
	}
	return scopes
}
