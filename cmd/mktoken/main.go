// Command mktoken signs an operator token with JWT_SECRET and writes it to
// the desk's session file.
package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/imrishuroy/go-tailor-orderflow/internal/auth"
	"github.com/imrishuroy/go-tailor-orderflow/internal/config"
	"github.com/imrishuroy/go-tailor-orderflow/internal/session"
)

func main() {
	userID := flag.String("user", "admin", "operator user id")
	name := flag.String("name", "Shop Admin", "operator display name")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	out := flag.String("out", "", "session file (defaults to SESSION_FILE)")
	flag.Parse()

	config.LoadDotEnv()
	cfg, err := config.LoadDesk()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	config.SetupLogger(cfg.LogLevel)
	if *out == "" {
		*out = cfg.SessionFile
	}

	token, err := auth.SignJWT(cfg.JWTSecret, *userID, *name, auth.RoleAdmin, *ttl)
	if err != nil {
		slog.Error("failed to sign token", "error", err)
		os.Exit(1)
	}
	s := session.Session{
		Token:     token,
		User:      session.User{ID: *userID, Name: *name, Role: auth.RoleAdmin},
		ExpiresAt: time.Now().Add(*ttl).UTC(),
	}
	if err := session.NewStore(*out).Save(s); err != nil {
		slog.Error("failed to write session", "file", *out, "error", err)
		os.Exit(1)
	}
	slog.Info("session written", "file", *out, "expires_at", s.ExpiresAt)
}
