package config

import (
	"os"
	"strings"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	os.Setenv("TICKET_API_URL", "https://tickets.example.edu/api")
	os.Setenv("TICKET_API_TOKEN", "secret-token")
	t.Cleanup(func() {
		os.Unsetenv("TICKET_API_URL")
		os.Unsetenv("TICKET_API_TOKEN")
	})
}

func TestLoadRequiresTicketAPIToken(t *testing.T) {
	os.Setenv("TICKET_API_URL", "https://tickets.example.edu/api")
	os.Unsetenv("TICKET_API_TOKEN")
	defer os.Unsetenv("TICKET_API_URL")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "TICKET_API_TOKEN") {
		t.Fatalf("expected missing token error, got %v", err)
	}
}

func TestLoadRequiresTicketAPIURL(t *testing.T) {
	os.Unsetenv("TICKET_API_URL")
	os.Setenv("TICKET_API_TOKEN", "secret-token")
	defer os.Unsetenv("TICKET_API_TOKEN")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "TICKET_API_URL") {
		t.Fatalf("expected missing URL error, got %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Chat.EmailDomain != "dukekunshan.edu.cn" {
		t.Fatalf("unexpected email domain: %s", cfg.Chat.EmailDomain)
	}
	if cfg.Chat.SessionTTLSeconds != 1800 {
		t.Fatalf("unexpected session TTL: %d", cfg.Chat.SessionTTLSeconds)
	}
	if got := cfg.Chat.SessionTTL().Seconds(); got != 1800 {
		t.Fatalf("unexpected session TTL duration: %v", got)
	}
	if cfg.TicketAPI.Token != "secret-token" {
		t.Fatalf("token not carried through")
	}
	if cfg.App.Addr() != "0.0.0.0:8080" {
		t.Fatalf("unexpected addr: %s", cfg.App.Addr())
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("CHAT_SESSION_TTL_SECONDS", "60")
	os.Setenv("CHAT_EMAIL_DOMAIN", "example.edu")
	t.Cleanup(func() {
		os.Unsetenv("CHAT_SESSION_TTL_SECONDS")
		os.Unsetenv("CHAT_EMAIL_DOMAIN")
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Chat.SessionTTLSeconds != 60 || cfg.Chat.EmailDomain != "example.edu" {
		t.Fatalf("overrides not applied: %+v", cfg.Chat)
	}
}
