package cmd

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mentorkit/mentor/internal/config"
	"github.com/mentorkit/mentor/internal/genai"
)

func TestLocalPart(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"ana@example.com", "ana"},
		{"  ana@example.com  ", "ana"},
		{"no-at-sign", "no-at-sign"},
		{"@example.com", "@example.com"},
	}
	for _, tt := range tests {
		if got := localPart(tt.email); got != tt.want {
			t.Errorf("localPart(%q) = %q, want %q", tt.email, got, tt.want)
		}
	}
}

func TestFirstName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Ana Lovelace", "Ana"},
		{"Ana", "Ana"},
		{"  Ana  Lovelace ", "Ana"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := firstName(tt.name); got != tt.want {
			t.Errorf("firstName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDescribeGenError(t *testing.T) {
	blocked := &genai.BlockedError{Reason: "SAFETY"}
	err := describeGenError(blocked)
	if !strings.Contains(err.Error(), "safety policy") || !strings.Contains(err.Error(), "SAFETY") {
		t.Errorf("blocked message = %q, want safety policy phrasing with the reason", err)
	}

	plain := errors.New("dial tcp: connection refused")
	if got := describeGenError(plain); got != plain {
		t.Errorf("describeGenError passed a plain error through as %v", got)
	}
}

// TestNewAccountStoreDrivers verifies each configured driver yields a
// working store.
func TestNewAccountStoreDrivers(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		storage config.StorageConfig
	}{
		{"memory", config.StorageConfig{Driver: config.DriverMemory}},
		{"file", config.StorageConfig{Driver: config.DriverFile, Path: filepath.Join(dir, "file-store")}},
		{"sqlite", config.StorageConfig{Driver: config.DriverSQLite, Path: filepath.Join(dir, "nested", "mentor.db")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Storage = tt.storage
			cfg.UI.LatencyMS = 0

			store, closeStore, err := newAccountStore(cfg)
			if err != nil {
				t.Fatalf("newAccountStore: %v", err)
			}
			defer closeStore()

			ctx := context.Background()
			if _, err := store.Register(ctx, "Ana", "ana@example.com", "pw-mock-123"); err != nil {
				t.Fatalf("Register through %s store: %v", tt.name, err)
			}
			current, err := store.Current(ctx)
			if err != nil {
				t.Fatalf("Current: %v", err)
			}
			if current == nil || current.Email != "ana@example.com" {
				t.Errorf("Current = %+v, want registered profile", current)
			}
		})
	}
}

func TestNewAccountStoreUnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "postgres"

	if _, _, err := newAccountStore(cfg); err == nil {
		t.Error("expected error for unknown storage driver")
	}
}

func TestRedactedList(t *testing.T) {
	got := redactedList([]string{"text-key-alpha-0001", "text-key-alpha-0002"})
	if got != "...0001, ...0002" {
		t.Errorf("redactedList = %q, want redacted fragments", got)
	}
	if strings.Contains(got, "text-key-alpha") {
		t.Error("redactedList leaked a key body")
	}
}
