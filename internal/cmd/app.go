package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mentorkit/mentor/internal/config"
	"github.com/mentorkit/mentor/internal/genai"
	"github.com/mentorkit/mentor/internal/keypool"
	"github.com/mentorkit/mentor/internal/mentor"
	"github.com/mentorkit/mentor/internal/session"
)

// loadConfig reads the file named by --config, falling back to the
// standard location. A missing file yields defaults.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return config.Load(path)
}

// newService builds the generative service from config and environment.
func newService(cfg *config.Config) *mentor.Service {
	return mentor.NewService(
		genai.NewClient(),
		keypool.ResolvePools(),
		mentor.WithChatModel(cfg.Chat.Model),
		mentor.WithOutlineModel(cfg.Outline.Model),
		mentor.WithMaxOutputTokens(cfg.Chat.MaxOutputTokens),
		mentor.WithTemperature(cfg.Chat.Temperature),
	)
}

// newAccountStore builds the identity/session store for the configured
// driver. The returned close function releases driver resources.
func newAccountStore(cfg *config.Config) (*session.Store, func() error, error) {
	noop := func() error { return nil }
	latency := session.WithLatency(cfg.Latency())

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return session.NewStore(session.NewMemoryStore(), latency), noop, nil

	case config.DriverFile:
		dir := cfg.Storage.Path
		if dir == "" {
			d, err := config.DefaultDataDir()
			if err != nil {
				return nil, nil, err
			}
			dir = d
		}
		fs, err := session.NewFileStore(dir)
		if err != nil {
			return nil, nil, err
		}
		return session.NewStore(fs, latency), noop, nil

	case config.DriverSQLite:
		path := cfg.Storage.Path
		if path == "" {
			d, err := config.DefaultDataDir()
			if err != nil {
				return nil, nil, err
			}
			path = filepath.Join(d, "mentor.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, nil, fmt.Errorf("creating data directory: %w", err)
		}
		db, err := session.NewSQLiteStore(path)
		if err != nil {
			return nil, nil, err
		}
		return session.NewStore(db, latency), db.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// describeGenError rewrites a safety block into an actionable message.
// Pool configuration and exhaustion errors already read well as-is.
func describeGenError(err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return fmt.Errorf("the reply was withheld by the upstream safety policy (%s); rephrase and try again", blocked.Reason)
	}
	return err
}
