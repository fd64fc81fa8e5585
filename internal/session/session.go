package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Storage keys. The whole state is two documents: the identity list and
// the active session record.
const (
	keyIdentities = "identities"
	keySession    = "session"
)

var (
	// ErrIdentityExists indicates the email is already registered.
	ErrIdentityExists = errors.New("identity already exists")

	// ErrInvalidCredentials indicates no identity matches the email and
	// password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidIdentity indicates a blank name, email, or password.
	ErrInvalidIdentity = errors.New("invalid identity")
)

var logger = log.WithPrefix("session")

// Store runs identity and session operations over a Storage backend.
// Operations serialize through an internal mutex, so read-modify-write
// cycles never interleave within a process.
type Store struct {
	mu      sync.Mutex
	kv      Storage
	latency time.Duration
	now     func() time.Time
	newID   func() string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLatency delays each operation's completion so interactive surfaces
// exercise their pending states. Zero disables the delay.
func WithLatency(d time.Duration) StoreOption {
	return func(s *Store) {
		s.latency = d
	}
}

// NewStore creates a Store over kv.
func NewStore(kv Storage, opts ...StoreOption) *Store {
	s := &Store{
		kv:    kv,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a new identity and signs it in. Email comparison
// ignores case and surrounding whitespace.
func (s *Store) Register(ctx context.Context, name, email, password string) (Profile, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return Profile{}, ErrInvalidIdentity
	}

	if err := s.pause(ctx); err != nil {
		return Profile{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	identities, err := s.loadIdentities(ctx)
	if err != nil {
		return Profile{}, err
	}

	for _, existing := range identities {
		if existing.Email == email {
			return Profile{}, fmt.Errorf("%w: %s", ErrIdentityExists, email)
		}
	}

	identity := Identity{
		ID:        s.newID(),
		Name:      name,
		Email:     email,
		Password:  password,
		CreatedAt: s.now().UTC(),
	}
	identities = append(identities, identity)

	if err := s.saveIdentities(ctx, identities); err != nil {
		return Profile{}, err
	}

	profile := identity.Profile()
	if err := s.saveSession(ctx, profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// Login matches the email and password pair against the identity list
// and makes the match the active session.
func (s *Store) Login(ctx context.Context, email, password string) (Profile, error) {
	email = NormalizeEmail(email)

	if err := s.pause(ctx); err != nil {
		return Profile{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	identities, err := s.loadIdentities(ctx)
	if err != nil {
		return Profile{}, err
	}

	for _, identity := range identities {
		if identity.Email == email && identity.Password == password {
			profile := identity.Profile()
			if err := s.saveSession(ctx, profile); err != nil {
				return Profile{}, err
			}
			return profile, nil
		}
	}

	return Profile{}, ErrInvalidCredentials
}

// Current returns the active session's profile, nil when nobody is
// signed in. A record that does not parse is removed and reported as
// absent rather than surfaced as an error.
func (s *Store) Current(ctx context.Context) (*Profile, error) {
	if err := s.pause(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.kv.Get(ctx, keySession)
	if err != nil {
		return nil, fmt.Errorf("reading session record: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		logger.Warn("discarding unreadable session record", "err", err)
		profile = Profile{}
	}
	if profile.ID == "" {
		if err := s.kv.Delete(ctx, keySession); err != nil {
			return nil, fmt.Errorf("removing session record: %w", err)
		}
		return nil, nil
	}
	return &profile, nil
}

// Logout clears the active session. Logging out while signed out is not
// an error.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.pause(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, keySession); err != nil {
		return fmt.Errorf("removing session record: %w", err)
	}
	return nil
}

func (s *Store) loadIdentities(ctx context.Context) ([]Identity, error) {
	data, err := s.kv.Get(ctx, keyIdentities)
	if err != nil {
		return nil, fmt.Errorf("reading identity list: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var identities []Identity
	if err := json.Unmarshal(data, &identities); err != nil {
		return nil, fmt.Errorf("parsing identity list: %w", err)
	}
	return identities, nil
}

func (s *Store) saveIdentities(ctx context.Context, identities []Identity) error {
	data, err := json.MarshalIndent(identities, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding identity list: %w", err)
	}
	if err := s.kv.Set(ctx, keyIdentities, data); err != nil {
		return fmt.Errorf("writing identity list: %w", err)
	}
	return nil
}

func (s *Store) saveSession(ctx context.Context, profile Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encoding session record: %w", err)
	}
	if err := s.kv.Set(ctx, keySession, data); err != nil {
		return fmt.Errorf("writing session record: %w", err)
	}
	return nil
}

// pause applies the configured simulated latency, honoring cancellation.
func (s *Store) pause(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.latency):
		return nil
	}
}
