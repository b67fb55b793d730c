package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/thand-io/reader/internal/models"
	"github.com/thand-io/reader/internal/storage"
)

// DefaultKey is the storage key the persisted session record lives under.
const DefaultKey = "persist:root"

const authSlice = "auth"

var ErrEmptyToken = errors.New("session token must not be empty")

// Store is the single in-memory record of the current session. Every
// mutation is written through to the storage provider before the
// in-memory state changes and observers are told about it.
type Store struct {
	// writeLock serialises mutations so persisted writes land in order
	writeLock sync.Mutex

	mu      sync.RWMutex
	session models.Session

	provider storage.Provider
	key      string

	observerLock sync.Mutex
	observers    map[int]func(models.Session)
	nextObserver int
}

type StoreOption func(*Store)

// WithKey overrides the storage key.
func WithKey(key string) StoreOption {
	return func(s *Store) { s.key = key }
}

func NewStore(provider storage.Provider, opts ...StoreOption) *Store {
	s := &Store{
		provider:  provider,
		key:       DefaultKey,
		observers: make(map[int]func(models.Session)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Key() string {
	return s.key
}

// Get returns a snapshot that callers may keep and modify freely.
func (s *Store) Get() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return snapshot(s.session)
}

// SetSession marks the user authenticated with token and persists the
// new state.
func (s *Store) SetSession(ctx context.Context, token string, user *models.User) error {
	if len(token) == 0 {
		return ErrEmptyToken
	}

	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	next := models.Session{
		Token:           token,
		IsAuthenticated: true,
		User:            user.Clone(),
	}

	if err := s.persist(ctx, next); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.set(next)
	s.publish(next)

	logrus.WithFields(logrus.Fields{
		"user": next.User.GetName(),
	}).Debugln("Session established")

	return nil
}

// SetUser replaces the profile of the current session. It is a no-op
// when nobody is logged in.
func (s *Store) SetUser(ctx context.Context, user *models.User) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	current := s.Get()
	if !current.Valid() {
		return nil
	}

	current.User = user.Clone()

	if err := s.persist(ctx, current); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.set(current)
	s.publish(current)

	return nil
}

// Clear logs the user out. The persisted record is removed before Clear
// returns, so a relaunch never sees the old credential.
func (s *Store) Clear(ctx context.Context) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	s.set(models.Session{})

	err := s.provider.Remove(ctx, s.key)

	logrus.Debugln("Session cleared")

	s.publish(models.Session{})

	if err != nil {
		return fmt.Errorf("failed to remove persisted session: %w", err)
	}
	return nil
}

// Subscribe registers fn to run after every mutation. Observers run in
// mutation order while the mutation is still held, so they must not
// mutate the store themselves. The returned function removes the
// subscription.
func (s *Store) Subscribe(fn func(models.Session)) func() {
	s.observerLock.Lock()
	defer s.observerLock.Unlock()

	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = fn

	return func() {
		s.observerLock.Lock()
		defer s.observerLock.Unlock()
		delete(s.observers, id)
	}
}

// hydrate loads state read at startup without writing it back.
func (s *Store) hydrate(session models.Session) {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	s.set(session)
	s.publish(session)
}

func (s *Store) set(session models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = session
}

func (s *Store) publish(session models.Session) {
	s.observerLock.Lock()
	observers := make([]func(models.Session), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.observerLock.Unlock()

	for _, fn := range observers {
		fn(snapshot(session))
	}
}

// persist rewrites the auth slice of the record and keeps any other
// slices another writer may have stored alongside it.
func (s *Store) persist(ctx context.Context, session models.Session) error {
	record := map[string]json.RawMessage{}

	existing, err := s.provider.Get(ctx, s.key)
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal([]byte(existing), &record); jsonErr != nil {
			logrus.WithError(jsonErr).Warnln("Overwriting unreadable persisted session record")
			record = map[string]json.RawMessage{}
		}
	case errors.Is(err, storage.ErrNotFound):
	default:
		return err
	}

	auth, err := json.Marshal(session)
	if err != nil {
		return err
	}
	record[authSlice] = auth

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	return s.provider.Set(ctx, s.key, string(data))
}

func snapshot(session models.Session) models.Session {
	session.User = session.User.Clone()
	return session
}
