package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/thand-io/reader/internal/models"
	"github.com/thand-io/reader/internal/storage"
)

// Status is the outcome of a bootstrap and picks the initial route.
type Status int

const (
	Unauthenticated Status = iota
	Authenticated
)

func (s Status) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

type Bootstrapper struct {
	store *Store
	clock clockwork.Clock
}

type BootstrapOption func(*Bootstrapper)

func WithClock(clock clockwork.Clock) BootstrapOption {
	return func(b *Bootstrapper) { b.clock = clock }
}

func NewBootstrapper(store *Store, opts ...BootstrapOption) *Bootstrapper {
	b := &Bootstrapper{
		store: store,
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Bootstrap restores the persisted session with the real clock.
func Bootstrap(ctx context.Context, store *Store) Status {
	return NewBootstrapper(store).Bootstrap(ctx)
}

// Bootstrap reads the persisted record once and hydrates the store when
// it holds a usable session. It never fails: anything unexpected means
// the user logs in again.
func (b *Bootstrapper) Bootstrap(ctx context.Context) Status {
	log := logrus.WithField("key", b.store.Key())

	session, err := b.read(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.WithError(err).Warnln("Failed to restore persisted session")
		} else {
			log.Debugln("No persisted session found")
		}
		return Unauthenticated
	}

	if !session.Valid() {
		log.Debugln("Persisted session is not authenticated")
		return Unauthenticated
	}

	if isExpired(session.Token, b.clock.Now()) {
		log.Infoln("Persisted session token has expired")
		if err := b.store.provider.Remove(ctx, b.store.Key()); err != nil {
			log.WithError(err).Warnln("Failed to remove expired session")
		}
		return Unauthenticated
	}

	b.store.hydrate(models.Session{
		Token:           session.Token,
		IsAuthenticated: true,
		User:            session.User,
	})

	log.WithField("user", session.User.GetName()).Debugln("Restored persisted session")

	return Authenticated
}

func (b *Bootstrapper) read(ctx context.Context) (*models.Session, error) {
	raw, err := b.store.provider.Get(ctx, b.store.Key())
	if err != nil {
		return nil, err
	}

	var record map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("malformed session record: %w", err)
	}

	auth, ok := record[authSlice]
	if !ok {
		return nil, fmt.Errorf("session record has no %s slice", authSlice)
	}

	// Some writers store each slice as its own JSON string
	if len(auth) > 0 && auth[0] == '"' {
		var nested string
		if err := json.Unmarshal(auth, &nested); err != nil {
			return nil, fmt.Errorf("malformed %s slice: %w", authSlice, err)
		}
		auth = json.RawMessage(nested)
	}

	var session models.Session
	if err := json.Unmarshal(auth, &session); err != nil {
		return nil, fmt.Errorf("malformed %s slice: %w", authSlice, err)
	}

	return &session, nil
}
