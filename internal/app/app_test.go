package app

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thand-io/reader/internal/client"
	"github.com/thand-io/reader/internal/config"
	"github.com/thand-io/reader/internal/models"
	"github.com/thand-io/reader/internal/sessions"
	"github.com/thand-io/reader/internal/storage"
)

type readerServer struct {
	*httptest.Server
	revoked atomic.Bool
}

func newReaderServer(t *testing.T) *readerServer {
	t.Helper()

	rs := &readerServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token":"t1","user":{"name":"Ada","email":"ada@example.com"}}`))
	})
	mux.HandleFunc("GET /magazines", func(w http.ResponseWriter, r *http.Request) {
		if rs.revoked.Load() || r.Header.Get("Authorization") != "Bearer t1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"items":[{"id":"m1","title":"Spring Issue"}],"total":1}`))
	})

	rs.Server = httptest.NewServer(mux)
	t.Cleanup(rs.Close)
	return rs
}

func newTestApp(t *testing.T, endpoint string, provider storage.Provider, opts ...Option) (*Application, *bytes.Buffer) {
	t.Helper()

	cfg := config.DefaultConfig()
	require.NoError(t, cfg.SetEndpoint(endpoint))

	out := &bytes.Buffer{}
	opts = append([]Option{
		WithStorage(provider),
		WithOutput(out),
		WithClientOptions(client.WithClientID("test-client")),
	}, opts...)

	app, err := New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(app.Close)

	return app, out
}

func TestNew_InvalidStorage(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Driver = "tape"

	_, err := New(cfg)
	assert.ErrorIs(t, err, storage.ErrInvalidConfig)
}

func TestLoginAttachesToken(t *testing.T) {
	server := newReaderServer(t)
	app, _ := newTestApp(t, server.URL, storage.NewMemoryProvider())
	ctx := context.Background()

	assert.Equal(t, sessions.Unauthenticated, app.Bootstrap(ctx))
	assert.False(t, app.IsAuthenticated())

	_, err := app.API.Login(ctx, models.Credentials{Email: "ada@example.com", Password: "correct1horse"})
	require.NoError(t, err)

	assert.True(t, app.IsAuthenticated())
	assert.Equal(t, "t1", app.Client.Token())

	magazines, err := app.API.Magazines(ctx)
	require.NoError(t, err)
	require.Len(t, magazines, 1)
	assert.Equal(t, "Spring Issue", magazines[0].Title)
}

func TestBootstrapRestoresSessionAcrossLaunches(t *testing.T) {
	server := newReaderServer(t)
	provider := storage.NewMemoryProvider()
	ctx := context.Background()

	first, _ := newTestApp(t, server.URL, provider)
	_, err := first.API.Login(ctx, models.Credentials{Email: "ada@example.com", Password: "correct1horse"})
	require.NoError(t, err)

	second, _ := newTestApp(t, server.URL, provider)
	assert.Empty(t, second.Client.Token())

	assert.Equal(t, sessions.Authenticated, second.Bootstrap(ctx))
	assert.Equal(t, "t1", second.Client.Token())
	assert.Equal(t, "Ada", second.Session().User.GetName())
}

func TestSessionExpiryClearsEverything(t *testing.T) {
	server := newReaderServer(t)
	provider := storage.NewMemoryProvider()
	ctx := context.Background()

	app, out := newTestApp(t, server.URL, provider)
	_, err := app.API.Login(ctx, models.Credentials{Email: "ada@example.com", Password: "correct1horse"})
	require.NoError(t, err)

	var routed []models.Session
	unsubscribe := app.Store.Subscribe(func(s models.Session) { routed = append(routed, s) })
	defer unsubscribe()

	server.revoked.Store(true)

	_, err = app.API.Magazines(ctx)
	assert.True(t, errors.Is(err, client.ErrSessionExpired))

	assert.Empty(t, app.Client.Token())
	assert.False(t, app.IsAuthenticated())
	require.Len(t, routed, 1)
	assert.False(t, routed[0].IsAuthenticated)

	_, err = provider.Get(ctx, sessions.DefaultKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	events := app.History.Events()
	require.Len(t, events, 1)
	assert.Equal(t, models.NotificationError, events[0].Kind)
	assert.Equal(t, "Session Expired", events[0].Title)
	assert.Contains(t, out.String(), "Session Expired")

	relaunched, _ := newTestApp(t, server.URL, provider)
	assert.Equal(t, sessions.Unauthenticated, relaunched.Bootstrap(ctx))
	assert.Len(t, relaunched.History.Events(), 1)
}

func TestBootstrapDropsExpiredToken(t *testing.T) {
	server := newReaderServer(t)
	provider := storage.NewMemoryProvider()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ada",
		"exp": now.Add(-time.Minute).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	writer := sessions.NewStore(provider)
	require.NoError(t, writer.SetSession(ctx, token, &models.User{Name: "Ada"}))

	app, _ := newTestApp(t, server.URL, provider, WithClock(clockwork.NewFakeClockAt(now)))

	assert.Equal(t, sessions.Unauthenticated, app.Bootstrap(ctx))
	assert.Empty(t, app.Client.Token())

	_, err = provider.Get(ctx, sessions.DefaultKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestWithoutOutputSkipsBanner(t *testing.T) {
	server := newReaderServer(t)
	app, out := newTestApp(t, server.URL, storage.NewMemoryProvider(), WithOutput(nil))
	ctx := context.Background()

	_, err := app.API.Login(ctx, models.Credentials{Email: "ada@example.com", Password: "correct1horse"})
	require.NoError(t, err)
	server.revoked.Store(true)

	_, err = app.API.Magazines(ctx)
	assert.ErrorIs(t, err, client.ErrSessionExpired)

	assert.Empty(t, out.String())
	assert.Len(t, app.History.Events(), 1)
}
