package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thand-io/reader/internal/models"
	"github.com/thand-io/reader/internal/storage"
)

// failingProvider wraps a provider and fails the selected operations.
type failingProvider struct {
	storage.Provider
	failSet    bool
	failRemove bool
}

var errStorageDown = errors.New("storage down")

func (f *failingProvider) Set(ctx context.Context, key, value string) error {
	if f.failSet {
		return errStorageDown
	}
	return f.Provider.Set(ctx, key, value)
}

func (f *failingProvider) Remove(ctx context.Context, key string) error {
	if f.failRemove {
		return errStorageDown
	}
	return f.Provider.Remove(ctx, key)
}

func readRecord(t *testing.T, provider storage.Provider, key string) map[string]json.RawMessage {
	t.Helper()

	raw, err := provider.Get(context.Background(), key)
	require.NoError(t, err)

	var record map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &record))
	return record
}

func TestStore_SetSessionPersists(t *testing.T) {
	ctx := context.Background()
	provider := storage.NewMemoryProvider()
	store := NewStore(provider)

	user := &models.User{Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, store.SetSession(ctx, "t1", user))

	session := store.Get()
	assert.Equal(t, "t1", session.Token)
	assert.True(t, session.IsAuthenticated)
	assert.Equal(t, "Ada", session.User.Name)

	var auth models.Session
	require.NoError(t, json.Unmarshal(readRecord(t, provider, DefaultKey)["auth"], &auth))
	assert.Equal(t, "t1", auth.Token)
	assert.True(t, auth.IsAuthenticated)
	assert.Equal(t, "ada@example.com", auth.User.Email)
}

func TestStore_SetSessionRejectsEmptyToken(t *testing.T) {
	store := NewStore(storage.NewMemoryProvider())

	err := store.SetSession(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrEmptyToken)
	assert.False(t, store.Get().IsAuthenticated)
}

func TestStore_SetSessionKeepsOtherSlices(t *testing.T) {
	ctx := context.Background()
	provider := storage.NewMemoryProvider()
	require.NoError(t, provider.Set(ctx, DefaultKey, `{"content":{"bookmarks":["a1"]}}`))

	store := NewStore(provider)
	require.NoError(t, store.SetSession(ctx, "t1", nil))

	record := readRecord(t, provider, DefaultKey)
	assert.JSONEq(t, `{"bookmarks":["a1"]}`, string(record["content"]))
	assert.Contains(t, record, "auth")
}

func TestStore_GetReturnsSnapshot(t *testing.T) {
	store := NewStore(storage.NewMemoryProvider())
	user := &models.User{Name: "Ada"}
	require.NoError(t, store.SetSession(context.Background(), "t1", user))

	user.Name = "changed by caller"
	snapshot := store.Get()
	snapshot.User.Name = "changed by reader"

	assert.Equal(t, "Ada", store.Get().User.Name)
}

func TestStore_ClearRemovesPersistedRecord(t *testing.T) {
	ctx := context.Background()
	provider := storage.NewMemoryProvider()
	store := NewStore(provider)

	require.NoError(t, store.SetSession(ctx, "t1", &models.User{Name: "Ada"}))
	require.NoError(t, store.Clear(ctx))

	session := store.Get()
	assert.Empty(t, session.Token)
	assert.False(t, session.IsAuthenticated)
	assert.Nil(t, session.User)

	_, err := provider.Get(ctx, DefaultKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_ClearReportsStorageFailure(t *testing.T) {
	ctx := context.Background()
	provider := &failingProvider{Provider: storage.NewMemoryProvider()}
	store := NewStore(provider)
	require.NoError(t, store.SetSession(ctx, "t1", nil))

	provider.failRemove = true
	err := store.Clear(ctx)

	assert.ErrorIs(t, err, errStorageDown)
	// In memory state is still logged out
	assert.False(t, store.Get().IsAuthenticated)
}

func TestStore_SetSessionReportsStorageFailure(t *testing.T) {
	provider := &failingProvider{Provider: storage.NewMemoryProvider(), failSet: true}
	store := NewStore(provider)

	var published []models.Session
	store.Subscribe(func(s models.Session) { published = append(published, s) })

	err := store.SetSession(context.Background(), "t1", nil)
	assert.ErrorIs(t, err, errStorageDown)

	// Nothing was written, so nothing changed
	assert.False(t, store.Get().Valid())
	assert.Empty(t, store.Get().Token)
	assert.Empty(t, published)

	_, err = provider.Get(context.Background(), DefaultKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_SetUserKeepsProfileOnStorageFailure(t *testing.T) {
	ctx := context.Background()
	provider := &failingProvider{Provider: storage.NewMemoryProvider()}
	store := NewStore(provider)

	require.NoError(t, store.SetSession(ctx, "t1", &models.User{Name: "Ada"}))

	provider.failSet = true
	err := store.SetUser(ctx, &models.User{Name: "Grace"})
	assert.ErrorIs(t, err, errStorageDown)

	assert.Equal(t, "Ada", store.Get().User.Name)
	record := readRecord(t, provider, DefaultKey)
	assert.Contains(t, string(record["auth"]), "Ada")
}

func TestStore_SetUser(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemoryProvider())

	// Ignored while logged out
	require.NoError(t, store.SetUser(ctx, &models.User{Name: "Ghost"}))
	assert.Nil(t, store.Get().User)

	require.NoError(t, store.SetSession(ctx, "t1", nil))
	require.NoError(t, store.SetUser(ctx, &models.User{Name: "Ada"}))

	session := store.Get()
	assert.Equal(t, "t1", session.Token)
	assert.Equal(t, "Ada", session.User.Name)
}

func TestStore_SubscribeSeesEveryMutation(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemoryProvider())

	var seen []models.Session
	unsubscribe := store.Subscribe(func(s models.Session) {
		seen = append(seen, s)
	})

	require.NoError(t, store.SetSession(ctx, "t1", nil))
	require.NoError(t, store.Clear(ctx))

	unsubscribe()
	require.NoError(t, store.SetSession(ctx, "t2", nil))

	require.Len(t, seen, 2)
	assert.Equal(t, "t1", seen[0].Token)
	assert.False(t, seen[1].IsAuthenticated)
}

func TestStore_ObserversFollowMutationOrder(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemoryProvider())

	entered := make(chan struct{})
	release := make(chan struct{})

	var mirrorLock sync.Mutex
	mirror := ""
	store.Subscribe(func(s models.Session) {
		if s.Token == "t1" {
			close(entered)
			<-release
		}
		mirrorLock.Lock()
		mirror = s.Token
		mirrorLock.Unlock()
	})

	setDone := make(chan error, 1)
	go func() { setDone <- store.SetSession(ctx, "t1", nil) }()
	<-entered

	clearDone := make(chan error, 1)
	go func() { clearDone <- store.Clear(ctx) }()

	// Clear waits for the SetSession observers before it mutates
	select {
	case <-clearDone:
		t.Fatal("Clear finished while SetSession was still publishing")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-setDone)
	require.NoError(t, <-clearDone)

	mirrorLock.Lock()
	defer mirrorLock.Unlock()
	assert.Empty(t, mirror)
	assert.Equal(t, store.Get().Token, mirror)
	assert.False(t, store.Get().Valid())
}

func TestStore_ConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemoryProvider())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = store.SetSession(ctx, "token", nil)
			} else {
				_ = store.Clear(ctx)
			}
		}(i)
	}
	wg.Wait()

	session := store.Get()
	assert.Equal(t, session.IsAuthenticated, session.HasToken())
}
