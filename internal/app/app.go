package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/thand-io/reader/internal/api"
	"github.com/thand-io/reader/internal/client"
	"github.com/thand-io/reader/internal/config"
	"github.com/thand-io/reader/internal/models"
	"github.com/thand-io/reader/internal/notify"
	"github.com/thand-io/reader/internal/sessions"
	"github.com/thand-io/reader/internal/storage"
)

// Application holds the wired session lifecycle: one store, one client
// reading its token, and the notifiers the client reports to.
type Application struct {
	Config  *config.Config
	Storage storage.Provider
	Store   *sessions.Store
	Client  *client.Client
	API     *api.Service
	History *notify.History

	clock       clockwork.Clock
	unsubscribe func()
}

type options struct {
	provider      storage.Provider
	output        io.Writer
	clock         clockwork.Clock
	clientOptions []client.Option
}

type Option func(*options)

// WithStorage uses provider instead of the configured storage driver.
func WithStorage(provider storage.Provider) Option {
	return func(o *options) { o.provider = provider }
}

// WithOutput sets where notification banners are printed. Nil disables
// them.
func WithOutput(out io.Writer) Option {
	return func(o *options) { o.output = out }
}

func WithClock(clock clockwork.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithClientOptions passes extra options through to the HTTP client.
func WithClientOptions(opts ...client.Option) Option {
	return func(o *options) { o.clientOptions = append(o.clientOptions, opts...) }
}

func New(cfg *config.Config, opts ...Option) (*Application, error) {
	o := &options{
		output: os.Stderr,
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(o)
	}

	provider := o.provider
	if provider == nil {
		var err error
		provider, err = cfg.NewStorageProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to create storage provider: %w", err)
		}
	}

	store := sessions.NewStore(provider, sessions.WithKey(cfg.Storage.Key))

	var historyOptions []notify.HistoryOption
	if len(cfg.Notifications.HistoryKey) > 0 {
		historyOptions = append(historyOptions,
			notify.WithHistoryStorage(provider, cfg.Notifications.HistoryKey))
	}
	history := notify.NewHistory(cfg.Notifications.HistorySize, historyOptions...)

	notifiers := notify.Multi{notify.NewLogNotifier(), history}
	if o.output != nil {
		notifiers = append(notifiers, notify.NewTerminal(o.output))
	}

	clientOptions := append([]client.Option{
		client.WithSessionClearer(store),
		client.WithNotifier(notifiers),
	}, o.clientOptions...)

	httpClient, err := client.New(cfg.ClientConfig(), clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	app := &Application{
		Config:  cfg,
		Storage: provider,
		Store:   store,
		Client:  httpClient,
		API:     api.NewService(httpClient, store),
		History: history,
		clock:   o.clock,
	}

	app.unsubscribe = store.Subscribe(func(session models.Session) {
		httpClient.SetToken(session.Token)
	})

	return app, nil
}

// Bootstrap restores the persisted session and reports where the user
// should land.
func (a *Application) Bootstrap(ctx context.Context) sessions.Status {
	if err := a.History.Load(ctx); err != nil {
		logrus.WithError(err).Debugln("Failed to load notification history")
	}

	return sessions.NewBootstrapper(a.Store, sessions.WithClock(a.clock)).Bootstrap(ctx)
}

// Session is the current session snapshot.
func (a *Application) Session() models.Session {
	return a.Store.Get()
}

func (a *Application) IsAuthenticated() bool {
	return a.Store.Get().Valid()
}

// Close detaches the client from the store.
func (a *Application) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}
