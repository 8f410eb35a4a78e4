package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"atelier/pkg/agenda"
	"atelier/pkg/api"
	"atelier/pkg/bus"
	"atelier/pkg/catalog"
	"atelier/pkg/commands"
	"atelier/pkg/config"
	"atelier/pkg/database"
	"atelier/pkg/sample"
	"atelier/pkg/session"
	"atelier/pkg/ui"
	"atelier/pkg/utils"
)

// refreshWindow is how close to expiry a stored token is renewed at startup
const refreshWindow = 5 * time.Minute

// App holds everything wired from the configuration
type App struct {
	Config   config.Config
	Log      *zap.Logger
	Location *time.Location

	Storage *database.KV
	Bus     *bus.Bus
	Client  *api.Client
	Session *session.Session
	Agenda  *agenda.Manager
	Catalog catalog.Source
	Cart    *catalog.Cart
}

// newApp loads the configuration and connects every component. Close releases them.
func newApp(ctx context.Context, opts *Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if opts.Source != "" {
		cfg.Source = opts.Source
	}
	if cfg.Source != config.SourceAPI && cfg.Source != config.SourceSample {
		return nil, fmt.Errorf("unknown source %q, want api or sample", cfg.Source)
	}

	if err := utils.InitLogger(opts.Verbose, cfg.LogFile); err != nil {
		return nil, err
	}
	log := utils.L()

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	kv, err := database.Open(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("opening local storage: %w", err)
	}

	a := &App{Config: cfg, Log: log, Location: loc, Storage: kv, Bus: bus.New()}

	a.Client = api.New(cfg.APIURL,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithTokenSource(api.TokenFunc(func() string { return a.Session.Token() })),
		api.WithBus(a.Bus),
		api.WithLogger(log.Named("api")),
	)
	a.Session = session.New(a.Client, kv, log.Named("session"))
	if err := a.Session.Hydrate(); err != nil {
		log.Warn("restoring session", zap.Error(err))
	}

	demo := sample.NewSeeded(sample.WithLocation(loc))
	var src agenda.Source = a.Client
	a.Catalog = catalog.WithFallback(a.Client, demo, log.Named("catalog"))
	if cfg.Source == config.SourceSample {
		src = demo
		a.Catalog = demo
	} else if a.Session.NeedsRefresh(time.Now(), refreshWindow) {
		if err := a.Session.Refresh(ctx); err != nil {
			log.Warn("refreshing session", zap.Error(err))
		}
	}

	a.Agenda = agenda.New(src,
		agenda.WithLogger(log.Named("agenda")),
		agenda.WithLocation(loc),
		agenda.WithFilter(ui.StoredFilter(kv)),
	)
	a.Cart = catalog.NewCart(kv, log.Named("cart"))

	log.Debug("app ready",
		zap.String("source", cfg.Source),
		zap.String("api", cfg.APIURL),
		zap.String("storage", cfg.Storage),
		zap.String("config", cfg.Path),
	)
	return a, nil
}

// Env is the command environment; hints about expired sessions go to errOut
func (a *App) Env(out, errOut io.Writer, in io.Reader) (*commands.Env, func()) {
	unsubscribe := a.Bus.Subscribe(func(msg bus.AuthRequired) {
		fmt.Fprintf(errOut, "%s Run `atelier login` and try again.\n", msg.Reason)
	})
	env := &commands.Env{
		Agenda:  a.Agenda,
		Catalog: a.Catalog,
		Cart:    a.Cart,
		Session: a.Session,
		Storage: a.Storage,
		Out:     out,
		In:      in,
	}
	return env, unsubscribe
}

func (a *App) Close() {
	a.Agenda.Close()
	if err := a.Storage.Close(); err != nil {
		a.Log.Warn("closing local storage", zap.Error(err))
	}
	utils.CloseLogger()
}
