package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/five82/retriever/internal/backend"
	"github.com/five82/retriever/internal/config"
	"github.com/five82/retriever/internal/lists"
	"github.com/five82/retriever/internal/logging"
	"github.com/five82/retriever/internal/prefs"
	"github.com/five82/retriever/internal/state"
	"github.com/five82/retriever/internal/ui"
)

// Options configure a retriever session.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/retriever/prefs.toml
	EnvFile    string // empty uses ./.env
	PollEvery  time.Duration
	// LogOutput, when set, replaces the configured log file.
	LogOutput io.Writer
}

// Env is everything a command needs to talk to the backend.
type Env struct {
	Config config.Config
	Prefs  prefs.Prefs
	Logger *log.Logger
	Client *backend.Client
	Store  *state.Store

	closer io.Closer
}

// Setup loads configuration and builds the logger, client and session store.
func Setup(opts Options) (*Env, error) {
	if err := config.LoadDotEnv(opts.EnvFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	userPrefs, prefsErr := prefs.Load(opts.PrefsPath)

	env := &Env{Config: cfg, Prefs: userPrefs, Store: &state.Store{}}
	if opts.LogOutput != nil {
		env.Logger = logging.New(opts.LogOutput, cfg.LogLevel)
	} else {
		logger, closer, err := logging.Open(cfg.LogPath(), cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		env.Logger = logger
		env.closer = closer
	}
	if prefsErr != nil {
		env.Logger.Warn("using default preferences", "err", prefsErr)
	}

	client, err := backend.NewClient(backend.Options{
		BaseURL: cfg.APIBase,
		Token:   cfg.Token,
		Timeout: cfg.RequestTimeout,
		Logger:  env.Logger,
	})
	if err != nil {
		_ = env.Close()
		return nil, fmt.Errorf("init api client: %w", err)
	}
	env.Client = client
	if !cfg.HasToken() {
		env.Logger.Warn("no api token configured; protected endpoints will fail")
	}
	return env, nil
}

// Close releases the log file.
func (e *Env) Close() error {
	if e == nil || e.closer == nil {
		return nil
	}
	return e.closer.Close()
}

// ListOptions returns list options wired to this session.
func (e *Env) ListOptions(hooks lists.Hooks) lists.Options {
	return lists.Options{
		API:      e.Client,
		User:     e.Store.User,
		PageSize: e.Config.PageSize,
		Timeout:  e.Config.RequestTimeout,
		Logger:   e.Logger,
		Hooks:    hooks,
	}
}

// Refresh polls the session once.
func (e *Env) Refresh(ctx context.Context) error {
	return refresh(ctx, e.Store, e.Client, e.Logger)
}

// Run boots the TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	env, err := Setup(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	interval := env.Config.PollInterval
	if opts.PollEvery > 0 {
		interval = opts.PollEvery
	}

	// Populate the header before the first frame.
	if err := env.Refresh(ctx); err != nil {
		env.Logger.Warn("initial session refresh failed; the poller will retry", "err", err, "every", interval)
	}
	StartPoller(ctx, env.Store, env.Client, interval, env.Logger)

	env.Logger.Info("starting tui", "api", env.Config.APIBase, "poll", interval)
	return ui.Run(ui.Options{
		Context:   ctx,
		Client:    env.Client,
		Store:     env.Store,
		Config:    &env.Config,
		Logger:    env.Logger,
		ListOpts:  env.ListOptions(lists.Hooks{}),
		ThemeName: env.Prefs.Theme,
		LastList:  env.Prefs.LastList,
		PrefsPath: opts.PrefsPath,
	})
}
