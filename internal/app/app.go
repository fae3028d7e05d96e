package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/kakamessi99/RecordServiceClient/internal/config"
	"github.com/kakamessi99/RecordServiceClient/internal/ctxlog"
	"github.com/kakamessi99/RecordServiceClient/internal/session"
	"github.com/kakamessi99/RecordServiceClient/internal/worker"
	"github.com/kakamessi99/RecordServiceClient/internal/worker/sioworker"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	config  *Config
	logger  *slog.Logger
	model   *config.Model
	factory *session.Factory

	// outMu serialises record output from concurrent tasks.
	outMu sync.Mutex
	outW  io.Writer

	httpServer *http.Server
}

// Option customises the collaborators of an App.
type Option func(*options)

type options struct {
	dialer      worker.Dialer
	sessionOpts []session.Option
}

// WithDialer replaces the socket.io worker transport.
func WithDialer(d worker.Dialer) Option {
	return func(o *options) { o.dialer = d }
}

// WithSessionOptions forwards options to the session factory.
func WithSessionOptions(opts ...session.Option) Option {
	return func(o *options) { o.sessionOpts = append(o.sessionOpts, opts...) }
}

// NewApp is the constructor for the main application. Records are written to
// outW and logs to logW. Configuration, credentials and tasks are loaded
// eagerly, so a broken configuration fails here rather than in Run.
func NewApp(outW, logW io.Writer, appConfig *Config, loader config.Loader, opts ...Option) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.dialer == nil {
		o.dialer = sioworker.NewDialer()
	}

	model, err := loader.Load(ctx, appConfig.ConfigPaths...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	logger.Debug("Configuration loaded and translated into unified model.",
		"tasks", len(model.Tasks),
		"credentials", model.Credentials.Len(),
	)

	return &App{
		config:  appConfig,
		logger:  logger,
		model:   model,
		factory: session.NewFactory(o.dialer, o.sessionOpts...),
		outW:    outW,
	}, nil
}

// Model returns the loaded configuration model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}

// OpenSessions returns the number of worker sessions currently open.
func (a *App) OpenSessions() int64 {
	return a.factory.OpenSessions()
}
