// Package app provides the application context and dependency management
// for the signalmap CLI: configuration, logging and engine construction
// live here, commands only wire flags to them.
package app

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/agentstation/signalmap"
	"github.com/agentstation/signalmap/internal/config"
)

// App represents the signalmap application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	in  io.Reader
	out io.Writer
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		config:  LoadConfig(),
		in:      os.Stdin,
		out:     os.Stdout,
	}

	logger := NewLogger(app.config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Engine creates a resolution engine from the loaded engine configuration.
func (a *App) Engine() (*signalmap.Engine, error) {
	return NewEngine(a.config.Engine)
}

// NewEngine converts an engine configuration into an Engine.
func NewEngine(cfg *config.Config) (*signalmap.Engine, error) {
	return signalmap.New(
		signalmap.WithMatcherConfig(cfg.Matcher),
		signalmap.WithBlocking(cfg.Grouping.BlockingThreshold, cfg.Grouping.PrefixLength),
		signalmap.WithBuilderConfig(cfg.Builder),
		signalmap.WithQualityConfig(cfg.Quality),
		signalmap.WithPolicy(cfg.Eligibility),
	)
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithIO sets the input and output streams (useful for testing).
func WithIO(in io.Reader, out io.Writer) Option {
	return func(a *App) error {
		a.in = in
		a.out = out
		return nil
	}
}
