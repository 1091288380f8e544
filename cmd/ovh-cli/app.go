package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/Sternrassler/ovh-cli/pkg/cache"
	"github.com/Sternrassler/ovh-cli/pkg/client"
	"github.com/Sternrassler/ovh-cli/pkg/config"
	"github.com/Sternrassler/ovh-cli/pkg/logging"
	"github.com/Sternrassler/ovh-cli/pkg/metrics"
	"github.com/Sternrassler/ovh-cli/pkg/ovh"
	"github.com/Sternrassler/ovh-cli/pkg/proxy"
)

// options are the global flags accepted by every command.
type options struct {
	configPath     string
	dryRun         bool
	noCache        bool
	grep           bool
	yes            bool
	metrics        bool
	timeout        time.Duration
	connectTimeout time.Duration
	logLevel       string
}

// localOptions are the command-specific flags.
type localOptions struct {
	appDelete int

	bootHD     bool
	bootRescue bool
	bootID     int
	bootList   bool
	bootAll    bool

	consoleAttempts int
	consoleDelay    time.Duration
	consoleTTL      int
	consoleType     string
	consoleAllowIP  string

	renewAll bool
	renewOn  bool
	renewOff bool

	vrackRemove bool

	reverseSet    string
	reverseDelete bool
	failoverMove  string

	ticketStatus      string
	ticketMessage     string
	ticketSubject     string
	ticketCategory    string
	ticketSubcategory string
	ticketProduct     string
	ticketService     string
}

// app owns the process-wide collaborators. They are built once per
// invocation, after flags are parsed.
type app struct {
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
	in     *bufio.Reader

	// interactive reports whether prompts can be shown
	interactive bool

	opts    options
	local   localOptions
	cfg     *config.Config
	store   cache.Store
	api     *ovh.API
	closers []func() error
	logger  zerolog.Logger
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	f, ok := stdin.(*os.File)
	return &app{
		stdin:       stdin,
		stdout:      stdout,
		stderr:      stderr,
		interactive: ok && logging.IsTerminal(f),
	}
}

// flags returns a flag set carrying the global flags.
func (a *app) flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVar(&a.opts.configPath, "config", "", "config file (default ~/"+config.FileName+")")
	fs.BoolVarP(&a.opts.dryRun, "dry-run", "t", false, "print mutating requests instead of sending them")
	fs.BoolVarP(&a.opts.noCache, "no-cache", "n", false, "bypass the response cache")
	fs.BoolVarP(&a.opts.grep, "grep", "g", false, "greppable key|path=value output")
	fs.BoolVarP(&a.opts.yes, "yes", "y", false, "do not ask for confirmation")
	fs.BoolVar(&a.opts.metrics, "metrics", false, "dump metrics to stderr on exit")
	fs.DurationVar(&a.opts.timeout, "timeout", client.DefaultTimeout, "total API request timeout")
	fs.DurationVar(&a.opts.connectTimeout, "connect-timeout", client.DefaultConnectTimeout, "API connection timeout")
	fs.StringVar(&a.opts.logLevel, "log-level", string(logging.LevelWarn), "log level (debug, info, warn, error)")
	return fs
}

// action wraps a command body with logging setup, cleanup and the
// optional metrics dump.
func (a *app) action(fn func(ctx context.Context, args []string) error) func(ctx context.Context, args []string) error {
	return func(ctx context.Context, args []string) (err error) {
		level, err := logging.ParseLevel(a.opts.logLevel)
		if err != nil {
			return err
		}
		logging.Setup(logging.Config{
			Level:  level,
			Pretty: logging.IsTerminal(a.stderr),
			Output: a.stderr,
		})
		a.logger = logging.NewLogger("cli")

		defer func() {
			if closeErr := a.close(); err == nil {
				err = closeErr
			}
			if a.opts.metrics {
				if dumpErr := metrics.Dump(a.stderr, metrics.Gatherer); err == nil {
					err = dumpErr
				}
			}
		}()

		return fn(ctx, args)
	}
}

// config loads the configuration file and environment once.
func (a *app) config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	path, err := a.configPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	a.cfg = cfg
	return cfg, nil
}

func (a *app) configPath() (string, error) {
	if a.opts.configPath != "" {
		return a.opts.configPath, nil
	}
	return config.DefaultPath()
}

// openStore opens the configured cache backend.
func (a *app) openStore(ctx context.Context) (cache.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	store, closeStore, err := cache.Open(ctx, cfg.CacheOptions())
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	a.closers = append(a.closers, closeStore)
	a.store = store
	return store, nil
}

// openAPI builds transport, store and proxy. forceNoCache disables
// caching regardless of flags.
func (a *app) openAPI(ctx context.Context, forceNoCache bool) (*ovh.API, error) {
	if a.api != nil {
		return a.api, nil
	}

	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrInvalidConfig) {
			return nil, fmt.Errorf("%w\n\nRun 'ovh-cli api setup' to configure credentials.", err)
		}
		return nil, err
	}

	transport, err := client.New(client.Config{
		ApplicationKey:    cfg.ApplicationKey,
		ApplicationSecret: cfg.ApplicationSecret,
		ConsumerKey:       cfg.ConsumerKey,
		Endpoint:          cfg.Endpoint,
		Timeout:           a.opts.timeout,
		ConnectTimeout:    a.opts.connectTimeout,
		UserAgent:         "ovh-cli/" + version,
	})
	if err != nil {
		return nil, err
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	p, err := proxy.New(transport, store, proxy.Config{
		CacheDisabled: a.opts.noCache || forceNoCache,
		DryRun:        a.opts.dryRun,
		TTL:           cfg.CacheTTL.Duration(),
		Output:        a.stdout,
	})
	if err != nil {
		return nil, err
	}

	a.logger.Debug().
		Str("endpoint", cfg.Endpoint).
		Bool("dry_run", a.opts.dryRun).
		Bool("cache_disabled", a.opts.noCache || forceNoCache).
		Msg("API ready")

	a.api = ovh.New(p)
	return a.api, nil
}

func (a *app) close() error {
	var errs []error
	for _, fn := range a.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// formatter returns the output formatter for the current flags.
func (a *app) formatter() *Formatter {
	return NewFormatter(a.stdout, a.opts.grep)
}
