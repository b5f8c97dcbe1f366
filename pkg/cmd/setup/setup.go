// Package setup wires the shared parts of the commands: logging, the upstream
// clients, the dashboard service and the live timing supervisor.
package setup

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"

	"f1dashboard/log"
	"f1dashboard/pkg/cache"
	"f1dashboard/pkg/config"
	"f1dashboard/pkg/dashboard"
	"f1dashboard/pkg/ergast"
	"f1dashboard/pkg/fetch"
	"f1dashboard/pkg/livetiming"
	"f1dashboard/pkg/openf1"
	"f1dashboard/pkg/pubsub"
	"f1dashboard/pkg/telemetry"
)

func ParseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// InitLogger replaces the default logger according to the log flags.
func InitLogger() *log.Logger {
	var logger *log.Logger
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			ParseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(
			os.Stderr,
			ParseLogLevel(config.LogLevel, log.DebugLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	log.ResetDefault(logger)
	return logger
}

type App struct {
	Pages  *dashboard.Service
	Live   *livetiming.Manager
	PubSub *pubsub.PubSub[string]

	exitChan chan bool
	tickers  []*time.Ticker
	closers  []func() error
}

// Start builds the clients from the resolved config and starts the background
// loops, including the live timing supervisor. Close stops them again.
func Start(ctx context.Context) (*App, error) {
	return start(ctx, true)
}

// StartPages is Start without live timing.
func StartPages(ctx context.Context) (*App, error) {
	return start(ctx, false)
}

//nolint:funlen // wiring
func start(ctx context.Context, live bool) (*App, error) {
	log.Debug("Config:",
		log.String("ergast", config.ErgastURL),
		log.String("telemetry", config.TelemetryURL),
		log.String("openf1", config.OpenF1URL),
		log.String("live", config.LiveStreamURL),
		log.String("timezone", config.TimeZone),
		log.String("redis", config.RedisAddr),
	)

	loc, err := time.LoadLocation(config.TimeZone)
	if err != nil {
		return nil, errors.Wrapf(err, "loading time zone %q", config.TimeZone)
	}
	timeout, err := time.ParseDuration(config.HTTPTimeout)
	if err != nil {
		return nil, errors.Wrap(err, "parsing http timeout")
	}
	ttl, err := time.ParseDuration(config.CacheTTL)
	if err != nil {
		return nil, errors.Wrap(err, "parsing cache ttl")
	}
	syncInterval, err := time.ParseDuration(config.LiveSyncInterval)
	if err != nil {
		return nil, errors.Wrap(err, "parsing live sync interval")
	}

	app := &App{
		PubSub:   pubsub.NewPubSub[string](),
		exitChan: make(chan bool),
	}

	store, err := app.cacheStore(ctx, ttl)
	if err != nil {
		return nil, err
	}
	getter := fetch.NewClient(
		fetch.WithHTTPClient(&http.Client{Timeout: timeout}),
		fetch.WithCache(store, ttl),
	)

	app.Pages = dashboard.NewService(
		ergast.NewClient(config.ErgastURL, getter),
		telemetry.NewClient(config.TelemetryURL, getter),
		loc,
	)

	if !live {
		return app, nil
	}
	// the stream is long lived, only the driver lookups use the timeout
	stream := livetiming.NewStream(config.LiveStreamURL, &http.Client{})
	drivers := openf1.NewClient(config.OpenF1URL, fetch.NewClient(fetch.WithHTTPClient(&http.Client{Timeout: timeout})))
	app.Live = livetiming.NewManager(ctx, stream, drivers, app.PubSub, loc)
	app.Live.Sync(app.ticker(syncInterval), app.exitChan)

	return app, nil
}

func (a *App) cacheStore(ctx context.Context, ttl time.Duration) (cache.Store, error) {
	switch {
	case ttl <= 0:
		log.Info("Response cache disabled")
		return cache.Nop{}, nil
	case config.RedisAddr != "":
		r := cache.NewRedis(config.RedisAddr, config.RedisPassword, config.RedisDB)
		if err := r.Ping(ctx); err != nil {
			_ = r.Close()
			return nil, errors.Wrapf(err, "connecting to redis at %s", config.RedisAddr)
		}
		a.closers = append(a.closers, r.Close)
		log.Info("Caching responses in redis", log.String("addr", config.RedisAddr))
		return r, nil
	default:
		reset, err := time.ParseDuration(config.CacheReset)
		if err != nil {
			return nil, errors.Wrap(err, "parsing cache reset interval")
		}
		m := cache.NewMemory()
		if reset > 0 {
			m.Sync(a.ticker(reset), a.exitChan)
		}
		return m, nil
	}
}

func (a *App) ticker(d time.Duration) *time.Ticker {
	t := time.NewTicker(d)
	a.tickers = append(a.tickers, t)
	return t
}

// Done is closed once Close was called.
func (a *App) Done() <-chan bool {
	return a.exitChan
}

func (a *App) Close() {
	for _, t := range a.tickers {
		t.Stop()
	}
	close(a.exitChan)
	for _, c := range a.closers {
		if err := c(); err != nil {
			log.Warn("closing resource", log.ErrorField(err))
		}
	}
}
