// Package tilsite serves a personal blog and "today I learned" collection:
// an RSS feed merging both collections, a sitemap and robots.txt.
//
// Records come from markdown files with YAML frontmatter or from a SQLite
// index built by `tilsite import`; see package content.
package tilsite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/eringen/tilsite/content"
	"github.com/eringen/tilsite/feed"
)

// App wires together the content source, cache, feed builder, handlers and
// middleware.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Cache   *content.Cache // nil when caching is disabled
	Builder *feed.Builder

	logger       *log.Logger
	source       content.Getter
	closers      []io.Closer
	limiter      *RateLimiter
	metrics      *siteMetrics
	customRoutes []func(*App)
	initialized  bool
	stopWatch    context.CancelFunc
}

// New creates an App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = log.New("tilsite")
	}
	if lvl, err := ParseLogLevel(cfg.LogLevel); err == nil {
		a.logger.SetLevel(lvl)
	}
	a.Echo.Logger = a.logger
	return a
}

// Logger returns the application logger shared with echo.
func (a *App) Logger() *log.Logger {
	return a.logger
}

// Init validates the configuration, opens the content source and registers
// middleware and routes. Start calls it when needed.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if err := a.Config.Validate(); err != nil {
		return fmt.Errorf("tilsite: invalid config: %w", err)
	}

	if a.source == nil {
		src, err := a.openSource()
		if err != nil {
			return fmt.Errorf("tilsite: open content: %w", err)
		}
		a.source = src
	}

	var src content.Getter = a.source
	if a.Config.CacheTTL > 0 {
		a.Cache = content.NewCache(a.source, a.Config.CacheTTL)
		src = a.Cache
	}
	a.Builder = feed.NewBuilder(src)

	if a.Config.FeedRateLimit > 0 {
		a.limiter = NewRateLimiter(a.Config.FeedRateLimit, time.Minute)
	}
	if a.Config.MetricsEnabled {
		m, err := newSiteMetrics()
		if err != nil {
			return fmt.Errorf("tilsite: init metrics: %w", err)
		}
		a.metrics = m
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.initialized = true
	return nil
}

// openSource picks the SQLite index when DatabasePath is set and the
// markdown directory otherwise.
func (a *App) openSource() (content.Getter, error) {
	if a.Config.DatabasePath != "" {
		store, err := content.OpenSQLite(a.Config.DatabasePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store)
		a.logger.Infof("serving content from %s", a.Config.DatabasePath)
		return store, nil
	}
	a.logger.Infof("serving content from %s", a.Config.ContentDir)
	return content.NewDirStore(a.Config.ContentDir, a.logger), nil
}

// Start initializes the App if needed and runs the server until it is shut down.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	if a.Config.WatchContent && a.Cache != nil {
		ctx, cancel := context.WithCancel(context.Background())
		a.stopWatch = cancel
		go func() {
			err := content.Watch(ctx, a.Config.ContentDir, 500*time.Millisecond, func() {
				a.logger.Info("content changed, invalidating cache")
				a.Cache.Invalidate()
			}, a.logger)
			if err != nil {
				a.logger.Errorf("content watcher stopped: %v", err)
			}
		}()
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server and releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	return errors.Join(err, a.Close())
}

// Close releases the content source, limiter and watcher.
func (a *App) Close() error {
	if a.stopWatch != nil {
		a.stopWatch()
	}
	if a.limiter != nil {
		a.limiter.Stop()
	}
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) channel() feed.Channel {
	return feed.Channel{
		Title:       a.Config.Name,
		Description: a.Config.Description,
		Site:        a.Config.URL,
	}
}

func (a *App) setupRoutes() {
	e := a.Echo

	feedHandlers := []echo.MiddlewareFunc{}
	if a.limiter != nil {
		feedHandlers = append(feedHandlers, a.limitMiddleware)
	}

	e.GET("/rss.xml", a.handleFeed, feedHandlers...)
	e.GET("/feed.xml", a.handleFeed, feedHandlers...)
	e.GET("/sitemap.xml", a.handleSitemap, feedHandlers...)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/healthz", handleHealth)

	if a.metrics != nil {
		e.GET("/metrics", a.metrics.handler())
	}
}
