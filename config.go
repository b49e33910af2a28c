package tilsite

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/spf13/viper"

	"github.com/eringen/tilsite/content"
)

// SiteConfig holds all configuration for a site.
type SiteConfig struct {
	Name        string `mapstructure:"name"`        // Feed and site title (default "Blog & TIL")
	URL         string `mapstructure:"url"`         // Canonical absolute URL (default "http://localhost:3000")
	Description string `mapstructure:"description"` // Required: feed description
	Author      string `mapstructure:"author"`

	Addr         string `mapstructure:"addr"`          // Listen address (default ":3000")
	ContentDir   string `mapstructure:"content_dir"`   // Markdown collections root (default "src/content")
	DatabasePath string `mapstructure:"database_path"` // When set, records are served from this SQLite index

	CacheTTL      time.Duration `mapstructure:"cache_ttl"`       // Collection cache TTL (default 5min, negative disables)
	WatchContent  bool          `mapstructure:"watch_content"`   // Invalidate the cache when ContentDir changes
	FeedRateLimit int           `mapstructure:"feed_rate_limit"` // Feed/sitemap requests per client per minute, 0 disables

	LogLevel       string `mapstructure:"log_level"` // debug, info, warn, error, off (default "info")
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog & TIL"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "src/content"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate reports every missing or malformed setting at once.
func (c SiteConfig) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if strings.TrimSpace(c.Description) == "" {
		errs = append(errs, errors.New("description is required"))
	}
	if u, err := url.Parse(c.URL); err != nil || !u.IsAbs() || u.Host == "" {
		errs = append(errs, fmt.Errorf("url %q must be an absolute URL", c.URL))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.FeedRateLimit < 0 {
		errs = append(errs, errors.New("feed_rate_limit must not be negative"))
	}
	return errors.Join(errs...)
}

// ParseLogLevel maps a log_level setting to a gommon level.
func ParseLogLevel(s string) (log.Lvl, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG, nil
	case "", "info":
		return log.INFO, nil
	case "warn", "warning":
		return log.WARN, nil
	case "error":
		return log.ERROR, nil
	case "off":
		return log.OFF, nil
	}
	return log.INFO, fmt.Errorf("unknown log_level %q", s)
}

// LoadConfig reads configuration from an optional YAML file and TILSITE_*
// environment variables. With an empty path, ./tilsite.yaml is used when
// present.
func LoadConfig(path string) (SiteConfig, error) {
	v := viper.New()

	v.SetDefault("name", "Blog & TIL")
	v.SetDefault("url", "http://localhost:3000")
	v.SetDefault("description", "")
	v.SetDefault("author", "")
	v.SetDefault("addr", ":3000")
	v.SetDefault("content_dir", "src/content")
	v.SetDefault("database_path", "")
	v.SetDefault("cache_ttl", "5m")
	v.SetDefault("watch_content", false)
	v.SetDefault("feed_rate_limit", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("metrics_enabled", true)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("tilsite")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("TILSITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return SiteConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg SiteConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithSource serves records from src instead of opening the configured
// content directory or database. The App does not close src.
func WithSource(src content.Getter) Option {
	return func(a *App) {
		a.source = src
	}
}

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}
