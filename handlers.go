package tilsite

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/tilsite/feed"
)

// BuildFeed renders the RSS document for both collections.
func (a *App) BuildFeed(ctx context.Context) ([]byte, error) {
	doc, err := a.Builder.Build(ctx, a.channel())
	a.metrics.observeBuild("rss", err)
	return doc, err
}

// SitemapContentType is served with /sitemap.xml.
const SitemapContentType = "application/xml; charset=utf-8"

// BuildSitemap renders sitemap.xml from the same items as the feed.
func (a *App) BuildSitemap(ctx context.Context) ([]byte, error) {
	doc, err := a.buildSitemap(ctx)
	a.metrics.observeBuild("sitemap", err)
	return doc, err
}

func (a *App) buildSitemap(ctx context.Context) ([]byte, error) {
	items, err := a.Builder.Items(ctx)
	if err != nil {
		return nil, err
	}
	return renderSitemap(a.Config.URL, items)
}

func (a *App) handleFeed(c echo.Context) error {
	doc, err := a.BuildFeed(c.Request().Context())
	if err != nil {
		return err
	}
	return RenderXML(c, feed.ContentType, doc)
}

func (a *App) handleSitemap(c echo.Context) error {
	doc, err := a.BuildSitemap(c.Request().Context())
	if err != nil {
		return err
	}
	return RenderXML(c, SitemapContentType, doc)
}

// RobotsTxt allows all crawlers and points them at the sitemap.
func (a *App) RobotsTxt() string {
	return fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %s/sitemap.xml\n", strings.TrimRight(a.Config.URL, "/"))
}

func (a *App) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, a.RobotsTxt())
}

func handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		c.Response().Header().Set("Cache-Control", "no-store")
		_ = c.String(code, http.StatusText(code))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
