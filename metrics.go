package tilsite

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// siteMetrics owns a private registry so several Apps can coexist in one
// process (tests, custom embedding).
type siteMetrics struct {
	registry *prometheus.Registry
	builds   *prometheus.CounterVec
	http     echo.MiddlewareFunc
}

func newSiteMetrics() (*siteMetrics, error) {
	reg := prometheus.NewRegistry()
	builds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tilsite",
		Name:      "document_builds_total",
		Help:      "Feed and sitemap builds by document and result.",
	}, []string{"document", "result"})
	if err := reg.Register(builds); err != nil {
		return nil, err
	}
	mw, err := echoprometheus.MiddlewareConfig{
		Namespace:  "tilsite",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}.ToMiddleware()
	if err != nil {
		return nil, err
	}
	return &siteMetrics{registry: reg, builds: builds, http: mw}, nil
}

// observeBuild counts one document build. It is a no-op when metrics are off.
func (m *siteMetrics) observeBuild(document string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.builds.WithLabelValues(document, result).Inc()
}

func (m *siteMetrics) handler() echo.HandlerFunc {
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: m.registry})
}
