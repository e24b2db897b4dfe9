package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/markusressel/epfa/internal/persistence"
	"github.com/markusressel/epfa/internal/statistics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	indentationChar = "  "

	HeaderChanges      = "X-Epfa-Changes"
	HeaderLayers       = "X-Epfa-Layers"
	HeaderOverrideOpen = "X-Epfa-Override-Open"
	HeaderInjected     = "X-Epfa-Injected"

	ContentTypeGcode = "text/x-gcode; charset=utf-8"
)

type (
	Result struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	}
)

// Defaults are used for all adjustment parameters that are not given in the request
type Defaults struct {
	SpeedPercent float64
	StartLayer   int
	Tag          string
}

type ServiceOptions struct {
	Defaults    Defaults
	MaxBodySize string
	Statistics  *statistics.AdjustStatistics
	// History is optional
	History persistence.Persistence
}

type service struct {
	defaults   Defaults
	statistics *statistics.AdjustStatistics
	history    persistence.Persistence
}

func CreateRestService(opts ServiceOptions) *echo.Echo {
	s := &service{
		defaults:   opts.Defaults,
		statistics: opts.Statistics,
		history:    opts.History,
	}
	if s.statistics == nil {
		s.statistics = statistics.NewAdjustStatistics()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		statistics.NewAdjustCollector(s.statistics),
	)

	echoRest := echo.New()
	echoRest.HideBanner = true
	echoRest.HidePort = true

	// Root level middleware
	echoRest.Pre(middleware.AddTrailingSlash())

	echoRest.Use(middleware.Secure())
	echoRest.Use(middleware.Recover())
	echoRest.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "epfa_http",
		Registerer: registry,
	}))
	if len(opts.MaxBodySize) > 0 {
		echoRest.Use(middleware.BodyLimit(opts.MaxBodySize))
	}

	echoRest.GET("/alive/", isAlive)
	echoRest.GET("/metrics/", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: registry,
	}))

	s.registerAdjustEndpoints(echoRest)
	s.registerHistoryEndpoints(echoRest)

	return echoRest
}

// returns an empty "ok" answer
func isAlive(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// return a "not found" message
func returnNotFound(c echo.Context, message string) (err error) {
	return c.JSONPretty(http.StatusNotFound, &Result{
		Name:    "Not found",
		Message: message,
	}, indentationChar)
}

func returnBadRequest(c echo.Context, e error) (err error) {
	return c.JSONPretty(http.StatusBadRequest, &Result{
		Name:    "Bad Request",
		Message: e.Error(),
	}, indentationChar)
}

// return the error message of an error
func returnError(c echo.Context, e error) (err error) {
	return c.JSONPretty(http.StatusInternalServerError, &Result{
		Name:    "Unknown Error",
		Message: e.Error(),
	}, indentationChar)
}
