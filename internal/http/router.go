package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pulsegate/signal-service/internal/config"
	issvc "github.com/pulsegate/signal-service/internal/service"
)

func Router(svc *issvc.Service, pool *pgxpool.Pool, cfg config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())
	e.Binder = StrictJSONBinder{}
	e.HTTPErrorHandler = DefaultHTTPErrorHandler

	// Swagger UI (enabled with ENABLE_SWAGGER=true)
	if cfg.EnableSwagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	v1 := e.Group("/api/v1")
	v1.GET("/healthz", Healthz)
	v1.GET("/readyz", Readyz(pool))

	v1.POST("/targets", EnrollTarget(svc))
	v1.GET("/targets/:id", GetTarget(svc))
	v1.POST("/targets/:id/deactivate", DeactivateTarget(svc))

	v1.POST("/sessions", StartSession(svc))
	v1.POST("/sessions/:id/readings", IngestReading(svc))
	v1.POST("/sessions/:id/close", CloseSession(svc))
	v1.GET("/sessions/:id/indicator", GetIndicator(svc))

	e.GET("/.well-known/signal-key", SignalKeys(svc))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}
