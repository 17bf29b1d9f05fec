package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"marketplace/docs"
	"marketplace/internal/core/ports"
	"marketplace/internal/generated/servers"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

const BasePath = "/api/v1"

// RequestObserver counts served requests.
type RequestObserver interface {
	ObserveHTTPRequest(handler, method string, status int)
}

// RouterOptions configures NewRouter. Only Logger is expected in production;
// the zero value serves the API without metrics or replays.
type RouterOptions struct {
	Logger *slog.Logger

	// Metrics and MetricsHandler are optional; /metrics is only mounted with a handler.
	Metrics        RequestObserver
	MetricsHandler http.Handler

	// Idempotency enables Idempotency-Key replays on POST routes.
	Idempotency    ports.IdempotencyStore
	IdempotencyTTL time.Duration

	BodyLimit string
}

// NewRouter mounts the API under BasePath together with the health, metrics
// and documentation endpoints.
func NewRouter(server servers.ServerInterface, opts RouterOptions) (*echo.Echo, error) {
	if server == nil {
		return nil, errors.New("server is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BodyLimit == "" {
		opts.BodyLimit = "1M"
	}

	doc, err := servers.GetSwagger()
	if err != nil {
		return nil, err
	}
	validator, err := RequestValidator(doc, BasePath)
	if err != nil {
		return nil, err
	}
	if err := docs.Register(); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	if opts.Metrics != nil {
		e.Use(requestMetrics(opts.Metrics))
	}
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(opts.BodyLimit))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	if opts.MetricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(opts.MetricsHandler))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group(BasePath, validator, Idempotency(opts.Idempotency, opts.IdempotencyTTL, logger))
	api.GET("/openapi.json", func(c echo.Context) error {
		return c.JSON(http.StatusOK, doc)
	})
	servers.RegisterHandlers(api, server)

	return e, nil
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	logger = logger.With("component", "http")
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if v.RequestID != "" {
				attrs = append(attrs, slog.String("request_id", v.RequestID))
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}

func requestMetrics(observer RequestObserver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			handler := c.Path()
			if handler == "" {
				handler = "unmatched"
			}
			observer.ObserveHTTPRequest(handler, c.Request().Method, c.Response().Status)
			return err
		}
	}
}
