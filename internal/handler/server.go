// Package handler exposes disbursement runs over HTTP.
package handler

import (
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/cleared-dev/disburse/internal/logging"
)

// NewServer creates the Echo instance with middleware and routes registered.
func NewServer(h *DisbursementHandler, log logging.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echomiddleware.Recover())

	RegisterRoutes(e, h)
	return e
}

// RegisterRoutes registers all routes.
func RegisterRoutes(e *echo.Echo, h *DisbursementHandler) {
	e.GET("/healthz", Health)

	api := e.Group("/api/v1")
	api.POST("/disbursements/run", h.Run)
}

func requestLogger(log logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info("request",
				logging.F("method", req.Method),
				logging.F("path", req.URL.Path),
				logging.F("status", res.Status),
				logging.F(logging.FieldDuration, time.Since(start).Milliseconds()),
				logging.F("request_id", res.Header().Get(echo.HeaderXRequestID)),
			)

			return nil
		}
	}
}
