package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cleared-dev/disburse/internal/logging"
	"github.com/cleared-dev/disburse/internal/service"
)

// Runner executes one disbursement batch.
type Runner interface {
	Run(ctx context.Context, ownerID string) service.Response
}

// DisbursementHandler triggers disbursement runs over HTTP
type DisbursementHandler struct {
	runner Runner
	log    logging.Logger
}

// NewDisbursementHandler creates a new DisbursementHandler
func NewDisbursementHandler(runner Runner, log logging.Logger) *DisbursementHandler {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &DisbursementHandler{runner: runner, log: log}
}

// RunRequest represents the run request body. An empty userId falls back to
// the configured owner.
type RunRequest struct {
	UserID string `json:"userId"`
}

// Run handles POST /api/v1/disbursements/run
func (h *DisbursementHandler) Run(c echo.Context) error {
	var req RunRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			h.log.WithError(err).Warn("Invalid run request")
			return c.JSON(http.StatusBadRequest, service.Response{
				StatusCode: http.StatusBadRequest,
				Message:    "Invalid request body",
				Error:      err.Error(),
			})
		}
	}

	resp := h.runner.Run(c.Request().Context(), req.UserID)
	return c.JSON(resp.StatusCode, resp)
}

// Health handles GET /healthz
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
