package handler

import (
	"log/slog"
	"net/http"

	deliverycontext "jobtrack/internal/delivery/context"
	"jobtrack/internal/delivery/http/response"
	"jobtrack/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// SyncHandler exposes an on-demand reconciliation pass in addition to the
// scheduled one.
type SyncHandler struct {
	uc     usecase.SyncUsecase
	logger *slog.Logger
}

// NewSyncHandler is the constructor for SyncHandler, injected by Fx.
func NewSyncHandler(uc usecase.SyncUsecase, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{
		uc:     uc,
		logger: logger,
	}
}

type syncSummaryResponse struct {
	Synced  int `json:"synced"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// Reconcile runs a reconciliation pass for the authenticated user.
func (h *SyncHandler) Reconcile(c echo.Context) error {
	userID, ok := deliverycontext.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "TOKEN_INVALID", "Not authenticated")
	}

	summary, err := h.uc.Reconcile(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, syncSummaryResponse{
		Synced:  summary.Synced,
		Updated: summary.Updated,
		Skipped: summary.Skipped,
	}, "Reconciliation finished")
}

// HealthCheck reports liveness.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
