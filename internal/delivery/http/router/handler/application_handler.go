package handler

import (
	"log/slog"
	"net/http"
	"time"

	deliverycontext "jobtrack/internal/delivery/context"
	"jobtrack/internal/delivery/http/response"
	"jobtrack/internal/domain/entity"
	"jobtrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ApplicationHandler holds dependencies for the application record handlers.
type ApplicationHandler struct {
	uc     usecase.ApplicationUsecase
	logger *slog.Logger
}

// NewApplicationHandler is the constructor for ApplicationHandler, injected by Fx.
func NewApplicationHandler(uc usecase.ApplicationUsecase, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		uc:     uc,
		logger: logger,
	}
}

type submitApplicationRequest struct {
	BoardVacancyID     string `json:"board_vacancy_id" validate:"required"`
	BoardApplicationID string `json:"board_application_id" validate:"required"`
}

type applicationResponse struct {
	ID                 string     `json:"id"`
	BoardVacancyID     string     `json:"board_vacancy_id"`
	BoardApplicationID string     `json:"board_application_id"`
	Status             string     `json:"status"`
	StatusChangedAt    time.Time  `json:"status_changed_at"`
	RejectedAt         *time.Time `json:"rejected_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

func toApplicationResponse(app *entity.Application) *applicationResponse {
	if app == nil {
		return nil
	}

	return &applicationResponse{
		ID:                 app.ID.String(),
		BoardVacancyID:     app.BoardVacancyID,
		BoardApplicationID: app.BoardApplicationID,
		Status:             app.Status.String(),
		StatusChangedAt:    app.StatusChangedAt,
		RejectedAt:         app.RejectedAt,
		CreatedAt:          app.CreatedAt,
	}
}

// Submit records a new application.
func (h *ApplicationHandler) Submit(c echo.Context) error {
	userID, ok := deliverycontext.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "TOKEN_INVALID", "Not authenticated")
	}

	var req submitApplicationRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid application input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	app, err := h.uc.Submit(c.Request().Context(), usecase.SubmitApplicationInput{
		UserID:             userID,
		BoardVacancyID:     req.BoardVacancyID,
		BoardApplicationID: req.BoardApplicationID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toApplicationResponse(app), "Application submitted")
}

// List returns the authenticated user's applications.
func (h *ApplicationHandler) List(c echo.Context) error {
	userID, ok := deliverycontext.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "TOKEN_INVALID", "Not authenticated")
	}

	apps, err := h.uc.List(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	items := make([]*applicationResponse, 0, len(apps))
	for _, app := range apps {
		items = append(items, toApplicationResponse(app))
	}

	return response.Success(c, http.StatusOK, items, "Applications listed")
}

// MarkRejected records an employer rejection on an application.
func (h *ApplicationHandler) MarkRejected(c echo.Context) error {
	userID, ok := deliverycontext.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "TOKEN_INVALID", "Not authenticated")
	}

	applicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid application id")
	}

	app, err := h.uc.MarkRejected(c.Request().Context(), userID, applicationID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toApplicationResponse(app), "Application marked rejected")
}

// Archive soft-deletes an application record.
func (h *ApplicationHandler) Archive(c echo.Context) error {
	userID, ok := deliverycontext.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "TOKEN_INVALID", "Not authenticated")
	}

	applicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid application id")
	}

	if err := h.uc.Archive(c.Request().Context(), userID, applicationID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Application archived")
}
