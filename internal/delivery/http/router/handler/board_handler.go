package handler

import (
	"log/slog"
	"net/http"
	"time"

	deliverycontext "jobtrack/internal/delivery/context"
	"jobtrack/internal/delivery/http/response"
	"jobtrack/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// BoardHandler holds dependencies for the board connection handlers.
type BoardHandler struct {
	uc     usecase.BoardUsecase
	logger *slog.Logger
}

// NewBoardHandler is the constructor for BoardHandler, injected by Fx.
func NewBoardHandler(uc usecase.BoardUsecase, logger *slog.Logger) *BoardHandler {
	return &BoardHandler{
		uc:     uc,
		logger: logger,
	}
}

type connectResponse struct {
	AuthorizationURL string `json:"authorization_url"`
}

type boardStatusResponse struct {
	Connected bool       `json:"connected"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Connect starts the board authorization flow for the authenticated user.
func (h *BoardHandler) Connect(c echo.Context) error {
	userID, ok := deliverycontext.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "TOKEN_INVALID", "Not authenticated")
	}

	url, err := h.uc.ConnectURL(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, connectResponse{AuthorizationURL: url}, "Authorization URL generated")
}

// Callback completes the board authorization flow. It is reached by browser
// redirect from the board, so the user is identified by the state value, not
// by a session token.
func (h *BoardHandler) Callback(c echo.Context) error {
	state := c.QueryParam("state")
	code := c.QueryParam("code")
	if state == "" || code == "" {
		return response.BindingError(c, "INVALID_INPUT", "Missing state or code parameter")
	}

	if err := h.uc.HandleCallback(c.Request().Context(), state, code); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Board account connected")
}

// Disconnect removes the stored board credential.
func (h *BoardHandler) Disconnect(c echo.Context) error {
	userID, ok := deliverycontext.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "TOKEN_INVALID", "Not authenticated")
	}

	if err := h.uc.Disconnect(c.Request().Context(), userID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Board account disconnected")
}

// Status reports the board connection state.
func (h *BoardHandler) Status(c echo.Context) error {
	userID, ok := deliverycontext.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "TOKEN_INVALID", "Not authenticated")
	}

	status, err := h.uc.Status(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, boardStatusResponse{
		Connected: status.Connected,
		ExpiresAt: status.ExpiresAt,
	}, "Board connection status")
}
