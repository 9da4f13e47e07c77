package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"service-center/internal/status"
	"service-center/services"
)

type SessionHandler struct {
	app   *pocketbase.PocketBase
	auth  *services.AuthService
	store *services.Store
}

func NewSessionHandler(app *pocketbase.PocketBase, auth *services.AuthService, store *services.Store) *SessionHandler {
	return &SessionHandler{
		app:   app,
		auth:  auth,
		store: store,
	}
}

func (h *SessionHandler) Login(e *core.RequestEvent) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	user, err := h.auth.Login(e.Request.Context(), req.Code)
	if err != nil {
		if errors.Is(err, status.ErrInvalidCode) {
			return apis.NewBadRequestError("Code not recognized", err)
		}
		return apis.NewBadRequestError("Login failed", err)
	}

	return e.JSON(http.StatusOK, user)
}

func (h *SessionHandler) Logout(e *core.RequestEvent) error {
	if err := h.auth.Logout(e.Request.Context()); err != nil {
		return apis.NewBadRequestError("Logout failed", err)
	}
	return e.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *SessionHandler) Current(e *core.RequestEvent) error {
	user := h.store.CurrentUser()
	if user == nil {
		return apis.NewNotFoundError("No active session", status.ErrNoSession)
	}
	return e.JSON(http.StatusOK, user)
}
