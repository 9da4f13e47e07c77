package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"service-center/services"
)

// SheetHandler serves rows read back from the external sheets, so the
// dashboard can fetch historical data from the backend directly instead of
// going through the proxy surface.
type SheetHandler struct {
	app      *pocketbase.PocketBase
	settings *services.SettingsService
	notifier *services.Notifier
}

func NewSheetHandler(app *pocketbase.PocketBase, settings *services.SettingsService, notifier *services.Notifier) *SheetHandler {
	return &SheetHandler{
		app:      app,
		settings: settings,
		notifier: notifier,
	}
}

func (h *SheetHandler) Rows(e *core.RequestEvent) error {
	action := e.Request.PathValue("action")
	ctx := e.Request.Context()

	url, ok := h.settings.EndpointForAction(ctx, action)
	if !ok {
		return apis.NewNotFoundError("Unknown read action", nil)
	}

	rows, err := h.notifier.ReadRows(ctx, url)
	if err != nil {
		return apis.NewApiError(http.StatusBadGateway, "Failed to read sheet rows", err)
	}

	return e.JSON(http.StatusOK, rows)
}
