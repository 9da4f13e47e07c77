package handlers

import (
	"log/slog"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"service-center/services"
)

type SettingsHandler struct {
	app      *pocketbase.PocketBase
	settings *services.SettingsService
	sync     services.SyncTrigger
}

func NewSettingsHandler(app *pocketbase.PocketBase, settings *services.SettingsService, syncBus services.SyncTrigger) *SettingsHandler {
	return &SettingsHandler{
		app:      app,
		settings: settings,
		sync:     syncBus,
	}
}

func (h *SettingsHandler) Get(e *core.RequestEvent) error {
	return e.JSON(http.StatusOK, h.settings.Get(e.Request.Context()))
}

func (h *SettingsHandler) Update(e *core.RequestEvent) error {
	var req services.Settings
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	ctx := e.Request.Context()
	if err := h.settings.Update(ctx, req); err != nil {
		return apis.NewBadRequestError("Failed to persist settings", err)
	}

	h.mirrorSetting("webhook_url", req.WebhookURL)
	h.mirrorSetting("complaint_sheet_url", req.ComplaintSheetURL)
	h.mirrorSetting("attendance_sheet_url", req.AttendanceSheetURL)

	if h.sync != nil {
		if err := h.sync.Trigger(ctx, services.SyncSettings, nil); err != nil {
			slog.Debug("settings sync trigger failed", "error", err)
		}
	}

	return e.JSON(http.StatusOK, req)
}

// mirrorSetting upserts the value into the app_settings collection,
// best-effort.
func (h *SettingsHandler) mirrorSetting(key, value string) {
	collection, err := h.app.FindCollectionByNameOrId("app_settings")
	if err != nil {
		slog.Error("app_settings collection missing", "error", err)
		return
	}

	record, err := h.app.FindFirstRecordByData("app_settings", "key", key)
	if err != nil {
		record = core.NewRecord(collection)
	}

	record.Set("key", key)
	record.Set("value", value)

	if err := h.app.Save(record); err != nil {
		slog.Error("failed to mirror setting", "key", key, "error", err)
	}
}
