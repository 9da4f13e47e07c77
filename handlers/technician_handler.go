package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"service-center/internal/status"
	"service-center/models"
	"service-center/services"
)

type TechnicianHandler struct {
	app   *pocketbase.PocketBase
	store *services.Store
}

func NewTechnicianHandler(app *pocketbase.PocketBase, store *services.Store) *TechnicianHandler {
	return &TechnicianHandler{
		app:   app,
		store: store,
	}
}

// Create registers a technician. PIN uniqueness is checked here, at the
// caller boundary, not inside the store.
func (h *TechnicianHandler) Create(e *core.RequestEvent) error {
	var req struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
		PIN   string `json:"pin"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Name == "" {
		return apis.NewBadRequestError("name is required", nil)
	}

	if req.PIN != "" && h.store.PINInUse(req.PIN) {
		return apis.NewBadRequestError("PIN already in use", status.ErrDuplicatePIN)
	}

	tech, err := h.store.AddTechnician(e.Request.Context(), req.Name, req.Phone, req.PIN)
	if err != nil {
		return apis.NewBadRequestError("Failed to add technician", err)
	}

	h.persistTechnician(tech)

	return e.JSON(http.StatusOK, tech)
}

func (h *TechnicianHandler) List(e *core.RequestEvent) error {
	return e.JSON(http.StatusOK, h.store.ListTechnicians())
}

func (h *TechnicianHandler) Update(e *core.RequestEvent) error {
	var tech models.Technician
	if err := e.BindBody(&tech); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	tech.ID = e.Request.PathValue("id")

	// Keep the stored hash; PIN changes go through their own flow.
	if existing, err := h.store.FindTechnician(tech.ID); err == nil {
		tech.PINHash = existing.PINHash
		tech.Points = existing.Points
	}

	if err := h.store.UpdateTechnician(e.Request.Context(), &tech); err != nil {
		if errors.Is(err, status.ErrTechnicianNotFound) {
			return apis.NewNotFoundError("Technician not found", err)
		}
		return apis.NewBadRequestError("Failed to update technician", err)
	}

	h.persistTechnician(&tech)

	return e.JSON(http.StatusOK, &tech)
}

// Delete removes the technician. Assigned tickets keep their dangling
// reference; nothing cascades.
func (h *TechnicianHandler) Delete(e *core.RequestEvent) error {
	id := e.Request.PathValue("id")

	if err := h.store.DeleteTechnician(e.Request.Context(), id); err != nil {
		if errors.Is(err, status.ErrTechnicianNotFound) {
			return apis.NewNotFoundError("Technician not found", err)
		}
		return apis.NewBadRequestError("Failed to delete technician", err)
	}

	if record, err := h.app.FindFirstRecordByData("technicians", "tech_id", id); err == nil {
		if err := h.app.Delete(record); err != nil {
			slog.Error("failed to delete technician record", "tech_id", id, "error", err)
		}
	}

	return e.JSON(http.StatusOK, map[string]string{"message": "Technician removed"})
}

func (h *TechnicianHandler) Attendance(e *core.RequestEvent) error {
	var req struct {
		TechnicianID string `json:"technician_id"`
		Kind         string `json:"kind"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	kind := models.AttendanceKind(req.Kind)
	if kind != models.AttendanceCheckIn && kind != models.AttendanceCheckOut {
		kind = models.AttendanceCheckIn
	}

	if err := h.store.MarkAttendance(e.Request.Context(), req.TechnicianID, kind); err != nil {
		if errors.Is(err, status.ErrTechnicianNotFound) {
			return apis.NewNotFoundError("Technician not found", err)
		}
		return apis.NewBadRequestError("Failed to mark attendance", err)
	}

	return e.JSON(http.StatusOK, map[string]string{"message": "Attendance recorded"})
}

func (h *TechnicianHandler) ResetPoints(e *core.RequestEvent) error {
	id := e.Request.PathValue("id")

	if err := h.store.ResetPoints(e.Request.Context(), id); err != nil {
		if errors.Is(err, status.ErrTechnicianNotFound) {
			return apis.NewNotFoundError("Technician not found", err)
		}
		return apis.NewBadRequestError("Failed to reset points", err)
	}

	return e.JSON(http.StatusOK, map[string]string{"message": "Points reset"})
}

// persistTechnician mirrors the technician into the database collection so
// the roster survives a restart. Mirror failures are logged, never surfaced:
// the in-memory store already holds the authoritative copy for this session.
func (h *TechnicianHandler) persistTechnician(tech *models.Technician) {
	collection, err := h.app.FindCollectionByNameOrId("technicians")
	if err != nil {
		slog.Error("technicians collection missing", "error", err)
		return
	}

	record, err := h.app.FindFirstRecordByData("technicians", "tech_id", tech.ID)
	if err != nil {
		record = core.NewRecord(collection)
	}

	record.Set("tech_id", tech.ID)
	record.Set("name", tech.Name)
	record.Set("phone", tech.Phone)
	record.Set("pin_hash", tech.PINHash)
	record.Set("points", tech.Points)

	if err := h.app.Save(record); err != nil {
		slog.Error("failed to persist technician record", "tech_id", tech.ID, "error", err)
	}
}
