package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"service-center/internal/status"
	"service-center/models"
	"service-center/services"
)

type TicketHandler struct {
	app       *pocketbase.PocketBase
	store     *services.Store
	extractor services.DraftExtractor
}

func NewTicketHandler(app *pocketbase.PocketBase, store *services.Store, extractor services.DraftExtractor) *TicketHandler {
	return &TicketHandler{
		app:       app,
		store:     store,
		extractor: extractor,
	}
}

// Create validates the draft at the request boundary (the store itself does
// not validate) and adds the ticket.
func (h *TicketHandler) Create(e *core.RequestEvent) error {
	var draft models.TicketDraft
	if err := e.BindBody(&draft); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if err := draft.Validate(); err != nil {
		return apis.NewBadRequestError(err.Error(), nil)
	}

	if _, err := h.store.FindTechnician(draft.TechnicianID); err != nil {
		return apis.NewBadRequestError("Unknown technician", err)
	}

	ticket, err := h.store.AddTicket(e.Request.Context(), draft)
	if err != nil {
		return apis.NewBadRequestError("Failed to create ticket", err)
	}

	return e.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) List(e *core.RequestEvent) error {
	return e.JSON(http.StatusOK, h.store.ListTickets())
}

func (h *TicketHandler) Get(e *core.RequestEvent) error {
	ticket, err := h.store.FindTicket(e.Request.PathValue("id"))
	if err != nil {
		return apis.NewNotFoundError("Ticket not found", err)
	}
	return e.JSON(http.StatusOK, ticket)
}

// Update replaces the ticket wholesale, last write wins. A Completed status
// re-fires the completion push on every call.
func (h *TicketHandler) Update(e *core.RequestEvent) error {
	var ticket models.Ticket
	if err := e.BindBody(&ticket); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	ticket.ID = e.Request.PathValue("id")

	if err := h.store.UpdateTicket(e.Request.Context(), &ticket); err != nil {
		if errors.Is(err, status.ErrTicketNotFound) {
			return apis.NewNotFoundError("Ticket not found", err)
		}
		return apis.NewBadRequestError("Failed to update ticket", err)
	}

	return e.JSON(http.StatusOK, &ticket)
}

func (h *TicketHandler) Reopen(e *core.RequestEvent) error {
	var req struct {
		TechnicianID string `json:"technician_id"`
		Notes        string `json:"notes"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	// The store does not enforce the reassignment target; this boundary does.
	if _, err := h.store.FindTechnician(req.TechnicianID); err != nil {
		return apis.NewBadRequestError("Unknown technician", err)
	}

	err := h.store.ReopenTicket(e.Request.Context(), e.Request.PathValue("id"), req.TechnicianID, req.Notes)
	if err != nil {
		if errors.Is(err, status.ErrTicketNotFound) {
			return apis.NewNotFoundError("Ticket not found", err)
		}
		return apis.NewBadRequestError("Failed to reopen ticket", err)
	}

	return e.JSON(http.StatusOK, map[string]string{"message": "Ticket reopened"})
}

func (h *TicketHandler) Escalate(e *core.RequestEvent) error {
	var req struct {
		Notes string `json:"notes"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	err := h.store.EscalateTicket(e.Request.Context(), e.Request.PathValue("id"), req.Notes)
	if err != nil {
		if errors.Is(err, status.ErrTicketNotFound) {
			return apis.NewNotFoundError("Ticket not found", err)
		}
		return apis.NewBadRequestError("Failed to escalate ticket", err)
	}

	return e.JSON(http.StatusOK, map[string]string{"message": "Urgent alert sent"})
}

// Extract turns raw complaint text or an image into a best-effort partial
// draft via the configured external extractor.
func (h *TicketHandler) Extract(e *core.RequestEvent) error {
	if h.extractor == nil {
		return apis.NewApiError(http.StatusNotImplemented, "Draft extraction is not configured", status.ErrExtractorNotSet)
	}

	raw, err := io.ReadAll(e.Request.Body)
	if err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	contentType := e.Request.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}

	draft, err := h.extractor.ExtractDraft(e.Request.Context(), raw, contentType)
	if err != nil {
		return apis.NewBadRequestError("Extraction failed", err)
	}

	return e.JSON(http.StatusOK, draft)
}
