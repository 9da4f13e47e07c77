package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"service-center/models"
	"service-center/services"
)

type FeedbackHandler struct {
	app   *pocketbase.PocketBase
	store *services.Store
}

func NewFeedbackHandler(app *pocketbase.PocketBase, store *services.Store) *FeedbackHandler {
	return &FeedbackHandler{
		app:   app,
		store: store,
	}
}

// Create records feedback for a completed ticket.
func (h *FeedbackHandler) Create(e *core.RequestEvent) error {
	var fb models.Feedback
	if err := e.BindBody(&fb); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if err := fb.Validate(); err != nil {
		return apis.NewBadRequestError(err.Error(), nil)
	}

	ticket, err := h.store.FindTicket(fb.TicketID)
	if err != nil {
		return apis.NewBadRequestError("Unknown ticket", err)
	}
	if ticket.Status != models.TicketStatusCompleted {
		return apis.NewBadRequestError("Feedback requires a completed ticket", nil)
	}

	stored, err := h.store.AddFeedback(e.Request.Context(), fb)
	if err != nil {
		return apis.NewBadRequestError("Failed to record feedback", err)
	}

	return e.JSON(http.StatusOK, stored)
}

func (h *FeedbackHandler) List(e *core.RequestEvent) error {
	return e.JSON(http.StatusOK, h.store.ListFeedback())
}
