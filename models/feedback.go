package models

import (
	"time"
)

type Feedback struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	Rating    int       `json:"rating"` // 1-5
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (f Feedback) Validate() error {
	if f.TicketID == "" {
		return ValidationError("ticket_id is required")
	}
	if f.Rating < 1 || f.Rating > 5 {
		return ValidationError("rating must be between 1 and 5")
	}
	return nil
}
