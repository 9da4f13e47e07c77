package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "New"
	TicketStatusInProgress TicketStatus = "InProgress"
	TicketStatusCompleted  TicketStatus = "Completed"
	TicketStatusCancelled  TicketStatus = "Cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusUnpaid  PaymentStatus = "Unpaid"
)

type Ticket struct {
	ID              string       `json:"id"`
	CustomerName    string       `json:"customer_name"`
	Phone           string       `json:"phone"`
	Address         string       `json:"address"`
	Complaint       string       `json:"complaint"`
	ServiceCategory string       `json:"service_category"`
	TechnicianID    string       `json:"technician_id"`
	Status          TicketStatus `json:"status"`

	CreatedAt          time.Time  `json:"created_at"`
	ServiceBookingDate time.Time  `json:"service_booking_date"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`

	// Payment fields, set on completion.
	AmountCollected decimal.Decimal `json:"amount_collected"`
	PaymentStatus   PaymentStatus   `json:"payment_status,omitempty"`

	// Structured extras.
	WorkSummary     string          `json:"work_summary,omitempty"`
	PartsReplaced   []string        `json:"parts_replaced,omitempty"`
	Checklist       map[string]bool `json:"checklist,omitempty"`
	AMCDiscussed    bool            `json:"amc_discussed"`
	FreeService     bool            `json:"free_service"`
	Escalated       bool            `json:"escalated"`
	EscalationNotes string          `json:"escalation_notes,omitempty"`
	AdminNotes      string          `json:"admin_notes,omitempty"`
	PointsAwarded   int             `json:"points_awarded"`
	Photos          []string        `json:"photos,omitempty"`
}

// TicketDraft is the caller-validated input for ticket creation. The store
// trusts it as-is; required-field checks live at the request boundary.
type TicketDraft struct {
	CustomerName    string `json:"customer_name"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	Complaint       string `json:"complaint"`
	ServiceCategory string `json:"service_category"`
	TechnicianID    string `json:"technician_id"`
}

func (d TicketDraft) Validate() error {
	fields := map[string]string{
		"customer_name":    d.CustomerName,
		"phone":            d.Phone,
		"address":          d.Address,
		"complaint":        d.Complaint,
		"service_category": d.ServiceCategory,
		"technician_id":    d.TechnicianID,
	}
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return ValidationError(name + " is required")
		}
	}
	return nil
}

type ValidationError string

func (e ValidationError) Error() string { return string(e) }
