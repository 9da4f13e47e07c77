package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Webhook actions understood by the external automation endpoint.
const (
	ActionNewTicket    = "NEW_TICKET"
	ActionJobCompleted = "JOB_COMPLETED"
	ActionAttendance   = "ATTENDANCE"
	ActionUrgentAlert  = "URGENT_ALERT"
	ActionHeartbeat    = "HEARTBEAT"
	ActionHealthCheck  = "HEALTH_CHECK"
)

// WebhookPayload is implemented by every outbound payload type.
type WebhookPayload interface {
	WebhookAction() string
}

// The JSON keys below are the external spreadsheet's column headers and must
// match them verbatim, including spacing and capitalization.

type NewTicketPayload struct {
	Action             string `json:"action"`
	TicketID           string `json:"Ticket ID"`
	CreatedAt          string `json:"Created At"`
	CustomerName       string `json:"Customer Name"`
	Phone              string `json:"Phone"`
	Address            string `json:"Address"`
	ServiceCategory    string `json:"Service Category"`
	Complaint          string `json:"Complaint"`
	AssignedTechnician string `json:"Assigned Technician"`
	Status             string `json:"Status"`
}

func (NewTicketPayload) WebhookAction() string { return ActionNewTicket }

type JobCompletedPayload struct {
	Action          string          `json:"action"`
	TicketID        string          `json:"Ticket ID"`
	CompletedAt     string          `json:"Completed At"`
	TechnicianName  string          `json:"Technician Name"`
	WorkDoneSummary string          `json:"Work Done Summary"`
	AmountCollected decimal.Decimal `json:"Amount Collected"`
	PaymentStatus   string          `json:"Payment Status"`
	PointsAwarded   int             `json:"Points Awarded"`
	PartsReplaced   string          `json:"Parts Replaced"`
	AMCDiscussion   string          `json:"AMC Discussion"`
	FreeService     string          `json:"Free Service"`
}

func (JobCompletedPayload) WebhookAction() string { return ActionJobCompleted }

type AttendancePayload struct {
	Action         string `json:"action"`
	TechnicianID   string `json:"Technician ID"`
	TechnicianName string `json:"Technician Name"`
	Date           string `json:"Date"`
	Time           string `json:"Time"`
	Type           string `json:"Type"`
}

func (AttendancePayload) WebhookAction() string { return ActionAttendance }

type UrgentAlertPayload struct {
	Action             string `json:"action"`
	TicketID           string `json:"Ticket ID"`
	CustomerName       string `json:"Customer Name"`
	Phone              string `json:"Phone"`
	Address            string `json:"Address"`
	AssignedTechnician string `json:"Assigned Technician"`
	EscalationNotes    string `json:"Escalation Notes"`
}

func (UrgentAlertPayload) WebhookAction() string { return ActionUrgentAlert }

type PingPayload struct {
	Action    string `json:"action"`
	Timestamp string `json:"Timestamp"`
	Client    string `json:"Client"`
}

func (p PingPayload) WebhookAction() string { return p.Action }

// BuildNewTicketPayload shapes a just-created ticket into the NEW_TICKET row.
func BuildNewTicketPayload(t *Ticket, technicianName string) NewTicketPayload {
	return NewTicketPayload{
		Action:             ActionNewTicket,
		TicketID:           t.ID,
		CreatedAt:          t.CreatedAt.Format(time.RFC3339),
		CustomerName:       t.CustomerName,
		Phone:              t.Phone,
		Address:            t.Address,
		ServiceCategory:    t.ServiceCategory,
		Complaint:          t.Complaint,
		AssignedTechnician: technicianName,
		Status:             string(t.Status),
	}
}

// BuildJobCompletedPayload shapes a completed ticket into the JOB_COMPLETED
// row. Parts are comma-joined; the two discussion flags are rendered Yes/No.
func BuildJobCompletedPayload(t *Ticket, technicianName string) JobCompletedPayload {
	completedAt := ""
	if t.CompletedAt != nil {
		completedAt = t.CompletedAt.Format(time.RFC3339)
	}
	return JobCompletedPayload{
		Action:          ActionJobCompleted,
		TicketID:        t.ID,
		CompletedAt:     completedAt,
		TechnicianName:  technicianName,
		WorkDoneSummary: t.WorkSummary,
		AmountCollected: t.AmountCollected,
		PaymentStatus:   string(t.PaymentStatus),
		PointsAwarded:   t.PointsAwarded,
		PartsReplaced:   strings.Join(t.PartsReplaced, ", "),
		AMCDiscussion:   yesNo(t.AMCDiscussed),
		FreeService:     yesNo(t.FreeService),
	}
}

func BuildAttendancePayload(tech *Technician, kind AttendanceKind, at time.Time) AttendancePayload {
	return AttendancePayload{
		Action:         ActionAttendance,
		TechnicianID:   tech.ID,
		TechnicianName: tech.Name,
		Date:           at.Format("2006-01-02"),
		Time:           at.Format("15:04:05"),
		Type:           string(kind),
	}
}

func BuildUrgentAlertPayload(t *Ticket, technicianName string) UrgentAlertPayload {
	return UrgentAlertPayload{
		Action:             ActionUrgentAlert,
		TicketID:           t.ID,
		CustomerName:       t.CustomerName,
		Phone:              t.Phone,
		Address:            t.Address,
		AssignedTechnician: technicianName,
		EscalationNotes:    t.EscalationNotes,
	}
}

func BuildPingPayload(action, client string, at time.Time) PingPayload {
	return PingPayload{
		Action:    action,
		Timestamp: at.Format(time.RFC3339),
		Client:    client,
	}
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
