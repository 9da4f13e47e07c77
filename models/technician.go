package models

import (
	"time"
)

type Technician struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Phone    string     `json:"phone,omitempty"`
	PINHash  string     `json:"-"`
	Points   int        `json:"points"`
	LastSeen *time.Time `json:"last_seen,omitempty"`
}

// LoginCode is the 4-character suffix of the technician identifier that the
// session gate matches against.
func (t Technician) LoginCode() string {
	if len(t.ID) < 4 {
		return t.ID
	}
	return t.ID[len(t.ID)-4:]
}

type AttendanceKind string

const (
	AttendanceCheckIn  AttendanceKind = "check-in"
	AttendanceCheckOut AttendanceKind = "check-out"
)
