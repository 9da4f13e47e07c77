package status

import "errors"

var (
	ErrTicketNotFound     = errors.New("ticket: ticket not found")
	ErrTechnicianNotFound = errors.New("technician: technician not found")
	ErrInvalidCode        = errors.New("session: code not recognized")
	ErrNoSession          = errors.New("session: no active session")
	ErrDuplicatePIN       = errors.New("technician: pin already in use")
	ErrExtractorNotSet    = errors.New("extract: no draft extractor configured")
)
