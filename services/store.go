package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"service-center/internal/status"
	"service-center/models"
	"service-center/monitoring"
	"service-center/utils"
)

// sessionKey is the fixed slot the current session user is persisted under.
const sessionKey = "service_center:session:user"

// ticketIDPrefix is the human-readable prefix on generated ticket ids.
const ticketIDPrefix = "SC"

// SyncTrigger is the store's view of the sync signal bus.
type SyncTrigger interface {
	Trigger(ctx context.Context, signalType SyncType, data map[string]any) error
}

// Store is the single source of truth for tickets, technicians, feedback
// and the current session user. The collections are session-scoped and held
// in memory; only the session user survives a restart, via redis. Mutations
// trust their callers: required-field validation happens at the request
// boundary, and beyond not-found lookups the store has no failure path.
// Mutating paths swap in fresh copies instead of editing structs in place,
// so pointers returned by the read paths are stable snapshots safe to
// encode concurrently.
type Store struct {
	Redis    *redis.Client
	notifier Sink
	sync     SyncTrigger
	monitor  *monitoring.Monitor

	// now is injectable for tests.
	now func() time.Time

	mu          sync.RWMutex
	tickets     []*models.Ticket // newest first
	technicians []*models.Technician
	feedback    []*models.Feedback
	currentUser *models.SessionUser
}

func NewStore(redisClient *redis.Client, notifier Sink, syncBus SyncTrigger, monitor *monitoring.Monitor) *Store {
	return &Store{
		Redis:    redisClient,
		notifier: notifier,
		sync:     syncBus,
		monitor:  monitor,
		now:      time.Now,
	}
}

// AddTicket creates a ticket from the caller-validated draft and prepends it
// to the list. The NEW_TICKET push is fire-and-forget; the add itself always
// succeeds regardless of network outcome.
func (s *Store) AddTicket(ctx context.Context, draft models.TicketDraft) (*models.Ticket, error) {
	id, err := utils.GenerateTicketID(ticketIDPrefix)
	if err != nil {
		return nil, fmt.Errorf("generate ticket id: %w", err)
	}

	now := s.now()
	ticket := &models.Ticket{
		ID:                 id,
		CustomerName:       draft.CustomerName,
		Phone:              draft.Phone,
		Address:            draft.Address,
		Complaint:          draft.Complaint,
		ServiceCategory:    draft.ServiceCategory,
		TechnicianID:       draft.TechnicianID,
		Status:             models.TicketStatusNew,
		CreatedAt:          now,
		ServiceBookingDate: now,
	}

	s.mu.Lock()
	s.tickets = append([]*models.Ticket{ticket}, s.tickets...)
	techName := s.technicianNameLocked(ticket.TechnicianID)
	s.mu.Unlock()

	s.monitor.TrackTicketCreated()
	s.trackStatusGauges()

	s.notifier.Dispatch(models.BuildNewTicketPayload(ticket, techName))
	s.triggerSync(ctx, SyncTickets)

	return ticket, nil
}

// UpdateTicket replaces the stored ticket wholesale, last write wins. When
// the updated status is Completed the completion push fires and points are
// awarded on every such call, not just the first: repeated edits to an
// already-completed ticket re-fire the webhook. That non-idempotence is the
// external contract, not an accident.
func (s *Store) UpdateTicket(ctx context.Context, ticket *models.Ticket) error {
	s.mu.Lock()
	idx := -1
	for i, t := range s.tickets {
		if t.ID == ticket.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return status.ErrTicketNotFound
	}

	completed := ticket.Status == models.TicketStatusCompleted
	if completed && ticket.CompletedAt == nil {
		now := s.now()
		ticket.CompletedAt = &now
	}

	s.tickets[idx] = ticket

	var techName string
	if completed {
		techName = s.technicianNameLocked(ticket.TechnicianID)
		// Replace rather than mutate; pointers handed out by the read
		// paths stay stable.
		for i, tech := range s.technicians {
			if tech.ID == ticket.TechnicianID {
				awarded := *tech
				awarded.Points += ticket.PointsAwarded
				s.technicians[i] = &awarded
				break
			}
		}
	}
	s.mu.Unlock()

	s.trackStatusGauges()

	if completed {
		s.notifier.Dispatch(models.BuildJobCompletedPayload(ticket, techName))
	}
	s.triggerSync(ctx, SyncTickets)

	return nil
}

// ReopenTicket resets a ticket to New under a new technician. It delegates
// to UpdateTicket, and because the status it writes is New the completion
// push can only fire again once the ticket is re-completed.
func (s *Store) ReopenTicket(ctx context.Context, ticketID, technicianID, notes string) error {
	s.mu.RLock()
	var reopened *models.Ticket
	for _, t := range s.tickets {
		if t.ID == ticketID {
			copied := *t
			reopened = &copied
			break
		}
	}
	s.mu.RUnlock()

	if reopened == nil {
		return status.ErrTicketNotFound
	}

	reopened.Status = models.TicketStatusNew
	reopened.TechnicianID = technicianID
	reopened.AdminNotes = notes
	reopened.CompletedAt = nil

	return s.UpdateTicket(ctx, reopened)
}

// EscalateTicket flags the ticket and pushes an URGENT_ALERT.
func (s *Store) EscalateTicket(ctx context.Context, ticketID, notes string) error {
	s.mu.Lock()
	var escalated *models.Ticket
	var techName string
	for i, t := range s.tickets {
		if t.ID == ticketID {
			flagged := *t
			flagged.Escalated = true
			flagged.EscalationNotes = notes
			s.tickets[i] = &flagged
			escalated = &flagged
			techName = s.technicianNameLocked(flagged.TechnicianID)
			break
		}
	}
	s.mu.Unlock()

	if escalated == nil {
		return status.ErrTicketNotFound
	}

	s.notifier.Dispatch(models.BuildUrgentAlertPayload(escalated, techName))
	s.triggerSync(ctx, SyncTickets)
	return nil
}

func (s *Store) ListTickets() []*models.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Ticket, len(s.tickets))
	copy(out, s.tickets)
	return out
}

func (s *Store) FindTicket(id string) (*models.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tickets {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, status.ErrTicketNotFound
}

// AddTechnician registers a technician with a generated identifier ending in
// four digits (the gate's login code). PIN uniqueness is the caller's check.
func (s *Store) AddTechnician(ctx context.Context, name, phone, pin string) (*models.Technician, error) {
	suffix, err := utils.GenerateDigits(4)
	if err != nil {
		return nil, fmt.Errorf("generate technician id: %w", err)
	}

	tech := &models.Technician{
		ID:    "TECH" + suffix,
		Name:  name,
		Phone: phone,
	}

	if pin != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash pin: %w", err)
		}
		tech.PINHash = string(hash)
	}

	s.mu.Lock()
	s.technicians = append(s.technicians, tech)
	s.mu.Unlock()

	s.triggerSync(ctx, SyncTechnicians)
	return tech, nil
}

// LoadTechnician installs an already-persisted technician, used when
// bootstrapping the roster from the database at startup.
func (s *Store) LoadTechnician(tech *models.Technician) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.technicians = append(s.technicians, tech)
}

func (s *Store) UpdateTechnician(ctx context.Context, tech *models.Technician) error {
	s.mu.Lock()
	idx := -1
	for i, t := range s.technicians {
		if t.ID == tech.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return status.ErrTechnicianNotFound
	}
	s.technicians[idx] = tech
	s.mu.Unlock()

	s.triggerSync(ctx, SyncTechnicians)
	return nil
}

// DeleteTechnician removes the technician. Tickets keep their assignment
// string; the reference is weak and never cascades.
func (s *Store) DeleteTechnician(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := -1
	for i, t := range s.technicians {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return status.ErrTechnicianNotFound
	}
	s.technicians = append(s.technicians[:idx], s.technicians[idx+1:]...)
	s.mu.Unlock()

	s.triggerSync(ctx, SyncTechnicians)
	return nil
}

func (s *Store) ListTechnicians() []*models.Technician {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Technician, len(s.technicians))
	copy(out, s.technicians)
	return out
}

func (s *Store) FindTechnician(id string) (*models.Technician, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.technicians {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, status.ErrTechnicianNotFound
}

// FindTechnicianByCode matches the entered code against the last four
// characters of each technician id, first match in list order wins.
func (s *Store) FindTechnicianByCode(code string) (*models.Technician, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.technicians {
		if t.LoginCode() == code {
			return t, nil
		}
	}
	return nil, status.ErrTechnicianNotFound
}

// PINInUse reports whether any technician already carries the given PIN.
// Called from the request boundary before AddTechnician; the store itself
// never enforces it.
func (s *Store) PINInUse(pin string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.technicians {
		if t.PINHash != "" && bcrypt.CompareHashAndPassword([]byte(t.PINHash), []byte(pin)) == nil {
			return true
		}
	}
	return false
}

// MarkAttendance stamps the technician's last-seen time and pushes an
// ATTENDANCE row.
func (s *Store) MarkAttendance(ctx context.Context, technicianID string, kind models.AttendanceKind) error {
	now := s.now()

	s.mu.Lock()
	var tech *models.Technician
	for i, t := range s.technicians {
		if t.ID == technicianID {
			seen := *t
			seen.LastSeen = &now
			s.technicians[i] = &seen
			tech = &seen
			break
		}
	}
	s.mu.Unlock()

	if tech == nil {
		return status.ErrTechnicianNotFound
	}

	s.notifier.Dispatch(models.BuildAttendancePayload(tech, kind, now))
	s.triggerSync(ctx, SyncTechnicians)
	return nil
}

// ResetPoints zeroes a technician's reward points. Points only ever grow on
// completion or reset to zero here; they never go negative.
func (s *Store) ResetPoints(ctx context.Context, technicianID string) error {
	s.mu.Lock()
	found := false
	for i, t := range s.technicians {
		if t.ID == technicianID {
			reset := *t
			reset.Points = 0
			s.technicians[i] = &reset
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return status.ErrTechnicianNotFound
	}

	s.triggerSync(ctx, SyncTechnicians)
	return nil
}

func (s *Store) AddFeedback(ctx context.Context, fb models.Feedback) (*models.Feedback, error) {
	code, err := utils.GenerateCode(4)
	if err != nil {
		return nil, fmt.Errorf("generate feedback id: %w", err)
	}
	fb.ID = "FB" + code
	fb.CreatedAt = s.now()

	stored := fb
	s.mu.Lock()
	s.feedback = append([]*models.Feedback{&stored}, s.feedback...)
	s.mu.Unlock()

	s.triggerSync(ctx, SyncFeedback)
	return &stored, nil
}

func (s *Store) ListFeedback() []*models.Feedback {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Feedback, len(s.feedback))
	copy(out, s.feedback)
	return out
}

// Login installs the session user and persists it under the fixed slot.
func (s *Store) Login(ctx context.Context, user *models.SessionUser) error {
	s.mu.Lock()
	s.currentUser = user
	s.mu.Unlock()

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal session user: %w", err)
	}
	if err := s.Redis.Set(ctx, sessionKey, string(raw), 0).Err(); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.currentUser = nil
	s.mu.Unlock()

	if err := s.Redis.Del(ctx, sessionKey).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Store) CurrentUser() *models.SessionUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentUser
}

// RestoreSession reloads a persisted session user after a restart.
func (s *Store) RestoreSession(ctx context.Context) error {
	raw, err := s.Redis.Get(ctx, sessionKey).Result()
	if err == redis.Nil {
		return nil
	} else if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	var user models.SessionUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return fmt.Errorf("decode session user: %w", err)
	}

	s.mu.Lock()
	s.currentUser = &user
	s.mu.Unlock()
	return nil
}

func (s *Store) technicianNameLocked(id string) string {
	for _, t := range s.technicians {
		if t.ID == id {
			return t.Name
		}
	}
	// Weak reference: fall back to the raw id when the technician is gone.
	return id
}

func (s *Store) triggerSync(ctx context.Context, signalType SyncType) {
	if s.sync == nil {
		return
	}
	if err := s.sync.Trigger(ctx, signalType, nil); err != nil {
		slog.Debug("sync trigger failed", "type", signalType, "error", err)
	}
}

func (s *Store) trackStatusGauges() {
	s.mu.RLock()
	counts := map[models.TicketStatus]int{
		models.TicketStatusNew:        0,
		models.TicketStatusInProgress: 0,
		models.TicketStatusCompleted:  0,
		models.TicketStatusCancelled:  0,
	}
	for _, t := range s.tickets {
		counts[t.Status]++
	}
	s.mu.RUnlock()

	for st, count := range counts {
		s.monitor.TrackTicketStatus(string(st), count)
	}
}
