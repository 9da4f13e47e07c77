package services

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"service-center/internal/status"
	"service-center/models"
	"service-center/monitoring"
)

// Fixed elevated role codes. This gate is a convenience for a trusted shop
// floor, not a security boundary: the codes are short static constants.
var roleCodes = map[string]models.SessionUser{
	"1111": {ID: "admin", Name: "Administrator", Role: models.RoleAdmin},
	"2222": {ID: "controller", Name: "Controller", Role: models.RoleController},
	"3333": {ID: "coordinator", Name: "Coordinator", Role: models.RoleCoordinator},
}

// AuthService authenticates a session from a 4-character numeric code and
// installs the resulting identity on the store.
type AuthService struct {
	store   *Store
	monitor *monitoring.Monitor
}

func NewAuthService(store *Store, monitor *monitoring.Monitor) *AuthService {
	return &AuthService{
		store:   store,
		monitor: monitor,
	}
}

// Authenticate resolves a code to a session user without installing it.
// Elevated codes win over technician codes; otherwise the code is matched
// against the last four characters of every technician id, first match in
// list order. There is no lockout or throttling of failed attempts.
func (a *AuthService) Authenticate(code string) (*models.SessionUser, error) {
	if user, ok := roleCodes[code]; ok {
		a.monitor.TrackLoginAttempt("role")
		session := user
		return &session, nil
	}

	tech, err := a.store.FindTechnicianByCode(code)
	if err != nil {
		if errors.Is(err, status.ErrTechnicianNotFound) {
			a.monitor.TrackLoginAttempt("rejected")
			return nil, status.ErrInvalidCode
		}
		return nil, err
	}

	a.monitor.TrackLoginAttempt("technician")
	return &models.SessionUser{
		ID:   tech.ID,
		Name: tech.Name,
		Role: models.RoleTechnician,
	}, nil
}

// Login authenticates the code and persists the session.
func (a *AuthService) Login(ctx context.Context, code string) (*models.SessionUser, error) {
	user, err := a.Authenticate(code)
	if err != nil {
		return nil, err
	}
	if err := a.store.Login(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (a *AuthService) Logout(ctx context.Context) error {
	return a.store.Logout(ctx)
}

// VerifyTechnicianPIN checks an entered PIN against the technician's stored
// bcrypt hash. Used by management flows, not by the session gate itself.
func (a *AuthService) VerifyTechnicianPIN(technicianID, pin string) bool {
	tech, err := a.store.FindTechnician(technicianID)
	if err != nil || tech.PINHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(tech.PINHash), []byte(pin)) == nil
}
