package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"service-center/internal/status"
	"service-center/models"
	"service-center/monitoring"
)

func TestAuthService_Authenticate_RoleCodes(t *testing.T) {
	store, _, _, _ := setupTestStore()
	auth := NewAuthService(store, monitoring.NewMonitor())

	cases := []struct {
		code string
		role models.Role
		name string
	}{
		{"1111", models.RoleAdmin, "Administrator"},
		{"2222", models.RoleController, "Controller"},
		{"3333", models.RoleCoordinator, "Coordinator"},
	}

	for _, tc := range cases {
		user, err := auth.Authenticate(tc.code)
		require.NoError(t, err, "code %s", tc.code)
		assert.Equal(t, tc.role, user.Role)
		assert.Equal(t, tc.name, user.Name)
	}
}

func TestAuthService_Authenticate_TechnicianCode(t *testing.T) {
	store, _, _, _ := setupTestStore()
	store.LoadTechnician(&models.Technician{ID: "TECH7421", Name: "Ravi"})

	auth := NewAuthService(store, monitoring.NewMonitor())

	user, err := auth.Authenticate("7421")
	require.NoError(t, err)
	assert.Equal(t, models.RoleTechnician, user.Role)
	assert.Equal(t, "TECH7421", user.ID)
	assert.Equal(t, "Ravi", user.Name)
}

func TestAuthService_Authenticate_RoleCodeWinsOverTechnician(t *testing.T) {
	store, _, _, _ := setupTestStore()
	// A technician whose id happens to end in an elevated code.
	store.LoadTechnician(&models.Technician{ID: "TECH1111", Name: "Ravi"})

	auth := NewAuthService(store, monitoring.NewMonitor())

	user, err := auth.Authenticate("1111")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestAuthService_Authenticate_UnknownCode(t *testing.T) {
	store, _, _, _ := setupTestStore()
	auth := NewAuthService(store, monitoring.NewMonitor())

	_, err := auth.Authenticate("9999")
	assert.ErrorIs(t, err, status.ErrInvalidCode)
}

func TestAuthService_Login_PersistsSession(t *testing.T) {
	store, _, _, mock := setupTestStore()
	store.LoadTechnician(&models.Technician{ID: "TECH7421", Name: "Ravi"})

	auth := NewAuthService(store, monitoring.NewMonitor())

	mock.Regexp().ExpectSet(sessionKey, `.*TECH7421.*`, 0).SetVal("OK")
	user, err := auth.Login(context.Background(), "7421")
	require.NoError(t, err)
	assert.Equal(t, user, store.CurrentUser())

	mock.ExpectDel(sessionKey).SetVal(1)
	require.NoError(t, auth.Logout(context.Background()))
	assert.Nil(t, store.CurrentUser())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_VerifyTechnicianPIN(t *testing.T) {
	store, _, _, _ := setupTestStore()

	hash, err := bcrypt.GenerateFromPassword([]byte("4589"), bcrypt.MinCost)
	require.NoError(t, err)
	store.LoadTechnician(&models.Technician{ID: "TECH7421", Name: "Ravi", PINHash: string(hash)})
	store.LoadTechnician(&models.Technician{ID: "TECH9977", Name: "Meera"})

	auth := NewAuthService(store, monitoring.NewMonitor())

	assert.True(t, auth.VerifyTechnicianPIN("TECH7421", "4589"))
	assert.False(t, auth.VerifyTechnicianPIN("TECH7421", "0000"))
	// No hash on record means no PIN ever verifies.
	assert.False(t, auth.VerifyTechnicianPIN("TECH9977", "4589"))
	assert.False(t, auth.VerifyTechnicianPIN("TECH0000", "4589"))
}
