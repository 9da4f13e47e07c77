package models

type Role string

const (
	RoleAdmin       Role = "Admin"
	RoleTechnician  Role = "Technician"
	RoleController  Role = "Controller"
	RoleCoordinator Role = "Coordinator"
)

type SessionUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}
