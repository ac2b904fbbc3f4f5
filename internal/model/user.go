package model

import "time"

// User roles. Agents record decisions at their assigned port; supervisors
// and admins consume the read-side surfaces.
const (
	RoleAgent      = "AGENT"
	RoleSupervisor = "SUPERVISOR"
	RoleAdmin      = "ADMIN"
)

// User is a service account (agent, supervisor or admin). PortID is the
// port the user is stationed at; agents without an assigned port cannot
// record decisions.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email (unique)
	PasswordHash string    // users.password_hash (bcrypt)
	Role         string    // users.role
	PortID       *uint64   // users.port_id (nullable)
	Status       string    // users.status ("active" | "inactive")
	CreatedAt    time.Time // users.created_at
}
