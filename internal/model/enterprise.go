package model

import "time"

// Enterprise is the tenant root. Every role, scope, user, and product belongs
// to exactly one enterprise. IDs originate in the HR system and are carried
// verbatim on reconciliation events.
type Enterprise struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	AccountableEmail string  `json:"accountable_email"`
	ActivityType     string  `json:"activity_type,omitempty"`
	Roles            []*Role `json:"roles,omitempty"`
	Scopes           []*Scope `json:"scopes,omitempty"`
}

// Role is a named authorization level within an enterprise. Hierarchy orders
// roles by seniority: lower values are more privileged.
type Role struct {
	ID           int64  `json:"id"`
	EnterpriseID int64  `json:"enterprise_id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Hierarchy    int    `json:"hierarchy"`
}

// Scope is a named domain-access tag within an enterprise.
type Scope struct {
	ID           int64  `json:"id"`
	EnterpriseID int64  `json:"enterprise_id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
}

// Default role names.
const (
	RoleOwner        = "Owner"
	RoleManager      = "Manager"
	RoleCollaborator = "Collaborator"
)

// Hierarchy ranks for the default roles. Lower rank means more senior.
const (
	HierarchyOwner        = 0
	HierarchyManager      = 1
	HierarchyCollaborator = 2
)

// DefaultHierarchy returns the rank for a default role name, or -1 for
// unknown names.
func DefaultHierarchy(role string) int {
	switch role {
	case RoleOwner:
		return HierarchyOwner
	case RoleManager:
		return HierarchyManager
	case RoleCollaborator:
		return HierarchyCollaborator
	}
	return -1
}

// Default scope names. Patrimonial is the inventory domain this service
// implements; All grants every domain.
const (
	ScopePatrimonial   = "Patrimonial"
	ScopeAll           = "All"
	ScopeSells         = "Sells"
	ScopeHumanResource = "Human Resource"
)

// UserAllowedScope reports whether a user resolved to the named scope may
// exist in this service's user set. Users outside All/Sells are removed on
// encounter during reconciliation.
func UserAllowedScope(name string) bool {
	return name == ScopeAll || name == ScopeSells
}

// User belongs to one enterprise and references one role and one scope.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name,omitempty"`
	RoleID       int64     `json:"role_id"`
	ScopeID      int64     `json:"scope_id"`
	EnterpriseID int64     `json:"enterprise_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserView is a user joined with its role and scope, as needed by the
// authorization checks on the REST surface.
type UserView struct {
	User
	RoleName  string `json:"role_name"`
	Hierarchy int    `json:"hierarchy"`
	ScopeName string `json:"scope_name"`
}
