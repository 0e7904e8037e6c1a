package access

import (
	"time"

	"nextgen-crm/internal/features/permission"
)

const (
	CollectionEmployees = "employees"
	CollectionGrants    = "crmAccess"
	CollectionRoles     = "roles"
)

// Employee is the HRMS record an authenticated principal maps onto.
type Employee struct {
	ID     string `json:"id" bson:"-"`
	Name   string `json:"name" bson:"name"`
	Email  string `json:"email" bson:"email"`
	Status string `json:"status" bson:"status"`
}

// AccessGrant governs whether an employee may use the CRM and under
// what role/team. Multiple grant records can exist per employee; see
// EffectiveGrant for how they resolve. HasCRMAccess is tri-state:
// nil means the record never states it.
type AccessGrant struct {
	ID           string `json:"id" bson:"-"`
	EmployeeID   string `json:"employeeId" bson:"employeeId"`
	HasCRMAccess *bool  `json:"hasCRMAccess" bson:"hasCRMAccess"`
	Role         string `json:"role" bson:"role"`
	TeamID       string `json:"teamId" bson:"teamId"`
}

// RoleDefinition is a named bundle of per-module capabilities.
type RoleDefinition struct {
	ID          string         `json:"id" bson:"-"`
	Name        string         `json:"name" bson:"name"`
	Permissions permission.Set `json:"permissions" bson:"permissions"`
	UpdatedAt   time.Time      `json:"updated_at" bson:"updatedAt"`
}

// Identity is the resolved session user. Role and Permissions are the
// one piece of mutable shared state in the system: they are overwritten
// in place when the backing grant or role-definition record changes
// mid-session.
type Identity struct {
	EmployeeID  string         `json:"employeeId"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Role        string         `json:"role"`
	TeamID      string         `json:"teamId"`
	Permissions permission.Set `json:"permissions"`
}

// Subject adapts the identity for entity-level authorization checks.
func (id *Identity) Subject() permission.Subject {
	return permission.Subject{
		EmployeeID: id.EmployeeID,
		Role:       id.Role,
		TeamID:     id.TeamID,
	}
}
