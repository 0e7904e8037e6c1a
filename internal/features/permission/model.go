package permission

// Module ids as stored in role-definition documents.
const (
	ModuleProspects = "prospect_management"
	ModuleLeads     = "lead_management"
	ModuleTemplates = "whatsapp_templates"
	ModuleAnalytics = "analytics"
	ModuleData      = "data_management"
	ModuleTeams     = "team_management"
	ModuleDashboard = "crm_dashboard"
)

// Role names with hand-coded behavior. Roles are an open string set;
// anything else is treated as rank-and-file.
const (
	RoleAdmin      = "Admin"
	RoleTeamLeader = "Team Leader"
)

// Capabilities is the per-module capability record. The zero value is
// deny-everything.
type Capabilities struct {
	View   bool `json:"view" bson:"view"`
	Add    bool `json:"add" bson:"add"`
	Edit   bool `json:"edit" bson:"edit"`
	Delete bool `json:"delete" bson:"delete"`
}

// Visible reports whether a module's navigation entry should show at
// all: any capability counts, not just view.
func (c Capabilities) Visible() bool {
	return c.View || c.Add || c.Edit || c.Delete
}

// Set maps module id to capabilities. A missing module key means all
// four capabilities are false; use For, which encodes that default.
type Set map[string]Capabilities

// For is total: a missing module yields the zero (all-deny) record.
func (s Set) For(module string) Capabilities {
	if s == nil {
		return Capabilities{}
	}
	return s[module]
}

func IsAdmin(role string) bool      { return role == RoleAdmin }
func IsTeamLeader(role string) bool { return role == RoleTeamLeader }
