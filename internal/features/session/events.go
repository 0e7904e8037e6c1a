package session

import "nextgen-crm/internal/features/permission"

// Pages of the single-page UI. Each maps to at most one permission
// module; the dashboard is special-cased (visible unless an explicit
// crm_dashboard permission denies view).
const (
	PageDashboard = "dashboard"
	PageProspects = "prospects"
	PageLeads     = "lead-management"
	PageTemplates = "whatsapp"
	PageAnalytics = "analytics"
	PageData      = "data-management"
	PageTeams     = "teams"
)

// navOrder fixes the sidebar ordering and drives the dashboard-denied
// redirect ("first other visible page").
var navOrder = []string{
	PageDashboard,
	PageProspects,
	PageLeads,
	PageTemplates,
	PageAnalytics,
	PageData,
	PageTeams,
}

var pageModules = map[string]string{
	PageDashboard: permission.ModuleDashboard,
	PageProspects: permission.ModuleProspects,
	PageLeads:     permission.ModuleLeads,
	PageTemplates: permission.ModuleTemplates,
	PageAnalytics: permission.ModuleAnalytics,
	PageData:      permission.ModuleData,
	PageTeams:     permission.ModuleTeams,
}

// Event is one push to the connected client. Every event carrying view
// state is a complete overwrite of its target region, never an
// incremental append, so repeated or rapid delivery is harmless.
type Event struct {
	Type   string      `json:"type"`
	Page   string      `json:"page,omitempty"`
	Reason string      `json:"reason,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

// Event types.
const (
	EventNav     = "nav"      // visible navigation items
	EventPage    = "page"     // full body snapshot for the current page
	EventDenied  = "denied"   // access-denied placeholder in place of the body
	EventMetrics = "metrics"  // dashboard summary block
	EventLoading = "loading"  // action in flight
	EventNotice  = "notice"   // transient success message
	EventError   = "error"    // transient failure message
	EventSignOut = "signout"  // forced sign-out, connection closing
	EventUser    = "user"     // refreshed identity (role/permissions)
	EventFile    = "file"     // produced export/backup payload
)

// Pusher delivers events to the client. The websocket surface
// implements it; tests substitute a recorder.
type Pusher interface {
	Push(Event)
}
