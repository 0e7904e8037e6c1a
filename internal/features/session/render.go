package session

import (
	"time"

	"nextgen-crm/internal/features/analytics"
	"nextgen-crm/internal/features/lead"
	"nextgen-crm/internal/features/permission"
	"nextgen-crm/internal/features/prospect"
	"nextgen-crm/internal/features/team"
	"nextgen-crm/internal/features/template"
)

// NavItem is one sidebar entry. Hidden entries are still sent with
// Visible false so the client never has to guess at ordering.
type NavItem struct {
	Page    string `json:"page"`
	Visible bool   `json:"visible"`
}

// ProspectRow is a prospect plus the action flags the current user
// holds on it. Flags are presentation hints only; the services
// re-check on every action.
type ProspectRow struct {
	prospect.Prospect
	CanEdit     bool `json:"canEdit"`
	CanDelete   bool `json:"canDelete"`
	CanReassign bool `json:"canReassign"`
}

type LeadRow struct {
	lead.Lead
	CanTransfer bool `json:"canTransfer"`
	CanDelete   bool `json:"canDelete"`
}

type TeamRow struct {
	team.Team
	CanEdit   bool `json:"canEdit"`
	CanDelete bool `json:"canDelete"`
}

type dashboardView struct {
	Summary analytics.Summary       `json:"summary"`
	Funnel  []analytics.FunnelStage `json:"funnel"`
}

type analyticsView struct {
	Summary     analytics.Summary          `json:"summary"`
	Funnel      []analytics.FunnelStage    `json:"funnel"`
	Leaderboard []analytics.LeaderboardEntry `json:"leaderboard"`
	Monthly     []analytics.MonthCount     `json:"monthly"`
	Sources     map[string]int             `json:"sources"`
}

type dataView struct {
	CanExport  bool `json:"canExport"`
	CanImport  bool `json:"canImport"`
	CanBackup  bool `json:"canBackup"`
	CanRestore bool `json:"canRestore"`
	CanClear   bool `json:"canClear"`
}

// canViewPage decides page-body visibility. The dashboard is denied
// only when a crm_dashboard entry exists and explicitly withholds
// view; its absence means visible, the opposite of every other module.
func canViewPage(perms permission.Set, page string) bool {
	if page == PageDashboard {
		caps, ok := perms[permission.ModuleDashboard]
		return !ok || caps.View
	}
	module, ok := pageModules[page]
	if !ok {
		return false
	}
	return perms.For(module).View
}

// navVisible decides sidebar visibility: any capability on the module
// shows the entry, view alone is not required.
func navVisible(perms permission.Set, page string) bool {
	if page == PageDashboard {
		caps, ok := perms[permission.ModuleDashboard]
		return !ok || caps.View
	}
	return perms.For(pageModules[page]).Visible()
}

// NavigateTo switches the current page. Runs on the session loop.
func (s *Session) NavigateTo(page string) {
	if _, known := pageModules[page]; !known {
		s.out.Push(Event{Type: EventError, Reason: "Unknown page: " + page})
		return
	}

	if !canViewPage(s.user.Permissions, page) {
		if page == PageDashboard {
			// Denied dashboards redirect to the first page whose nav
			// entry shows; with nothing visible the denial placeholder
			// stands. Nav visibility, not view: an add-only module still
			// receives the user, who then sees its denial placeholder.
			for _, candidate := range navOrder[1:] {
				if navVisible(s.user.Permissions, candidate) {
					s.page = candidate
					s.render()
					return
				}
			}
		}
		s.page = page
		s.render()
		return
	}

	s.page = page
	s.render()
}

// render pushes the complete view for the current page: the nav rail
// and either the page body or the denial placeholder. Everything is a
// full overwrite derived from the canonical collections.
func (s *Session) render() {
	if s.closed {
		return
	}

	items := make([]NavItem, 0, len(navOrder))
	for _, page := range navOrder {
		items = append(items, NavItem{Page: page, Visible: navVisible(s.user.Permissions, page)})
	}
	s.out.Push(Event{Type: EventNav, Data: items})

	if !canViewPage(s.user.Permissions, s.page) {
		s.out.Push(Event{
			Type:   EventDenied,
			Page:   s.page,
			Reason: "You don't have permission to view this section.",
		})
		return
	}

	switch s.page {
	case PageDashboard:
		s.out.Push(Event{Type: EventMetrics, Page: s.page, Data: dashboardView{
			Summary: analytics.Summarize(s.canonical, s.employees, time.Now()),
			Funnel:  analytics.Funnel(s.canonical),
		}})
	case PageProspects:
		s.out.Push(Event{Type: EventPage, Page: s.page, Data: s.prospectRows()})
	case PageLeads:
		s.out.Push(Event{Type: EventPage, Page: s.page, Data: s.leadRows()})
	case PageTemplates:
		s.out.Push(Event{Type: EventPage, Page: s.page, Data: s.templateRows()})
	case PageAnalytics:
		now := time.Now()
		s.out.Push(Event{Type: EventPage, Page: s.page, Data: analyticsView{
			Summary:     analytics.Summarize(s.canonical, s.employees, now),
			Funnel:      analytics.Funnel(s.canonical),
			Leaderboard: analytics.Leaderboard(s.canonical, s.employees),
			Monthly:     analytics.MonthlySeries(s.canonical, now, 6),
			Sources:     analytics.SourceBreakdown(s.canonical),
		}})
	case PageData:
		caps := s.user.Permissions.For(permission.ModuleData)
		s.out.Push(Event{Type: EventPage, Page: s.page, Data: dataView{
			CanExport:  caps.View,
			CanImport:  caps.Add,
			CanBackup:  caps.View,
			CanRestore: caps.Edit,
			CanClear:   caps.Delete,
		}})
	case PageTeams:
		s.out.Push(Event{Type: EventPage, Page: s.page, Data: s.teamRows()})
	}
}

// prospectRows combines the module capability with the per-record
// access level: both must allow before a flag is set.
func (s *Session) prospectRows() []ProspectRow {
	caps := s.user.Permissions.For(permission.ModuleProspects)
	sub := s.user.Subject()

	visible := prospect.Filter(s.canonical, s.search, s.statusFilter)
	rows := make([]ProspectRow, 0, len(visible))
	for i := range visible {
		p := visible[i]
		editable := permission.CanEdit(sub, &p)
		rows = append(rows, ProspectRow{
			Prospect:    p,
			CanEdit:     caps.Edit && editable,
			CanDelete:   caps.Delete && editable,
			CanReassign: caps.Edit && permission.LevelFor(sub, &p) >= permission.LevelTeam,
		})
	}
	return rows
}

func (s *Session) leadRows() []LeadRow {
	caps := s.user.Permissions.For(permission.ModuleLeads)

	rows := make([]LeadRow, 0, len(s.leads))
	for _, l := range s.leads {
		rows = append(rows, LeadRow{
			Lead:        l,
			CanTransfer: caps.Edit || caps.Delete,
			CanDelete:   caps.Delete,
		})
	}
	return rows
}

func (s *Session) templateRows() []template.Template {
	if s.templates == nil {
		return []template.Template{}
	}
	return s.templates
}

func (s *Session) teamRows() []TeamRow {
	caps := s.user.Permissions.For(permission.ModuleTeams)
	admin := permission.IsAdmin(s.user.Role)
	leader := permission.IsTeamLeader(s.user.Role)

	rows := make([]TeamRow, 0, len(s.teams))
	for _, t := range s.teams {
		editable := admin || (leader && t.ID == s.user.TeamID)
		rows = append(rows, TeamRow{
			Team:      t,
			CanEdit:   caps.Edit && editable,
			CanDelete: caps.Delete && editable,
		})
	}
	return rows
}
