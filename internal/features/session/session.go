package session

import (
	"context"

	"nextgen-crm/internal/features/access"
	"nextgen-crm/internal/features/activity"
	"nextgen-crm/internal/features/datamgmt"
	"nextgen-crm/internal/features/lead"
	"nextgen-crm/internal/features/prospect"
	"nextgen-crm/internal/features/team"
	"nextgen-crm/internal/features/template"
	"nextgen-crm/internal/store"

	"go.uber.org/zap"
)

// Manager builds a Session per authenticated connection. Everything is
// constructor-injected so tests can substitute a fake store and pusher.
type Manager struct {
	Store     store.Store
	Access    access.AccessService
	Prospects prospect.ProspectService
	Leads     lead.LeadService
	Teams     team.TeamService
	Templates template.TemplateService
	Data      datamgmt.DataService
	Activity  activity.ActivityService
	Log       *zap.Logger
}

func NewManager(
	s store.Store,
	accessSvc access.AccessService,
	prospectSvc prospect.ProspectService,
	leadSvc lead.LeadService,
	teamSvc team.TeamService,
	templateSvc template.TemplateService,
	dataSvc datamgmt.DataService,
	activitySvc activity.ActivityService,
	log *zap.Logger,
) *Manager {
	return &Manager{
		Store:     s,
		Access:    accessSvc,
		Prospects: prospectSvc,
		Leads:     leadSvc,
		Teams:     teamSvc,
		Templates: templateSvc,
		Data:      dataSvc,
		Activity:  activitySvc,
		Log:       log,
	}
}

// Session owns one user's live view: the current page, the open
// subscriptions, and the canonical in-memory collections. All work runs
// on a single event loop; subscription deltas and user actions are
// posted as closures and executed one at a time, so handlers may
// interleave in any order but never run concurrently.
type Session struct {
	m       *Manager
	out     Pusher
	signOut func(reason string)
	log     *zap.Logger

	user *access.Identity
	page string

	// Current prospect-list filter. Presentation state only; the
	// canonical list itself is never filtered.
	search       string
	statusFilter string

	// Held snapshot slices for the prospect scope; member mode holds
	// two (assigned-to-me, created-by-me). The canonical list is
	// recomputed in full from all slices on every delta.
	slices    [][]prospect.Prospect
	canonical []prospect.Prospect
	scopeGen  int

	leads     []lead.Lead
	teams     []team.Team
	templates []template.Template
	employees []access.Employee

	prospectSubs []store.Subscription
	grantSub     store.Subscription
	roleSub      store.Subscription
	refSubs      []store.Subscription

	cmds   chan func()
	done   chan struct{}
	closed bool
}

func (m *Manager) NewSession(user *access.Identity, out Pusher, signOut func(reason string)) *Session {
	return &Session{
		m:       m,
		out:     out,
		signOut: signOut,
		log:     m.Log.With(zap.String("employee_id", user.EmployeeID)),
		user:    user,
		page:    PageDashboard,
		cmds:    make(chan func(), 64),
		done:    make(chan struct{}),
	}
}

// Start opens every subscription for the session and renders the
// initial page. Subscriptions live until sign-out; there is no partial
// unsubscribe except the full prospect re-subscribe on a role change.
func (s *Session) Start() {
	go s.run()

	s.post(func() {
		s.subscribeProspects()
		s.subscribeRevocation()
		s.subscribeReference()
		// Landing goes through navigation so a denied dashboard
		// redirects immediately.
		s.NavigateTo(s.page)
	})
}

// Close tears the session down without a forced sign-out (normal
// disconnect or explicit logout).
func (s *Session) Close() {
	s.post(func() { s.teardown() })
}

func (s *Session) run() {
	for {
		select {
		case <-s.done:
			return
		case fn := <-s.cmds:
			fn()
		}
	}
}

// post queues work onto the session loop. Safe to call from any
// goroutine; drops silently once the session is closed.
func (s *Session) post(fn func()) {
	select {
	case <-s.done:
	case s.cmds <- fn:
	}
}

func (s *Session) teardown() {
	if s.closed {
		return
	}
	s.closed = true

	for _, sub := range s.prospectSubs {
		sub.Unsubscribe()
	}
	if s.grantSub != nil {
		s.grantSub.Unsubscribe()
	}
	if s.roleSub != nil {
		s.roleSub.Unsubscribe()
	}
	for _, sub := range s.refSubs {
		sub.Unsubscribe()
	}
	close(s.done)
}

// subscribeProspects establishes the role-scoped live queries. A Team
// Leader without a team gets no subscription and an empty canonical
// list.
func (s *Session) subscribeProspects() {
	queries := prospect.DataScopeFor(s.user)
	s.scopeGen++
	s.slices = make([][]prospect.Prospect, len(queries))
	s.canonical = nil

	gen := s.scopeGen
	for i, q := range queries {
		idx := i
		s.prospectSubs = append(s.prospectSubs, s.m.Store.Subscribe(q, func(docs []store.Document) {
			s.post(func() { s.onProspectDelta(gen, idx, docs) })
		}))
	}
}

// resubscribeProspects tears down the old scope and establishes the new
// one. Keyed off a role or team change, not a mere permission-field
// change: switching between member dual-subscription mode and a single
// scoped subscription requires a full re-subscribe.
func (s *Session) resubscribeProspects() {
	for _, sub := range s.prospectSubs {
		sub.Unsubscribe()
	}
	s.prospectSubs = nil
	s.subscribeProspects()
}

// onProspectDelta replaces one held slice with the delivered snapshot
// and recomputes the canonical list from all slices. Never incremental:
// out-of-order or repeated delivery converges to the same result. The
// generation check drops late deliveries from a torn-down scope.
func (s *Session) onProspectDelta(gen, idx int, docs []store.Document) {
	if s.closed || gen != s.scopeGen || idx >= len(s.slices) {
		return
	}
	s.slices[idx] = prospect.DecodeAll(docs)
	s.canonical = prospect.Merge(s.slices...)
	s.render()
}

// subscribeRevocation watches the user's own access grants and the
// definition of the role they currently hold, for the session's
// lifetime.
func (s *Session) subscribeRevocation() {
	repo := s.m.Access.Repository()

	s.grantSub = repo.WatchGrants(s.user.EmployeeID, func(docs []store.Document) {
		s.post(func() { s.onGrantDelta(docs) })
	})
	s.roleSub = repo.WatchRole(s.user.Role, func(docs []store.Document) {
		s.post(func() { s.onRoleDelta(docs) })
	})
}

// onGrantDelta re-runs the effective-grant resolution on every change
// to the user's grant records. Revocation wins immediately, even
// mid-session, even mid-action.
func (s *Session) onGrantDelta(docs []store.Document) {
	if s.closed {
		return
	}

	grants, err := access.DecodeGrants(docs)
	if err != nil {
		s.log.Error("failed to decode grant snapshot", zap.Error(err))
		return
	}
	if len(grants) == 0 {
		s.forceSignOut(access.ErrNoAccessProfile.Error())
		return
	}

	grant, err := access.EffectiveGrant(grants)
	if err != nil {
		s.forceSignOut(err.Error())
		return
	}

	roleChanged := grant.Role != s.user.Role
	teamChanged := grant.TeamID != s.user.TeamID
	if !roleChanged && !teamChanged {
		return
	}

	s.user.Role = grant.Role
	s.user.TeamID = grant.TeamID

	if roleChanged {
		perms, err := s.m.Access.PermissionsForRole(context.Background(), grant.Role)
		if err != nil {
			s.log.Error("failed to load permissions for new role", zap.Error(err))
			perms = nil
		}
		s.user.Permissions = perms

		// Follow the role definition we now hold.
		if s.roleSub != nil {
			s.roleSub.Unsubscribe()
		}
		s.roleSub = s.m.Access.Repository().WatchRole(grant.Role, func(docs []store.Document) {
			s.post(func() { s.onRoleDelta(docs) })
		})
	}

	// Data scope follows the role and team, so re-subscribe either way.
	s.resubscribeProspects()

	s.out.Push(Event{Type: EventUser, Data: s.user})
	s.render()
}

// onRoleDelta overwrites the in-memory permission set when someone
// edits the role the user currently holds. The current page re-renders
// with the new capabilities without any navigation.
func (s *Session) onRoleDelta(docs []store.Document) {
	if s.closed {
		return
	}

	if len(docs) == 0 {
		// Definition deleted: same fail-open empty map as at login.
		s.user.Permissions = nil
		s.out.Push(Event{Type: EventUser, Data: s.user})
		s.render()
		return
	}

	var def access.RoleDefinition
	if err := store.Decode(docs[0], &def); err != nil {
		s.log.Error("failed to decode role definition", zap.Error(err))
		return
	}
	s.user.Permissions = def.Permissions
	s.out.Push(Event{Type: EventUser, Data: s.user})
	s.render()
}

// subscribeReference opens the long-lived reference-data watches:
// leads, teams, templates, active employees.
func (s *Session) subscribeReference() {
	s.refSubs = append(s.refSubs,
		s.m.Store.Subscribe(store.Query{Collection: lead.Collection}, func(docs []store.Document) {
			s.post(func() {
				s.leads = lead.DecodeAll(docs)
				if s.page == PageLeads {
					s.render()
				}
			})
		}),
		s.m.Store.Subscribe(store.Query{Collection: team.Collection}, func(docs []store.Document) {
			s.post(func() {
				s.teams = team.DecodeAll(docs)
				if s.page == PageTeams {
					s.render()
				}
			})
		}),
		s.m.Store.Subscribe(store.Query{
			Collection: template.Collection,
			OrderBy:    &store.OrderBy{Field: "updatedAt", Desc: true},
		}, func(docs []store.Document) {
			s.post(func() {
				s.templates = template.DecodeAll(docs)
				if s.page == PageTemplates {
					s.render()
				}
			})
		}),
		s.m.Store.Subscribe(store.Query{
			Collection: access.CollectionEmployees,
			Filters:    []store.Filter{store.Where("status", "==", "Active")},
		}, func(docs []store.Document) {
			s.post(func() {
				s.employees = decodeEmployees(docs)
				if s.page == PageDashboard || s.page == PageAnalytics {
					s.render()
				}
			})
		}),
	)
}

func (s *Session) forceSignOut(reason string) {
	if s.closed {
		return
	}
	s.out.Push(Event{Type: EventSignOut, Reason: reason})
	s.teardown()
	if s.signOut != nil {
		s.signOut(reason)
	}
}

func decodeEmployees(docs []store.Document) []access.Employee {
	out := make([]access.Employee, 0, len(docs))
	for _, doc := range docs {
		var e access.Employee
		if err := store.Decode(doc, &e); err != nil {
			continue
		}
		e.ID = doc.ID
		out = append(out, e)
	}
	return out
}
