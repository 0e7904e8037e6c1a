package prospect

import (
	"sort"

	"nextgen-crm/internal/features/access"
	"nextgen-crm/internal/features/permission"
	"nextgen-crm/internal/store"
)

var byCreatedDesc = &store.OrderBy{Field: "createdAt", Desc: true}

// DataScopeFor selects the live queries a user's role entitles them to.
// This is the role-string mechanism; it deliberately does not consult
// the capability map, which only gates UI affordances.
//
//   - Admin: every prospect, newest first.
//   - Team Leader with a team: the team's prospects, newest first.
//   - Team Leader without a team: nothing, no subscription at all.
//   - Anyone else: two independent queries, assigned-to-me and
//     created-by-me, merged client side.
func DataScopeFor(id *access.Identity) []store.Query {
	switch {
	case permission.IsAdmin(id.Role):
		return []store.Query{{
			Collection: Collection,
			OrderBy:    byCreatedDesc,
		}}
	case permission.IsTeamLeader(id.Role):
		if id.TeamID == "" {
			return nil
		}
		return []store.Query{{
			Collection: Collection,
			Filters:    []store.Filter{store.Where("teamId", "==", id.TeamID)},
			OrderBy:    byCreatedDesc,
		}}
	default:
		return []store.Query{
			{
				Collection: Collection,
				Filters:    []store.Filter{store.Where("assignedTo", "==", id.EmployeeID)},
			},
			{
				Collection: Collection,
				Filters:    []store.Filter{store.Where("createdBy", "==", id.EmployeeID)},
			},
		}
	}
}

// Merge unions the held snapshot slices into one canonical list:
// de-duplicated by id with last-write-wins, then resorted newest first.
// A missing createdAt sorts as the earliest possible time. The result
// depends only on the union of the inputs, never on delivery order, so
// repeated or out-of-order snapshots are harmless: callers re-run the
// full merge from all held slices on every delta.
func Merge(slices ...[]Prospect) []Prospect {
	byID := make(map[string]Prospect)
	for _, slice := range slices {
		for _, p := range slice {
			byID[p.ID] = p
		}
	}

	out := make([]Prospect, 0, len(byID))
	for _, p := range byID {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// DecodeAll converts a snapshot into typed prospects, dropping records
// that fail to decode rather than poisoning the whole snapshot.
func DecodeAll(docs []store.Document) []Prospect {
	out := make([]Prospect, 0, len(docs))
	for _, doc := range docs {
		var p Prospect
		if err := store.Decode(doc, &p); err != nil {
			continue
		}
		p.ID = doc.ID
		out = append(out, p)
	}
	return out
}
