package prospect

import (
	"math/rand"
	"testing"
	"time"

	"nextgen-crm/internal/features/access"
	"nextgen-crm/internal/features/permission"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataScopeFor(t *testing.T) {
	t.Run("admin gets a single unfiltered query", func(t *testing.T) {
		queries := DataScopeFor(&access.Identity{EmployeeID: "a1", Role: permission.RoleAdmin})
		require.Len(t, queries, 1)
		assert.Empty(t, queries[0].Filters)
		require.NotNil(t, queries[0].OrderBy)
		assert.Equal(t, "createdAt", queries[0].OrderBy.Field)
		assert.True(t, queries[0].OrderBy.Desc)
	})

	t.Run("team leader with a team filters on it", func(t *testing.T) {
		queries := DataScopeFor(&access.Identity{EmployeeID: "l1", Role: permission.RoleTeamLeader, TeamID: "T1"})
		require.Len(t, queries, 1)
		require.Len(t, queries[0].Filters, 1)
		assert.Equal(t, "teamId", queries[0].Filters[0].Field)
		assert.Equal(t, "T1", queries[0].Filters[0].Value)
	})

	t.Run("team leader without a team gets nothing", func(t *testing.T) {
		assert.Empty(t, DataScopeFor(&access.Identity{EmployeeID: "l1", Role: permission.RoleTeamLeader}))
	})

	t.Run("member gets assigned-to and created-by queries", func(t *testing.T) {
		queries := DataScopeFor(&access.Identity{EmployeeID: "m1", Role: "Sales Rep"})
		require.Len(t, queries, 2)
		assert.Equal(t, "assignedTo", queries[0].Filters[0].Field)
		assert.Equal(t, "createdBy", queries[1].Filters[0].Field)
		assert.Equal(t, "m1", queries[0].Filters[0].Value)
	})
}

func TestMerge(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	at := func(d int) time.Time { return base.AddDate(0, 0, d) }

	t.Run("dedups by id with last write winning", func(t *testing.T) {
		stale := Prospect{ID: "p1", Name: "Old", CreatedAt: at(0)}
		fresh := Prospect{ID: "p1", Name: "New", CreatedAt: at(0)}

		merged := Merge([]Prospect{stale}, []Prospect{fresh})
		require.Len(t, merged, 1)
		assert.Equal(t, "New", merged[0].Name)
	})

	t.Run("sorts newest first with missing dates last", func(t *testing.T) {
		merged := Merge([]Prospect{
			{ID: "old", CreatedAt: at(0)},
			{ID: "undated"},
			{ID: "new", CreatedAt: at(2)},
			{ID: "mid", CreatedAt: at(1)},
		})

		ids := make([]string, 0, len(merged))
		for _, p := range merged {
			ids = append(ids, p.ID)
		}
		assert.Equal(t, []string{"new", "mid", "old", "undated"}, ids)
	})

	t.Run("equal timestamps tie-break by id", func(t *testing.T) {
		merged := Merge([]Prospect{
			{ID: "b", CreatedAt: at(0)},
			{ID: "a", CreatedAt: at(0)},
		})
		assert.Equal(t, "a", merged[0].ID)
		assert.Equal(t, "b", merged[1].ID)
	})

	t.Run("result is independent of delivery order", func(t *testing.T) {
		assigned := []Prospect{
			{ID: "p1", Name: "One", CreatedAt: at(3)},
			{ID: "p2", Name: "Two", CreatedAt: at(1)},
			{ID: "p3", Name: "Shared", CreatedAt: at(2)},
		}
		created := []Prospect{
			{ID: "p3", Name: "Shared", CreatedAt: at(2)},
			{ID: "p4", Name: "Four"},
		}

		want := Merge(assigned, created)
		require.Len(t, want, 4)

		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 50; i++ {
			a := append([]Prospect(nil), assigned...)
			c := append([]Prospect(nil), created...)
			rng.Shuffle(len(a), func(x, y int) { a[x], a[y] = a[y], a[x] })
			rng.Shuffle(len(c), func(x, y int) { c[x], c[y] = c[y], c[x] })

			slices := [][]Prospect{a, c}
			if rng.Intn(2) == 0 {
				slices[0], slices[1] = slices[1], slices[0]
			}
			// Re-delivering one slice twice must change nothing.
			slices = append(slices, slices[rng.Intn(2)])

			assert.Equal(t, want, Merge(slices...))
		}
	})
}

func TestFilter(t *testing.T) {
	items := []Prospect{
		{ID: "p1", Name: "Jane Smith", Phone: "555-1234", Status: StatusNew, Location: "Austin"},
		{ID: "p2", Name: "Bob Ray", Email: "bob@example.com", Status: StatusJoined},
		{ID: "p3", Name: "Janet Lee", Status: StatusNew},
	}

	assert.Equal(t, items, Filter(items, "", ""))

	byStatus := Filter(items, "", StatusNew)
	require.Len(t, byStatus, 2)

	byTerm := Filter(items, "jane", "")
	require.Len(t, byTerm, 2)
	assert.Equal(t, "p1", byTerm[0].ID)

	both := Filter(items, "janet", StatusNew)
	require.Len(t, both, 1)
	assert.Equal(t, "p3", both[0].ID)

	assert.Len(t, Filter(items, "555", ""), 1)
	assert.Len(t, Filter(items, "example.com", ""), 1)
	assert.Empty(t, Filter(items, "nobody", ""))
}
