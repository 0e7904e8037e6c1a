package analytics

import (
	"sort"
	"time"

	"nextgen-crm/internal/features/access"
	"nextgen-crm/internal/features/prospect"
)

// Summary is the dashboard headline block: totals plus month-over-month
// growth percentages.
type Summary struct {
	TotalProspects      int     `json:"totalProspects"`
	InterestedProspects int     `json:"interestedProspects"`
	JoinedMembers       int     `json:"joinedMembers"`
	ActiveMembers       int     `json:"activeMembers"`
	ProspectsGrowth     float64 `json:"prospectsGrowth"`
	InterestedGrowth    float64 `json:"interestedGrowth"`
	JoinedGrowth        float64 `json:"joinedGrowth"`
}

// FunnelStage is one status bucket of the pipeline funnel.
type FunnelStage struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// LeaderboardEntry ranks an employee by conversions.
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
	Joined     int    `json:"joined"`
	Total      int    `json:"total"`
}

// MonthCount is one point of the monthly growth series.
type MonthCount struct {
	Month string `json:"month"` // "2006-01"
	Count int    `json:"count"`
}

// Summarize derives the dashboard metrics from the canonical sets. Pure
// function: recomputed in full on every subscription delta.
func Summarize(prospects []prospect.Prospect, employees []access.Employee, now time.Time) Summary {
	interested := filter(prospects, isInterested)
	joined := filter(prospects, isJoined)

	active := 0
	for _, e := range employees {
		if e.Status == "Active" || e.Status == "active" {
			active++
		}
	}

	return Summary{
		TotalProspects:      len(prospects),
		InterestedProspects: len(interested),
		JoinedMembers:       len(joined),
		ActiveMembers:       active,
		ProspectsGrowth:     Growth(prospects, now),
		InterestedGrowth:    Growth(interested, now),
		JoinedGrowth:        Growth(joined, now),
	}
}

// Growth is the month-over-month percentage change in record creation.
// With no records last month it reports 100 if anything was created
// this month, else 0.
func Growth(items []prospect.Prospect, now time.Time) float64 {
	curYear, curMonth, _ := now.Date()
	prev := now.AddDate(0, -1, -now.Day()+1)
	prevYear, prevMonth, _ := prev.Date()

	var current, last int
	for _, item := range items {
		if item.CreatedAt.IsZero() {
			continue
		}
		y, m, _ := item.CreatedAt.Date()
		switch {
		case y == curYear && m == curMonth:
			current++
		case y == prevYear && m == prevMonth:
			last++
		}
	}

	if last == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return float64(current-last) / float64(last) * 100
}

// Funnel counts prospects per status in pipeline order.
func Funnel(prospects []prospect.Prospect) []FunnelStage {
	order := []string{
		prospect.StatusNew,
		prospect.StatusContacted,
		prospect.StatusFollowUp,
		prospect.StatusInterested,
		prospect.StatusJoined,
		prospect.StatusLost,
	}

	counts := make(map[string]int)
	for _, p := range prospects {
		counts[p.Status]++
	}

	stages := make([]FunnelStage, 0, len(order))
	for _, status := range order {
		stages = append(stages, FunnelStage{Status: status, Count: counts[status]})
	}
	return stages
}

// Leaderboard ranks employees by joined conversions, then by total
// assigned prospects, then by name for deterministic ordering.
func Leaderboard(prospects []prospect.Prospect, employees []access.Employee) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(employees))
	for _, e := range employees {
		entry := LeaderboardEntry{EmployeeID: e.ID, Name: e.Name}
		for _, p := range prospects {
			if p.AssignedTo != e.ID {
				continue
			}
			entry.Total++
			if isJoined(p) {
				entry.Joined++
			}
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Joined != entries[j].Joined {
			return entries[i].Joined > entries[j].Joined
		}
		if entries[i].Total != entries[j].Total {
			return entries[i].Total > entries[j].Total
		}
		return entries[i].Name < entries[j].Name
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// MonthlySeries buckets creations over the trailing months months.
func MonthlySeries(prospects []prospect.Prospect, now time.Time, months int) []MonthCount {
	if months <= 0 {
		months = 6
	}

	series := make([]MonthCount, months)
	for i := 0; i < months; i++ {
		m := now.AddDate(0, i-months+1, -now.Day()+1)
		series[i] = MonthCount{Month: m.Format("2006-01")}
	}

	index := make(map[string]int, months)
	for i, mc := range series {
		index[mc.Month] = i
	}
	for _, p := range prospects {
		if p.CreatedAt.IsZero() {
			continue
		}
		if i, ok := index[p.CreatedAt.Format("2006-01")]; ok {
			series[i].Count++
		}
	}
	return series
}

// SourceBreakdown counts prospects per normalized lead source.
func SourceBreakdown(prospects []prospect.Prospect) map[string]int {
	counts := make(map[string]int)
	for _, p := range prospects {
		source := p.LeadSource
		if source == "" {
			source = "other"
		}
		counts[source]++
	}
	return counts
}

func isInterested(p prospect.Prospect) bool {
	return p.InterestLevel == "interested" || p.InterestLevel == "hot" ||
		p.Status == prospect.StatusContacted
}

func isJoined(p prospect.Prospect) bool {
	return p.Status == prospect.StatusJoined
}

func filter(items []prospect.Prospect, keep func(prospect.Prospect) bool) []prospect.Prospect {
	out := make([]prospect.Prospect, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
