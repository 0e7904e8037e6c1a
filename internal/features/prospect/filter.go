package prospect

import "strings"

// Filter narrows a list by free-text search and status. The term
// matches name, phone, email or location, case-insensitively; an empty
// term or status leaves that dimension unfiltered.
func Filter(items []Prospect, term, status string) []Prospect {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" && status == "" {
		return items
	}

	out := make([]Prospect, 0, len(items))
	for _, p := range items {
		if status != "" && p.Status != status {
			continue
		}
		if term != "" && !matchesTerm(p, term) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesTerm(p Prospect, term string) bool {
	for _, field := range []string{p.Name, p.Phone, p.Email, p.Location} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
