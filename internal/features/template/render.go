package template

import (
	"regexp"
	"strings"

	"nextgen-crm/internal/features/prospect"
)

var placeholderRe = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Render substitutes {{variable}} placeholders with the prospect's
// fields. Unknown variables are left intact so a typo is visible in
// the outgoing message rather than silently dropped.
func Render(content string, p *prospect.Prospect, assignedName string) string {
	return placeholderRe.ReplaceAllStringFunc(content, func(match string) string {
		key := strings.TrimSpace(placeholderRe.FindStringSubmatch(match)[1])
		if val, ok := variableValue(key, p, assignedName); ok {
			return val
		}
		return match
	})
}

func variableValue(key string, p *prospect.Prospect, assignedName string) (string, bool) {
	switch strings.ToLower(key) {
	case "name":
		return p.Name, true
	case "phone":
		return p.Phone, true
	case "email":
		return p.Email, true
	case "status":
		return p.Status, true
	case "interest", "interestlevel":
		return p.InterestLevel, true
	case "location":
		return p.Location, true
	case "occupation":
		return p.Occupation, true
	case "instagram":
		return p.Instagram, true
	case "assigned", "assignedto":
		return assignedName, true
	default:
		return "", false
	}
}
