package template

import (
	"testing"

	"nextgen-crm/internal/features/prospect"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	p := &prospect.Prospect{
		Name:          "Jane",
		Phone:         "555-1234",
		Email:         "jane@example.com",
		Status:        "contacted",
		InterestLevel: "high",
		Location:      "Austin",
		Occupation:    "Trainer",
		Instagram:     "@jane",
	}

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"single variable", "Hi {{name}}!", "Hi Jane!"},
		{"multiple variables", "{{name}} ({{phone}}) is {{status}}", "Jane (555-1234) is contacted"},
		{"case insensitive keys", "Hi {{Name}}, from {{LOCATION}}", "Hi Jane, from Austin"},
		{"whitespace inside braces", "Hi {{ name }}", "Hi Jane"},
		{"interest aliases", "{{interest}} / {{interestLevel}}", "high / high"},
		{"assigned name", "Your contact is {{assigned}}", "Your contact is Sam"},
		{"unknown variable left intact", "Code: {{discountCode}}", "Code: {{discountCode}}"},
		{"no variables", "Plain text.", "Plain text."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.content, p, "Sam"))
		})
	}
}
