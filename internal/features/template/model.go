package template

import "time"

const Collection = "whatsappTemplates"

// Template types mirror the channels messages go out on.
const (
	TypeWhatsApp  = "whatsapp"
	TypeInstagram = "instagram"
	TypeEmail     = "email"
)

// Template is a reusable message with {{variable}} placeholders
// resolved against a prospect at send time.
type Template struct {
	ID        string    `json:"id" bson:"-"`
	Name      string    `json:"name" bson:"name"`
	Type      string    `json:"type" bson:"type"`
	Content   string    `json:"content" bson:"content"`
	CreatedBy string    `json:"createdBy" bson:"createdBy"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
