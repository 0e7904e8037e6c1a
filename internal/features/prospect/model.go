package prospect

import "time"

const Collection = "prospects"

// Status labels. An unordered set, not a gated state machine: the UI
// allows arbitrary transitions between them.
const (
	StatusNew        = "new"
	StatusContacted  = "contacted"
	StatusFollowUp   = "follow-up"
	StatusInterested = "interested"
	StatusJoined     = "joined"
	StatusLost       = "lost"
)

// Prospect is the central pipeline entity. OwnerID and CreatedBy are
// set at creation and never reassigned (by convention, not enforced);
// TeamID and AssignedTo are mutable by users with sufficient access.
type Prospect struct {
	ID            string     `json:"id" bson:"-"`
	Name          string     `json:"name" bson:"name"`
	Phone         string     `json:"phone" bson:"phone"`
	Email         string     `json:"email" bson:"email"`
	Age           *int       `json:"age,omitempty" bson:"age,omitempty"`
	Location      string     `json:"location" bson:"location"`
	Occupation    string     `json:"occupation" bson:"occupation"`
	Instagram     string     `json:"instagram" bson:"instagram"`
	Status        string     `json:"status" bson:"status"`
	InterestLevel string     `json:"interestLevel" bson:"interestLevel"`
	LeadSource    string     `json:"leadSource" bson:"leadSource"`
	TeamID        string     `json:"teamId" bson:"teamId"`
	AssignedTo    string     `json:"assignedTo" bson:"assignedTo"`
	OwnerID       string     `json:"ownerId" bson:"ownerId"`
	CreatedBy     string     `json:"createdBy" bson:"createdBy"`
	CreatedAt     time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt" bson:"updatedAt"`
	FollowUpDate  *time.Time `json:"followUpDate,omitempty" bson:"followUpDate,omitempty"`
	Notes         string     `json:"notes" bson:"notes"`
}

func (p *Prospect) EntityTeamID() string     { return p.TeamID }
func (p *Prospect) EntityOwnerID() string    { return p.OwnerID }
func (p *Prospect) EntityCreatorID() string  { return p.CreatedBy }
func (p *Prospect) EntityAssigneeID() string { return p.AssignedTo }
