package activity

import "time"

const Collection = "activities"

// Activity is an append-only log entry written alongside mutating
// actions (transfers, imports, reminders).
type Activity struct {
	ID        string    `json:"id" bson:"-"`
	UserID    string    `json:"userId" bson:"userId"`
	Action    string    `json:"action" bson:"action"`
	Details   string    `json:"details" bson:"details"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}
