package team

import "time"

const Collection = "teams"

// Team is read-mostly reference data owned by the backend.
type Team struct {
	ID        string    `json:"id" bson:"-"`
	Name      string    `json:"name" bson:"name"`
	LeaderID  string    `json:"leaderId" bson:"leaderId"`
	Members   []string  `json:"members" bson:"members"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
