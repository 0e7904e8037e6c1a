package lead

import "time"

// Leads live in the joinRequests collection: raw inbound inquiries
// awaiting triage into prospects.
const Collection = "joinRequests"

type Lead struct {
	ID            string     `json:"id" bson:"-"`
	Name          string     `json:"name" bson:"name"`
	Phone         string     `json:"phone" bson:"phone"`
	Email         string     `json:"email" bson:"email"`
	Age           *int       `json:"age,omitempty" bson:"age,omitempty"`
	Location      string     `json:"location" bson:"location"`
	WhatTheyDo    string     `json:"whatTheyDo" bson:"whatTheyDo"`
	InstagramID   string     `json:"instagramId" bson:"instagramId"`
	InterestLevel string     `json:"interestLevel" bson:"interestLevel"`
	LeadSource    string     `json:"leadSource" bson:"leadSource"`
	WhyWantToJoin string     `json:"whyWantToJoin" bson:"whyWantToJoin"`
	FollowUpDate  *time.Time `json:"followUpDate,omitempty" bson:"followUpDate,omitempty"`
	Notes         string     `json:"notes" bson:"notes"`
	Timestamp     time.Time  `json:"timestamp" bson:"timestamp"`
}
