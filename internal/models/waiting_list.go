package models

import "time"

// WaitingListEntry is a prospective student waiting for a seat.
type WaitingListEntry struct {
	ID           string        `json:"id"`
	Name         string        `json:"name" validate:"required"`
	PhoneNumbers []PhoneNumber `json:"phoneNumbers"`
	Referral     string        `json:"referral,omitempty"`
	Outcome      string        `json:"outcome,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}
