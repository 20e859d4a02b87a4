package domain

import "time"

// Contact is a person transactions can be recorded against.
type Contact struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// ContactBalance is the per-contact aggregate from /contacts/balances.
// Rows are keyed by the contact's id, so the field decodes from the
// same _id key the contact itself uses. Balance is positive when the
// contact owes the user.
type ContactBalance struct {
	ContactID   string  `json:"_id"`
	ContactName string  `json:"contactName"`
	TotalGave   float64 `json:"totalGave"`
	TotalTook   float64 `json:"totalTook"`
	Balance     float64 `json:"balance"`
}
