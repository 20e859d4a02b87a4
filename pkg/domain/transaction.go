package domain

import "time"

// Transaction types. GAVE is money going out (expense),
// TOOK is money coming in (income).
const (
	TypeGave = "GAVE"
	TypeTook = "TOOK"
)

// ValidType returns true if the given string is a known transaction type.
func ValidType(t string) bool {
	return t == TypeGave || t == TypeTook
}

// Transaction is a single gave/took entry. Contact is nil for
// personal transactions not tied to anyone.
type Transaction struct {
	ID              string    `json:"_id"`
	Type            string    `json:"type"`
	Amount          float64   `json:"amount"`
	Note            string    `json:"note,omitempty"`
	Contact         *Contact  `json:"contact,omitempty"`
	TransactionDate time.Time `json:"transactionDate"`
	CreatedAt       time.Time `json:"createdAt,omitempty"`
}

// Pagination describes the window returned by the transactions list endpoint.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}
