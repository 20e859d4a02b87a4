package domain

// Summary is the aggregate returned by /dashboard/summary.
type Summary struct {
	TotalTook          float64       `json:"totalTook"`
	TotalGave          float64       `json:"totalGave"`
	NetBalance         float64       `json:"netBalance"`
	RecentTransactions []Transaction `json:"recentTransactions,omitempty"`
}
