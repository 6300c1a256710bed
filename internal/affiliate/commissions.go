package affiliate

// Commission is one commission/transaction event reported by a network.
// Date stays a string; the networks disagree on formats and the value is
// display-only.
type Commission struct {
	TransactionID string  `json:"transaction_id"`
	Network       string  `json:"network"`
	Advertiser    string  `json:"advertiser"`
	Product       string  `json:"product"`
	Amount        float64 `json:"commission"`
	Status        string  `json:"status"`
	Date          string  `json:"date"`
}

// CommissionSummary aggregates commission events across networks. Confirmed
// vs pending classification is provider-aware: each client decides which of
// its status strings count as confirmed.
type CommissionSummary struct {
	TotalEarnings     float64        `json:"total_earnings"`
	ConfirmedEarnings float64        `json:"confirmed_earnings"`
	PendingEarnings   float64        `json:"pending_earnings"`
	CommissionCount   int            `json:"commission_count"`
	Commissions       []Commission   `json:"commissions"`
	NetworkBreakdown  map[string]int `json:"network_breakdown"`
}
