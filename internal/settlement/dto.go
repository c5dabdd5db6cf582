package settlement

type PeriodStats struct {
	AgentID           string `json:"agentId"`
	Name              string `json:"name"`
	Phone             string `json:"phone"`
	Account           string `json:"account"`
	Quotes            int    `json:"quotes"`
	Commission        int64  `json:"commission"`
	SettledCommission int64  `json:"settledCommission"`
	PendingCommission int64  `json:"pendingCommission"`
	UnitPrice         int64  `json:"unitPrice"`
	IsSettled         bool   `json:"isSettled"`
}

type Summary struct {
	TotalAgents       int   `json:"totalAgents"`
	SettledAgents     int   `json:"settledAgents"`
	PendingAgents     int   `json:"pendingAgents"`
	TotalQuotes       int   `json:"totalQuotes"`
	TotalCommission   int64 `json:"totalCommission"`
	SettledCommission int64 `json:"settledCommission"`
	PendingCommission int64 `json:"pendingCommission"`
}

type View struct {
	Month          string        `json:"month"`
	SettlementData []PeriodStats `json:"settlementData"`
	Stats          Summary       `json:"stats"`
}

type CompleteRequest struct {
	AgentID string `json:"agentId" validate:"required_unless=IsBulk true"`
	Month   string `json:"month" validate:"required"`
	IsBulk  bool   `json:"isBulk"`
}

type CompleteResponse struct {
	Success      bool  `json:"success"`
	SettledCount int64 `json:"settledCount"`
}

type UpdateCommissionRequest struct {
	AgentID          string `json:"agentId" validate:"required"`
	Month            string `json:"month" validate:"required"`
	CommissionAmount int64  `json:"commissionAmount" validate:"gt=0"`
}

type UpdateCommissionResponse struct {
	Success      bool  `json:"success"`
	UpdatedCount int64 `json:"updatedCount"`
}
