package analytics

// AgentStats resume o desempenho de um agente no intervalo consultado.
type AgentStats struct {
	AgentID        string  `json:"agentId"`
	Name           string  `json:"name"`
	Clicks         int64   `json:"clicks"`
	Quotes         int     `json:"quotes"`
	Commission     int64   `json:"commission"`
	ConversionRate float64 `json:"conversionRate"`
	Period         string  `json:"period"`
}

// Bucket é uma linha das séries mensal ou diária.
type Bucket struct {
	Period     string `json:"period"`
	Clicks     int64  `json:"clicks"`
	Quotes     int    `json:"quotes"`
	Commission int64  `json:"commission"`
}

type Report struct {
	TotalQuotes     int          `json:"totalQuotes"`
	TotalCommission int64        `json:"totalCommission"`
	AgentStats      []AgentStats `json:"agentStats"`
	MonthlyStats    []Bucket     `json:"monthlyStats"`
	DailyStats      []Bucket     `json:"dailyStats"`
}
