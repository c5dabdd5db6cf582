package quote

import "time"

// DefaultCommission é o valor pago por conversão quando nenhum preço
// unitário foi definido para o registro.
const DefaultCommission int64 = 10000

const (
	StatusPending = "pending"

	TypeQuoteRequest = "quote_request"
)

// QuoteRequest é a conversão comissionável atribuída a um agente.
type QuoteRequest struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	AgentID        string  `gorm:"size:6;not null;index:idx_quote_agent_created,priority:1" json:"agentId"`
	ClickID        *uint   `gorm:"index" json:"clickId,omitempty"`
	SessionID      *string `gorm:"size:64;index" json:"sessionId,omitempty"`
	CustomerName   string  `gorm:"size:100" json:"customerName"`
	CustomerPhone  string  `gorm:"size:20;index" json:"customerPhone"` // apenas dígitos
	ServiceType    string  `gorm:"size:100" json:"serviceType"`
	Address        string  `gorm:"size:255" json:"address"`
	Message        string  `gorm:"type:text" json:"message"`
	ConversionType string  `gorm:"size:50;not null" json:"conversionType"`
	Status         string  `gorm:"size:30;not null;default:'pending'" json:"status"`

	// Payload original do formulário, em JSONB
	FormData map[string]any `gorm:"type:jsonb;serializer:json" json:"formData"`

	// nulo = usa DefaultCommission
	CommissionAmount *int64  `json:"commissionAmount"`
	IsSettled        bool    `gorm:"not null;default:false;index" json:"isSettled"`
	SettlementMonth  *string `gorm:"size:7;index" json:"settlementMonth,omitempty"`

	CreatedAt time.Time `gorm:"index:idx_quote_agent_created,priority:2" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EffectiveCommission aplica a regra de valor padrão da comissão.
func EffectiveCommission(amount *int64) int64 {
	if amount == nil {
		return DefaultCommission
	}
	return *amount
}

// SumCommission soma a comissão efetiva de uma lista de conversões.
func SumCommission(list []QuoteRequest) int64 {
	var total int64
	for _, q := range list {
		total += EffectiveCommission(q.CommissionAmount)
	}
	return total
}
