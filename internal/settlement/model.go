package settlement

import "time"

const (
	KindSettle = "settle"
	KindAdjust = "adjust"
)

// SettlementRecord é a trilha de auditoria do acerto: uma linha por operação
// que alterou pelo menos uma conversão. Nunca é atualizada.
type SettlementRecord struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	AgentID  string `gorm:"size:6;not null;index" json:"agentId"`
	Month    string `gorm:"size:7;not null;index" json:"month"`
	Kind     string `gorm:"size:10;not null" json:"kind"`
	RowCount int64  `gorm:"not null" json:"rowCount"`
	// settle: total acertado; adjust: novo preço unitário
	Amount    int64     `gorm:"not null" json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}
