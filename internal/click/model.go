package click

import "time"

// Click é uma visita atribuída a um agente. Imutável depois de criado.
type Click struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AgentID     string    `gorm:"size:6;not null;index:idx_click_agent_created,priority:1" json:"agentId"`
	SessionID   string    `gorm:"size:64;not null;index" json:"sessionId"`
	LandingURL  string    `gorm:"type:text" json:"landingUrl"`
	Referrer    string    `gorm:"type:text" json:"referrer"`
	UserAgent   string    `gorm:"type:text" json:"userAgent"`
	IPAddress   string    `gorm:"size:64" json:"ipAddress"`
	UTMSource   string    `gorm:"size:100" json:"utmSource,omitempty"`
	UTMMedium   string    `gorm:"size:100" json:"utmMedium,omitempty"`
	UTMCampaign string    `gorm:"size:100" json:"utmCampaign,omitempty"`
	CreatedAt   time.Time `gorm:"index:idx_click_agent_created,priority:2" json:"createdAt"`
}
