package session

import "time"

// Session é o token de continuidade gerado pelo beacon no navegador;
// não é uma sessão de login do servidor.
type Session struct {
	ID        string     `gorm:"primaryKey;size:64" json:"id"`
	AgentID   string     `gorm:"size:6;index" json:"agentId"`
	Converted bool       `gorm:"not null;default:false" json:"converted"`
	CreatedAt time.Time  `json:"createdAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
}
