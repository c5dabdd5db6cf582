package agent

import "time"

// Agent é o parceiro dono de um link de indicação. Nunca é apagado do banco:
// a exclusão apenas desativa, para manter as conversões antigas atribuíveis.
type Agent struct {
	ID        string    `gorm:"primaryKey;size:6" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Phone     string    `gorm:"size:20;not null" json:"phone"`
	Email     *string   `gorm:"size:100" json:"email,omitempty"`
	Account   *string   `gorm:"size:255" json:"account,omitempty"` // dados bancários
	Memo      *string   `gorm:"type:text" json:"memo,omitempty"`
	IsActive  bool      `gorm:"not null;default:true;index" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
