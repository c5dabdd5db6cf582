package session

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Ensure(db *gorm.DB, id, agentID string, at time.Time) error
	MarkConverted(db *gorm.DB, id string, at time.Time) error
	FindByID(db *gorm.DB, id string) (*Session, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

// Ensure cria a sessão na primeira vez que ela aparece; chamadas seguintes não mudam nada.
func (r *repositoryImpl) Ensure(db *gorm.DB, id, agentID string, at time.Time) error {
	s := Session{ID: id, AgentID: agentID, CreatedAt: at.UTC()}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&s).Error
}

// MarkConverted grava converted=true e o fim da sessão. Sessões que o servidor
// nunca viu (sem clique registrado) são criadas já convertidas.
func (r *repositoryImpl) MarkConverted(db *gorm.DB, id string, at time.Time) error {
	at = at.UTC()
	res := db.Model(&Session{}).Where("id = ?", id).Updates(map[string]any{
		"converted": true,
		"ended_at":  at,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	s := Session{ID: id, Converted: true, CreatedAt: at, EndedAt: &at}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&s).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id string) (*Session, error) {
	var s Session
	if err := db.Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
