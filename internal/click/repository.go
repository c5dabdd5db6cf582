package click

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(db *gorm.DB, c *Click) error
	CountByAgentBetween(db *gorm.DB, agentID string, start, end time.Time) (int64, error)
	LatestForSession(db *gorm.DB, agentID, sessionID string) (*Click, error)
	ListBetween(db *gorm.DB, start, end time.Time) ([]Click, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, c *Click) error {
	return db.Create(c).Error
}

func (r *repositoryImpl) CountByAgentBetween(db *gorm.DB, agentID string, start, end time.Time) (int64, error) {
	var count int64
	err := db.Model(&Click{}).
		Where("agent_id = ? AND created_at BETWEEN ? AND ?", agentID, start.UTC(), end.UTC()).
		Count(&count).Error
	return count, err
}

// LatestForSession devolve nil, nil quando a sessão não tem clique desse agente.
func (r *repositoryImpl) LatestForSession(db *gorm.DB, agentID, sessionID string) (*Click, error) {
	var c Click
	err := db.Where("agent_id = ? AND session_id = ?", agentID, sessionID).
		Order("created_at DESC").
		Order("id DESC").
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repositoryImpl) ListBetween(db *gorm.DB, start, end time.Time) ([]Click, error) {
	var list []Click
	err := db.Select("id", "agent_id", "created_at").
		Where("created_at BETWEEN ? AND ?", start.UTC(), end.UTC()).
		Find(&list).Error
	return list, err
}
