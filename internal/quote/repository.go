package quote

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// DuplicateQuery descreve a busca por uma conversão repetida na janela de deduplicação.
// Phone vazio ignora o telefone e compara só agente + sessão.
type DuplicateQuery struct {
	AgentID   string
	SessionID string
	Phone     string
	Since     time.Time
}

type Repository interface {
	Create(db *gorm.DB, q *QuoteRequest) error
	FindByID(db *gorm.DB, id uint) (*QuoteRequest, error)
	FindRecentDuplicate(db *gorm.DB, q DuplicateQuery) (*QuoteRequest, error)
	ListByAgentBetween(db *gorm.DB, agentID string, start, end time.Time) ([]QuoteRequest, error)
	ListBetween(db *gorm.DB, start, end time.Time) ([]QuoteRequest, error)
	AgentsWithUnsettled(db *gorm.DB, start, end time.Time) ([]string, error)
	SettleUnsettled(db *gorm.DB, agentID, month string, start, end time.Time) (int64, error)
	SetUnsettledCommission(db *gorm.DB, agentID string, start, end time.Time, amount int64) (int64, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, q *QuoteRequest) error {
	return db.Create(q).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*QuoteRequest, error) {
	var q QuoteRequest
	if err := db.First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// FindRecentDuplicate retorna nil, nil quando não há repetição.
func (r *repositoryImpl) FindRecentDuplicate(db *gorm.DB, dq DuplicateQuery) (*QuoteRequest, error) {
	tx := db.Where("agent_id = ? AND session_id = ? AND created_at >= ?", dq.AgentID, dq.SessionID, dq.Since.UTC())
	if dq.Phone != "" {
		tx = tx.Where("customer_phone = ?", dq.Phone)
	}
	var q QuoteRequest
	err := tx.Order("created_at DESC").Order("id DESC").First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *repositoryImpl) ListByAgentBetween(db *gorm.DB, agentID string, start, end time.Time) ([]QuoteRequest, error) {
	var list []QuoteRequest
	err := db.Where("agent_id = ? AND created_at BETWEEN ? AND ?", agentID, start.UTC(), end.UTC()).
		Order("created_at").
		Find(&list).Error
	return list, err
}

func (r *repositoryImpl) ListBetween(db *gorm.DB, start, end time.Time) ([]QuoteRequest, error) {
	var list []QuoteRequest
	err := db.Where("created_at BETWEEN ? AND ?", start.UTC(), end.UTC()).
		Order("created_at").
		Find(&list).Error
	return list, err
}

func (r *repositoryImpl) AgentsWithUnsettled(db *gorm.DB, start, end time.Time) ([]string, error) {
	var ids []string
	err := db.Model(&QuoteRequest{}).
		Where("is_settled = ? AND created_at BETWEEN ? AND ?", false, start.UTC(), end.UTC()).
		Distinct("agent_id").
		Order("agent_id").
		Pluck("agent_id", &ids).Error
	return ids, err
}

// SettleUnsettled marca como acertadas apenas as linhas ainda em aberto; repetir
// a chamada não altera nada e devolve zero.
func (r *repositoryImpl) SettleUnsettled(db *gorm.DB, agentID, month string, start, end time.Time) (int64, error) {
	res := db.Model(&QuoteRequest{}).
		Where("agent_id = ? AND is_settled = ? AND created_at BETWEEN ? AND ?", agentID, false, start.UTC(), end.UTC()).
		Updates(map[string]any{
			"is_settled":       true,
			"settlement_month": month,
		})
	return res.RowsAffected, res.Error
}

// SetUnsettledCommission nunca toca linhas já acertadas.
func (r *repositoryImpl) SetUnsettledCommission(db *gorm.DB, agentID string, start, end time.Time, amount int64) (int64, error) {
	res := db.Model(&QuoteRequest{}).
		Where("agent_id = ? AND is_settled = ? AND created_at BETWEEN ? AND ?", agentID, false, start.UTC(), end.UTC()).
		Update("commission_amount", amount)
	return res.RowsAffected, res.Error
}
