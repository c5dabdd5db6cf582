package agent

import (
	"errors"

	"github.com/quotelink/referral-api/internal/utils"
	"gorm.io/gorm"
)

// maxIDAttempts limita as tentativas de sortear um id ainda não usado.
const maxIDAttempts = 10

var ErrIDExhausted = errors.New("não foi possível gerar um id de agente único")

type Repository interface {
	GenerateUniqueID(db *gorm.DB) (string, error)
	Create(db *gorm.DB, a *Agent) error
	FindByID(db *gorm.DB, id string) (*Agent, error)
	FindActive(db *gorm.DB, id string) (*Agent, error)
	ListAll(db *gorm.DB) ([]Agent, error)
	ListActive(db *gorm.DB) ([]Agent, error)
	Update(db *gorm.DB, id string, req *UpdateAgentRequest) (*Agent, error)
	Deactivate(db *gorm.DB, id string) error
}

type repositoryImpl struct {
	newID func() (string, error)
}

func NewRepository() Repository {
	return &repositoryImpl{newID: utils.GenerateAgentID}
}

func (r *repositoryImpl) GenerateUniqueID(db *gorm.DB) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id, err := r.newID()
		if err != nil {
			return "", err
		}
		var count int64
		if err := db.Model(&Agent{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return id, nil
		}
	}
	return "", ErrIDExhausted
}

func (r *repositoryImpl) Create(db *gorm.DB, a *Agent) error {
	return db.Create(a).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id string) (*Agent, error) {
	var a Agent
	if err := db.Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// FindActive devolve gorm.ErrRecordNotFound também para agentes desativados.
func (r *repositoryImpl) FindActive(db *gorm.DB, id string) (*Agent, error) {
	var a Agent
	if err := db.Where("id = ? AND is_active = ?", id, true).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repositoryImpl) ListAll(db *gorm.DB) ([]Agent, error) {
	var list []Agent
	err := db.Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) ListActive(db *gorm.DB) ([]Agent, error) {
	var list []Agent
	err := db.Where("is_active = ?", true).Order("id").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Update(db *gorm.DB, id string, req *UpdateAgentRequest) (*Agent, error) {
	a, err := r.FindByID(db, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		a.Name = *req.Name
	}
	if req.Phone != nil {
		a.Phone = *req.Phone
	}
	if req.Email != nil {
		a.Email = req.Email
	}
	if req.Account != nil {
		a.Account = req.Account
	}
	if req.Memo != nil {
		a.Memo = req.Memo
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}
	if err := db.Save(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

func (r *repositoryImpl) Deactivate(db *gorm.DB, id string) error {
	res := db.Model(&Agent{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
