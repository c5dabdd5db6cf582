package settlement

import "gorm.io/gorm"

type Repository interface {
	Append(db *gorm.DB, rec *SettlementRecord) error
	ListByMonth(db *gorm.DB, month string) ([]SettlementRecord, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Append(db *gorm.DB, rec *SettlementRecord) error {
	return db.Create(rec).Error
}

func (r *repositoryImpl) ListByMonth(db *gorm.DB, month string) ([]SettlementRecord, error) {
	var list []SettlementRecord
	err := db.Where("month = ?", month).Order("id").Find(&list).Error
	return list, err
}
