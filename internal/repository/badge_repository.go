package repository

import (
	"audit_market_backend/internal/model"

	"gorm.io/gorm"
)

type BadgeRepository struct {
	DB *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) *BadgeRepository {
	return &BadgeRepository{DB: db}
}

func (r *BadgeRepository) Create(badge *model.Badge) error {
	return r.DB.Create(badge).Error
}

func (r *BadgeRepository) FindByAuditor(auditorID uint) ([]model.Badge, error) {
	var badges []model.Badge
	err := r.DB.Where("auditor_id = ?", auditorID).Order("created_at DESC").Find(&badges).Error
	return badges, err
}

func (r *BadgeRepository) CountByAuditor(auditorID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Badge{}).Where("auditor_id = ?", auditorID).Count(&count).Error
	return count, err
}

func (r *BadgeRepository) ExistsByName(auditorID uint, name string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Badge{}).
		Where("auditor_id = ? AND name = ?", auditorID, name).
		Count(&count).Error
	return count > 0, err
}
