package repository

import (
	"audit_market_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type CheckinRepository struct {
	DB *gorm.DB
}

// NewCheckinRepository 创建新的签到仓库实例
func NewCheckinRepository(db *gorm.DB) *CheckinRepository {
	return &CheckinRepository{DB: db}
}

// Create 创建新的签到记录
func (r *CheckinRepository) Create(checkin *model.Checkin) error {
	return r.DB.Create(checkin).Error
}

// FindByAuditorAndDate 检查审计师在指定日期是否已签到
func (r *CheckinRepository) FindByAuditorAndDate(auditorID uint, date time.Time) (*model.Checkin, error) {
	var checkin model.Checkin
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.Add(24 * time.Hour).Add(-1 * time.Nanosecond)

	err := r.DB.Where("auditor_id = ? AND checkin_at BETWEEN ? AND ?", auditorID, startOfDay, endOfDay).First(&checkin).Error
	if err != nil {
		return nil, err
	}
	return &checkin, nil
}

// FindLatestByAuditor 获取审计师最近的签到记录
func (r *CheckinRepository) FindLatestByAuditor(auditorID uint) (*model.Checkin, error) {
	var checkin model.Checkin
	err := r.DB.Where("auditor_id = ?", auditorID).Order("checkin_at DESC").First(&checkin).Error
	if err != nil {
		return nil, err
	}
	return &checkin, nil
}

// GetCheckinCountByAuditor 获取审计师的总签到次数
func (r *CheckinRepository) GetCheckinCountByAuditor(auditorID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Checkin{}).Where("auditor_id = ?", auditorID).Count(&count).Error
	return count, err
}
