package model

import (
	"time"

	"gorm.io/gorm"
)

// Checkin 记录审计师的每日签到信息
// swagger:model Checkin
type Checkin struct {
	gorm.Model
	ID         uint      `gorm:"primaryKey"`
	AuditorID  uint      `gorm:"type:bigint unsigned;not null;index:idx_auditor_checkin_date,unique"`
	CheckinAt  time.Time `gorm:"not null;index:idx_auditor_checkin_date,unique"`
	StreakDays int       `gorm:"default:1"` // 连续签到天数
}

func (Checkin) TableName() string {
	return "checkins"
}
