package model

import (
	"gorm.io/datatypes"
)

// AuditService 市场里可对比的审计服务条目
// swagger:model AuditService
type AuditService struct {
	BaseModel
	Name           string                      `gorm:"size:100;not null" json:"name"`
	Provider       string                      `gorm:"size:100;not null" json:"provider"`
	Category       string                      `gorm:"size:50;index" json:"category"` // smart_contract / protocol / wallet / exchange
	Description    string                      `gorm:"type:text" json:"description"`
	MinPriceUSD    int                         `gorm:"default:0" json:"minPriceUsd"`
	MaxPriceUSD    int                         `gorm:"default:0" json:"maxPriceUsd"`
	TurnaroundDays int                         `gorm:"default:7" json:"turnaroundDays"`
	Rating         float64                     `gorm:"default:0" json:"rating"`
	ReviewCount    int                         `gorm:"default:0" json:"reviewCount"`
	Chains         datatypes.JSONSlice[string] `json:"chains"`
	// 不挂列默认值：挂了 GORM 会把 false 当零值跳过，下架状态写不进去
	Active         bool                        `json:"active"`
}

func (AuditService) TableName() string {
	return "audit_services"
}
