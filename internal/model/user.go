package model

import (
	"time"
)

type UserRole string

const (
	Auditor UserRole = "auditor"
	Client  UserRole = "client"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name      string    `gorm:"size:100;not null" json:"Name"`
	Email     string    `gorm:"size:100;unique;not null" json:"Email"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Role      UserRole  `gorm:"size:20;default:'auditor'" json:"Role"`
	Language  string    `gorm:"size:10;default:'en'" json:"Language"`
	Avatar    string    `gorm:"size:255" json:"avatar"`
	Disabled  bool      `gorm:"default:false" json:"Disabled"`
	Onboarded bool      `gorm:"default:false" json:"Onboarded"` // 是否已完成引导并建立审计师画像
	// 创建时由 GORM 填充，不用方言相关的列默认值
	LastLogin time.Time `gorm:"autoCreateTime" json:"LastLogin"`
	LastSeen  time.Time `gorm:"autoCreateTime" json:"LastSeen"`
}

func (User) TableName() string {
	return "users"
}
