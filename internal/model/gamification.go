package model

import (
	"time"
)

// Badge 已获得的徽章
type Badge struct {
	BaseModel
	AuditorID   uint   `gorm:"index;type:bigint unsigned;not null" json:"auditorId"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Icon        string `gorm:"size:255" json:"icon"`
	Description string `gorm:"size:255" json:"description"`
	EarnedXP    int    `gorm:"default:0" json:"earnedXp"`
}

func (Badge) TableName() string {
	return "badges"
}

// ChallengeProgress 周挑战进度
type ChallengeProgress struct {
	BaseModel
	AuditorID    uint       `gorm:"index;type:bigint unsigned;not null" json:"auditorId"`
	ChallengeKey string     `gorm:"size:100;not null" json:"challengeKey"`
	Progress     int        `gorm:"default:0" json:"progress"`
	Target       int        `gorm:"default:1" json:"target"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

func (ChallengeProgress) TableName() string {
	return "challenge_progresses"
}

// GamificationSummary 服务端聚合的只读摘要，客户端视为不透明对象
// swagger:model GamificationSummary
type GamificationSummary struct {
	AuditorID  uint  `json:"auditorId"`
	TotalXP    int   `json:"totalXp"`
	Level      int   `json:"level"`
	StreakDays int   `json:"streakDays"`
	BadgeCount int64 `json:"badgeCount"`
	EventCount int64 `json:"eventCount"`
	Rank       int64 `json:"rank"` // 排行榜名次，Redis 不可用时为 0
}
