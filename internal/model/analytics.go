package model

import (
	"time"

	"gorm.io/datatypes"
)

type EventType string

const (
	EventQuickWinCompleted   EventType = "quick_win_completed"
	EventDailyCheckin        EventType = "daily_checkin"
	EventOnboardingCompleted EventType = "onboarding_completed"
	EventPageView            EventType = "page_view"
	EventInteraction         EventType = "interaction"
	EventServiceViewed       EventType = "service_viewed"
	EventServiceCompared     EventType = "service_compared"
	EventPreferencesUpdated  EventType = "preferences_updated"
)

// DeviceInfo 每次调用采集一次的设备快照
type DeviceInfo struct {
	UserAgent        string `json:"userAgent,omitempty"`
	Locale           string `json:"locale,omitempty"`
	Timezone         string `json:"timezone,omitempty"`
	ScreenResolution string `json:"screenResolution,omitempty"`
}

// GamificationAnalytics 游戏化事件日志，只追加不修改，主键用UUID避免暴露写入量
type GamificationAnalytics struct {
	UUIDBase
	AuditorID uint               `gorm:"index;type:bigint unsigned;not null" json:"auditorId"`
	EventType string             `gorm:"size:50;index" json:"eventType"`
	EventData datatypes.JSONMap  `json:"eventData"`
	SessionID string             `gorm:"size:64;index" json:"sessionId"`
	Device    DeviceInfo         `gorm:"serializer:json" json:"deviceInfo"`
	Timestamp time.Time          `gorm:"index" json:"timestamp"`
}

func (GamificationAnalytics) TableName() string {
	return "gamification_analytics"
}

// BehavioralAnalytics 行为事件日志，与游戏化日志分表，用于模式挖掘
type BehavioralAnalytics struct {
	UUIDBase
	AuditorID uint               `gorm:"index;type:bigint unsigned;not null" json:"auditorId"`
	EventType string             `gorm:"size:50;index" json:"eventType"`
	EventData datatypes.JSONMap  `json:"eventData"`
	SessionID string             `gorm:"size:64;index" json:"sessionId"`
	Device    DeviceInfo         `gorm:"serializer:json" json:"deviceInfo"`
	Timestamp time.Time          `gorm:"index" json:"timestamp"`
}

func (BehavioralAnalytics) TableName() string {
	return "behavioral_analytics"
}

// EventPayload 已知事件类型的结构化负载；未知类型走开放 map
type EventPayload interface {
	Type() EventType
	Fields() map[string]interface{}
}

type QuickWinCompletedPayload struct {
	QuickWinID string `json:"quickWinId"`
	XPValue    int    `json:"xpValue"`
}

func (QuickWinCompletedPayload) Type() EventType { return EventQuickWinCompleted }

func (p QuickWinCompletedPayload) Fields() map[string]interface{} {
	return map[string]interface{}{
		"quick_win_id": p.QuickWinID,
		"xp_value":     p.XPValue,
	}
}

type InteractionPayload struct {
	Element string            `json:"element"`
	Action  string            `json:"action"`
	Context map[string]string `json:"context,omitempty"`
}

func (InteractionPayload) Type() EventType { return EventInteraction }

func (p InteractionPayload) Fields() map[string]interface{} {
	m := map[string]interface{}{
		"element": p.Element,
		"action":  p.Action,
	}
	for k, v := range p.Context {
		m["ctx_"+k] = v
	}
	return m
}

type PageViewPayload struct {
	Page     string `json:"page"`
	Referrer string `json:"referrer,omitempty"`
}

func (PageViewPayload) Type() EventType { return EventPageView }

func (p PageViewPayload) Fields() map[string]interface{} {
	return map[string]interface{}{
		"page":     p.Page,
		"referrer": p.Referrer,
	}
}

type ServiceViewedPayload struct {
	ServiceID uint   `json:"serviceId"`
	Category  string `json:"category,omitempty"`
}

func (ServiceViewedPayload) Type() EventType { return EventServiceViewed }

func (p ServiceViewedPayload) Fields() map[string]interface{} {
	return map[string]interface{}{
		"service_id": p.ServiceID,
		"category":   p.Category,
	}
}
