package service

import (
	"audit_market_backend/internal/model"
	"audit_market_backend/internal/repository"
	"audit_market_backend/pkg/logger"
	"audit_market_backend/pkg/monitoring"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// EventTracker 往两张只追加的分析日志表写事件。
// 所有 Track 方法都返回 error 供测试断言，但调用方按 fire-and-forget
// 处理：记日志、不重试、不向上传播。
type EventTracker struct {
	AnalyticsRepo *repository.AnalyticsRepository

	mu        sync.RWMutex
	sessionID string

	now func() time.Time
}

// NewEventTracker 构造时即生成会话ID，进程内所有事件共用，
// 直到显式 ResetSession。会话ID只是分析归组用的关联标签。
func NewEventTracker(analyticsRepo *repository.AnalyticsRepository) *EventTracker {
	return &EventTracker{
		AnalyticsRepo: analyticsRepo,
		sessionID:     model.GenerateUUID(),
		now:           time.Now,
	}
}

func (t *EventTracker) SessionID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sessionID
}

func (t *EventTracker) ResetSession() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessionID = model.GenerateUUID()
	return t.sessionID
}

// Track 记录一条已知类型的游戏化事件
func (t *EventTracker) Track(auditorID uint, payload model.EventPayload, device model.DeviceInfo) error {
	return t.TrackEvent(auditorID, payload.Type(), payload.Fields(), device)
}

// TrackEvent 记录一条游戏化事件，data 可为任意探索性负载
func (t *EventTracker) TrackEvent(auditorID uint, eventType model.EventType, data map[string]interface{}, device model.DeviceInfo) error {
	event := &model.GamificationAnalytics{
		AuditorID: auditorID,
		EventType: string(eventType),
		EventData: datatypes.JSONMap(data),
		SessionID: t.SessionID(),
		Device:    device,
		Timestamp: t.now(),
	}

	if err := t.AnalyticsRepo.InsertGamification(event); err != nil {
		monitoring.TrackingFailures.WithLabelValues("gamification").Inc()
		logger.Log.Warn("failed to track gamification event",
			zap.Uint("auditorId", auditorID),
			zap.String("eventType", string(eventType)),
			zap.Error(err))
		return err
	}
	return nil
}

// TrackBehavioral 记录一条已知类型的行为事件
func (t *EventTracker) TrackBehavioral(auditorID uint, payload model.EventPayload, device model.DeviceInfo) error {
	return t.TrackBehavioralEvent(auditorID, payload.Type(), payload.Fields(), device)
}

// TrackBehavioralEvent 同 TrackEvent，落到行为日志表
func (t *EventTracker) TrackBehavioralEvent(auditorID uint, eventType model.EventType, data map[string]interface{}, device model.DeviceInfo) error {
	event := &model.BehavioralAnalytics{
		AuditorID: auditorID,
		EventType: string(eventType),
		EventData: datatypes.JSONMap(data),
		SessionID: t.SessionID(),
		Device:    device,
		Timestamp: t.now(),
	}

	if err := t.AnalyticsRepo.InsertBehavioral(event); err != nil {
		monitoring.TrackingFailures.WithLabelValues("behavioral").Inc()
		logger.Log.Warn("failed to track behavioral event",
			zap.Uint("auditorId", auditorID),
			zap.String("eventType", string(eventType)),
			zap.Error(err))
		return err
	}
	return nil
}
