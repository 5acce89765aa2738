package repository

import (
	"audit_market_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type AnalyticsRepository struct {
	DB *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{DB: db}
}

// InsertGamification 追加一条游戏化事件，写入后不再修改
func (r *AnalyticsRepository) InsertGamification(event *model.GamificationAnalytics) error {
	return r.DB.Create(event).Error
}

// InsertBehavioral 追加一条行为事件
func (r *AnalyticsRepository) InsertBehavioral(event *model.BehavioralAnalytics) error {
	return r.DB.Create(event).Error
}

// FindGamificationEvents 按审计师、事件类型和时间范围查询，时间倒序
func (r *AnalyticsRepository) FindGamificationEvents(auditorID uint, eventType string, since, until time.Time, limit int) ([]model.GamificationAnalytics, error) {
	var events []model.GamificationAnalytics
	query := r.DB.Where("auditor_id = ?", auditorID)
	if eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}
	if !since.IsZero() {
		query = query.Where("timestamp >= ?", since)
	}
	if !until.IsZero() {
		query = query.Where("timestamp <= ?", until)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Order("timestamp DESC").Find(&events).Error
	return events, err
}

func (r *AnalyticsRepository) FindBehavioralEvents(auditorID uint, eventType string, since, until time.Time, limit int) ([]model.BehavioralAnalytics, error) {
	var events []model.BehavioralAnalytics
	query := r.DB.Where("auditor_id = ?", auditorID)
	if eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}
	if !since.IsZero() {
		query = query.Where("timestamp >= ?", since)
	}
	if !until.IsZero() {
		query = query.Where("timestamp <= ?", until)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Order("timestamp DESC").Find(&events).Error
	return events, err
}

func (r *AnalyticsRepository) CountGamificationEvents(auditorID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.GamificationAnalytics{}).
		Where("auditor_id = ?", auditorID).
		Count(&count).Error
	return count, err
}

// CompletedQuickWinIDs 从 quick_win_completed 事件里提取已完成的 quick win id，
// since 非零时只统计该时刻之后的完成记录（每日任务按天重置）
func (r *AnalyticsRepository) CompletedQuickWinIDs(auditorID uint, since time.Time) (map[string]bool, error) {
	events, err := r.FindGamificationEvents(auditorID, string(model.EventQuickWinCompleted), since, time.Time{}, 0)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(events))
	for _, e := range events {
		if id, ok := e.EventData["quick_win_id"].(string); ok && id != "" {
			ids[id] = true
		}
	}
	return ids, nil
}
