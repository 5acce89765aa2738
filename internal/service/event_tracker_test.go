package service

import (
	"audit_market_backend/internal/model"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTrackerSessionID(t *testing.T) {
	env := newTestEnv(t)

	first := env.tracker.SessionID()
	assert.NotEmpty(t, first)

	// 会话ID在显式重置前保持不变
	require.NoError(t, env.tracker.TrackEvent(1, model.EventPageView, map[string]interface{}{"page": "/dashboard"}, model.DeviceInfo{}))
	require.NoError(t, env.tracker.TrackEvent(1, model.EventInteraction, map[string]interface{}{"element": "cta"}, model.DeviceInfo{}))
	assert.Equal(t, first, env.tracker.SessionID())

	events, err := env.analyticsRepo.FindGamificationEvents(1, "", time.Time{}, time.Time{}, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	for _, e := range events {
		assert.Equal(t, first, e.SessionID)
	}

	second := env.tracker.ResetSession()
	assert.NotEqual(t, first, second)
	assert.Equal(t, second, env.tracker.SessionID())
}

func TestEventTrackerTypedPayload(t *testing.T) {
	env := newTestEnv(t)

	device := model.DeviceInfo{
		UserAgent: "Mozilla/5.0",
		Timezone:  "Asia/Shanghai",
	}
	require.NoError(t, env.tracker.Track(7, model.QuickWinCompletedPayload{
		QuickWinID: "add_github",
		XPValue:    75,
	}, device))

	events, err := env.analyticsRepo.FindGamificationEvents(7, string(model.EventQuickWinCompleted), time.Time{}, time.Time{}, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, "add_github", events[0].EventData["quick_win_id"])
	// JSONMap 解码用 UseNumber，数字回来是 json.Number
	assert.Equal(t, json.Number("75"), events[0].EventData["xp_value"])
	assert.Equal(t, "Asia/Shanghai", events[0].Device.Timezone)
}

func TestEventTrackerBehavioralSeparateTable(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.tracker.TrackBehavioral(3, model.InteractionPayload{
		Element: "compare-button",
		Action:  "click",
		Context: map[string]string{"screen": "marketplace"},
	}, model.DeviceInfo{}))

	behavioral, err := env.analyticsRepo.FindBehavioralEvents(3, "", time.Time{}, time.Time{}, 0)
	require.NoError(t, err)
	require.Len(t, behavioral, 1)
	assert.Equal(t, "compare-button", behavioral[0].EventData["element"])
	assert.Equal(t, "marketplace", behavioral[0].EventData["ctx_screen"])

	// 行为事件不会混进游戏化日志
	gamification, err := env.analyticsRepo.FindGamificationEvents(3, "", time.Time{}, time.Time{}, 0)
	require.NoError(t, err)
	assert.Empty(t, gamification)
}

func TestEventTrackerInsertFailure(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.db.Migrator().DropTable(&model.GamificationAnalytics{}))

	err := env.tracker.TrackEvent(1, model.EventPageView, nil, model.DeviceInfo{})
	assert.Error(t, err)
}

func TestEventTrackerEventsOrderedByTimestamp(t *testing.T) {
	env := newTestEnv(t)

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		ts := base.Add(time.Duration(i) * time.Minute)
		env.tracker.now = func() time.Time { return ts }
		require.NoError(t, env.tracker.TrackEvent(5, model.EventPageView, map[string]interface{}{"seq": i}, model.DeviceInfo{}))
	}

	events, err := env.analyticsRepo.FindGamificationEvents(5, "", time.Time{}, time.Time{}, 0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	// 时间倒序，最新在前
	assert.Equal(t, json.Number("2"), events[0].EventData["seq"])
	assert.Equal(t, json.Number("0"), events[2].EventData["seq"])
}
