package service

import (
	"audit_market_backend/internal/model"
	"audit_market_backend/internal/util"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestView(t *testing.T, env *testEnv, userID uint) *PersonalizationView {
	t.Helper()
	return NewPersonalizationView(userID, env.personalization, env.gamification, env.tracker, 5*time.Minute)
}

func TestViewRefreshPopulatesState(t *testing.T) {
	env := newTestEnv(t)
	profile := env.createProfile(t, 1, nil)
	view := newTestView(t, env, 1)

	require.NoError(t, view.Refresh(context.Background()))

	assert.Equal(t, StateReady, view.State())
	assert.True(t, view.HasPersonalizedContent())
	assert.False(t, view.IsContentStale())

	snapshot, err := view.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, profile.ID, snapshot.Profile.ID)
	assert.NotNil(t, snapshot.Content)
	assert.NotNil(t, snapshot.Summary)
	assert.Empty(t, snapshot.Error)
	assert.Equal(t, env.tracker.SessionID(), snapshot.SessionID)
}

func TestViewRefreshWithoutProfile(t *testing.T) {
	env := newTestEnv(t)
	view := newTestView(t, env, 99)

	err := view.Refresh(context.Background())
	assert.ErrorIs(t, err, util.ErrProfileNotFound)
	assert.Equal(t, StateError, view.State())
	assert.False(t, view.HasPersonalizedContent())

	_, err = view.Snapshot(context.Background())
	assert.ErrorIs(t, err, util.ErrProfileNotFound)
}

func TestViewStalenessBoundary(t *testing.T) {
	env := newTestEnv(t)
	env.createProfile(t, 1, nil)
	view := newTestView(t, env, 1)

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	current := base
	view.now = func() time.Time { return current }

	require.NoError(t, view.Refresh(context.Background()))
	assert.False(t, view.IsContentStale())

	// 差一纳秒到期仍视为新鲜
	current = base.Add(5*time.Minute - time.Nanosecond)
	assert.False(t, view.IsContentStale())

	// 到期时刻即为过期
	current = base.Add(5 * time.Minute)
	assert.True(t, view.IsContentStale())
}

func TestViewSnapshotRefreshesWhenStale(t *testing.T) {
	env := newTestEnv(t)
	env.createProfile(t, 1, nil)
	view := newTestView(t, env, 1)

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	current := base
	view.now = func() time.Time { return current }

	require.NoError(t, view.Refresh(context.Background()))
	firstFetch := view.lastFetch

	current = base.Add(10 * time.Minute)
	snapshot, err := view.Snapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, snapshot.LastFetch.After(firstFetch))
	assert.False(t, snapshot.Stale)
}

func TestViewKeepsStaleDataWhenRefreshFails(t *testing.T) {
	env := newTestEnv(t)
	env.createProfile(t, 1, nil)
	view := newTestView(t, env, 1)

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	current := base
	view.now = func() time.Time { return current }

	require.NoError(t, view.Refresh(context.Background()))

	// 画像表消失导致后续刷新失败，但旧数据保持可见
	require.NoError(t, env.db.Migrator().DropTable(&model.AuditorProfile{}))
	current = base.Add(10 * time.Minute)

	snapshot, err := view.Snapshot(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, snapshot.Content)
	assert.NotEmpty(t, snapshot.Error)
	assert.True(t, snapshot.Stale)
}

func TestViewRefreshAfterClose(t *testing.T) {
	env := newTestEnv(t)
	env.createProfile(t, 1, nil)
	view := newTestView(t, env, 1)

	view.Close()
	assert.ErrorIs(t, view.Refresh(context.Background()), util.ErrViewClosed)
}

func TestViewConcurrentRefresh(t *testing.T) {
	env := newTestEnv(t)
	env.createProfile(t, 1, nil)
	view := newTestView(t, env, 1)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, view.Refresh(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, StateReady, view.State())
}

func TestCompleteQuickWinOptimisticFlip(t *testing.T) {
	env := newTestEnv(t)
	profile := env.createProfile(t, 1, nil)
	view := newTestView(t, env, 1)
	require.NoError(t, view.Refresh(context.Background()))

	var target model.QuickWin
	snapshot, err := view.Snapshot(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, snapshot.Content.QuickWins)
	target = snapshot.Content.QuickWins[0]
	require.False(t, target.Completed)

	ok := view.CompleteQuickWin(context.Background(), target, model.DeviceInfo{})
	assert.True(t, ok)

	// 本地标记翻转
	snapshot, err = view.Snapshot(context.Background())
	require.NoError(t, err)
	for _, w := range snapshot.Content.QuickWins {
		if w.ID == target.ID {
			assert.True(t, w.Completed)
		}
	}

	// 事件落库且 XP 已入账
	events, err := env.analyticsRepo.FindGamificationEvents(profile.ID, string(model.EventQuickWinCompleted), time.Time{}, time.Time{}, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, target.ID, events[0].EventData["quick_win_id"])

	stored, err := env.profileRepo.FindByID(profile.ID)
	require.NoError(t, err)
	assert.Equal(t, target.XPValue, stored.XP)
}

func TestSnapshotUnaffectedByLaterOptimisticFlip(t *testing.T) {
	env := newTestEnv(t)
	env.createProfile(t, 1, nil)
	view := newTestView(t, env, 1)
	require.NoError(t, view.Refresh(context.Background()))

	before, err := view.Snapshot(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, before.Content.QuickWins)
	target := before.Content.QuickWins[0]
	require.False(t, target.Completed)

	assert.True(t, view.CompleteQuickWin(context.Background(), target, model.DeviceInfo{}))

	// 已发出的快照持有自己的拷贝，不随后续乐观更新变化
	assert.False(t, before.Content.QuickWins[0].Completed)

	after, err := view.Snapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, after.Content.QuickWins[0].Completed)
}

func TestCompleteQuickWinXPFromRuleTable(t *testing.T) {
	env := newTestEnv(t)
	profile := env.createProfile(t, 1, nil)
	view := newTestView(t, env, 1)
	require.NoError(t, view.Refresh(context.Background()))

	// 客户端送来的 XP 数值不作数，重复完成也只入账一次
	forged := model.QuickWin{ID: "add_github", XPValue: 1000000}
	assert.True(t, view.CompleteQuickWin(context.Background(), forged, model.DeviceInfo{}))
	assert.True(t, view.CompleteQuickWin(context.Background(), forged, model.DeviceInfo{}))

	stored, err := env.profileRepo.FindByID(profile.ID)
	require.NoError(t, err)
	assert.Equal(t, quickWinXP["add_github"], stored.XP)
}

func TestCompleteQuickWinUnknownIDStillTracked(t *testing.T) {
	env := newTestEnv(t)
	profile := env.createProfile(t, 1, nil)
	view := newTestView(t, env, 1)
	require.NoError(t, view.Refresh(context.Background()))

	ok := view.CompleteQuickWin(context.Background(), model.QuickWin{ID: "made_up", XPValue: 10}, model.DeviceInfo{})
	assert.True(t, ok)

	// 未知 id 不改内容状态
	snapshot, err := view.Snapshot(context.Background())
	require.NoError(t, err)
	for _, w := range snapshot.Content.QuickWins {
		assert.False(t, w.Completed)
	}

	events, err := env.analyticsRepo.FindGamificationEvents(profile.ID, string(model.EventQuickWinCompleted), time.Time{}, time.Time{}, 0)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	// 不在规则表里的 id 不发 XP
	stored, err := env.profileRepo.FindByID(profile.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.XP)
}

func TestCompleteQuickWinTrackFailure(t *testing.T) {
	env := newTestEnv(t)
	env.createProfile(t, 1, nil)
	view := newTestView(t, env, 1)
	require.NoError(t, view.Refresh(context.Background()))

	snapshot, err := view.Snapshot(context.Background())
	require.NoError(t, err)
	target := snapshot.Content.QuickWins[0]

	require.NoError(t, env.db.Migrator().DropTable(&model.GamificationAnalytics{}))

	ok := view.CompleteQuickWin(context.Background(), target, model.DeviceInfo{})
	assert.False(t, ok)

	// 乐观更新保持生效，不回滚
	view.mu.Lock()
	flipped := false
	for _, w := range view.content.QuickWins {
		if w.ID == target.ID && w.Completed {
			flipped = true
		}
	}
	view.mu.Unlock()
	assert.True(t, flipped)
}

func TestCompleteQuickWinDailyCheckinRecordsStreak(t *testing.T) {
	env := newTestEnv(t)
	profile := env.createProfile(t, 1, func(p *model.AuditorProfile) {
		p.Bio = "bio"
		p.GithubUsername = "alice"
		p.ExperienceLevel = model.Expert
	})
	view := newTestView(t, env, 1)
	require.NoError(t, view.Refresh(context.Background()))

	ok := view.CompleteQuickWin(context.Background(), model.QuickWin{ID: "daily_checkin", XPValue: 25}, model.DeviceInfo{})
	assert.True(t, ok)

	count, err := env.checkinRepo.GetCheckinCountByAuditor(profile.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestUpdatePreferencesMergeOnSuccessOnly(t *testing.T) {
	env := newTestEnv(t)
	env.createProfile(t, 1, func(p *model.AuditorProfile) {
		p.Preferences = model.UserPreferences{Theme: "dark"}
	})
	view := newTestView(t, env, 1)
	require.NoError(t, view.Refresh(context.Background()))

	next := model.UserPreferences{Theme: "light", DashboardLayout: "compact"}
	require.NoError(t, view.UpdatePreferences(context.Background(), next))

	snapshot, err := view.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "light", snapshot.Profile.Preferences.Theme)

	stored, err := env.personalization.GetProfileByUserID(1)
	require.NoError(t, err)
	assert.Equal(t, "light", stored.Preferences.Theme)
	assert.Equal(t, "compact", stored.Preferences.DashboardLayout)
}

func TestUpdatePreferencesFailureLeavesLocalState(t *testing.T) {
	env := newTestEnv(t)
	env.createProfile(t, 1, func(p *model.AuditorProfile) {
		p.Preferences = model.UserPreferences{Theme: "dark"}
	})
	view := newTestView(t, env, 1)
	require.NoError(t, view.Refresh(context.Background()))

	require.NoError(t, env.db.Migrator().DropTable(&model.AuditorProfile{}))

	err := view.UpdatePreferences(context.Background(), model.UserPreferences{Theme: "light"})
	assert.Error(t, err)

	view.mu.Lock()
	theme := view.profile.Preferences.Theme
	errMsg := view.errMsg
	view.mu.Unlock()
	assert.Equal(t, "dark", theme)
	assert.NotEmpty(t, errMsg)
}

func TestUpdateInsightsChangesGeneratedContent(t *testing.T) {
	env := newTestEnv(t)
	env.createProfile(t, 1, nil)
	view := newTestView(t, env, 1)

	current := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	view.now = func() time.Time { return current }
	env.personalization.now = func() time.Time { return current }

	require.NoError(t, view.Refresh(context.Background()))
	snapshot, err := view.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Contains(t, snapshot.Content.WelcomeMessage, "climb the leaderboard")

	require.NoError(t, view.UpdatePersonalityInsights(context.Background(), model.PersonalityInsights{
		MotivationFactors: []string{model.MotivationMastery},
	}))

	// 过期后重新生成，欢迎语跟随新的激励因子
	current = current.Add(10 * time.Minute)
	snapshot, err = view.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Contains(t, snapshot.Content.WelcomeMessage, "sharpen your audit skills")
}

func TestViewRegistryReusesAndEvicts(t *testing.T) {
	env := newTestEnv(t)
	env.createProfile(t, 1, nil)

	registry := NewViewRegistry(env.personalization, env.gamification, env.tracker, configPersonalization())

	first := registry.ViewFor(1)
	assert.Same(t, first, registry.ViewFor(1))

	// 手动把视图推成闲置状态
	first.mu.Lock()
	first.lastAccess = time.Now().Add(-time.Hour)
	first.mu.Unlock()

	assert.Equal(t, 1, registry.EvictIdle())
	assert.NotSame(t, first, registry.ViewFor(1))

	// 被回收的视图已关闭
	assert.ErrorIs(t, first.Refresh(context.Background()), util.ErrViewClosed)
}

func TestViewRegistryRemove(t *testing.T) {
	env := newTestEnv(t)
	registry := NewViewRegistry(env.personalization, env.gamification, env.tracker, configPersonalization())

	view := registry.ViewFor(1)
	registry.Remove(1)
	assert.ErrorIs(t, view.Refresh(context.Background()), util.ErrViewClosed)
}
