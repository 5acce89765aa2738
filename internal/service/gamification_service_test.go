package service

import (
	"audit_market_backend/internal/model"
	"audit_market_backend/internal/util"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelForXP(t *testing.T) {
	assert.Equal(t, 1, LevelForXP(0))
	assert.Equal(t, 1, LevelForXP(999))
	assert.Equal(t, 2, LevelForXP(1000))
	assert.Equal(t, 4, LevelForXP(3500))
	assert.Equal(t, 1, LevelForXP(-50))
}

func TestGetSummaryWithoutRedis(t *testing.T) {
	env := newTestEnv(t)
	profile := env.createProfile(t, 1, func(p *model.AuditorProfile) {
		p.XP = 2300
		p.StreakDays = 4
	})

	require.NoError(t, env.badgeRepo.Create(&model.Badge{AuditorID: profile.ID, Name: "First Audit"}))
	require.NoError(t, env.tracker.TrackEvent(profile.ID, model.EventPageView, nil, model.DeviceInfo{}))

	summary, err := env.gamification.GetSummary(context.Background(), profile.ID)
	require.NoError(t, err)

	assert.Equal(t, profile.ID, summary.AuditorID)
	assert.Equal(t, 2300, summary.TotalXP)
	assert.Equal(t, 3, summary.Level)
	assert.Equal(t, 4, summary.StreakDays)
	assert.EqualValues(t, 1, summary.BadgeCount)
	assert.EqualValues(t, 1, summary.EventCount)
	// Redis 缺席时名次降级为 0
	assert.EqualValues(t, 0, summary.Rank)
}

func TestGetSummaryUnknownAuditor(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.gamification.GetSummary(context.Background(), 9999)
	assert.Error(t, err)
}

func TestAddXPAccumulates(t *testing.T) {
	env := newTestEnv(t)
	profile := env.createProfile(t, 1, nil)

	require.NoError(t, env.gamification.AddXP(context.Background(), profile.ID, 50))
	require.NoError(t, env.gamification.AddXP(context.Background(), profile.ID, 75))

	stored, err := env.profileRepo.FindByID(profile.ID)
	require.NoError(t, err)
	assert.Equal(t, 125, stored.XP)
}

func TestRecordCheckinStreak(t *testing.T) {
	env := newTestEnv(t)
	profile := env.createProfile(t, 1, nil)
	ctx := context.Background()

	t.Run("first checkin starts streak at one", func(t *testing.T) {
		streak, err := env.gamification.RecordCheckin(ctx, profile.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, streak)
	})

	t.Run("same day rejected with current streak", func(t *testing.T) {
		streak, err := env.gamification.RecordCheckin(ctx, profile.ID)
		assert.ErrorIs(t, err, util.ErrAlreadyCheckedIn)
		assert.Equal(t, 1, streak)
	})
}

func TestRecordCheckinContinuesYesterdayStreak(t *testing.T) {
	env := newTestEnv(t)
	profile := env.createProfile(t, 1, nil)

	// 昨天已有连签3天的记录
	require.NoError(t, env.checkinRepo.Create(&model.Checkin{
		AuditorID:  profile.ID,
		CheckinAt:  time.Now().AddDate(0, 0, -1),
		StreakDays: 3,
	}))

	streak, err := env.gamification.RecordCheckin(context.Background(), profile.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, streak)

	stored, err := env.profileRepo.FindByID(profile.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.StreakDays)
}

func TestRecordCheckinAdvancesWeeklyChallenge(t *testing.T) {
	env := newTestEnv(t)
	profile := env.createProfile(t, 1, nil)

	require.NoError(t, env.checkinRepo.Create(&model.Checkin{
		AuditorID:  profile.ID,
		CheckinAt:  time.Now().AddDate(0, 0, -1),
		StreakDays: 6,
	}))

	streak, err := env.gamification.RecordCheckin(context.Background(), profile.ID)
	require.NoError(t, err)
	require.Equal(t, 7, streak)

	challenges, err := env.challengeRepo.FindByAuditor(profile.ID)
	require.NoError(t, err)
	require.Len(t, challenges, 1)
	assert.Equal(t, "weekly_checkin", challenges[0].ChallengeKey)
	assert.Equal(t, 7, challenges[0].Progress)
	assert.Equal(t, 7, challenges[0].Target)
	assert.NotNil(t, challenges[0].CompletedAt)
}

func TestRecordCheckinBrokenStreakRestarts(t *testing.T) {
	env := newTestEnv(t)
	profile := env.createProfile(t, 1, nil)

	// 最近一次签到是三天前，连签中断
	require.NoError(t, env.checkinRepo.Create(&model.Checkin{
		AuditorID:  profile.ID,
		CheckinAt:  time.Now().AddDate(0, 0, -3),
		StreakDays: 9,
	}))

	streak, err := env.gamification.RecordCheckin(context.Background(), profile.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, streak)
}

func TestMaybeAwardStreakBadge(t *testing.T) {
	env := newTestEnv(t)
	profile := env.createProfile(t, 1, nil)

	require.NoError(t, env.gamification.MaybeAwardStreakBadge(profile.ID, 6))
	count, err := env.badgeRepo.CountByAuditor(profile.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	require.NoError(t, env.gamification.MaybeAwardStreakBadge(profile.ID, 7))
	// 重复发放被跳过
	require.NoError(t, env.gamification.MaybeAwardStreakBadge(profile.ID, 7))

	badges, err := env.badgeRepo.FindByAuditor(profile.ID)
	require.NoError(t, err)
	require.Len(t, badges, 1)
	assert.Equal(t, "One Week Streak", badges[0].Name)

	require.NoError(t, env.gamification.MaybeAwardStreakBadge(profile.ID, 30))
	count, err = env.badgeRepo.CountByAuditor(profile.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestLeaderboardFromDatabase(t *testing.T) {
	env := newTestEnv(t)
	env.createProfile(t, 1, func(p *model.AuditorProfile) { p.XP = 100 })
	env.createProfile(t, 2, func(p *model.AuditorProfile) { p.XP = 900 })
	env.createProfile(t, 3, func(p *model.AuditorProfile) { p.XP = 400 })

	top, err := env.gamification.Leaderboard(2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, 900, top[0].XP)
	assert.Equal(t, 400, top[1].XP)
}
