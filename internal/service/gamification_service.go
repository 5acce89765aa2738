package service

import (
	"audit_market_backend/internal/model"
	"audit_market_backend/internal/repository"
	"audit_market_backend/internal/util"
	"audit_market_backend/pkg/logger"
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const leaderboardKey = "audit_market:leaderboard:xp"

// GamificationService 服务端聚合 XP/等级/连签/徽章，并维护 Redis 排行榜。
// 本层不做缓存，缓存是个性化视图的职责。
type GamificationService struct {
	ProfileRepo   *repository.AuditorProfileRepository
	BadgeRepo     *repository.BadgeRepository
	CheckinRepo   *repository.CheckinRepository
	AnalyticsRepo *repository.AnalyticsRepository
	ChallengeRepo *repository.ChallengeRepository
	RDB           *redis.Client // 可为 nil，排行榜随之降级
}

func NewGamificationService(
	profileRepo *repository.AuditorProfileRepository,
	badgeRepo *repository.BadgeRepository,
	checkinRepo *repository.CheckinRepository,
	analyticsRepo *repository.AnalyticsRepository,
	challengeRepo *repository.ChallengeRepository,
	rdb *redis.Client,
) *GamificationService {
	return &GamificationService{
		ProfileRepo:   profileRepo,
		BadgeRepo:     badgeRepo,
		CheckinRepo:   checkinRepo,
		AnalyticsRepo: analyticsRepo,
		ChallengeRepo: challengeRepo,
		RDB:           rdb,
	}
}

// GetSummary 单次聚合调用；任何错误都只记日志，由调用方降级为无摘要
func (s *GamificationService) GetSummary(ctx context.Context, auditorID uint) (*model.GamificationSummary, error) {
	profile, err := s.ProfileRepo.FindByID(auditorID)
	if err != nil {
		logger.Log.Warn("gamification summary unavailable", zap.Uint("auditorId", auditorID), zap.Error(err))
		return nil, err
	}

	badgeCount, err := s.BadgeRepo.CountByAuditor(auditorID)
	if err != nil {
		logger.Log.Warn("gamification summary unavailable", zap.Uint("auditorId", auditorID), zap.Error(err))
		return nil, err
	}

	eventCount, err := s.AnalyticsRepo.CountGamificationEvents(auditorID)
	if err != nil {
		logger.Log.Warn("gamification summary unavailable", zap.Uint("auditorId", auditorID), zap.Error(err))
		return nil, err
	}

	return &model.GamificationSummary{
		AuditorID:  auditorID,
		TotalXP:    profile.XP,
		Level:      LevelForXP(profile.XP),
		StreakDays: profile.StreakDays,
		BadgeCount: badgeCount,
		EventCount: eventCount,
		Rank:       s.rank(ctx, auditorID),
	}, nil
}

// LevelForXP 每1000 XP升一级，1级起步
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/1000 + 1
}

// AddXP 加经验并同步 Redis 排行榜；排行榜失败不影响主写入
func (s *GamificationService) AddXP(ctx context.Context, auditorID uint, xp int) error {
	if err := s.ProfileRepo.AddXP(auditorID, xp); err != nil {
		return err
	}

	if s.RDB != nil {
		member := strconv.FormatUint(uint64(auditorID), 10)
		if err := s.RDB.ZIncrBy(ctx, leaderboardKey, float64(xp), member).Err(); err != nil {
			logger.Log.Warn("leaderboard update failed", zap.Uint("auditorId", auditorID), zap.Error(err))
		}
	}
	return nil
}

// rank 排行榜名次（1起）；Redis 不可用或未上榜时为 0
func (s *GamificationService) rank(ctx context.Context, auditorID uint) int64 {
	if s.RDB == nil {
		return 0
	}
	member := strconv.FormatUint(uint64(auditorID), 10)
	rank, err := s.RDB.ZRevRank(ctx, leaderboardKey, member).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.Warn("leaderboard rank lookup failed", zap.Uint("auditorId", auditorID), zap.Error(err))
		}
		return 0
	}
	return rank + 1
}

// Leaderboard 按 XP 排名的画像列表，数据库兜底（不依赖 Redis）
func (s *GamificationService) Leaderboard(limit int) ([]model.AuditorProfile, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.ProfileRepo.FindTopByXP(limit)
}

// RecordCheckin 记一次每日签到并维护连签天数；当天重复签到返回当前连签
func (s *GamificationService) RecordCheckin(ctx context.Context, auditorID uint) (int, error) {
	now := time.Now()

	if existing, err := s.CheckinRepo.FindByAuditorAndDate(auditorID, now); err == nil {
		return existing.StreakDays, util.ErrAlreadyCheckedIn
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	streak := 1
	latest, err := s.CheckinRepo.FindLatestByAuditor(auditorID)
	if err == nil {
		yesterday := now.AddDate(0, 0, -1)
		if sameDay(latest.CheckinAt, yesterday) {
			streak = latest.StreakDays + 1
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	checkin := &model.Checkin{
		AuditorID:  auditorID,
		CheckinAt:  now,
		StreakDays: streak,
	}
	if err := s.CheckinRepo.Create(checkin); err != nil {
		return 0, err
	}

	if err := s.ProfileRepo.UpdateStreak(auditorID, streak); err != nil {
		logger.Log.Warn("streak update failed", zap.Uint("auditorId", auditorID), zap.Error(err))
	}

	if err := s.advanceCheckinChallenge(auditorID, streak, now); err != nil {
		logger.Log.Warn("checkin challenge update failed", zap.Uint("auditorId", auditorID), zap.Error(err))
	}

	return streak, nil
}

const weeklyCheckinChallenge = "weekly_checkin"

// advanceCheckinChallenge 把连签天数同步到每周签到挑战，连签中断后进度重新累计
func (s *GamificationService) advanceCheckinChallenge(auditorID uint, streak int, now time.Time) error {
	progress := &model.ChallengeProgress{
		AuditorID:    auditorID,
		ChallengeKey: weeklyCheckinChallenge,
		Progress:     streak,
		Target:       7,
	}
	if progress.Progress > progress.Target {
		progress.Progress = progress.Target
	}
	if progress.Progress >= progress.Target {
		progress.CompletedAt = &now
	}
	return s.ChallengeRepo.Upsert(progress)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// MaybeAwardStreakBadge 连签达到里程碑时发徽章，重复发放会被跳过
func (s *GamificationService) MaybeAwardStreakBadge(auditorID uint, streak int) error {
	var name string
	switch streak {
	case 7:
		name = "One Week Streak"
	case 30:
		name = "One Month Streak"
	default:
		return nil
	}

	exists, err := s.BadgeRepo.ExistsByName(auditorID, name)
	if err != nil || exists {
		return err
	}

	return s.BadgeRepo.Create(&model.Badge{
		AuditorID:   auditorID,
		Name:        name,
		Icon:        "streak",
		Description: "Consecutive daily check-ins",
		EarnedXP:    streak * 10,
	})
}
