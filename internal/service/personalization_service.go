package service

import (
	"audit_market_backend/internal/config"
	"audit_market_backend/internal/model"
	"audit_market_backend/internal/repository"
	"audit_market_backend/internal/util"
	"audit_market_backend/pkg/logger"
	"audit_market_backend/pkg/monitoring"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PersonalizationService 个性化内容生成核心。
// 生成结果只是 (画像, 当前时间, 事件历史) 的函数，除激励语的随机选取外
// 没有其他隐藏状态，相同输入重复生成结果一致。
type PersonalizationService struct {
	ProfileRepo   *repository.AuditorProfileRepository
	AnalyticsRepo *repository.AnalyticsRepository
	ChallengeRepo *repository.ChallengeRepository
	BadgeRepo     *repository.BadgeRepository

	activityWindow time.Duration
	now            func() time.Time
}

func NewPersonalizationService(
	profileRepo *repository.AuditorProfileRepository,
	analyticsRepo *repository.AnalyticsRepository,
	challengeRepo *repository.ChallengeRepository,
	badgeRepo *repository.BadgeRepository,
	cfg config.PersonalizationConfig,
) *PersonalizationService {
	return &PersonalizationService{
		ProfileRepo:    profileRepo,
		AnalyticsRepo:  analyticsRepo,
		ChallengeRepo:  challengeRepo,
		BadgeRepo:      badgeRepo,
		activityWindow: cfg.ActivityWindow(),
		now:            time.Now,
	}
}

// GetProfileByUserID 画像读取；未找到区别于传输错误，表示需要先完成引导
func (s *PersonalizationService) GetProfileByUserID(userID uint) (*model.AuditorProfile, error) {
	profile, err := s.ProfileRepo.FindByUserID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// CreateProfile 引导完成时建立画像
func (s *PersonalizationService) CreateProfile(profile *model.AuditorProfile) error {
	_, err := s.ProfileRepo.FindByUserID(profile.UserID)
	if err == nil {
		return util.ErrProfileExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return s.ProfileRepo.Create(profile)
}

// GenerateForUser 画像读取是唯一的硬失败；无画像则无法生成内容
func (s *PersonalizationService) GenerateForUser(userID uint) (*model.AuditorProfile, *model.PersonalizedContent, error) {
	profile, err := s.GetProfileByUserID(userID)
	if err != nil {
		return nil, nil, err
	}
	return profile, s.GenerateContent(profile), nil
}

// GenerateContent 组装请求级上下文并运行五个子生成器。
// 单个子生成器内的后端读失败不终止其余生成器，只把对应输出降级为空。
func (s *PersonalizationService) GenerateContent(profile *model.AuditorProfile) *model.PersonalizedContent {
	ctx := s.buildContext(profile)

	content := &model.PersonalizedContent{
		WelcomeMessage:      generateWelcomeMessage(profile, ctx.Now),
		MotivationalQuote:   pickMotivationalQuote(profile.TopMotivationFactor()),
		QuickWins:           filterAndCapQuickWins(generateQuickWins(profile), ctx.CompletedQuickWins),
		RecommendedFeatures: generateRecommendedFeatures(profile, ctx.Challenges),
		ActionPlan:          generateActionPlan(profile),
		GeneratedAt:         ctx.Now,
	}

	monitoring.ContentGenerations.Inc()
	return content
}

// buildContext 重建临时聚合；每项读取各自降级，互不影响
func (s *PersonalizationService) buildContext(profile *model.AuditorProfile) *model.PersonalizationContext {
	now := s.now()
	pctx := &model.PersonalizationContext{
		Profile:            profile,
		Now:                now,
		CompletedQuickWins: map[string]bool{},
	}

	events, err := s.AnalyticsRepo.FindGamificationEvents(profile.ID, "", now.Add(-s.activityWindow), time.Time{}, 50)
	if err != nil {
		logger.Log.Warn("personalization: recent events unavailable", zap.Uint("auditorId", profile.ID), zap.Error(err))
	} else {
		pctx.RecentEvents = events
	}

	challenges, err := s.ChallengeRepo.FindByAuditor(profile.ID)
	if err != nil {
		logger.Log.Warn("personalization: challenge progress unavailable", zap.Uint("auditorId", profile.ID), zap.Error(err))
	} else {
		pctx.Challenges = challenges
	}

	badges, err := s.BadgeRepo.FindByAuditor(profile.ID)
	if err != nil {
		logger.Log.Warn("personalization: badges unavailable", zap.Uint("auditorId", profile.ID), zap.Error(err))
	} else {
		pctx.Badges = badges
	}

	completed, err := s.AnalyticsRepo.CompletedQuickWinIDs(profile.ID, time.Time{})
	if err != nil {
		logger.Log.Warn("personalization: completed quick wins unavailable", zap.Uint("auditorId", profile.ID), zap.Error(err))
	} else {
		// daily_checkin 按天重置，只看今天的完成记录
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		today, terr := s.AnalyticsRepo.CompletedQuickWinIDs(profile.ID, startOfDay)
		if terr == nil {
			completed["daily_checkin"] = today["daily_checkin"]
		}
		pctx.CompletedQuickWins = completed
	}

	return pctx
}

// ActivityFeed 最近事件流，时间倒序
func (s *PersonalizationService) ActivityFeed(auditorID uint, limit int) ([]model.GamificationAnalytics, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.AnalyticsRepo.FindGamificationEvents(auditorID, "", time.Time{}, time.Time{}, limit)
}
