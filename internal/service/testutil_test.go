package service

import (
	"audit_market_backend/internal/config"
	"audit_market_backend/internal/model"
	"audit_market_backend/internal/repository"
	"audit_market_backend/pkg/database"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB 每个测试独立的内存库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// cache=shared 让 gorm 连接池里的连接看到同一个库；库名用测试名隔离
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", url.PathEscape(t.Name()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

type testEnv struct {
	db              *gorm.DB
	profileRepo     *repository.AuditorProfileRepository
	analyticsRepo   *repository.AnalyticsRepository
	challengeRepo   *repository.ChallengeRepository
	badgeRepo       *repository.BadgeRepository
	checkinRepo     *repository.CheckinRepository
	tracker         *EventTracker
	personalization *PersonalizationService
	gamification    *GamificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	profileRepo := repository.NewAuditorProfileRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	badgeRepo := repository.NewBadgeRepository(db)
	checkinRepo := repository.NewCheckinRepository(db)

	return &testEnv{
		db:            db,
		profileRepo:   profileRepo,
		analyticsRepo: analyticsRepo,
		challengeRepo: challengeRepo,
		badgeRepo:     badgeRepo,
		checkinRepo:   checkinRepo,
		tracker:       NewEventTracker(analyticsRepo),
		personalization: NewPersonalizationService(
			profileRepo, analyticsRepo, challengeRepo, badgeRepo,
			config.PersonalizationConfig{},
		),
		gamification: NewGamificationService(
			profileRepo, badgeRepo, checkinRepo, analyticsRepo, challengeRepo, nil,
		),
	}
}

func configPersonalization() config.PersonalizationConfig {
	return config.PersonalizationConfig{
		CacheTimeoutMinutes: 5,
		ViewIdleMinutes:     30,
		ActivityWindowDays:  7,
	}
}

// createProfile 建一份画像并返回；userID 同时作为区分字段
func (e *testEnv) createProfile(t *testing.T, userID uint, mutate func(*model.AuditorProfile)) *model.AuditorProfile {
	t.Helper()
	profile := &model.AuditorProfile{
		UserID:          userID,
		FullName:        "Alice Chen",
		Email:           "alice@example.com",
		ExperienceLevel: model.Beginner,
		Insights: model.PersonalityInsights{
			MotivationFactors: []string{model.MotivationAchievement},
		},
	}
	if mutate != nil {
		mutate(profile)
	}
	require.NoError(t, e.profileRepo.Create(profile))
	return profile
}
