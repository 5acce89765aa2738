package service

import (
	"audit_market_backend/internal/model"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func beginnerProfile() *model.AuditorProfile {
	return &model.AuditorProfile{
		FullName:        "Alice Chen",
		ExperienceLevel: model.Beginner,
		Insights: model.PersonalityInsights{
			MotivationFactors: []string{model.MotivationAchievement},
		},
	}
}

func TestTimeOfDayBucket(t *testing.T) {
	cases := []struct {
		hour   int
		bucket string
	}{
		{0, bucketMorning},
		{11, bucketMorning},
		{12, bucketAfternoon},
		{16, bucketAfternoon},
		{17, bucketEvening},
		{23, bucketEvening},
	}
	for _, c := range cases {
		now := time.Date(2026, 3, 10, c.hour, 30, 0, 0, time.UTC)
		assert.Equal(t, c.bucket, timeOfDayBucket(now), "hour %d", c.hour)
	}
}

func TestGenerateWelcomeMessage(t *testing.T) {
	profile := beginnerProfile()
	morning := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	msg := generateWelcomeMessage(profile, morning)
	assert.Equal(t, "Good morning, Alice Chen! A fresh day to climb the leaderboard.", msg)

	// 相同输入重复生成结果一致
	assert.Equal(t, msg, generateWelcomeMessage(profile, morning))

	evening := time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)
	assert.Contains(t, generateWelcomeMessage(profile, evening), "Good evening, Alice Chen!")
}

func TestGenerateWelcomeMessageFallbacks(t *testing.T) {
	// 未知激励因子回退到 purpose
	profile := beginnerProfile()
	profile.Insights.MotivationFactors = []string{"world_domination"}
	msg := generateWelcomeMessage(profile, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, welcomeTemplatesContain(t, bucketMorning, model.MotivationPurpose, "Alice Chen"), msg)

	// 无因子也回退到 purpose；无姓名回退到 auditor
	anon := &model.AuditorProfile{}
	msg = generateWelcomeMessage(anon, time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC))
	assert.Contains(t, msg, "auditor")
	assert.Contains(t, msg, "Good afternoon")
}

func welcomeTemplatesContain(t *testing.T, bucket, factor, name string) string {
	t.Helper()
	tmpl, ok := welcomeTemplates[bucket][factor]
	require.True(t, ok)
	return fmt.Sprintf(tmpl, name)
}

func TestPickMotivationalQuoteStaysInCategory(t *testing.T) {
	for factor, quotes := range motivationalQuotes {
		allowed := make(map[string]bool, len(quotes))
		for _, q := range quotes {
			allowed[q] = true
		}
		// 随机选取，多抽几轮确认始终落在本类目内
		for i := 0; i < 100; i++ {
			assert.True(t, allowed[pickMotivationalQuote(factor)], "factor %s", factor)
		}
	}
}

func TestPickMotivationalQuoteUnknownFactor(t *testing.T) {
	purpose := make(map[string]bool)
	for _, q := range motivationalQuotes[model.MotivationPurpose] {
		purpose[q] = true
	}
	for i := 0; i < 100; i++ {
		assert.True(t, purpose[pickMotivationalQuote("")])
		assert.True(t, purpose[pickMotivationalQuote("unknown")])
	}
}

func TestGenerateQuickWinsRules(t *testing.T) {
	t.Run("beginner with empty profile gets all four", func(t *testing.T) {
		wins := generateQuickWins(beginnerProfile())
		ids := quickWinIDs(wins)
		assert.Equal(t, []string{"complete_bio", "add_github", "first_audit_tutorial", "daily_checkin"}, ids)
	})

	t.Run("filled profile only gets daily checkin", func(t *testing.T) {
		profile := beginnerProfile()
		profile.Bio = "Veteran DeFi auditor"
		profile.GithubUsername = "alicechen"
		profile.ExperienceLevel = model.Expert
		assert.Equal(t, []string{"daily_checkin"}, quickWinIDs(generateQuickWins(profile)))
	})

	t.Run("xp values are fixed per rule", func(t *testing.T) {
		byID := map[string]int{}
		for _, w := range generateQuickWins(beginnerProfile()) {
			byID[w.ID] = w.XPValue
		}
		assert.Equal(t, 50, byID["complete_bio"])
		assert.Equal(t, 75, byID["add_github"])
		assert.Equal(t, 100, byID["first_audit_tutorial"])
		assert.Equal(t, 25, byID["daily_checkin"])
	})
}

func TestFilterAndCapQuickWins(t *testing.T) {
	wins := generateQuickWins(beginnerProfile())
	require.Len(t, wins, 4)

	t.Run("caps at three preserving declaration order", func(t *testing.T) {
		capped := filterAndCapQuickWins(wins, nil)
		assert.Equal(t, []string{"complete_bio", "add_github", "first_audit_tutorial"}, quickWinIDs(capped))
	})

	t.Run("completed filtered before capping", func(t *testing.T) {
		capped := filterAndCapQuickWins(wins, map[string]bool{"complete_bio": true})
		assert.Equal(t, []string{"add_github", "first_audit_tutorial", "daily_checkin"}, quickWinIDs(capped))
	})

	t.Run("all completed yields empty", func(t *testing.T) {
		completed := map[string]bool{}
		for _, w := range wins {
			completed[w.ID] = true
		}
		assert.Empty(t, filterAndCapQuickWins(wins, completed))
	})
}

func quickWinIDs(wins []model.QuickWin) []string {
	ids := make([]string, len(wins))
	for i, w := range wins {
		ids[i] = w.ID
	}
	return ids
}

func TestGenerateRecommendedFeatures(t *testing.T) {
	t.Run("beginner without challenges", func(t *testing.T) {
		features := generateRecommendedFeatures(beginnerProfile(), nil)
		assert.Equal(t, []string{"guided_audit_mode", "weekly_challenges"}, featureIDs(features))
	})

	t.Run("expert with challenges", func(t *testing.T) {
		profile := beginnerProfile()
		profile.ExperienceLevel = model.Expert
		features := generateRecommendedFeatures(profile, []model.ChallengeProgress{{ChallengeKey: "reentrancy-week"}})
		assert.Equal(t, []string{"advanced_analytics", "mentor_program"}, featureIDs(features))
	})

	t.Run("intermediate", func(t *testing.T) {
		profile := beginnerProfile()
		profile.ExperienceLevel = model.Intermediate
		features := generateRecommendedFeatures(profile, nil)
		assert.Equal(t, []string{"advanced_analytics", "weekly_challenges"}, featureIDs(features))
	})
}

func featureIDs(features []model.RecommendedFeature) []string {
	ids := make([]string, len(features))
	for i, f := range features {
		ids[i] = f.ID
	}
	return ids
}

func TestGenerateActionPlan(t *testing.T) {
	t.Run("beginner without specialization", func(t *testing.T) {
		plan := generateActionPlan(beginnerProfile())
		require.Len(t, plan, 3)
		assert.Equal(t, "complete_fundamentals", plan[0].ID)
		assert.Equal(t, "choose_specialization", plan[1].ID)
		assert.Equal(t, "first_audit", plan[2].ID)
		// 新手的首次审计依赖基础课程
		assert.Equal(t, []string{"complete_fundamentals"}, plan[2].DependsOn)
	})

	t.Run("expert with specialization only gets first audit", func(t *testing.T) {
		profile := beginnerProfile()
		profile.ExperienceLevel = model.Expert
		profile.Specializations = []string{"defi"}
		plan := generateActionPlan(profile)
		require.Len(t, plan, 1)
		assert.Equal(t, "first_audit", plan[0].ID)
		assert.Empty(t, plan[0].DependsOn)
	})
}
