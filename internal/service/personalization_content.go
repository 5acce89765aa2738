package service

import (
	"audit_market_backend/internal/model"
	"fmt"
	"math/rand"
	"time"
)

// 时间段桶：morning <12点，afternoon 12-17点，evening >=17点（调用方本地时钟）
const (
	bucketMorning   = "morning"
	bucketAfternoon = "afternoon"
	bucketEvening   = "evening"
)

func timeOfDayBucket(now time.Time) string {
	hour := now.Hour()
	switch {
	case hour < 12:
		return bucketMorning
	case hour < 17:
		return bucketAfternoon
	default:
		return bucketEvening
	}
}

// 欢迎语模板，按（时间段，主激励因子）查表；%s 为审计师姓名
var welcomeTemplates = map[string]map[string]string{
	bucketMorning: {
		model.MotivationAchievement: "Good morning, %s! A fresh day to climb the leaderboard.",
		model.MotivationSocial:      "Good morning, %s! The auditor community is already buzzing.",
		model.MotivationMastery:     "Good morning, %s! Perfect time to sharpen your audit skills.",
		model.MotivationPurpose:     "Good morning, %s! Web3 is safer every time you show up.",
	},
	bucketAfternoon: {
		model.MotivationAchievement: "Good afternoon, %s! Still time to earn some XP today.",
		model.MotivationSocial:      "Good afternoon, %s! See what fellow auditors shipped today.",
		model.MotivationMastery:     "Good afternoon, %s! A focused hour beats a scattered day.",
		model.MotivationPurpose:     "Good afternoon, %s! Every finding protects real users.",
	},
	bucketEvening: {
		model.MotivationAchievement: "Good evening, %s! Close the day with one more win.",
		model.MotivationSocial:      "Good evening, %s! Your peers would love to hear from you.",
		model.MotivationMastery:     "Good evening, %s! Review what you learned today.",
		model.MotivationPurpose:     "Good evening, %s! The ecosystem rests easier thanks to you.",
	},
}

// 激励语固定表，4类×3条；选取是本模块唯一的非确定性来源
var motivationalQuotes = map[string][]string{
	model.MotivationAchievement: {
		"Every audited line of code is a point on the board.",
		"Rank is earned one finding at a time.",
		"The best auditors measure progress, not luck.",
	},
	model.MotivationSocial: {
		"Security is a team sport.",
		"Share a finding, gain a peer.",
		"The strongest audits come from the strongest communities.",
	},
	model.MotivationMastery: {
		"Deep understanding beats broad guessing.",
		"Read the bytecode others skip.",
		"Mastery is built on audits nobody asked you to do.",
	},
	model.MotivationPurpose: {
		"Behind every contract is someone's savings.",
		"Audit like the whole chain depends on it.",
		"Safer protocols mean a fairer Web3 for everyone.",
	},
}

func normalizeMotivationFactor(factor string) string {
	switch factor {
	case model.MotivationAchievement, model.MotivationSocial, model.MotivationMastery, model.MotivationPurpose:
		return factor
	default:
		// 未设置或未知因子统一回退到 purpose
		return model.MotivationPurpose
	}
}

// generateWelcomeMessage 对固定的 (profile, now) 结果恒定
func generateWelcomeMessage(profile *model.AuditorProfile, now time.Time) string {
	bucket := timeOfDayBucket(now)
	factor := normalizeMotivationFactor(profile.TopMotivationFactor())

	name := profile.FullName
	if name == "" {
		name = "auditor"
	}
	return fmt.Sprintf(welcomeTemplates[bucket][factor], name)
}

// pickMotivationalQuote 在因子对应的固定表内均匀随机选取
func pickMotivationalQuote(factor string) string {
	quotes := motivationalQuotes[normalizeMotivationFactor(factor)]
	return quotes[rand.Intn(len(quotes))]
}

// quickWinXP 各 quick win 的 XP 面值；发放以这张表为准，客户端上报的数值不作数
var quickWinXP = map[string]int{
	"complete_bio":         50,
	"add_github":           75,
	"first_audit_tutorial": 100,
	"daily_checkin":        25,
}

// generateQuickWins 规则按声明顺序求值，截断也按该顺序，不按XP重排
func generateQuickWins(profile *model.AuditorProfile) []model.QuickWin {
	var wins []model.QuickWin

	if profile.Bio == "" {
		wins = append(wins, model.QuickWin{
			ID:            "complete_bio",
			Title:         "Complete your bio",
			Description:   "Tell clients who you are and what you audit.",
			XPValue:       quickWinXP["complete_bio"],
			EstimatedTime: "5 min",
			Action:        "navigate",
			ActionData:    map[string]string{"route": "/profile/edit"},
		})
	}

	if profile.GithubUsername == "" {
		wins = append(wins, model.QuickWin{
			ID:            "add_github",
			Title:         "Connect your GitHub",
			Description:   "Link your GitHub so clients can verify your work.",
			XPValue:       quickWinXP["add_github"],
			EstimatedTime: "2 min",
			Action:        "navigate",
			ActionData:    map[string]string{"route": "/profile/social"},
		})
	}

	if profile.ExperienceLevel == model.Beginner {
		wins = append(wins, model.QuickWin{
			ID:            "first_audit_tutorial",
			Title:         "Take the first-audit tutorial",
			Description:   "A guided walkthrough of your first smart contract audit.",
			XPValue:       quickWinXP["first_audit_tutorial"],
			EstimatedTime: "20 min",
			Action:        "navigate",
			ActionData:    map[string]string{"route": "/learn/first-audit"},
		})
	}

	wins = append(wins, model.QuickWin{
		ID:            "daily_checkin",
		Title:         "Daily check-in",
		Description:   "Check in to keep your streak alive.",
		XPValue:       quickWinXP["daily_checkin"],
		EstimatedTime: "1 min",
		Action:        "checkin",
	})

	return wins
}

const maxQuickWins = 3

// filterAndCapQuickWins 先剔除已完成项再按声明顺序截断
func filterAndCapQuickWins(wins []model.QuickWin, completed map[string]bool) []model.QuickWin {
	result := make([]model.QuickWin, 0, maxQuickWins)
	for _, w := range wins {
		if completed[w.ID] {
			continue
		}
		result = append(result, w)
		if len(result) == maxQuickWins {
			break
		}
	}
	return result
}

// generateRecommendedFeatures 按经验等级与挑战进度空缺做门控
func generateRecommendedFeatures(profile *model.AuditorProfile, challenges []model.ChallengeProgress) []model.RecommendedFeature {
	var features []model.RecommendedFeature

	if profile.ExperienceLevel == model.Beginner {
		features = append(features, model.RecommendedFeature{
			ID:          "guided_audit_mode",
			Title:       "Guided audit mode",
			Description: "Step-by-step checklists for your first engagements.",
			Priority:    "high",
			Value:       "Lower the barrier to your first paid audit",
		})
	} else {
		features = append(features, model.RecommendedFeature{
			ID:          "advanced_analytics",
			Title:       "Advanced analytics",
			Description: "Deep-dive dashboards over your audit history.",
			Priority:    "medium",
			Value:       "Spot patterns across engagements",
		})
	}

	if len(challenges) == 0 {
		features = append(features, model.RecommendedFeature{
			ID:          "weekly_challenges",
			Title:       "Weekly challenges",
			Description: "Compete on curated vulnerable contracts.",
			Priority:    "medium",
			Value:       "Earn XP while staying sharp",
		})
	}

	if profile.ExperienceLevel == model.Expert {
		features = append(features, model.RecommendedFeature{
			ID:          "mentor_program",
			Title:       "Mentor program",
			Description: "Coach rising auditors and build your reputation.",
			Priority:    "low",
			Value:       "Give back and grow your network",
		})
	}

	return features
}

// generateActionPlan 经验等级与专长空缺门控，外加一条无条件的首次审计项
func generateActionPlan(profile *model.AuditorProfile) []model.ActionPlanItem {
	var plan []model.ActionPlanItem

	hasFundamentals := profile.ExperienceLevel == model.Beginner
	if hasFundamentals {
		plan = append(plan, model.ActionPlanItem{
			ID:            "complete_fundamentals",
			Title:         "Complete security fundamentals",
			Description:   "Work through the core smart contract security curriculum.",
			Priority:      "high",
			Difficulty:    "easy",
			EstimatedTime: "2 weeks",
		})
	}

	if len(profile.Specializations) == 0 {
		plan = append(plan, model.ActionPlanItem{
			ID:            "choose_specialization",
			Title:         "Choose a specialization",
			Description:   "Pick a niche: DeFi, bridges, wallets or L2s.",
			Priority:      "medium",
			Difficulty:    "easy",
			EstimatedTime: "1 day",
		})
	}

	firstAudit := model.ActionPlanItem{
		ID:            "first_audit",
		Title:         "Complete your first audit",
		Description:   "Take on a marketplace engagement and deliver a report.",
		Priority:      "high",
		Difficulty:    "medium",
		EstimatedTime: "1 week",
	}
	if hasFundamentals {
		firstAudit.DependsOn = []string{"complete_fundamentals"}
	}
	plan = append(plan, firstAudit)

	return plan
}
