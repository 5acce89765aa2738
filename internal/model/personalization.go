package model

import (
	"time"
)

// QuickWin 低成本建议动作，每次内容请求现生成，不落库
// swagger:model QuickWin
type QuickWin struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	XPValue       int               `json:"xpValue"`
	EstimatedTime string            `json:"estimatedTime"`
	Action        string            `json:"action"`
	ActionData    map[string]string `json:"actionData,omitempty"`
	Completed     bool              `json:"completed"`
}

// swagger:model RecommendedFeature
type RecommendedFeature struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Value       string `json:"value"`
}

// swagger:model ActionPlanItem
type ActionPlanItem struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Priority      string   `json:"priority"`
	Difficulty    string   `json:"difficulty"`
	EstimatedTime string   `json:"estimatedTime"`
	DependsOn     []string `json:"dependsOn,omitempty"`
}

// PersonalizedContent 一次内容生成的完整输出
// swagger:model PersonalizedContent
type PersonalizedContent struct {
	WelcomeMessage      string               `json:"welcomeMessage"`
	MotivationalQuote   string               `json:"motivationalQuote"`
	QuickWins           []QuickWin           `json:"quickWins"`
	RecommendedFeatures []RecommendedFeature `json:"recommendedFeatures"`
	ActionPlan          []ActionPlanItem     `json:"actionPlan"`
	GeneratedAt         time.Time            `json:"generatedAt"`
}

// PersonalizationContext 请求级聚合，每次生成时重建，从不持久化
type PersonalizationContext struct {
	Profile            *AuditorProfile
	RecentEvents       []GamificationAnalytics
	Challenges         []ChallengeProgress
	Badges             []Badge
	CompletedQuickWins map[string]bool
	Now                time.Time
}
