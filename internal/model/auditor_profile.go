package model

import (
	"gorm.io/datatypes"
)

type ExperienceLevel string

const (
	Beginner     ExperienceLevel = "beginner"
	Intermediate ExperienceLevel = "intermediate"
	Expert       ExperienceLevel = "expert"
)

// 激励因子，用于选择欢迎语与激励语模板
const (
	MotivationAchievement = "achievement"
	MotivationSocial      = "social"
	MotivationMastery     = "mastery"
	MotivationPurpose     = "purpose"
)

// UserPreferences 用户偏好配置，字段各自可缺省
// swagger:model UserPreferences
type UserPreferences struct {
	Theme              string   `json:"theme,omitempty"`
	Language           string   `json:"language,omitempty"`
	EmailNotifications *bool    `json:"emailNotifications,omitempty"`
	PushNotifications  *bool    `json:"pushNotifications,omitempty"`
	WeeklyDigest       *bool    `json:"weeklyDigest,omitempty"`
	DashboardLayout    string   `json:"dashboardLayout,omitempty"`
	PinnedWidgets      []string `json:"pinnedWidgets,omitempty"`
	PublicProfile      *bool    `json:"publicProfile,omitempty"`
	ShowOnLeaderboard  *bool    `json:"showOnLeaderboard,omitempty"`
	ReducedMotion      *bool    `json:"reducedMotion,omitempty"`
	HighContrast       *bool    `json:"highContrast,omitempty"`
}

// PersonalityInsights 性格画像标签，仅用作内容选择的查表键
// swagger:model PersonalityInsights
type PersonalityInsights struct {
	PersonalityType    string   `json:"personalityType,omitempty"`
	WorkStyle          string   `json:"workStyle,omitempty"`
	LearningPreference string   `json:"learningPreference,omitempty"`
	MotivationFactors  []string `json:"motivationFactors,omitempty"` // 有序，首位为主激励因子
	CommunicationStyle string   `json:"communicationStyle,omitempty"`
	RiskTolerance      string   `json:"riskTolerance,omitempty"`
}

// AuditorProfile 审计师画像，引导完成时创建，本核心不做删除
// swagger:model AuditorProfile
type AuditorProfile struct {
	BaseModel
	UserID          uint                         `gorm:"uniqueIndex;type:bigint unsigned;not null" json:"userId"`
	FullName        string                       `gorm:"size:100" json:"fullName"`
	Email           string                       `gorm:"size:100" json:"email"`
	ExperienceLevel ExperienceLevel              `gorm:"size:20;default:'beginner'" json:"experienceLevel"`
	Specializations datatypes.JSONSlice[string]  `json:"specializations"`
	Bio             string                       `gorm:"type:text" json:"bio"`
	GithubUsername  string                       `gorm:"size:100" json:"githubUsername"`
	TwitterHandle   string                       `gorm:"size:100" json:"twitterHandle"`
	WebsiteURL      string                       `gorm:"size:255" json:"websiteUrl"`
	XP              int                          `gorm:"default:0" json:"xp"`
	Level           int                          `gorm:"default:1" json:"level"`
	StreakDays      int                          `gorm:"default:0" json:"streakDays"`
	Preferences     UserPreferences              `gorm:"serializer:json" json:"preferences"`
	Insights        PersonalityInsights          `gorm:"serializer:json" json:"insights"`
}

func (AuditorProfile) TableName() string {
	return "auditor_profiles"
}

// TopMotivationFactor 返回主激励因子，未设置时为空串
func (p *AuditorProfile) TopMotivationFactor() string {
	if len(p.Insights.MotivationFactors) > 0 {
		return p.Insights.MotivationFactors[0]
	}
	return ""
}
