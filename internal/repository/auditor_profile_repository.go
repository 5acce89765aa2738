package repository

import (
	"audit_market_backend/internal/model"

	"gorm.io/gorm"
)

type AuditorProfileRepository struct {
	DB *gorm.DB
}

func NewAuditorProfileRepository(db *gorm.DB) *AuditorProfileRepository {
	return &AuditorProfileRepository{DB: db}
}

func (r *AuditorProfileRepository) Create(profile *model.AuditorProfile) error {
	return r.DB.Create(profile).Error
}

func (r *AuditorProfileRepository) FindByID(id uint) (*model.AuditorProfile, error) {
	var profile model.AuditorProfile
	err := r.DB.First(&profile, id).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *AuditorProfileRepository) FindByUserID(userID uint) (*model.AuditorProfile, error) {
	var profile model.AuditorProfile
	err := r.DB.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *AuditorProfileRepository) Update(profile *model.AuditorProfile) error {
	return r.DB.Save(profile).Error
}

// UpdatePreferences 读改写整个偏好对象，失败时不落任何局部修改
func (r *AuditorProfileRepository) UpdatePreferences(id uint, prefs model.UserPreferences) error {
	var profile model.AuditorProfile
	if err := r.DB.First(&profile, id).Error; err != nil {
		return err
	}
	profile.Preferences = prefs
	return r.DB.Save(&profile).Error
}

// UpdateInsights 同 UpdatePreferences，针对性格画像
func (r *AuditorProfileRepository) UpdateInsights(id uint, insights model.PersonalityInsights) error {
	var profile model.AuditorProfile
	if err := r.DB.First(&profile, id).Error; err != nil {
		return err
	}
	profile.Insights = insights
	return r.DB.Save(&profile).Error
}

func (r *AuditorProfileRepository) AddXP(id uint, xp int) error {
	return r.DB.Model(&model.AuditorProfile{}).
		Where("id = ?", id).
		Update("xp", gorm.Expr("xp + ?", xp)).
		Error
}

func (r *AuditorProfileRepository) UpdateStreak(id uint, days int) error {
	return r.DB.Model(&model.AuditorProfile{}).
		Where("id = ?", id).
		Update("streak_days", days).
		Error
}

func (r *AuditorProfileRepository) FindTopByXP(limit int) ([]model.AuditorProfile, error) {
	var profiles []model.AuditorProfile
	err := r.DB.Order("xp DESC").Limit(limit).Find(&profiles).Error
	return profiles, err
}
