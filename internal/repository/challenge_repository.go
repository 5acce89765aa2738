package repository

import (
	"audit_market_backend/internal/model"

	"gorm.io/gorm"
)

type ChallengeRepository struct {
	DB *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{DB: db}
}

func (r *ChallengeRepository) FindByAuditor(auditorID uint) ([]model.ChallengeProgress, error) {
	var progresses []model.ChallengeProgress
	err := r.DB.Where("auditor_id = ?", auditorID).Find(&progresses).Error
	return progresses, err
}

func (r *ChallengeRepository) Upsert(progress *model.ChallengeProgress) error {
	var existing model.ChallengeProgress
	err := r.DB.Where("auditor_id = ? AND challenge_key = ?", progress.AuditorID, progress.ChallengeKey).
		First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.DB.Create(progress).Error
	}
	if err != nil {
		return err
	}
	existing.Progress = progress.Progress
	existing.Target = progress.Target
	existing.CompletedAt = progress.CompletedAt
	return r.DB.Save(&existing).Error
}
