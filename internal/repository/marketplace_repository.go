package repository

import (
	"audit_market_backend/internal/model"

	"gorm.io/gorm"
)

type MarketplaceRepository struct {
	DB *gorm.DB
}

func NewMarketplaceRepository(db *gorm.DB) *MarketplaceRepository {
	return &MarketplaceRepository{DB: db}
}

// AuditServiceFilter 市场列表筛选条件
type AuditServiceFilter struct {
	Category    string
	MaxPriceUSD int
	MinRating   float64
}

func (r *MarketplaceRepository) List(filter AuditServiceFilter, page, limit int) ([]model.AuditService, int64, error) {
	query := r.DB.Model(&model.AuditService{}).Where("active = ?", true)
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.MaxPriceUSD > 0 {
		query = query.Where("min_price_usd <= ?", filter.MaxPriceUSD)
	}
	if filter.MinRating > 0 {
		query = query.Where("rating >= ?", filter.MinRating)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	var services []model.AuditService
	err := query.Order("rating DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&services).Error
	return services, total, err
}

func (r *MarketplaceRepository) FindByID(id uint) (*model.AuditService, error) {
	var service model.AuditService
	err := r.DB.First(&service, id).Error
	if err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *MarketplaceRepository) FindByIDs(ids []uint) ([]model.AuditService, error) {
	var services []model.AuditService
	err := r.DB.Where("id IN ?", ids).Find(&services).Error
	return services, err
}

func (r *MarketplaceRepository) FindTopRated(category string, limit int) ([]model.AuditService, error) {
	query := r.DB.Where("active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	var services []model.AuditService
	err := query.Order("rating DESC").Limit(limit).Find(&services).Error
	return services, err
}
