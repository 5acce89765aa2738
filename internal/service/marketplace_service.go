package service

import (
	"audit_market_backend/internal/model"
	"audit_market_backend/internal/repository"
	"audit_market_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type MarketplaceService struct {
	MarketplaceRepo *repository.MarketplaceRepository
	Tracker         *EventTracker
}

func NewMarketplaceService(marketplaceRepo *repository.MarketplaceRepository, tracker *EventTracker) *MarketplaceService {
	return &MarketplaceService{
		MarketplaceRepo: marketplaceRepo,
		Tracker:         tracker,
	}
}

func (s *MarketplaceService) List(filter repository.AuditServiceFilter, page, limit int) ([]model.AuditService, int64, error) {
	return s.MarketplaceRepo.List(filter, page, limit)
}

// GetService 详情读取附带浏览埋点；埋点失败不影响主流程
func (s *MarketplaceService) GetService(id uint, auditorID uint, device model.DeviceInfo) (*model.AuditService, error) {
	svc, err := s.MarketplaceRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrServiceNotFound
	}
	if err != nil {
		return nil, err
	}

	if auditorID != 0 {
		s.Tracker.TrackBehavioral(auditorID, model.ServiceViewedPayload{
			ServiceID: svc.ID,
			Category:  svc.Category,
		}, device)
	}

	return svc, nil
}

// ServiceComparison 并排对比结果，标出最低价、最快和评分最高的条目
// swagger:model ServiceComparison
type ServiceComparison struct {
	Services   []model.AuditService `json:"services"`
	CheapestID uint                 `json:"cheapestId"`
	FastestID  uint                 `json:"fastestId"`
	TopRatedID uint                 `json:"topRatedId"`
}

func (s *MarketplaceService) Compare(ids []uint, auditorID uint, device model.DeviceInfo) (*ServiceComparison, error) {
	if len(ids) < 2 {
		return nil, util.ErrCompareTooFew
	}

	services, err := s.MarketplaceRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(services) < 2 {
		return nil, util.ErrCompareTooFew
	}

	comparison := &ServiceComparison{Services: services}
	for _, svc := range services {
		if comparison.CheapestID == 0 || svc.MinPriceUSD < priceOf(services, comparison.CheapestID) {
			comparison.CheapestID = svc.ID
		}
		if comparison.FastestID == 0 || svc.TurnaroundDays < turnaroundOf(services, comparison.FastestID) {
			comparison.FastestID = svc.ID
		}
		if comparison.TopRatedID == 0 || svc.Rating > ratingOf(services, comparison.TopRatedID) {
			comparison.TopRatedID = svc.ID
		}
	}

	if auditorID != 0 {
		serviceIDs := make([]interface{}, len(services))
		for i, svc := range services {
			serviceIDs[i] = svc.ID
		}
		s.Tracker.TrackBehavioralEvent(auditorID, model.EventServiceCompared, map[string]interface{}{
			"service_ids": serviceIDs,
		}, device)
	}

	return comparison, nil
}

func priceOf(services []model.AuditService, id uint) int {
	for _, svc := range services {
		if svc.ID == id {
			return svc.MinPriceUSD
		}
	}
	return 0
}

func turnaroundOf(services []model.AuditService, id uint) int {
	for _, svc := range services {
		if svc.ID == id {
			return svc.TurnaroundDays
		}
	}
	return 0
}

func ratingOf(services []model.AuditService, id uint) float64 {
	for _, svc := range services {
		if svc.ID == id {
			return svc.Rating
		}
	}
	return 0
}

// RecommendedForProfile 按画像专长挑选高分服务，用于仪表盘推荐位
func (s *MarketplaceService) RecommendedForProfile(profile *model.AuditorProfile, limit int) ([]model.AuditService, error) {
	category := ""
	if len(profile.Specializations) > 0 {
		category = profile.Specializations[0]
	}

	services, err := s.MarketplaceRepo.FindTopRated(category, limit)
	if err != nil {
		return nil, err
	}
	// 专长类目下条目不足时退回全站高分
	if len(services) == 0 && category != "" {
		return s.MarketplaceRepo.FindTopRated("", limit)
	}
	return services, nil
}
