package service

import (
	"audit_market_backend/internal/model"
	"audit_market_backend/pkg/logger"
	"context"

	"go.uber.org/zap"
)

// DashboardService 仪表盘聚合：个性化快照 + 活动流 + 市场推荐位
type DashboardService struct {
	Views       *ViewRegistry
	Marketplace *MarketplaceService
}

func NewDashboardService(views *ViewRegistry, marketplace *MarketplaceService) *DashboardService {
	return &DashboardService{
		Views:       views,
		Marketplace: marketplace,
	}
}

// Dashboard 仪表盘响应
// swagger:model Dashboard
type Dashboard struct {
	Snapshot     *ViewSnapshot                 `json:"snapshot"`
	ActivityFeed []model.GamificationAnalytics `json:"activityFeed"`
	Recommended  []model.AuditService          `json:"recommendedServices"`
}

// GetDashboard 快照是硬依赖；活动流和推荐位各自降级为空
func (s *DashboardService) GetDashboard(ctx context.Context, userID uint) (*Dashboard, error) {
	view := s.Views.ViewFor(userID)
	snapshot, err := view.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	dashboard := &Dashboard{Snapshot: snapshot}

	if snapshot.Profile != nil {
		feed, err := s.Views.personalization.ActivityFeed(snapshot.Profile.ID, 20)
		if err != nil {
			logger.Log.Warn("dashboard activity feed unavailable", zap.Uint("userId", userID), zap.Error(err))
		} else {
			dashboard.ActivityFeed = feed
		}

		recommended, err := s.Marketplace.RecommendedForProfile(snapshot.Profile, 5)
		if err != nil {
			logger.Log.Warn("dashboard recommendations unavailable", zap.Uint("userId", userID), zap.Error(err))
		} else {
			dashboard.Recommended = recommended
		}
	}

	return dashboard, nil
}
