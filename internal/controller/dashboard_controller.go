package controller

import (
	"audit_market_backend/internal/model"
	"audit_market_backend/internal/service"
	"audit_market_backend/internal/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	Dashboard *service.DashboardService
	Tracker   *service.EventTracker
}

func NewDashboardController(dashboard *service.DashboardService, tracker *service.EventTracker) *DashboardController {
	return &DashboardController{Dashboard: dashboard, Tracker: tracker}
}

// GetDashboard godoc
// @Summary 审计师仪表盘
// @Description 个性化快照 + 最近活动 + 推荐服务的单次聚合
// @Tags 仪表盘
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.Dashboard}
// @Failure 404 {object} util.Response "尚未完成引导建档"
// @Router /api/dashboard [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	dashboard, err := c.Dashboard.GetDashboard(ctx.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrProfileNotFound) {
			util.Error(ctx, http.StatusNotFound, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	if dashboard.Snapshot != nil && dashboard.Snapshot.Profile != nil {
		c.Tracker.TrackBehavioral(dashboard.Snapshot.Profile.ID, model.PageViewPayload{
			Page:     "dashboard",
			Referrer: ctx.Request.Referer(),
		}, deviceInfoFromRequest(ctx))
	}

	util.Success(ctx, dashboard)
}
