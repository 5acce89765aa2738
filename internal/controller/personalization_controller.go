package controller

import (
	"audit_market_backend/internal/model"
	"audit_market_backend/internal/service"
	"audit_market_backend/internal/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type PersonalizationController struct {
	Views           *service.ViewRegistry
	Personalization *service.PersonalizationService
	Tracker         *service.EventTracker
	UserService     *service.UserService
}

func NewPersonalizationController(
	views *service.ViewRegistry,
	personalization *service.PersonalizationService,
	tracker *service.EventTracker,
	userService *service.UserService,
) *PersonalizationController {
	return &PersonalizationController{
		Views:           views,
		Personalization: personalization,
		Tracker:         tracker,
		UserService:     userService,
	}
}

// GetContent godoc
// @Summary 获取个性化内容
// @Description 返回个性化视图快照；缓存过期时先刷新（stale-while-revalidate）
// @Tags 个性化
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.ViewSnapshot}
// @Failure 404 {object} util.Response "未建立审计师画像，需先完成引导"
// @Router /api/personalization/content [get]
func (c *PersonalizationController) GetContent(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	view := c.Views.ViewFor(user.UserID)
	snapshot, err := view.Snapshot(ctx.Request.Context())
	if err != nil {
		if errors.Is(err, util.ErrProfileNotFound) {
			util.Error(ctx, http.StatusNotFound, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, snapshot)
}

// Refresh godoc
// @Summary 强制刷新个性化内容
// @Tags 个性化
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.ViewSnapshot}
// @Router /api/personalization/refresh [post]
func (c *PersonalizationController) Refresh(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	view := c.Views.ViewFor(user.UserID)
	if err := view.Refresh(ctx.Request.Context()); err != nil && !view.HasPersonalizedContent() {
		if errors.Is(err, util.ErrProfileNotFound) {
			util.Error(ctx, http.StatusNotFound, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	snapshot, err := view.Snapshot(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, snapshot)
}

// CompleteQuickWinRequest 只带 id，XP 面值由服务端规则表决定
// swagger:model CompleteQuickWinRequest
type CompleteQuickWinRequest struct {
	ID string `json:"id" binding:"required"`
}

// CompleteQuickWin godoc
// @Summary 完成一个 quick win
// @Description 本地乐观标记完成并上报事件；上报失败时 completed=false
// @Tags 个性化
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CompleteQuickWinRequest true "quick win"
// @Success 200 {object} util.Response{data=object}
// @Router /api/personalization/quick-wins/complete [post]
func (c *PersonalizationController) CompleteQuickWin(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CompleteQuickWinRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view := c.Views.ViewFor(user.UserID)
	ok := view.CompleteQuickWin(ctx.Request.Context(), model.QuickWin{ID: req.ID}, deviceInfoFromRequest(ctx))

	util.Success(ctx, gin.H{"completed": ok})
}

// UpdatePreferences godoc
// @Summary 更新用户偏好
// @Description 读改写画像偏好；失败时本地状态不变
// @Tags 个性化
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body model.UserPreferences true "偏好配置"
// @Success 200 {object} util.Response
// @Router /api/personalization/preferences [put]
func (c *PersonalizationController) UpdatePreferences(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var prefs model.UserPreferences
	if err := ctx.ShouldBindJSON(&prefs); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view := c.Views.ViewFor(user.UserID)
	if err := view.UpdatePreferences(ctx.Request.Context(), prefs); err != nil {
		if errors.Is(err, util.ErrProfileNotFound) {
			util.Error(ctx, http.StatusNotFound, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// UpdateInsights godoc
// @Summary 更新性格画像
// @Tags 个性化
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body model.PersonalityInsights true "性格画像"
// @Success 200 {object} util.Response
// @Router /api/personalization/insights [put]
func (c *PersonalizationController) UpdateInsights(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var insights model.PersonalityInsights
	if err := ctx.ShouldBindJSON(&insights); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view := c.Views.ViewFor(user.UserID)
	if err := view.UpdatePersonalityInsights(ctx.Request.Context(), insights); err != nil {
		if errors.Is(err, util.ErrProfileNotFound) {
			util.Error(ctx, http.StatusNotFound, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// GetSession godoc
// @Summary 当前分析会话ID
// @Tags 个性化
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object}
// @Router /api/personalization/session [get]
func (c *PersonalizationController) GetSession(ctx *gin.Context) {
	util.Success(ctx, gin.H{"sessionId": c.Tracker.SessionID()})
}

// swagger:model TrackInteractionRequest
type TrackInteractionRequest struct {
	Element string            `json:"element" binding:"required"`
	Action  string            `json:"action" binding:"required"`
	Context map[string]string `json:"context"`
}

// TrackInteraction godoc
// @Summary 行为埋点上报
// @Description fire-and-forget；失败也返回 202
// @Tags 个性化
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body TrackInteractionRequest true "交互信息"
// @Success 202 {object} util.Response
// @Router /api/personalization/interactions [post]
func (c *PersonalizationController) TrackInteraction(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req TrackInteractionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view := c.Views.ViewFor(user.UserID)
	// 错误已在 tracker 内记录，调用方不关心
	view.TrackInteraction(req.Element, req.Action, req.Context, deviceInfoFromRequest(ctx))

	util.Accepted(ctx)
}

// swagger:model TrackEventRequest
type TrackEventRequest struct {
	EventType string                 `json:"eventType" binding:"required"`
	Data      map[string]interface{} `json:"data"`
}

// TrackEvent godoc
// @Summary 通用游戏化事件上报
// @Description 探索性事件走开放负载；fire-and-forget
// @Tags 个性化
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body TrackEventRequest true "事件"
// @Success 202 {object} util.Response
// @Router /api/personalization/events [post]
func (c *PersonalizationController) TrackEvent(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req TrackEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	profile, err := c.Personalization.GetProfileByUserID(user.UserID)
	if err != nil {
		if errors.Is(err, util.ErrProfileNotFound) {
			util.Error(ctx, http.StatusNotFound, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	c.Tracker.TrackEvent(profile.ID, model.EventType(req.EventType), req.Data, deviceInfoFromRequest(ctx))
	util.Accepted(ctx)
}
