package controller

import (
	"audit_market_backend/internal/service"
	"audit_market_backend/internal/util"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type GamificationController struct {
	Gamification    *service.GamificationService
	Personalization *service.PersonalizationService
}

func NewGamificationController(
	gamification *service.GamificationService,
	personalization *service.PersonalizationService,
) *GamificationController {
	return &GamificationController{
		Gamification:    gamification,
		Personalization: personalization,
	}
}

func (c *GamificationController) auditorID(ctx *gin.Context) (uint, bool) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return 0, false
	}

	profile, err := c.Personalization.GetProfileByUserID(user.UserID)
	if err != nil {
		if errors.Is(err, util.ErrProfileNotFound) {
			util.Error(ctx, http.StatusNotFound, err.Error())
			return 0, false
		}
		util.LogInternalError(ctx, err)
		return 0, false
	}
	return profile.ID, true
}

// GetSummary godoc
// @Summary 游戏化摘要
// @Description 服务端聚合的 XP/等级/连签/徽章摘要
// @Tags 游戏化
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.GamificationSummary}
// @Router /api/gamification/summary [get]
func (c *GamificationController) GetSummary(ctx *gin.Context) {
	auditorID, ok := c.auditorID(ctx)
	if !ok {
		return
	}

	summary, err := c.Gamification.GetSummary(ctx.Request.Context(), auditorID)
	if err != nil {
		// 聚合失败按"无摘要"处理，错误已在服务层记录
		util.Success(ctx, nil)
		return
	}
	util.Success(ctx, summary)
}

// Checkin godoc
// @Summary 每日签到
// @Tags 游戏化
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object}
// @Failure 409 {object} util.Response "今日已签到"
// @Router /api/gamification/checkin [post]
func (c *GamificationController) Checkin(ctx *gin.Context) {
	auditorID, ok := c.auditorID(ctx)
	if !ok {
		return
	}

	streak, err := c.Gamification.RecordCheckin(ctx.Request.Context(), auditorID)
	if err != nil {
		if errors.Is(err, util.ErrAlreadyCheckedIn) {
			util.Error(ctx, http.StatusConflict, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	if err := c.Gamification.MaybeAwardStreakBadge(auditorID, streak); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"streakDays": streak})
}

// GetBadges godoc
// @Summary 已获得的徽章
// @Tags 游戏化
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Badge}
// @Router /api/gamification/badges [get]
func (c *GamificationController) GetBadges(ctx *gin.Context) {
	auditorID, ok := c.auditorID(ctx)
	if !ok {
		return
	}

	badges, err := c.Gamification.BadgeRepo.FindByAuditor(auditorID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, badges)
}

// GetActivityFeed godoc
// @Summary 最近活动流
// @Tags 游戏化
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "条数上限" default(20)
// @Success 200 {object} util.Response{data=[]model.GamificationAnalytics}
// @Router /api/gamification/activity [get]
func (c *GamificationController) GetActivityFeed(ctx *gin.Context) {
	auditorID, ok := c.auditorID(ctx)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	feed, err := c.Personalization.ActivityFeed(auditorID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, feed)
}

// GetLeaderboard godoc
// @Summary XP 排行榜
// @Tags 游戏化
// @Produce json
// @Param limit query int false "条数上限" default(10)
// @Success 200 {object} util.Response{data=[]model.AuditorProfile}
// @Router /api/gamification/leaderboard [get]
func (c *GamificationController) GetLeaderboard(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	profiles, err := c.Gamification.Leaderboard(limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, profiles)
}
