package controller

import (
	"audit_market_backend/internal/repository"
	"audit_market_backend/internal/service"
	"audit_market_backend/internal/util"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type MarketplaceController struct {
	Marketplace     *service.MarketplaceService
	Personalization *service.PersonalizationService
}

func NewMarketplaceController(
	marketplace *service.MarketplaceService,
	personalization *service.PersonalizationService,
) *MarketplaceController {
	return &MarketplaceController{
		Marketplace:     marketplace,
		Personalization: personalization,
	}
}

// 未登录或未建档时返回 0，埋点随之跳过
func (c *MarketplaceController) optionalAuditorID(ctx *gin.Context) uint {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		return 0
	}
	profile, err := c.Personalization.GetProfileByUserID(claims.UserID)
	if err != nil {
		return 0
	}
	return profile.ID
}

// ListServices godoc
// @Summary 审计服务列表
// @Tags 市场
// @Produce json
// @Param category query string false "服务类目"
// @Param maxPrice query int false "最高价格(USD)"
// @Param minRating query number false "最低评分"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页条数" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/marketplace/services [get]
func (c *MarketplaceController) ListServices(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	maxPrice, _ := strconv.Atoi(ctx.DefaultQuery("maxPrice", "0"))
	minRating, _ := strconv.ParseFloat(ctx.DefaultQuery("minRating", "0"), 64)

	filter := repository.AuditServiceFilter{
		Category:    ctx.Query("category"),
		MaxPriceUSD: maxPrice,
		MinRating:   minRating,
	}

	services, total, err := c.Marketplace.List(filter, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  services,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetService godoc
// @Summary 审计服务详情
// @Description 已登录审计师访问时记录浏览事件
// @Tags 市场
// @Produce json
// @Param id path int true "服务ID"
// @Success 200 {object} util.Response{data=model.AuditService}
// @Failure 404 {object} util.Response
// @Router /api/marketplace/services/{id} [get]
func (c *MarketplaceController) GetService(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	svc, err := c.Marketplace.GetService(uint(id), c.optionalAuditorID(ctx), deviceInfoFromRequest(ctx))
	if err != nil {
		if errors.Is(err, util.ErrServiceNotFound) {
			util.Error(ctx, http.StatusNotFound, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, svc)
}

type compareRequest struct {
	ServiceIDs []uint `json:"serviceIds" binding:"required"`
}

// CompareServices godoc
// @Summary 服务对比
// @Description 至少提交两个服务ID，返回最低价/最快/评分最高标注
// @Tags 市场
// @Accept json
// @Produce json
// @Param request body compareRequest true "待对比的服务ID"
// @Success 200 {object} util.Response{data=service.ServiceComparison}
// @Failure 400 {object} util.Response
// @Router /api/marketplace/compare [post]
func (c *MarketplaceController) CompareServices(ctx *gin.Context) {
	var req compareRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	comparison, err := c.Marketplace.Compare(req.ServiceIDs, c.optionalAuditorID(ctx), deviceInfoFromRequest(ctx))
	if err != nil {
		if errors.Is(err, util.ErrCompareTooFew) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, comparison)
}
