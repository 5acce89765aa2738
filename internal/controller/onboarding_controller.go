package controller

import (
	"audit_market_backend/internal/model"
	"audit_market_backend/internal/repository"
	"audit_market_backend/internal/service"
	"audit_market_backend/internal/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type OnboardingController struct {
	Personalization *service.PersonalizationService
	Tracker         *service.EventTracker
	UserRepo        *repository.UserRepository
}

func NewOnboardingController(
	personalization *service.PersonalizationService,
	tracker *service.EventTracker,
	userRepo *repository.UserRepository,
) *OnboardingController {
	return &OnboardingController{
		Personalization: personalization,
		Tracker:         tracker,
		UserRepo:        userRepo,
	}
}

// CompleteOnboardingRequest 引导向导的汇总结果
// swagger:model CompleteOnboardingRequest
type CompleteOnboardingRequest struct {
	FullName        string                    `json:"fullName" binding:"required"`
	ExperienceLevel string                    `json:"experienceLevel" binding:"required,oneof=beginner intermediate expert"`
	Specializations []string                  `json:"specializations"`
	Bio             string                    `json:"bio"`
	GithubUsername  string                    `json:"githubUsername"`
	TwitterHandle   string                    `json:"twitterHandle"`
	WebsiteURL      string                    `json:"websiteUrl"`
	Preferences     model.UserPreferences     `json:"preferences"`
	Insights        model.PersonalityInsights `json:"insights"`
}

// Complete godoc
// @Summary 完成引导并建立审计师画像
// @Tags 引导
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CompleteOnboardingRequest true "引导结果"
// @Success 201 {object} util.Response{data=model.AuditorProfile}
// @Failure 409 {object} util.Response "画像已存在"
// @Router /api/onboarding/complete [post]
func (c *OnboardingController) Complete(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CompleteOnboardingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	profile := &model.AuditorProfile{
		UserID:          user.UserID,
		FullName:        req.FullName,
		Email:           user.Email,
		ExperienceLevel: model.ExperienceLevel(req.ExperienceLevel),
		Specializations: req.Specializations,
		Bio:             req.Bio,
		GithubUsername:  req.GithubUsername,
		TwitterHandle:   req.TwitterHandle,
		WebsiteURL:      req.WebsiteURL,
		Preferences:     req.Preferences,
		Insights:        req.Insights,
		Level:           1,
	}

	if err := c.Personalization.CreateProfile(profile); err != nil {
		if errors.Is(err, util.ErrProfileExists) {
			util.Error(ctx, http.StatusConflict, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	if err := c.UserRepo.MarkOnboarded(user.UserID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	c.Tracker.TrackEvent(profile.ID, model.EventOnboardingCompleted, map[string]interface{}{
		"experience_level": req.ExperienceLevel,
	}, deviceInfoFromRequest(ctx))

	util.Created(ctx, profile)
}
