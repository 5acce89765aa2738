package service

import (
	"audit_market_backend/internal/model"
	"audit_market_backend/internal/repository"
	"audit_market_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo    *repository.UserRepository
	ProfileRepo *repository.AuditorProfileRepository
}

func NewUserService(userRepo *repository.UserRepository, profileRepo *repository.AuditorProfileRepository) *UserService {
	return &UserService{
		UserRepo:    userRepo,
		ProfileRepo: profileRepo,
	}
}

func (s *UserService) GetByID(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	return user, err
}

// UpdateProfileRequest 基本资料更新，空字段不覆盖
type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Avatar   string `json:"avatar"`
}

func (s *UserService) UpdateProfile(userID uint, req UpdateProfileRequest) (*model.User, error) {
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Language != "" {
		user.Language = req.Language
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateAuditorProfileRequest 审计师画像编辑
type UpdateAuditorProfileRequest struct {
	FullName        string   `json:"fullName"`
	Bio             string   `json:"bio"`
	GithubUsername  string   `json:"githubUsername"`
	TwitterHandle   string   `json:"twitterHandle"`
	WebsiteURL      string   `json:"websiteUrl"`
	Specializations []string `json:"specializations"`
}

func (s *UserService) UpdateAuditorProfile(userID uint, req UpdateAuditorProfileRequest) (*model.AuditorProfile, error) {
	profile, err := s.ProfileRepo.FindByUserID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	if req.FullName != "" {
		profile.FullName = req.FullName
	}
	if req.Bio != "" {
		profile.Bio = req.Bio
	}
	if req.GithubUsername != "" {
		profile.GithubUsername = req.GithubUsername
	}
	if req.TwitterHandle != "" {
		profile.TwitterHandle = req.TwitterHandle
	}
	if req.WebsiteURL != "" {
		profile.WebsiteURL = req.WebsiteURL
	}
	if req.Specializations != nil {
		profile.Specializations = req.Specializations
	}

	if err := s.ProfileRepo.Update(profile); err != nil {
		return nil, err
	}
	return profile, nil
}
