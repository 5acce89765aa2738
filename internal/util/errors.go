package util

import "errors"

var (
	ErrUserNotFound      = errors.New("用户不存在")
	ErrEmailRegistered   = errors.New("该邮箱已被注册")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrTokenInvalid      = errors.New("invalid or expired token")
	ErrProfileNotFound   = errors.New("auditor profile not found") // 区别于传输错误，表示需要先完成引导
	ErrProfileExists     = errors.New("auditor profile already exists")
	ErrServiceNotFound   = errors.New("audit service not found")
	ErrAlreadyCheckedIn  = errors.New("already checked in today")
	ErrViewClosed        = errors.New("personalization view closed")
	ErrCompareTooFew     = errors.New("at least two services required for comparison")
)
