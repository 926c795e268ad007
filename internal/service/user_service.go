package service

import (
	"english_edu_backend/internal/model"
	"english_edu_backend/internal/repository"
	"english_edu_backend/internal/util"
	"english_edu_backend/pkg/logger"

	"go.uber.org/zap"
)

type UserAdminRepo interface {
	FindByID(id uint) (*model.User, error)
	List(filter repository.UserFilter, page, limit int) ([]model.User, int64, error)
	SetDisabled(userID uint, disabled bool) error
}

// UserService 管理员的用户管理
type UserService struct {
	UserRepo UserAdminRepo
}

func NewUserService(userRepo UserAdminRepo) *UserService {
	return &UserService{UserRepo: userRepo}
}

func (s *UserService) GetUsers(filter repository.UserFilter, page, limit int) ([]model.User, int64, error) {
	users, total, err := s.UserRepo.List(filter, page, limit)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return users, total, nil
}

// SetDisabled 禁用或恢复账号登录，管理员不能禁用自己
func (s *UserService) SetDisabled(admin *util.Claims, id uint, disabled bool) (*model.User, error) {
	if admin.UserID == id && disabled {
		return nil, util.Validationf("cannot disable your own account")
	}
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		return nil, lookupErr(err, "user", id)
	}
	if err := s.UserRepo.SetDisabled(id, disabled); err != nil {
		return nil, storeErr(err)
	}
	user.Disabled = disabled

	logger.Log.Info("user status changed",
		zap.Uint("userID", id),
		zap.Bool("disabled", disabled),
		zap.Uint("by", admin.UserID),
	)
	return user, nil
}
