package service

import (
	"errors"

	"reelgo/internal/api/dto"
	"reelgo/internal/config"
	"reelgo/internal/model"
	"reelgo/internal/repository"
	"reelgo/pkg/utils"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("用户不存在")
	ErrUsernameExists    = errors.New("用户名已存在")
	ErrInvalidCredential = errors.New("用户名或密码错误")
)

type AuthService struct {
	userRepo *repository.UserRepository
}

func NewAuthService(userRepo *repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// Register 注册新账号，用户名全局唯一
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.UserInfo, error) {
	exists, err := s.userRepo.ExistsByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameExists
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		UserName:        req.Username,
		Password:        hashed,
		Name:            req.Name,
		Avatar:          req.Avatar,
		BackgroundImage: req.BackgroundImage,
		UserRole:        req.UserRole,
	}
	if user.UserRole == "" {
		user.UserRole = model.RoleUser
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

// Login 校验凭证并签发 token
// 已注销账号在查询层就被排除，和密码错误一样只返回凭证错误，
// 不向外暴露账号是否存在
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.TokenData, error) {
	user, err := s.userRepo.GetByUsername(req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, err
	}
	if !utils.VerifyPassword(req.Password, user.Password) {
		return nil, ErrInvalidCredential
	}
	return s.issueToken(user)
}

// GetCurrentUser 按 ID 取当前用户，token 有效但账号已注销时返回用户不存在
func (s *AuthService) GetCurrentUser(userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserInfo(user), nil
}

// issueToken 为通过校验的用户签发 token 并组装登录响应
func (s *AuthService) issueToken(user *model.User) (*dto.TokenData, error) {
	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &dto.TokenData{
		Token:     token,
		TokenType: "bearer",
		ExpiresIn: int(config.GetJWT().ExpireHours) * 3600,
		User:      *toUserInfo(user),
	}, nil
}

func toUserInfo(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:              user.ID,
		Username:        user.UserName,
		Name:            user.Name,
		Avatar:          user.Avatar,
		BackgroundImage: user.BackgroundImage,
		UserRole:        user.UserRole,
		FollowCount:     user.FollowCount,
		FollowerCount:   user.FollowerCount,
	}
}
