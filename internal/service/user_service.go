package service

import (
	"errors"

	"reelgo/internal/api/dto"
	"reelgo/internal/model"
	"reelgo/internal/repository"

	"gorm.io/gorm"
)

var ErrUserNoPermission = errors.New("没有权限执行该操作")

type UserService struct {
	userRepo     *repository.UserRepository
	relationRepo *repository.RelationRepository
}

func NewUserService(userRepo *repository.UserRepository, relationRepo *repository.RelationRepository) *UserService {
	return &UserService{userRepo: userRepo, relationRepo: relationRepo}
}

// fetch 按 ID 查用户，查不到统一译成 ErrUserNotFound
func (s *UserService) fetch(id int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// applyUpdate 落库更新，目标不存在时译成 ErrUserNotFound
func (s *UserService) applyUpdate(userID int64, updates map[string]interface{}) (*model.User, error) {
	user, err := s.userRepo.Update(userID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetUserByID 获取用户信息
func (s *UserService) GetUserByID(id int64) (*dto.UserFullInfo, error) {
	user, err := s.fetch(id)
	if err != nil {
		return nil, err
	}
	return toUserFullInfo(user), nil
}

// canOperate 本人或管理员
func canOperate(actor *dto.UserInfo, targetID int64) bool {
	return actor.ID == targetID || actor.UserRole == model.RoleAdmin
}

// GetUserFor 查看指定用户的完整信息，仅本人或管理员
func (s *UserService) GetUserFor(viewer *dto.UserInfo, targetID int64) (*dto.UserFullInfo, error) {
	if !canOperate(viewer, targetID) {
		return nil, ErrUserNoPermission
	}
	return s.GetUserByID(targetID)
}

// UpdateUser 更新用户信息，仅本人或管理员可改
func (s *UserService) UpdateUser(targetID int64, currentUser *dto.UserInfo, req *dto.UserUpdateRequest) (*dto.UserFullInfo, error) {
	if !canOperate(currentUser, targetID) {
		return nil, ErrUserNoPermission
	}

	updates := make(map[string]interface{})
	if req.Username != nil {
		exists, err := s.userRepo.ExistsByUsername(*req.Username)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrUsernameExists
		}
		updates["user_name"] = *req.Username
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}
	if req.BackgroundImage != nil {
		updates["background_image"] = *req.BackgroundImage
	}

	if len(updates) == 0 {
		return s.GetUserByID(targetID)
	}

	user, err := s.applyUpdate(targetID, updates)
	if err != nil {
		return nil, err
	}
	return toUserFullInfo(user), nil
}

// SoftDeleteUser 注销用户（管理员），连带清理其关注关系并修正对端计数
func (s *UserService) SoftDeleteUser(userID int64) error {
	if _, err := s.applyUpdate(userID, map[string]interface{}{"is_delete": 1}); err != nil {
		return err
	}
	return s.relationRepo.PurgeUser(userID)
}

// RestoreUser 恢复已注销用户（管理员），注销时清掉的关注关系不恢复
func (s *UserService) RestoreUser(userID int64) error {
	_, err := s.applyUpdate(userID, map[string]interface{}{"is_delete": 0})
	return err
}

// SetAdminRole 把用户提升为管理员（管理员）
func (s *UserService) SetAdminRole(userID int64) (*dto.UserFullInfo, error) {
	user, err := s.applyUpdate(userID, map[string]interface{}{"user_role": model.RoleAdmin})
	if err != nil {
		return nil, err
	}
	return toUserFullInfo(user), nil
}

// ListUsers 用户列表（管理员，带筛选和分页）
// status 为 active / deleted，空串表示不过滤账号状态
func (s *UserService) ListUsers(page, pageSize int, username, userRole *string, status string) (*dto.UserListData, error) {
	skip := (page - 1) * pageSize
	users, total, err := s.userRepo.ListWithFilters(skip, pageSize, username, userRole, status)
	if err != nil {
		return nil, err
	}

	items := make([]dto.UserFullInfo, 0, len(users))
	for i := range users {
		items = append(items, *toUserFullInfo(&users[i]))
	}

	return &dto.UserListData{
		Users:    items,
		PageInfo: dto.NewPageInfo(total, page, pageSize),
	}, nil
}

func toUserFullInfo(user *model.User) *dto.UserFullInfo {
	return &dto.UserFullInfo{
		ID:              user.ID,
		Username:        user.UserName,
		Name:            user.Name,
		Avatar:          user.Avatar,
		BackgroundImage: user.BackgroundImage,
		UserRole:        user.UserRole,
		FollowCount:     user.FollowCount,
		FollowerCount:   user.FollowerCount,
		IsDeleted:       user.IsDelete != 0,
	}
}
