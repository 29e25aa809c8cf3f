package service

import (
	"errors"

	"reelgo/internal/api/dto"
	"reelgo/internal/model"
	"reelgo/internal/repository"

	"gorm.io/gorm"
)

var ErrCannotFollowSelf = errors.New("不能关注自己")

type RelationService struct {
	relationRepo *repository.RelationRepository
	userRepo     *repository.UserRepository
}

func NewRelationService(relationRepo *repository.RelationRepository, userRepo *repository.UserRepository) *RelationService {
	return &RelationService{
		relationRepo: relationRepo,
		userRepo:     userRepo,
	}
}

// Follow 关注用户，幂等：重复关注不报错也不重复计数
// 返回的 bool 表示本次调用是否真正建立了关系
func (s *RelationService) Follow(currentUserID, targetUserID int64) (*dto.FollowResult, bool, error) {
	if currentUserID == targetUserID {
		return nil, false, ErrCannotFollowSelf
	}

	// 检查目标用户是否存在
	if _, err := s.userRepo.GetByID(targetUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrUserNotFound
		}
		return nil, false, err
	}

	created, err := s.relationRepo.Follow(currentUserID, targetUserID)
	if err != nil {
		return nil, false, err
	}

	result, err := s.buildFollowResult(currentUserID, targetUserID, true)
	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}

// Unfollow 取消关注，幂等：未关注时无副作用
// 返回的 bool 表示取消前关系是否存在
func (s *RelationService) Unfollow(currentUserID, targetUserID int64) (*dto.FollowResult, bool, error) {
	removed, err := s.relationRepo.Unfollow(currentUserID, targetUserID)
	if err != nil {
		return nil, false, err
	}

	result, err := s.buildFollowResult(currentUserID, targetUserID, false)
	if err != nil {
		return nil, false, err
	}
	return result, removed, nil
}

func (s *RelationService) buildFollowResult(currentUserID, targetUserID int64, following bool) (*dto.FollowResult, error) {
	result := &dto.FollowResult{
		FollowerID: currentUserID,
		FollowID:   targetUserID,
		Following:  following,
	}

	if follower, err := s.userRepo.GetByID(currentUserID); err == nil {
		result.FollowCount = follower.FollowCount
	}
	if target, err := s.userRepo.GetByID(targetUserID); err == nil {
		result.FollowerCount = target.FollowerCount
	}
	return result, nil
}

// PurgeUser 清理用户的全部关注关系并修正对端计数（注销时由 UserService 调用）
func (s *RelationService) PurgeUser(userID int64) error {
	return s.relationRepo.PurgeUser(userID)
}

// listRelations 关系列表公共流程：校验用户存在，取一页对端 ID，再补齐用户信息
func (s *RelationService) listRelations(
	userID int64, page, pageSize int,
	pageIDs func(userID int64, skip, limit int) ([]int64, error),
	count func(userID int64) (int64, error),
) (*dto.RelationListData, error) {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	skip := (page - 1) * pageSize
	orderedIDs, err := pageIDs(userID, skip, pageSize)
	if err != nil {
		return nil, err
	}

	total, err := count(userID)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.GetByIDs(orderedIDs)
	if err != nil {
		return nil, err
	}

	return buildRelationListData(users, orderedIDs, total, page, pageSize), nil
}

// GetFollowingList 获取关注列表
func (s *RelationService) GetFollowingList(userID int64, page, pageSize int) (*dto.RelationListData, error) {
	return s.listRelations(userID, page, pageSize, s.relationRepo.GetFollowingList, s.relationRepo.CountFollowing)
}

// GetFollowerList 获取粉丝列表
func (s *RelationService) GetFollowerList(userID int64, page, pageSize int) (*dto.RelationListData, error) {
	return s.listRelations(userID, page, pageSize, s.relationRepo.GetFollowerList, s.relationRepo.CountFollowers)
}

// GetFollowStatus 查询关注状态
func (s *RelationService) GetFollowStatus(currentUserID, targetUserID int64) (bool, error) {
	return s.relationRepo.Exists(currentUserID, targetUserID)
}

// GetMutualFollows 获取互相关注列表
func (s *RelationService) GetMutualFollows(userID int64, page, pageSize int) (*dto.RelationListData, error) {
	return s.listRelations(userID, page, pageSize, s.relationRepo.GetMutualFollowIDs, s.relationRepo.CountMutualFollows)
}

// BatchCheckFollowStatus 批量查询关注状态
func (s *RelationService) BatchCheckFollowStatus(currentUserID int64, targetIDs []int64) (map[int64]bool, error) {
	return s.relationRepo.BatchCheckFollowing(currentUserID, targetIDs)
}

// buildRelationListData 构建关注/粉丝列表响应，按 orderedIDs 排序
func buildRelationListData(users []model.User, orderedIDs []int64, total int64, page, pageSize int) *dto.RelationListData {
	// 先建 map 方便按 ID 查找
	userMap := make(map[int64]dto.RelationUserInfo, len(users))
	for i := range users {
		userMap[users[i].ID] = dto.RelationUserInfo{
			ID:            users[i].ID,
			Username:      users[i].UserName,
			Avatar:        users[i].Avatar,
			FollowCount:   users[i].FollowCount,
			FollowerCount: users[i].FollowerCount,
		}
	}

	// 按原始顺序输出
	userList := make([]dto.RelationUserInfo, 0, len(orderedIDs))
	for _, id := range orderedIDs {
		if info, ok := userMap[id]; ok {
			userList = append(userList, info)
		}
	}

	return &dto.RelationListData{
		Users:    userList,
		PageInfo: dto.NewPageInfo(total, page, pageSize),
	}
}
