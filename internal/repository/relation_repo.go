package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"reelgo/internal/model"
)

type RelationRepository struct {
	db *gorm.DB
}

func NewRelationRepository(db *gorm.DB) *RelationRepository {
	return &RelationRepository{db: db}
}

// Follow 建立关注关系并在同一事务内更新双方计数
// 关系已存在时不重复插入也不重复计数，此时返回 false
func (r *RelationRepository) Follow(followerID, followID int64) (bool, error) {
	var created bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		relation := &model.Relation{
			FollowerID: followerID,
			FollowID:   followID,
		}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(relation)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// 唯一索引命中，已经关注过
			return nil
		}
		created = true

		if err := tx.Model(&model.User{}).Where("id = ?", followerID).
			UpdateColumn("follow_count", gorm.Expr("follow_count + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).Where("id = ?", followID).
			UpdateColumn("follower_count", gorm.Expr("follower_count + 1")).Error
	})
	return created, err
}

// Unfollow 解除关注关系并在同一事务内更新双方计数（不低于 0）
// 关系不存在时无副作用，返回 false
func (r *RelationRepository) Unfollow(followerID, followID int64) (bool, error) {
	var removed bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("follower_id = ? AND follow_id = ?", followerID, followID).
			Delete(&model.Relation{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		removed = true

		if err := tx.Model(&model.User{}).Where("id = ? AND follow_count > 0", followerID).
			UpdateColumn("follow_count", gorm.Expr("follow_count - 1")).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).Where("id = ? AND follower_count > 0", followID).
			UpdateColumn("follower_count", gorm.Expr("follower_count - 1")).Error
	})
	return removed, err
}

// PurgeUser 删除用户全部关注关系并修正对端计数（用户注销时调用）
// 本人计数一并清零，账号恢复后不会带着指向已删关系的旧计数
func (r *RelationRepository) PurgeUser(userID int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// 该用户关注的人各少一个粉丝
		if err := tx.Exec(`
			UPDATE users SET follower_count = follower_count - 1
			WHERE follower_count > 0
			  AND id IN (SELECT follow_id FROM relations WHERE follower_id = ?)
		`, userID).Error; err != nil {
			return err
		}
		// 关注该用户的人各少一个关注
		if err := tx.Exec(`
			UPDATE users SET follow_count = follow_count - 1
			WHERE follow_count > 0
			  AND id IN (SELECT follower_id FROM relations WHERE follow_id = ?)
		`, userID).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.User{}).Where("id = ?", userID).
			Updates(map[string]interface{}{"follow_count": 0, "follower_count": 0}).Error; err != nil {
			return err
		}
		return tx.Where("follower_id = ? OR follow_id = ?", userID, userID).
			Delete(&model.Relation{}).Error
	})
}

// Exists 检查关注关系是否存在
func (r *RelationRepository) Exists(followerID, followID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.Relation{}).
		Where("follower_id = ? AND follow_id = ?", followerID, followID).
		Count(&count).Error
	return count > 0, err
}

// GetFollowingList 获取用户的关注列表（分页）
func (r *RelationRepository) GetFollowingList(userID int64, skip, limit int) ([]int64, error) {
	var followIDs []int64
	err := r.db.Model(&model.Relation{}).
		Where("follower_id = ?", userID).
		Order("created_at DESC").
		Offset(skip).Limit(limit).
		Pluck("follow_id", &followIDs).Error
	return followIDs, err
}

// GetFollowerList 获取用户的粉丝列表（分页）
func (r *RelationRepository) GetFollowerList(userID int64, skip, limit int) ([]int64, error) {
	var followerIDs []int64
	err := r.db.Model(&model.Relation{}).
		Where("follow_id = ?", userID).
		Order("created_at DESC").
		Offset(skip).Limit(limit).
		Pluck("follower_id", &followerIDs).Error
	return followerIDs, err
}

// CountFollowing 统计关注数
func (r *RelationRepository) CountFollowing(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Relation{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}

// CountFollowers 统计粉丝数
func (r *RelationRepository) CountFollowers(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Relation{}).Where("follow_id = ?", userID).Count(&count).Error
	return count, err
}

// GetMutualFollowIDs 获取互相关注的用户 ID 列表（分页）
func (r *RelationRepository) GetMutualFollowIDs(userID int64, skip, limit int) ([]int64, error) {
	var mutualIDs []int64
	// 子查询：我关注的人 ∩ 关注我的人
	err := r.db.Raw(`
		SELECT r1.follow_id FROM relations r1
		INNER JOIN relations r2 ON r1.follow_id = r2.follower_id AND r2.follow_id = ?
		WHERE r1.follower_id = ?
		ORDER BY r1.created_at DESC
		LIMIT ? OFFSET ?
	`, userID, userID, limit, skip).Scan(&mutualIDs).Error
	return mutualIDs, err
}

// CountMutualFollows 统计互相关注数
func (r *RelationRepository) CountMutualFollows(userID int64) (int64, error) {
	var count int64
	err := r.db.Raw(`
		SELECT COUNT(*) FROM relations r1
		INNER JOIN relations r2 ON r1.follow_id = r2.follower_id AND r2.follow_id = ?
		WHERE r1.follower_id = ?
	`, userID, userID).Scan(&count).Error
	return count, err
}

// BatchCheckFollowing 批量检查关注状态
func (r *RelationRepository) BatchCheckFollowing(followerID int64, followIDs []int64) (map[int64]bool, error) {
	if len(followIDs) == 0 {
		return map[int64]bool{}, nil
	}

	var followedIDs []int64
	err := r.db.Model(&model.Relation{}).
		Where("follower_id = ? AND follow_id IN ?", followerID, followIDs).
		Pluck("follow_id", &followedIDs).Error
	if err != nil {
		return nil, err
	}

	followedSet := make(map[int64]bool, len(followedIDs))
	for _, id := range followedIDs {
		followedSet[id] = true
	}

	result := make(map[int64]bool, len(followIDs))
	for _, id := range followIDs {
		result[id] = followedSet[id]
	}
	return result, nil
}
