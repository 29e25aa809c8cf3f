package repository

import (
	"reelgo/internal/model"

	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// CreateAndCount 插入评论并在同一事务内维护视频评论数
func (r *CommentRepository) CreateAndCount(comment *model.Comment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&model.Video{}).Where("id = ?", comment.VideoID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error
	})
}

func (r *CommentRepository) GetByID(id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.First(&comment, id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepository) GetByIDWithUser(id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.Preload("User").First(&comment, id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Update 更新评论内容（仅作者本人）
func (r *CommentRepository) Update(commentID, userID int64, content string) error {
	result := r.db.Model(&model.Comment{}).
		Where("id = ? AND user_id = ?", commentID, userID).
		Update("content", content)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteCascade 删除评论（仅作者本人），顶层评论连带全部回复
// 同一事务内按实际删除行数扣减视频评论数（不低于 0），返回删除行数
func (r *CommentRepository) DeleteCascade(commentID, userID int64) (int64, error) {
	var removed int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var comment model.Comment
		if err := tx.Where("id = ? AND user_id = ?", commentID, userID).First(&comment).Error; err != nil {
			return err
		}

		result := tx.Where("id = ? OR parent_id = ?", commentID, commentID).Delete(&model.Comment{})
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected

		return tx.Model(&model.Video{}).Where("id = ?", comment.VideoID).
			UpdateColumn("comment_count",
				gorm.Expr("CASE WHEN comment_count >= ? THEN comment_count - ? ELSE 0 END", removed, removed)).Error
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// ListAllByVideoWithUser 取出视频的全部评论（含作者），按时间升序
// 评论树的排序由 service 层完成
func (r *CommentRepository) ListAllByVideoWithUser(videoID int64) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.Preload("User").
		Where("video_id = ?", videoID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

// ListReplies 分页获取顶层评论下的回复（含作者），按时间正序
func (r *CommentRepository) ListReplies(parentID int64, skip, limit int) ([]model.Comment, int64, error) {
	query := r.db.Model(&model.Comment{}).Where("parent_id = ?", parentID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []model.Comment
	err := query.Preload("User").Order("created_at ASC, id ASC").
		Offset(skip).Limit(limit).Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

// ListByUser 获取用户的评论列表
func (r *CommentRepository) ListByUser(userID int64, skip, limit int) ([]model.Comment, int64, error) {
	query := r.db.Model(&model.Comment{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []model.Comment
	err := query.Preload("Video").Order("created_at DESC").
		Offset(skip).Limit(limit).Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

// IncrementLikeCount 评论点赞数 +1
func (r *CommentRepository) IncrementLikeCount(id int64) error {
	result := r.db.Model(&model.Comment{}).Where("id = ?", id).
		UpdateColumn("like_count", gorm.Expr("like_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
