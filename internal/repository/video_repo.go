package repository

import (
	"reelgo/internal/model"

	"gorm.io/gorm"
)

type VideoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// GetByID 根据 ID 获取视频
func (r *VideoRepository) GetByID(id int64) (*model.Video, error) {
	var video model.Video
	err := r.db.Where("id = ?", id).First(&video).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// GetByIDWithAuthor 根据 ID 获取视频（含作者信息）
func (r *VideoRepository) GetByIDWithAuthor(id int64) (*model.Video, error) {
	var video model.Video
	err := r.db.Preload("Author").Where("id = ?", id).First(&video).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// GetByIDAndAuthor 根据视频 ID + 作者 ID 查询（权限校验用）
func (r *VideoRepository) GetByIDAndAuthor(videoID, authorID int64) (*model.Video, error) {
	var video model.Video
	err := r.db.Where("id = ? AND author_id = ?", videoID, authorID).First(&video).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// Create 创建视频记录
func (r *VideoRepository) Create(video *model.Video) error {
	return r.db.Create(video).Error
}

// Update 更新视频字段
func (r *VideoRepository) Update(id int64, updates map[string]interface{}) (*model.Video, error) {
	result := r.db.Model(&model.Video{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(id)
}

// DeleteCascade 删除视频及其全部评论（同一事务）
func (r *VideoRepository) DeleteCascade(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("video_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&model.Video{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// GetByIDsWithAuthor 批量查询视频（含作者）
func (r *VideoRepository) GetByIDsWithAuthor(ids []int64) ([]model.Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var videos []model.Video
	err := r.db.Preload("Author").Where("id IN ?", ids).Find(&videos).Error
	return videos, err
}

// ListFeed 信息流分页查询（仅公开视频，含作者，最新优先）
// created_at 相同时按 id 倒序保证顺序稳定
func (r *VideoRepository) ListFeed(skip, limit int) ([]model.Video, error) {
	var videos []model.Video
	err := r.db.Preload("Author").
		Where("is_private = ?", false).
		Order("created_at DESC, id DESC").
		Offset(skip).Limit(limit).
		Find(&videos).Error
	return videos, err
}

// ListVideos 视频列表查询（分页、筛选、排序）
func (r *VideoRepository) ListVideos(skip, limit int, authorID *int64, includePrivate bool, search *string, withAuthor bool) ([]model.Video, int64, error) {
	query := r.db.Model(&model.Video{})

	if authorID != nil {
		query = query.Where("author_id = ?", *authorID)
	}
	if !includePrivate {
		query = query.Where("is_private = ?", false)
	}
	if search != nil && *search != "" {
		pattern := "%" + *search + "%"
		query = query.Where("LOWER(title) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	findQuery := query.Order("created_at DESC, id DESC").Offset(skip).Limit(limit)
	if withAuthor {
		findQuery = findQuery.Preload("Author")
	}

	var videos []model.Video
	if err := findQuery.Find(&videos).Error; err != nil {
		return nil, 0, err
	}

	return videos, total, nil
}

// IncrementViewCount 播放量 +1（每次详情访问都计数，不去重）
func (r *VideoRepository) IncrementViewCount(id int64) error {
	return r.db.Model(&model.Video{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// IncrementLikeCount 点赞数 +1
func (r *VideoRepository) IncrementLikeCount(id int64) error {
	return r.db.Model(&model.Video{}).Where("id = ?", id).
		UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
}

// IncrementDislikeCount 点踩数 +1
func (r *VideoRepository) IncrementDislikeCount(id int64) error {
	return r.db.Model(&model.Video{}).Where("id = ?", id).
		UpdateColumn("dislike_count", gorm.Expr("dislike_count + 1")).Error
}
