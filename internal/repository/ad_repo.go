package repository

import (
	"reelgo/internal/model"

	"gorm.io/gorm"
)

type AdRepository struct {
	db *gorm.DB
}

func NewAdRepository(db *gorm.DB) *AdRepository {
	return &AdRepository{db: db}
}

func (r *AdRepository) Create(ad *model.Ad) error {
	return r.db.Create(ad).Error
}

func (r *AdRepository) GetByID(id int64) (*model.Ad, error) {
	var ad model.Ad
	err := r.db.First(&ad, id).Error
	if err != nil {
		return nil, err
	}
	return &ad, nil
}

// Update 更新广告字段
func (r *AdRepository) Update(id int64, updates map[string]interface{}) (*model.Ad, error) {
	result := r.db.Model(&model.Ad{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(id)
}

// Delete 删除广告（展示记录保留作配额统计）
func (r *AdRepository) Delete(id int64) error {
	result := r.db.Delete(&model.Ad{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List 广告列表（管理端分页）
func (r *AdRepository) List(skip, limit int, onlyActive bool) ([]model.Ad, int64, error) {
	query := r.db.Model(&model.Ad{})
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ads []model.Ad
	err := query.Order("created_at DESC").Offset(skip).Limit(limit).Find(&ads).Error
	if err != nil {
		return nil, 0, err
	}
	return ads, total, nil
}

// Random 随机取一条投放中的广告，无可投广告时返回 gorm.ErrRecordNotFound
func (r *AdRepository) Random() (*model.Ad, error) {
	var ad model.Ad
	err := r.db.Where("is_active = ?", true).
		Order("RANDOM()").Limit(1).First(&ad).Error
	if err != nil {
		return nil, err
	}
	return &ad, nil
}

// IncrementViewCount 展示次数 +1
func (r *AdRepository) IncrementViewCount(id int64) error {
	return r.db.Model(&model.Ad{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// IncrementClickCount 点击次数 +1
func (r *AdRepository) IncrementClickCount(id int64) error {
	result := r.db.Model(&model.Ad{}).Where("id = ?", id).
		UpdateColumn("click_count", gorm.Expr("click_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
