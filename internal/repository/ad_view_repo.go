package repository

import (
	"reelgo/internal/model"

	"gorm.io/gorm"
)

type AdViewRepository struct {
	db *gorm.DB
}

func NewAdViewRepository(db *gorm.DB) *AdViewRepository {
	return &AdViewRepository{db: db}
}

// CountBySessionAndDate 统计会话当日已展示广告数
func (r *AdViewRepository) CountBySessionAndDate(sessionID, viewDate string) (int64, error) {
	var count int64
	err := r.db.Model(&model.AdView{}).
		Where("session_id = ? AND view_date = ?", sessionID, viewDate).
		Count(&count).Error
	return count, err
}

// CreateUnderQuota 在同一事务内复核当日配额后写入展示记录并更新广告展示数
// 配额已满时不写入，返回 false
func (r *AdViewRepository) CreateUnderQuota(view *model.AdView, dailyLimit int) (bool, error) {
	var created bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.AdView{}).
			Where("session_id = ? AND view_date = ?", view.SessionID, view.ViewDate).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(dailyLimit) {
			// 并发请求先到一步把配额用完了
			return nil
		}

		if err := tx.Create(view).Error; err != nil {
			return err
		}
		created = true

		return tx.Model(&model.Ad{}).Where("id = ?", view.AdID).
			UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	})
	return created, err
}

// ListBySessionAndDate 会话当日展示记录（按时间升序）
func (r *AdViewRepository) ListBySessionAndDate(sessionID, viewDate string) ([]model.AdView, error) {
	var views []model.AdView
	err := r.db.Where("session_id = ? AND view_date = ?", sessionID, viewDate).
		Order("viewed_at ASC, id ASC").
		Find(&views).Error
	return views, err
}

// CountByAd 统计某广告的累计展示记录数
func (r *AdViewRepository) CountByAd(adID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.AdView{}).Where("ad_id = ?", adID).Count(&count).Error
	return count, err
}
