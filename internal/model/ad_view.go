package model

import "time"

// AdView 广告展示记录，按会话+自然日统计每日配额
type AdView struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:展示记录ID" json:"id"`
	AdID      int64     `gorm:"not null;index:idx_ad_views_ad_id;comment:广告ID" json:"ad_id"`
	UserID    *int64    `gorm:"index:idx_ad_views_user_id;comment:观看用户ID，匿名为空" json:"user_id"`
	SessionID string    `gorm:"size:64;not null;index:idx_ad_views_session_date,priority:1;comment:会话标识" json:"session_id"`
	ViewDate  string    `gorm:"size:10;not null;index:idx_ad_views_session_date,priority:2;comment:展示日期（YYYY-MM-DD）" json:"view_date"`
	ViewedAt  time.Time `gorm:"autoCreateTime;comment:展示时间" json:"viewed_at"`
}

func (AdView) TableName() string {
	return "ad_views"
}
