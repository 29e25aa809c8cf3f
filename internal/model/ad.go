package model

import "time"

// Ad 广告模型
type Ad struct {
	ID          int64  `gorm:"primaryKey;autoIncrement;comment:广告ID" json:"id"`
	Title       string `gorm:"size:200;not null;comment:广告标题" json:"title"`
	Description string `gorm:"size:500;comment:广告描述" json:"description"`
	ImageURL    string `gorm:"size:500;not null;comment:广告素材地址" json:"image_url"`
	BrandName   string `gorm:"size:100;not null;comment:品牌名称" json:"brand_name"`
	BrandLogo   string `gorm:"size:500;comment:品牌Logo地址，可为空" json:"brand_logo"`
	TargetURL   string `gorm:"size:500;comment:落地页地址，可为空" json:"target_url"`
	// 无 default 标签：gorm 对带默认值的零值字段会跳过写入，false 会被写成 true
	IsActive   bool      `gorm:"not null;index:idx_ads_is_active;comment:是否投放中" json:"is_active"`
	ViewCount  int64     `gorm:"default:0;comment:展示次数" json:"view_count"`
	ClickCount int64     `gorm:"default:0;comment:点击次数" json:"click_count"`
	CreatedAt  time.Time `gorm:"autoCreateTime;comment:创建时间" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime;comment:更新时间" json:"updated_at"`
}

func (Ad) TableName() string {
	return "ads"
}
