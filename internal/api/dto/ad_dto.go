package dto

import "time"

// AdCreateRequest 创建广告请求
type AdCreateRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"required,max=500"`
	ImageURL    string `json:"image_url" binding:"required,max=500"`
	BrandName   string `json:"brand_name" binding:"required,max=100"`
	BrandLogo   string `json:"brand_logo" binding:"omitempty,max=500"`
	TargetURL   string `json:"target_url" binding:"omitempty,max=500"`
	IsActive    *bool  `json:"is_active"`
}

// AdUpdateRequest 更新广告请求
type AdUpdateRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	ImageURL    *string `json:"image_url" binding:"omitempty,max=500"`
	BrandName   *string `json:"brand_name" binding:"omitempty,max=100"`
	BrandLogo   *string `json:"brand_logo" binding:"omitempty,max=500"`
	TargetURL   *string `json:"target_url" binding:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active"`
}

// AdInfo 广告信息
type AdInfo struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	BrandName   string    `json:"brand_name"`
	BrandLogo   string    `json:"brand_logo,omitempty"`
	TargetURL   string    `json:"target_url,omitempty"`
	IsActive    bool      `json:"is_active"`
	ViewCount   int64     `json:"view_count"`
	ClickCount  int64     `json:"click_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AdViewRequest 广告展示上报请求
// session_id 为空时取 X-Session-ID 头
type AdViewRequest struct {
	AdID      int64  `json:"ad_id" binding:"required"`
	SessionID string `json:"session_id" binding:"omitempty,max=64"`
}

// AdViewInfo 广告展示记录
type AdViewInfo struct {
	ID        int64     `json:"id"`
	AdID      int64     `json:"ad_id"`
	UserID    *int64    `json:"user_id,omitempty"`
	SessionID string    `json:"session_id"`
	ViewDate  string    `json:"view_date"`
	ViewedAt  time.Time `json:"viewed_at"`
}

// AdListData 广告列表数据
type AdListData struct {
	Ads []AdInfo `json:"ads"`
	PageInfo
}
