package model

import "time"

// Video 视频稿件，媒体文件在对象存储里，这里只存地址和元数据
// 四个计数字段都是冗余值，写侧在对应动作发生时原子自增
type Video struct {
	ID          int64  `gorm:"primaryKey;autoIncrement;comment:视频ID" json:"id"`
	AuthorID    int64  `gorm:"not null;index:idx_videos_author_created,priority:1;comment:作者用户ID" json:"author_id"`
	Title       string `gorm:"size:200;not null;comment:标题" json:"title"`
	Description string `gorm:"type:text;comment:简介" json:"description"`
	PlayURL     string `gorm:"size:500;comment:播放地址" json:"play_url"`
	CoverURL    string `gorm:"size:500;comment:封面地址" json:"cover_url"`
	Duration    int    `gorm:"default:0;comment:时长，秒" json:"duration"`
	FileSize    int64  `gorm:"default:0;comment:文件大小，字节" json:"file_size"`
	FileFormat  string `gorm:"size:20;comment:容器格式" json:"file_format"`
	Width       int    `gorm:"comment:画面宽" json:"width"`
	Height      int    `gorm:"comment:画面高" json:"height"`
	Bitrate     int    `gorm:"default:0;comment:码率，kbps" json:"bitrate"`
	// 无 default 标签：gorm 对带默认值的零值字段会跳过写入，false 会被写成默认值
	IsPrivate    bool      `gorm:"not null;index:idx_videos_public_created,priority:1;comment:仅作者可见" json:"is_private"`
	ViewCount    int64     `gorm:"default:0;comment:播放量" json:"view_count"`
	LikeCount    int64     `gorm:"default:0;comment:点赞数" json:"like_count"`
	DislikeCount int64     `gorm:"default:0;comment:点踩数" json:"dislike_count"`
	CommentCount int64     `gorm:"default:0;comment:评论数，含回复" json:"comment_count"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index:idx_videos_author_created,priority:2;index:idx_videos_public_created,priority:2;comment:发布时间" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime;comment:更新时间" json:"updated_at"`

	Author User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (Video) TableName() string {
	return "videos"
}
