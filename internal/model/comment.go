package model

import "time"

// Comment 视频评论，最多两层
// ParentID 为空是顶层评论；非空时恒指向某条顶层评论，对回复的回复
// 在写入时已拉平到其顶层，读取侧不做递归
type Comment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:评论ID" json:"id"`
	VideoID   int64     `gorm:"not null;index:idx_comments_video_created,priority:1;comment:所属视频ID" json:"video_id"`
	UserID    int64     `gorm:"not null;index:idx_comments_user;comment:发表人用户ID" json:"user_id"`
	ParentID  *int64    `gorm:"index:idx_comments_parent;comment:顶层评论ID，顶层本身为空" json:"parent_id"`
	Content   string    `gorm:"type:text;not null;comment:评论正文" json:"content"`
	LikeCount int64     `gorm:"default:0;comment:点赞数" json:"like_count"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_comments_video_created,priority:2;comment:发表时间" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;comment:更新时间" json:"updated_at"`

	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Video Video `gorm:"foreignKey:VideoID" json:"video,omitempty"`
}

func (Comment) TableName() string {
	return "comments"
}
