package model

import "time"

// Relation 关注关系，一行代表 follower 关注了 follow
// 取消关注时硬删本行，双方用户的冗余计数在同一事务里修正
type Relation struct {
	ID         int64     `gorm:"primaryKey;autoIncrement;comment:关系ID" json:"id"`
	FollowID   int64     `gorm:"not null;uniqueIndex:uq_relations_pair,priority:1;comment:被关注方用户ID" json:"follow_id"`
	FollowerID int64     `gorm:"not null;uniqueIndex:uq_relations_pair,priority:2;index:idx_relations_follower;comment:发起关注的用户ID" json:"follower_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime;comment:关注时间" json:"created_at"`
}

func (Relation) TableName() string {
	return "relations"
}
