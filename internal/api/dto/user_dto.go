package dto

// UserUpdateRequest 用户信息更新请求
type UserUpdateRequest struct {
	Username        *string `json:"username" binding:"omitempty,min=1,max=255"`
	Name            *string `json:"name" binding:"omitempty,max=255"`
	Avatar          *string `json:"avatar" binding:"omitempty,max=500"`
	BackgroundImage *string `json:"background_image" binding:"omitempty,max=500"`
}

// UserFullInfo 用户完整信息，含关注计数
// IsDeleted 仅在管理端列表里可能为 true，常规查询不返回已注销账号
type UserFullInfo struct {
	ID              int64   `json:"id"`
	Username        string  `json:"user_name"`
	Name            *string `json:"name"`
	Avatar          *string `json:"avatar"`
	BackgroundImage *string `json:"background_image"`
	UserRole        string  `json:"user_role"`
	FollowCount     int64   `json:"follow_count"`
	FollowerCount   int64   `json:"follower_count"`
	IsDeleted       bool    `json:"is_deleted"`
}

// UserListData 管理端用户列表数据
type UserListData struct {
	Users []UserFullInfo `json:"users"`
	PageInfo
}
