package dto

// RegisterRequest 注册入参，不传 user_role 时按普通用户建号
type RegisterRequest struct {
	Username        string  `json:"username" binding:"required,min=1,max=255"`
	Password        string  `json:"password" binding:"required,min=6,max=255"`
	Name            *string `json:"name" binding:"omitempty,max=255"`
	Avatar          *string `json:"avatar" binding:"omitempty,max=500"`
	BackgroundImage *string `json:"background_image" binding:"omitempty,max=500"`
	UserRole        string  `json:"user_role" binding:"omitempty,oneof=user admin"`
}

// LoginRequest 登录入参
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=1,max=255"`
	Password string `json:"password" binding:"required,min=6,max=255"`
}

// TokenData 登录成功的响应体
type TokenData struct {
	Token     string   `json:"token"`
	TokenType string   `json:"token_type"`
	ExpiresIn int      `json:"expires_in"`
	User      UserInfo `json:"user"`
}

// UserInfo 对外可见的用户信息，永远不带密码散列
type UserInfo struct {
	ID              int64   `json:"id"`
	Username        string  `json:"user_name"`
	Name            *string `json:"name"`
	Avatar          *string `json:"avatar"`
	BackgroundImage *string `json:"background_image"`
	UserRole        string  `json:"user_role"`
	FollowCount     int64   `json:"follow_count"`
	FollowerCount   int64   `json:"follower_count"`
}
