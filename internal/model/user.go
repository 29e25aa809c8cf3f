package model

// 用户角色取值
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User 用户账号
// 删除是软删：IsDelete 置 1 后登录和对外查询都把该账号当不存在，
// 行本身保留，管理员可恢复
// FollowCount / FollowerCount 是关注关系的冗余计数，随关系变更同步维护
type User struct {
	ID              int64   `gorm:"primaryKey;autoIncrement;comment:用户ID" json:"id"`
	UserName        string  `gorm:"size:255;not null;uniqueIndex:uq_users_user_name;comment:登录用户名，全局唯一" json:"user_name"`
	Password        string  `gorm:"size:255;not null;comment:bcrypt密码散列" json:"-"`
	Name            *string `gorm:"size:255;comment:展示昵称" json:"name"`
	Avatar          *string `gorm:"size:500;comment:头像地址" json:"avatar"`
	BackgroundImage *string `gorm:"size:500;comment:个人页背景图地址" json:"background_image"`
	UserRole        string  `gorm:"size:256;not null;default:'user';comment:角色，user或admin" json:"user_role"`
	FollowCount     int64   `gorm:"not null;default:0;comment:我关注的人数" json:"follow_count"`
	FollowerCount   int64   `gorm:"not null;default:0;comment:关注我的人数" json:"follower_count"`
	IsDelete        int64   `gorm:"not null;default:0;comment:软删标记，1为已删" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.UserRole == RoleAdmin
}
