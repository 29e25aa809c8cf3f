package repository

import (
	"reelgo/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// active 常规查询的基础条件，已注销账号一律不可见
func (r *UserRepository) active() *gorm.DB {
	return r.db.Where("is_delete = 0")
}

// GetByID 按 ID 查用户，已注销的查不到
func (r *UserRepository) GetByID(id int64) (*model.User, error) {
	var user model.User
	if err := r.active().First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByIDIncludeDeleted 按 ID 查用户，含已注销，管理端用
func (r *UserRepository) GetByIDIncludeDeleted(id int64) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername 按用户名查用户，已注销的查不到
func (r *UserRepository) GetByUsername(username string) (*model.User, error) {
	var user model.User
	if err := r.active().Where("user_name = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByIDs 批量查用户，已注销的被过滤掉
func (r *UserRepository) GetByIDs(ids []int64) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []model.User
	err := r.active().Where("id IN ?", ids).Find(&users).Error
	return users, err
}

// ExistsByUsername 用户名是否被在用账号占用
func (r *UserRepository) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := r.active().Model(&model.User{}).Where("user_name = ?", username).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create 创建用户
func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

// Update 按 map 更新用户字段，注销与恢复也走这里，所以不过滤 is_delete
func (r *UserRepository) Update(id int64, updates map[string]interface{}) (*model.User, error) {
	result := r.db.Model(&model.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByIDIncludeDeleted(id)
}

// ListWithFilters 管理端分页查询
// status 为 active / deleted，空串不过滤账号状态；用户名为子串匹配，不区分大小写
func (r *UserRepository) ListWithFilters(skip, limit int, username, userRole *string, status string) ([]model.User, int64, error) {
	query := r.db.Model(&model.User{})

	switch status {
	case "active":
		query = query.Where("is_delete = 0")
	case "deleted":
		query = query.Where("is_delete = 1")
	}
	if username != nil && *username != "" {
		query = query.Where("LOWER(user_name) LIKE LOWER(?)", "%"+*username+"%")
	}
	if userRole != nil && *userRole != "" {
		query = query.Where("user_role = ?", *userRole)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	if err := query.Order("id ASC").Offset(skip).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}
