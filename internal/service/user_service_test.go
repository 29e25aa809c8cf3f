package service

import (
	"errors"
	"testing"

	"reelgo/internal/api/dto"
	"reelgo/internal/model"
	"reelgo/internal/repository"

	"gorm.io/gorm"
)

func newUserService(db *gorm.DB) *UserService {
	return NewUserService(repository.NewUserRepository(db), repository.NewRelationRepository(db))
}

// grantAdmin 把测试用户提为管理员
func grantAdmin(t *testing.T, db *gorm.DB, userID int64) {
	t.Helper()
	if err := db.Model(&model.User{}).Where("id = ?", userID).Update("user_role", "admin").Error; err != nil {
		t.Fatalf("grant admin to %d: %v", userID, err)
	}
}

func asUserInfo(u *model.User, role string) *dto.UserInfo {
	return &dto.UserInfo{ID: u.ID, Username: u.UserName, UserRole: role}
}

func TestUserGetByID(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	svc := newUserService(db)

	info, err := svc.GetUserByID(alice.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if info.Username != "alice" || info.UserRole != "user" {
		t.Errorf("info = %+v, want alice/user", info)
	}
	if info.IsDeleted {
		t.Error("IsDeleted = true for active user")
	}

	if _, err := svc.GetUserByID(9999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("missing user err = %v, want ErrUserNotFound", err)
	}

	// 已注销账号常规查询不可见
	if err := db.Model(&model.User{}).Where("id = ?", alice.ID).Update("is_delete", 1).Error; err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if _, err := svc.GetUserByID(alice.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("deleted user err = %v, want ErrUserNotFound", err)
	}
}

func TestUserUpdatePermissions(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	admin := createTestUser(t, db, "root")
	grantAdmin(t, db, admin.ID)
	svc := newUserService(db)

	name := "爱丽丝"
	info, err := svc.UpdateUser(alice.ID, asUserInfo(alice, "user"), &dto.UserUpdateRequest{Name: &name})
	if err != nil {
		t.Fatalf("self update: %v", err)
	}
	if info.Name == nil || *info.Name != "爱丽丝" {
		t.Errorf("name = %v, want 爱丽丝", info.Name)
	}

	// 非本人非管理员不能改
	if _, err := svc.UpdateUser(alice.ID, asUserInfo(bob, "user"), &dto.UserUpdateRequest{Name: &name}); !errors.Is(err, ErrUserNoPermission) {
		t.Errorf("cross-user update err = %v, want ErrUserNoPermission", err)
	}

	// 查看别人的完整信息同样只对本人和管理员开放
	if _, err := svc.GetUserFor(asUserInfo(bob, "user"), alice.ID); !errors.Is(err, ErrUserNoPermission) {
		t.Errorf("cross-user view err = %v, want ErrUserNoPermission", err)
	}
	if _, err := svc.GetUserFor(asUserInfo(admin, "admin"), alice.ID); err != nil {
		t.Errorf("admin view err = %v", err)
	}

	// 管理员可以改任何人
	avatar := "http://127.0.0.1:9000/static/alice.png"
	info, err = svc.UpdateUser(alice.ID, asUserInfo(admin, "admin"), &dto.UserUpdateRequest{Avatar: &avatar})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if info.Avatar == nil || *info.Avatar != avatar {
		t.Errorf("avatar = %v, want %q", info.Avatar, avatar)
	}

	// 改成已占用的用户名
	taken := "bob"
	if _, err := svc.UpdateUser(alice.ID, asUserInfo(alice, "user"), &dto.UserUpdateRequest{Username: &taken}); !errors.Is(err, ErrUsernameExists) {
		t.Errorf("duplicate username err = %v, want ErrUsernameExists", err)
	}

	// 空更新直接返回当前信息
	info, err = svc.UpdateUser(alice.ID, asUserInfo(alice, "user"), &dto.UserUpdateRequest{})
	if err != nil {
		t.Fatalf("empty update: %v", err)
	}
	if info.Username != "alice" {
		t.Errorf("username = %q, want alice", info.Username)
	}
}

func TestUserSetAdminRole(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	svc := newUserService(db)

	info, err := svc.SetAdminRole(alice.ID)
	if err != nil {
		t.Fatalf("SetAdminRole: %v", err)
	}
	if info.UserRole != "admin" {
		t.Errorf("role = %q, want admin", info.UserRole)
	}

	if _, err := svc.SetAdminRole(9999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("missing user err = %v, want ErrUserNotFound", err)
	}
}

func TestUserListFilters(t *testing.T) {
	db := setupTestDB(t)
	createTestUser(t, db, "alice")
	createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")
	grantAdmin(t, db, carol.ID)
	dave := createTestUser(t, db, "dave")
	if err := db.Model(&model.User{}).Where("id = ?", dave.ID).Update("is_delete", 1).Error; err != nil {
		t.Fatalf("soft delete dave: %v", err)
	}
	svc := newUserService(db)

	// 不过滤状态时已注销账号也在列表里
	data, err := svc.ListUsers(1, 10, nil, nil, "")
	if err != nil {
		t.Fatalf("ListUsers all: %v", err)
	}
	if data.Total != 4 {
		t.Errorf("total = %d, want 4", data.Total)
	}

	data, err = svc.ListUsers(1, 10, nil, nil, "active")
	if err != nil {
		t.Fatalf("ListUsers active: %v", err)
	}
	if data.Total != 3 {
		t.Errorf("active total = %d, want 3", data.Total)
	}

	data, err = svc.ListUsers(1, 10, nil, nil, "deleted")
	if err != nil {
		t.Fatalf("ListUsers deleted: %v", err)
	}
	if len(data.Users) != 1 || data.Users[0].Username != "dave" || !data.Users[0].IsDeleted {
		t.Errorf("deleted list = %+v, want only dave with is_deleted", data.Users)
	}

	// 用户名子串匹配，不区分大小写
	sub := "ALI"
	data, err = svc.ListUsers(1, 10, &sub, nil, "")
	if err != nil {
		t.Fatalf("ListUsers username filter: %v", err)
	}
	if len(data.Users) != 1 || data.Users[0].Username != "alice" {
		t.Errorf("username filter = %+v, want only alice", data.Users)
	}

	role := "admin"
	data, err = svc.ListUsers(1, 10, nil, &role, "")
	if err != nil {
		t.Fatalf("ListUsers role filter: %v", err)
	}
	if len(data.Users) != 1 || data.Users[0].Username != "carol" {
		t.Errorf("role filter = %+v, want only carol", data.Users)
	}

	// 分页按 id 升序稳定输出
	data, err = svc.ListUsers(2, 2, nil, nil, "")
	if err != nil {
		t.Fatalf("ListUsers page 2: %v", err)
	}
	if data.TotalPages != 2 || len(data.Users) != 2 {
		t.Fatalf("page 2 = %d items / %d pages, want 2/2", len(data.Users), data.TotalPages)
	}
	if data.Users[0].Username != "carol" || data.Users[1].Username != "dave" {
		t.Errorf("page 2 = [%s, %s], want [carol, dave]", data.Users[0].Username, data.Users[1].Username)
	}
}
