package service

import (
	"errors"
	"testing"

	"reelgo/internal/model"
	"reelgo/internal/repository"

	"gorm.io/gorm"
)

func newRelationService(db *gorm.DB) *RelationService {
	return NewRelationService(repository.NewRelationRepository(db), repository.NewUserRepository(db))
}

func reloadUser(t *testing.T, db *gorm.DB, id int64) *model.User {
	t.Helper()
	var user model.User
	if err := db.First(&user, id).Error; err != nil {
		t.Fatalf("reload user %d: %v", id, err)
	}
	return &user
}

func countRelations(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&model.Relation{}).Count(&count).Error; err != nil {
		t.Fatalf("count relations: %v", err)
	}
	return count
}

func TestFollowCreatesRelationAndCounts(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	svc := newRelationService(db)

	result, created, err := svc.Follow(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("Follow: %v", err)
	}
	if !created {
		t.Error("created = false, want true on first follow")
	}
	if !result.Following {
		t.Error("result.Following = false, want true")
	}
	if result.FollowCount != 1 {
		t.Errorf("result.FollowCount = %d, want 1", result.FollowCount)
	}
	if result.FollowerCount != 1 {
		t.Errorf("result.FollowerCount = %d, want 1", result.FollowerCount)
	}

	if got := reloadUser(t, db, alice.ID).FollowCount; got != 1 {
		t.Errorf("alice follow_count = %d, want 1", got)
	}
	if got := reloadUser(t, db, bob.ID).FollowerCount; got != 1 {
		t.Errorf("bob follower_count = %d, want 1", got)
	}
}

func TestFollowIdempotent(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	svc := newRelationService(db)

	if _, _, err := svc.Follow(alice.ID, bob.ID); err != nil {
		t.Fatalf("first follow: %v", err)
	}
	_, created, err := svc.Follow(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("second follow: %v", err)
	}
	if created {
		t.Error("created = true on repeat follow, want false")
	}

	// 重复关注不能重复计数也不能重复建行
	if got := reloadUser(t, db, alice.ID).FollowCount; got != 1 {
		t.Errorf("alice follow_count = %d, want 1", got)
	}
	if got := reloadUser(t, db, bob.ID).FollowerCount; got != 1 {
		t.Errorf("bob follower_count = %d, want 1", got)
	}
	if got := countRelations(t, db); got != 1 {
		t.Errorf("relations = %d, want 1", got)
	}
}

func TestFollowSelfAndMissingTarget(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	svc := newRelationService(db)

	if _, _, err := svc.Follow(alice.ID, alice.ID); !errors.Is(err, ErrCannotFollowSelf) {
		t.Errorf("self follow err = %v, want ErrCannotFollowSelf", err)
	}
	if _, _, err := svc.Follow(alice.ID, 9999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("missing target err = %v, want ErrUserNotFound", err)
	}
}

func TestUnfollowRemovesRelationAndCounts(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	svc := newRelationService(db)

	if _, _, err := svc.Follow(alice.ID, bob.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}

	result, removed, err := svc.Unfollow(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("Unfollow: %v", err)
	}
	if !removed {
		t.Error("removed = false, want true")
	}
	if result.Following {
		t.Error("result.Following = true after unfollow, want false")
	}
	if got := reloadUser(t, db, alice.ID).FollowCount; got != 0 {
		t.Errorf("alice follow_count = %d, want 0", got)
	}
	if got := reloadUser(t, db, bob.ID).FollowerCount; got != 0 {
		t.Errorf("bob follower_count = %d, want 0", got)
	}

	// 未关注时取消关注：无副作用
	_, removed, err = svc.Unfollow(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("repeat unfollow: %v", err)
	}
	if removed {
		t.Error("removed = true on repeat unfollow, want false")
	}
	if got := reloadUser(t, db, alice.ID).FollowCount; got != 0 {
		t.Errorf("alice follow_count = %d after repeat unfollow, want 0", got)
	}
}

func TestUnfollowCounterFloor(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	svc := newRelationService(db)

	if _, _, err := svc.Follow(alice.ID, bob.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}

	// 计数被外部清零后，取消关注不能扣成负数
	if err := db.Model(&model.User{}).Where("id = ?", alice.ID).Update("follow_count", 0).Error; err != nil {
		t.Fatalf("zero follow_count: %v", err)
	}
	if err := db.Model(&model.User{}).Where("id = ?", bob.ID).Update("follower_count", 0).Error; err != nil {
		t.Fatalf("zero follower_count: %v", err)
	}

	_, removed, err := svc.Unfollow(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("Unfollow: %v", err)
	}
	if !removed {
		t.Error("removed = false, want true (relation existed)")
	}
	if got := reloadUser(t, db, alice.ID).FollowCount; got != 0 {
		t.Errorf("alice follow_count = %d, want 0", got)
	}
	if got := reloadUser(t, db, bob.ID).FollowerCount; got != 0 {
		t.Errorf("bob follower_count = %d, want 0", got)
	}
}

func TestSoftDeleteUserPurgesRelations(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")
	relSvc := newRelationService(db)
	userSvc := NewUserService(repository.NewUserRepository(db), repository.NewRelationRepository(db))

	// alice 关注 bob，carol 关注 alice
	if _, _, err := relSvc.Follow(alice.ID, bob.ID); err != nil {
		t.Fatalf("alice follows bob: %v", err)
	}
	if _, _, err := relSvc.Follow(carol.ID, alice.ID); err != nil {
		t.Fatalf("carol follows alice: %v", err)
	}

	if err := userSvc.SoftDeleteUser(alice.ID); err != nil {
		t.Fatalf("SoftDeleteUser: %v", err)
	}

	if _, err := userSvc.GetUserByID(alice.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("deleted user lookup err = %v, want ErrUserNotFound", err)
	}
	if got := countRelations(t, db); got != 0 {
		t.Errorf("relations = %d after purge, want 0", got)
	}
	// 对端计数同步修正
	if got := reloadUser(t, db, bob.ID).FollowerCount; got != 0 {
		t.Errorf("bob follower_count = %d, want 0", got)
	}
	if got := reloadUser(t, db, carol.ID).FollowCount; got != 0 {
		t.Errorf("carol follow_count = %d, want 0", got)
	}

	// 恢复账号不恢复关注关系
	if err := userSvc.RestoreUser(alice.ID); err != nil {
		t.Fatalf("RestoreUser: %v", err)
	}
	restored, err := userSvc.GetUserByID(alice.ID)
	if err != nil {
		t.Fatalf("lookup restored user: %v", err)
	}
	if restored.FollowCount != 0 || restored.FollowerCount != 0 {
		t.Errorf("restored counts = %d/%d, want 0/0", restored.FollowCount, restored.FollowerCount)
	}
	if got := countRelations(t, db); got != 0 {
		t.Errorf("relations = %d after restore, want 0", got)
	}
}

func TestFollowListsAndStatus(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")
	dave := createTestUser(t, db, "dave")
	svc := newRelationService(db)

	for _, target := range []int64{bob.ID, carol.ID} {
		if _, _, err := svc.Follow(alice.ID, target); err != nil {
			t.Fatalf("follow %d: %v", target, err)
		}
	}
	if _, _, err := svc.Follow(bob.ID, alice.ID); err != nil {
		t.Fatalf("bob follows alice: %v", err)
	}

	following, err := svc.GetFollowingList(alice.ID, 1, 20)
	if err != nil {
		t.Fatalf("GetFollowingList: %v", err)
	}
	if following.Total != 2 || len(following.Users) != 2 {
		t.Errorf("following total/len = %d/%d, want 2/2", following.Total, len(following.Users))
	}

	followers, err := svc.GetFollowerList(alice.ID, 1, 20)
	if err != nil {
		t.Fatalf("GetFollowerList: %v", err)
	}
	if followers.Total != 1 || len(followers.Users) != 1 {
		t.Fatalf("followers total/len = %d/%d, want 1/1", followers.Total, len(followers.Users))
	}
	if followers.Users[0].Username != "bob" {
		t.Errorf("follower = %q, want bob", followers.Users[0].Username)
	}

	ok, err := svc.GetFollowStatus(alice.ID, bob.ID)
	if err != nil || !ok {
		t.Errorf("GetFollowStatus(alice, bob) = %v, %v, want true", ok, err)
	}
	ok, err = svc.GetFollowStatus(alice.ID, dave.ID)
	if err != nil || ok {
		t.Errorf("GetFollowStatus(alice, dave) = %v, %v, want false", ok, err)
	}

	// 互关只有 alice <-> bob
	mutual, err := svc.GetMutualFollows(alice.ID, 1, 20)
	if err != nil {
		t.Fatalf("GetMutualFollows: %v", err)
	}
	if len(mutual.Users) != 1 || mutual.Users[0].Username != "bob" {
		t.Errorf("mutual = %+v, want only bob", mutual.Users)
	}

	status, err := svc.BatchCheckFollowStatus(alice.ID, []int64{bob.ID, dave.ID})
	if err != nil {
		t.Fatalf("BatchCheckFollowStatus: %v", err)
	}
	if !status[bob.ID] || status[dave.ID] {
		t.Errorf("batch status = %v, want bob true / dave false", status)
	}

	if _, err := svc.GetFollowingList(9999, 1, 20); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("missing user list err = %v, want ErrUserNotFound", err)
	}
}
