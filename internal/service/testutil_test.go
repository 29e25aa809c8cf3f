package service

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"reelgo/internal/config"
	"reelgo/internal/model"
	"reelgo/pkg/logger"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	testEnvOnce sync.Once
	testEnvErr  error
)

// 测试用最小配置，测试路径只会读到 jwt / video 段，feed / ads 参数由各测试自行注入
const testConfigYAML = `
app:
  name: reelgo
  mode: test
  port: 8000
jwt:
  secret: test-secret
  expire_hours: 1
feed:
  default_page_size: 10
  max_page_size: 30
  cache_ttl_seconds: 0
ads:
  daily_view_limit: 5
  show_probability: 0.2
  cooldown_minutes: 5
video:
  max_duration_seconds: 300
  max_file_size_mb: 1
  allowed_formats:
    - mp4
    - webm
log:
  level: error
  format: console
  output: stdout
`

// setupTestEnv 加载测试配置并初始化日志，进程内只执行一次
func setupTestEnv(t *testing.T) {
	t.Helper()
	testEnvOnce.Do(func() {
		dir, err := os.MkdirTemp("", "reelgo-test-*")
		if err != nil {
			testEnvErr = err
			return
		}
		path := filepath.Join(dir, "config.yaml")
		if err := os.WriteFile(path, []byte(testConfigYAML), 0o644); err != nil {
			testEnvErr = err
			return
		}
		if _, err := config.Load(path); err != nil {
			testEnvErr = err
			return
		}
		testEnvErr = logger.Init("error", "console", "stdout", "")
	})
	if testEnvErr != nil {
		t.Fatalf("init test env: %v", testEnvErr)
	}
}

// setupTestDB 建一个落在临时目录的 sqlite 库并迁移全部表
// 库文件随 t.TempDir 在测试结束时清理
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	setupTestEnv(t)

	path := filepath.Join(t.TempDir(), "reelgo.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Video{},
		&model.Comment{},
		&model.Relation{},
		&model.Ad{},
		&model.AdView{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		UserName: username,
		Password: "hashed-password",
		UserRole: "user",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create test user %q: %v", username, err)
	}
	return user
}

func createTestVideo(t *testing.T, db *gorm.DB, authorID int64, title string, isPrivate bool) *model.Video {
	t.Helper()
	video := &model.Video{
		AuthorID:   authorID,
		Title:      title,
		FileFormat: "mp4",
		IsPrivate:  isPrivate,
	}
	if err := db.Create(video).Error; err != nil {
		t.Fatalf("create test video %q: %v", title, err)
	}
	return video
}

func createTestAd(t *testing.T, db *gorm.DB, title string, active bool) *model.Ad {
	t.Helper()
	ad := &model.Ad{
		Title:       title,
		Description: title + " 的投放素材",
		ImageURL:    "http://127.0.0.1:9000/static/" + title + ".jpg",
		BrandName:   "测试品牌",
		TargetURL:   "https://example.com/" + title,
		IsActive:    active,
	}
	if err := db.Create(ad).Error; err != nil {
		t.Fatalf("create test ad %q: %v", title, err)
	}
	return ad
}
