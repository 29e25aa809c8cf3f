package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"reelgo/internal/api/dto"
	"reelgo/internal/model"
	"reelgo/internal/repository"

	"gorm.io/gorm"
)

// newFeedServices 信息流测试装配：无 Redis，默认页 10、上限 30
func newFeedServices(db *gorm.DB, dailyLimit int, showProbability float64) (*FeedService, *AdService) {
	adSvc := NewAdService(repository.NewAdRepository(db), repository.NewAdViewRepository(db), dailyLimit, showProbability)
	feedSvc := NewFeedService(repository.NewVideoRepository(db), adSvc, nil, 10, 30, 0, 0)
	return feedSvc, adSvc
}

func feedItemTypes(page *dto.FeedPage) []string {
	types := make([]string, 0, len(page.Items))
	for _, item := range page.Items {
		types = append(types, item.Type)
	}
	return types
}

func TestAssembleFeedItems(t *testing.T) {
	mkVideos := func(n int) []dto.VideoInfo {
		videos := make([]dto.VideoInfo, n)
		for i := range videos {
			videos[i].ID = int64(i + 1)
		}
		return videos
	}
	ad := &dto.AdInfo{ID: 101}

	// answers 是每个插入点决策的返回序列，nil 表示未命中；
	// answers 为 nil 表示本次组装没有决策器（无会话或冷却中）
	tests := []struct {
		name      string
		videos    []dto.VideoInfo
		answers   []*dto.AdInfo
		wantTypes []string
		wantAsked int
	}{
		{
			name:      "无决策器",
			videos:    mkVideos(4),
			answers:   nil,
			wantTypes: []string{"video", "video", "video", "video"},
			wantAsked: 0,
		},
		{
			name:      "首个插入点命中",
			videos:    mkVideos(5),
			answers:   []*dto.AdInfo{ad},
			wantTypes: []string{"video", "video", "video", "ad", "video", "video"},
			wantAsked: 1,
		},
		{
			name:      "首次未命中下个插入点命中",
			videos:    mkVideos(7),
			answers:   []*dto.AdInfo{nil, ad},
			wantTypes: []string{"video", "video", "video", "video", "video", "video", "ad", "video"},
			wantAsked: 2,
		},
		{
			name:      "全部未命中",
			videos:    mkVideos(6),
			answers:   []*dto.AdInfo{nil, nil},
			wantTypes: []string{"video", "video", "video", "video", "video", "video"},
			wantAsked: 2,
		},
		{
			name:      "命中后不再询问",
			videos:    mkVideos(9),
			answers:   []*dto.AdInfo{ad},
			wantTypes: []string{"video", "video", "video", "ad", "video", "video", "video", "video", "video", "video"},
			wantAsked: 1,
		},
		{
			name:      "不足3个视频没有插入点",
			videos:    mkVideos(2),
			answers:   []*dto.AdInfo{ad},
			wantTypes: []string{"video", "video"},
			wantAsked: 0,
		},
		{
			name:      "无视频不询问",
			videos:    nil,
			answers:   []*dto.AdInfo{ad},
			wantTypes: []string{},
			wantAsked: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asked := 0
			var pick adPicker
			if tt.answers != nil {
				pick = func() *dto.AdInfo {
					var ans *dto.AdInfo
					if asked < len(tt.answers) {
						ans = tt.answers[asked]
					}
					asked++
					return ans
				}
			}

			items, placed := assembleFeedItems(tt.videos, pick)
			if len(items) != len(tt.wantTypes) {
				t.Fatalf("items = %d, want %d", len(items), len(tt.wantTypes))
			}
			if asked != tt.wantAsked {
				t.Errorf("decisions asked = %d, want %d", asked, tt.wantAsked)
			}

			videoIdx := 0
			adCount := 0
			for i, item := range items {
				if item.Type != tt.wantTypes[i] {
					t.Errorf("item[%d].Type = %q, want %q", i, item.Type, tt.wantTypes[i])
					continue
				}
				switch item.Type {
				case dto.FeedItemTypeVideo:
					if item.Video == nil || item.Video.ID != tt.videos[videoIdx].ID {
						t.Errorf("item[%d] video = %+v, want id %d", i, item.Video, tt.videos[videoIdx].ID)
					}
					if item.Ad != nil {
						t.Errorf("item[%d] carries ad payload", i)
					}
					videoIdx++
				case dto.FeedItemTypeAd:
					adCount++
					if item.Ad == nil || item.Ad.ID != ad.ID {
						t.Errorf("item[%d] ad = %+v, want id %d", i, item.Ad, ad.ID)
					}
					if item.Video != nil {
						t.Errorf("item[%d] carries video payload", i)
					}
				}
			}
			// 视频相对顺序不能被广告打乱
			if videoIdx != len(tt.videos) {
				t.Errorf("videos in items = %d, want %d", videoIdx, len(tt.videos))
			}
			if placed != (adCount > 0) {
				t.Errorf("placed = %v with %d ads in page", placed, adCount)
			}
		})
	}
}

func TestFeedPagePagination(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	for i := 0; i < 7; i++ {
		createTestVideo(t, db, author.ID, fmt.Sprintf("视频%d", i+1), false)
	}
	createTestVideo(t, db, author.ID, "私密视频", true)
	feedSvc, _ := newFeedServices(db, 5, 0.2)
	ctx := context.Background()

	page, err := feedSvc.GetPage(ctx, nil, "", 0, 5)
	if err != nil {
		t.Fatalf("GetPage cursor 0: %v", err)
	}
	if len(page.Items) != 5 {
		t.Fatalf("page 0 items = %d, want 5", len(page.Items))
	}
	// 无会话标识：全部是视频
	for i, item := range page.Items {
		if item.Type != dto.FeedItemTypeVideo {
			t.Errorf("item[%d].Type = %q, want video", i, item.Type)
		}
	}
	// 最新优先
	if page.Items[0].Video.Title != "视频7" {
		t.Errorf("first video = %q, want 视频7", page.Items[0].Video.Title)
	}
	if !page.HasMore {
		t.Error("page 0 HasMore = false, want true")
	}
	if page.NextCursor == nil || *page.NextCursor != 1 {
		t.Errorf("page 0 NextCursor = %v, want 1", page.NextCursor)
	}

	page2, err := feedSvc.GetPage(ctx, nil, "", 1, 5)
	if err != nil {
		t.Fatalf("GetPage cursor 1: %v", err)
	}
	if len(page2.Items) != 2 {
		t.Errorf("page 1 items = %d, want 2", len(page2.Items))
	}
	if page2.HasMore {
		t.Error("page 1 HasMore = true, want false")
	}
	if page2.NextCursor != nil {
		t.Errorf("page 1 NextCursor = %v, want nil", *page2.NextCursor)
	}

	// 私密视频不进信息流
	for _, item := range append(page.Items, page2.Items...) {
		if item.Video != nil && item.Video.Title == "私密视频" {
			t.Error("private video leaked into feed")
		}
	}
}

// 发布时间和主键顺序故意错开，分页排序必须按 created_at 倒序
func TestFeedPageOrdersByPublishTime(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	base := time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC)

	seed := func(title string, at time.Time) *model.Video {
		t.Helper()
		video := &model.Video{
			AuthorID:   author.ID,
			Title:      title,
			FileFormat: "mp4",
			CreatedAt:  at,
			UpdatedAt:  at,
		}
		if err := db.Create(video).Error; err != nil {
			t.Fatalf("seed video %q: %v", title, err)
		}
		return video
	}

	v3h := seed("三点档", base.Add(3*time.Hour))
	v1h := seed("一点档", base.Add(1*time.Hour))
	v5h := seed("五点档", base.Add(5*time.Hour))
	v2h := seed("二点档", base.Add(2*time.Hour))
	v4h := seed("四点档", base.Add(4*time.Hour))

	feedSvc, _ := newFeedServices(db, 5, 0.2)
	ctx := context.Background()

	wantPages := [][]int64{
		{v5h.ID, v4h.ID},
		{v3h.ID, v2h.ID},
		{v1h.ID},
	}
	for cursor, wantIDs := range wantPages {
		page, err := feedSvc.GetPage(ctx, nil, "", cursor, 2)
		if err != nil {
			t.Fatalf("GetPage cursor %d: %v", cursor, err)
		}
		if len(page.Items) != len(wantIDs) {
			t.Fatalf("cursor %d items = %d (%v), want %d", cursor, len(page.Items), feedItemTypes(page), len(wantIDs))
		}
		for i, want := range wantIDs {
			if page.Items[i].Video == nil || page.Items[i].Video.ID != want {
				t.Errorf("cursor %d item[%d] = %+v, want video %d", cursor, i, page.Items[i].Video, want)
			}
		}
		if wantMore := cursor < len(wantPages)-1; page.HasMore != wantMore {
			t.Errorf("cursor %d HasMore = %v, want %v", cursor, page.HasMore, wantMore)
		}
	}
}

func TestFeedPageSizeBounds(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	for i := 0; i < 12; i++ {
		createTestVideo(t, db, author.ID, fmt.Sprintf("视频%d", i+1), false)
	}
	feedSvc, _ := newFeedServices(db, 5, 0.2)
	ctx := context.Background()

	page, err := feedSvc.GetPage(ctx, nil, "", 0, 0)
	if err != nil {
		t.Fatalf("GetPage default size: %v", err)
	}
	if page.PageSize != 10 || len(page.Items) != 10 {
		t.Errorf("default page size/items = %d/%d, want 10/10", page.PageSize, len(page.Items))
	}

	page, err = feedSvc.GetPage(ctx, nil, "", 0, 99)
	if err != nil {
		t.Fatalf("GetPage oversized: %v", err)
	}
	if page.PageSize != 30 {
		t.Errorf("oversized PageSize = %d, want clamp to 30", page.PageSize)
	}
	if len(page.Items) != 12 {
		t.Errorf("oversized items = %d, want 12", len(page.Items))
	}
	if page.HasMore {
		t.Error("HasMore = true with all videos returned, want false")
	}

	// 负游标按第一页处理
	page, err = feedSvc.GetPage(ctx, nil, "", -3, 5)
	if err != nil {
		t.Fatalf("GetPage negative cursor: %v", err)
	}
	if len(page.Items) != 5 || page.Items[0].Video.Title != "视频12" {
		t.Errorf("negative cursor items = %d first = %v, want first page", len(page.Items), page.Items[0].Video)
	}
}

func TestFeedPageAdInsertion(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	for i := 0; i < 5; i++ {
		createTestVideo(t, db, author.ID, fmt.Sprintf("视频%d", i+1), false)
	}
	ad := createTestAd(t, db, "promo", true)
	feedSvc, adSvc := newFeedServices(db, 5, 0.2)
	adSvc.rng = func() float64 { return 0 } // 概率必中

	page, err := feedSvc.GetPage(context.Background(), nil, "sess-1", 0, 5)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if len(page.Items) != 6 {
		t.Fatalf("items = %d (%v), want 6", len(page.Items), feedItemTypes(page))
	}

	adCount := 0
	for i, item := range page.Items {
		if item.Type != dto.FeedItemTypeAd {
			continue
		}
		adCount++
		if i != 3 {
			t.Errorf("ad at index %d, want 3", i)
		}
		if item.Ad == nil || item.Ad.ID != ad.ID {
			t.Errorf("ad payload = %+v, want id %d", item.Ad, ad.ID)
		}
		if item.Ad != nil && item.Ad.ViewCount != 1 {
			t.Errorf("ad view_count = %d, want 1", item.Ad.ViewCount)
		}
	}
	if adCount != 1 {
		t.Errorf("ads in page = %d, want exactly 1", adCount)
	}

	// 广告不挤占视频分页：HasMore 仍按视频数算
	if !page.HasMore {
		t.Error("HasMore = false, want true (full video page)")
	}

	// 展示记录落库
	views, err := repository.NewAdViewRepository(db).CountBySessionAndDate("sess-1", time.Now().Format("2006-01-02"))
	if err != nil {
		t.Fatalf("count ad views: %v", err)
	}
	if views != 1 {
		t.Errorf("ad views = %d, want 1", views)
	}
}

func TestFeedPageNoSessionNoAd(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	for i := 0; i < 4; i++ {
		createTestVideo(t, db, author.ID, fmt.Sprintf("视频%d", i+1), false)
	}
	createTestAd(t, db, "promo", true)
	feedSvc, adSvc := newFeedServices(db, 5, 0.2)
	adSvc.rng = func() float64 { return 0 }

	page, err := feedSvc.GetPage(context.Background(), nil, "", 0, 10)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	for i, item := range page.Items {
		if item.Type == dto.FeedItemTypeAd {
			t.Errorf("item[%d] is ad without session id", i)
		}
	}
}

func TestFeedPageQuotaExhausted(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	for i := 0; i < 4; i++ {
		createTestVideo(t, db, author.ID, fmt.Sprintf("视频%d", i+1), false)
	}
	ad := createTestAd(t, db, "promo", true)
	feedSvc, adSvc := newFeedServices(db, 2, 0.2)
	adSvc.rng = func() float64 { return 0 }

	today := time.Now().Format("2006-01-02")
	for i := 0; i < 2; i++ {
		view := &model.AdView{AdID: ad.ID, SessionID: "sess-1", ViewDate: today}
		if err := db.Create(view).Error; err != nil {
			t.Fatalf("seed ad view: %v", err)
		}
	}

	page, err := feedSvc.GetPage(context.Background(), nil, "sess-1", 0, 10)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	for i, item := range page.Items {
		if item.Type == dto.FeedItemTypeAd {
			t.Errorf("item[%d] is ad but daily quota is spent", i)
		}
	}

	// 其他会话不受影响
	page, err = feedSvc.GetPage(context.Background(), nil, "sess-2", 0, 10)
	if err != nil {
		t.Fatalf("GetPage other session: %v", err)
	}
	found := false
	for _, item := range page.Items {
		if item.Type == dto.FeedItemTypeAd {
			found = true
		}
	}
	if !found {
		t.Error("fresh session got no ad")
	}
}

func TestFeedPageBeyondEnd(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	createTestVideo(t, db, author.ID, "唯一视频", false)
	createTestAd(t, db, "promo", true)
	feedSvc, adSvc := newFeedServices(db, 5, 0.2)
	adSvc.rng = func() float64 { return 0 }

	page, err := feedSvc.GetPage(context.Background(), nil, "sess-1", 7, 5)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	// 空页不插广告
	if len(page.Items) != 0 {
		t.Errorf("items = %d (%v), want 0", len(page.Items), feedItemTypes(page))
	}
	if page.HasMore {
		t.Error("HasMore = true beyond end, want false")
	}
	if page.NextCursor != nil {
		t.Errorf("NextCursor = %v, want nil", *page.NextCursor)
	}
}
