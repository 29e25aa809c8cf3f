package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"reelgo/internal/api/dto"
	"reelgo/internal/model"
	"reelgo/internal/repository"

	"gorm.io/gorm"
)

func newCommentService(db *gorm.DB) *CommentService {
	return NewCommentService(repository.NewCommentRepository(db), repository.NewVideoRepository(db))
}

func videoCommentCount(t *testing.T, db *gorm.DB, videoID int64) int64 {
	t.Helper()
	var video model.Video
	if err := db.First(&video, videoID).Error; err != nil {
		t.Fatalf("reload video %d: %v", videoID, err)
	}
	return video.CommentCount
}

func TestCommentCreateTopLevel(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	video := createTestVideo(t, db, author.ID, "测试视频", false)
	svc := newCommentService(db)

	info, err := svc.Create(author.ID, video.ID, &dto.CommentCreateRequest{Content: "第一条评论"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if info.ParentID != nil {
		t.Errorf("top level comment parent = %v, want nil", *info.ParentID)
	}
	if got := videoCommentCount(t, db, video.ID); got != 1 {
		t.Errorf("video comment_count = %d, want 1", got)
	}
}

func TestCommentCreateReplyToReplyFlattens(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	replier := createTestUser(t, db, "replier")
	video := createTestVideo(t, db, author.ID, "测试视频", false)
	svc := newCommentService(db)

	top, err := svc.Create(author.ID, video.ID, &dto.CommentCreateRequest{Content: "顶层"})
	if err != nil {
		t.Fatalf("create top: %v", err)
	}

	reply, err := svc.Create(replier.ID, video.ID, &dto.CommentCreateRequest{Content: "一级回复", ParentID: &top.ID})
	if err != nil {
		t.Fatalf("create reply: %v", err)
	}
	if reply.ParentID == nil || *reply.ParentID != top.ID {
		t.Fatalf("reply parent = %v, want %d", reply.ParentID, top.ID)
	}

	// 对回复的回复要拉平到顶层评论下
	deep, err := svc.Create(author.ID, video.ID, &dto.CommentCreateRequest{Content: "二级回复", ParentID: &reply.ID})
	if err != nil {
		t.Fatalf("create deep reply: %v", err)
	}
	if deep.ParentID == nil || *deep.ParentID != top.ID {
		t.Errorf("deep reply parent = %v, want top comment %d", deep.ParentID, top.ID)
	}

	if got := videoCommentCount(t, db, video.ID); got != 3 {
		t.Errorf("video comment_count = %d, want 3", got)
	}
}

func TestCommentCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	video := createTestVideo(t, db, author.ID, "测试视频", false)
	other := createTestVideo(t, db, author.ID, "另一个视频", false)
	svc := newCommentService(db)

	if _, err := svc.Create(author.ID, video.ID, &dto.CommentCreateRequest{Content: "   "}); !errors.Is(err, ErrCommentEmpty) {
		t.Errorf("blank content err = %v, want ErrCommentEmpty", err)
	}

	long := strings.Repeat("评", 501)
	if _, err := svc.Create(author.ID, video.ID, &dto.CommentCreateRequest{Content: long}); !errors.Is(err, ErrCommentTooLong) {
		t.Errorf("long content err = %v, want ErrCommentTooLong", err)
	}

	if _, err := svc.Create(author.ID, 9999, &dto.CommentCreateRequest{Content: "评论"}); !errors.Is(err, ErrVideoNotFound) {
		t.Errorf("missing video err = %v, want ErrVideoNotFound", err)
	}

	missingParent := int64(9999)
	if _, err := svc.Create(author.ID, video.ID, &dto.CommentCreateRequest{Content: "评论", ParentID: &missingParent}); !errors.Is(err, ErrParentNotFound) {
		t.Errorf("missing parent err = %v, want ErrParentNotFound", err)
	}

	// 父评论挂在别的视频下
	top, err := svc.Create(author.ID, other.ID, &dto.CommentCreateRequest{Content: "别处的顶层"})
	if err != nil {
		t.Fatalf("create top on other video: %v", err)
	}
	if _, err := svc.Create(author.ID, video.ID, &dto.CommentCreateRequest{Content: "评论", ParentID: &top.ID}); !errors.Is(err, ErrParentVideoMismatch) {
		t.Errorf("cross-video parent err = %v, want ErrParentVideoMismatch", err)
	}
}

func TestCommentTreeOrdering(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	replier := createTestUser(t, db, "replier")
	video := createTestVideo(t, db, author.ID, "测试视频", false)
	svc := newCommentService(db)

	top1, err := svc.Create(author.ID, video.ID, &dto.CommentCreateRequest{Content: "顶层1"})
	if err != nil {
		t.Fatalf("create top1: %v", err)
	}
	if _, err := svc.Create(replier.ID, video.ID, &dto.CommentCreateRequest{Content: "回复1", ParentID: &top1.ID}); err != nil {
		t.Fatalf("create reply1: %v", err)
	}
	if _, err := svc.Create(author.ID, video.ID, &dto.CommentCreateRequest{Content: "顶层2"}); err != nil {
		t.Fatalf("create top2: %v", err)
	}
	if _, err := svc.Create(author.ID, video.ID, &dto.CommentCreateRequest{Content: "回复2", ParentID: &top1.ID}); err != nil {
		t.Fatalf("create reply2: %v", err)
	}

	tree, err := svc.Tree(video.ID)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}

	if tree.Total != 4 {
		t.Errorf("total = %d, want 4", tree.Total)
	}
	if len(tree.Comments) != 2 {
		t.Fatalf("top comments = %d, want 2", len(tree.Comments))
	}

	// 顶层倒序：最新的在前
	if tree.Comments[0].Content != "顶层2" || tree.Comments[1].Content != "顶层1" {
		t.Errorf("top order = [%q, %q], want [顶层2, 顶层1]", tree.Comments[0].Content, tree.Comments[1].Content)
	}

	// 回复正序挂在所属顶层下
	replies := tree.Comments[1].Replies
	if len(replies) != 2 {
		t.Fatalf("replies of top1 = %d, want 2", len(replies))
	}
	if replies[0].Content != "回复1" || replies[1].Content != "回复2" {
		t.Errorf("reply order = [%q, %q], want [回复1, 回复2]", replies[0].Content, replies[1].Content)
	}
	if tree.Comments[1].RepliesCount != 2 {
		t.Errorf("replies_count = %d, want 2", tree.Comments[1].RepliesCount)
	}

	// 无回复的顶层评论 Replies 为空切片而不是 nil
	if tree.Comments[0].Replies == nil {
		t.Error("top2 replies = nil, want empty slice")
	}
	if tree.Comments[0].RepliesCount != 0 {
		t.Errorf("top2 replies_count = %d, want 0", tree.Comments[0].RepliesCount)
	}

	if tree.Comments[1].Username == nil || *tree.Comments[1].Username != "author" {
		t.Errorf("top1 username = %v, want author", tree.Comments[1].Username)
	}
}

// 主键顺序和时间顺序故意打架，排序必须由 created_at 决定
func TestCommentTreeOrdersByTimestampNotID(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	video := createTestVideo(t, db, author.ID, "测试视频", false)
	svc := newCommentService(db)

	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	seed := func(content string, parentID *int64, at time.Time) *model.Comment {
		t.Helper()
		c := &model.Comment{
			UserID:    author.ID,
			VideoID:   video.ID,
			Content:   content,
			ParentID:  parentID,
			CreatedAt: at,
			UpdatedAt: at,
		}
		if err := db.Create(c).Error; err != nil {
			t.Fatalf("seed comment %q: %v", content, err)
		}
		return c
	}

	late := seed("晚顶层", nil, base.Add(20*time.Second))
	early := seed("早顶层", nil, base.Add(10*time.Second))
	seed("晚回复", &early.ID, base.Add(15*time.Second))
	seed("早回复", &early.ID, base.Add(12*time.Second))

	tree, err := svc.Tree(video.ID)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if tree.Total != 4 || len(tree.Comments) != 2 {
		t.Fatalf("total/top = %d/%d, want 4/2", tree.Total, len(tree.Comments))
	}

	if tree.Comments[0].ID != late.ID || tree.Comments[1].ID != early.ID {
		t.Errorf("top order = [%d, %d], want [%d, %d]",
			tree.Comments[0].ID, tree.Comments[1].ID, late.ID, early.ID)
	}

	replies := tree.Comments[1].Replies
	if len(replies) != 2 {
		t.Fatalf("replies = %d, want 2", len(replies))
	}
	if replies[0].Content != "早回复" || replies[1].Content != "晚回复" {
		t.Errorf("reply order = [%q, %q], want [早回复, 晚回复]", replies[0].Content, replies[1].Content)
	}
}

func TestCommentTreeDeletedAuthorPlaceholder(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	ghost := createTestUser(t, db, "ghost")
	video := createTestVideo(t, db, author.ID, "测试视频", false)
	svc := newCommentService(db)

	if _, err := svc.Create(ghost.ID, video.ID, &dto.CommentCreateRequest{Content: "注销前的评论"}); err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if err := db.Model(&model.User{}).Where("id = ?", ghost.ID).
		Updates(map[string]interface{}{"name": "幽灵", "is_delete": 1}).Error; err != nil {
		t.Fatalf("soft delete user: %v", err)
	}

	tree, err := svc.Tree(video.ID)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if len(tree.Comments) != 1 {
		t.Fatalf("top comments = %d, want 1", len(tree.Comments))
	}

	got := tree.Comments[0]
	if got.UserID != 0 {
		t.Errorf("deleted author user_id = %d, want 0", got.UserID)
	}
	if got.Username == nil || *got.Username != "unknown" {
		t.Errorf("deleted author username = %v, want unknown", got.Username)
	}
	// 昵称、头像一并抹掉，不能漏出注销前的资料
	if got.Name != nil || got.Avatar != nil {
		t.Errorf("deleted author name/avatar = %v/%v, want nil/nil", got.Name, got.Avatar)
	}
	if got.Content != "注销前的评论" {
		t.Errorf("content = %q, comment itself should survive", got.Content)
	}
}

func TestCommentTreeDropsOrphanReply(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	video := createTestVideo(t, db, author.ID, "测试视频", false)
	svc := newCommentService(db)

	if _, err := svc.Create(author.ID, video.ID, &dto.CommentCreateRequest{Content: "顶层"}); err != nil {
		t.Fatalf("create top: %v", err)
	}

	// 绕过 service 直接插入一条父评论不存在的回复
	missing := int64(9999)
	orphan := &model.Comment{UserID: author.ID, VideoID: video.ID, Content: "孤儿回复", ParentID: &missing}
	if err := db.Create(orphan).Error; err != nil {
		t.Fatalf("insert orphan: %v", err)
	}

	tree, err := svc.Tree(video.ID)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if tree.Total != 1 {
		t.Errorf("total = %d, want 1 (orphan dropped)", tree.Total)
	}
	if len(tree.Comments) != 1 || len(tree.Comments[0].Replies) != 0 {
		t.Errorf("orphan reply leaked into tree: %+v", tree.Comments)
	}
}

func TestCommentListReplies(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	replier := createTestUser(t, db, "replier")
	video := createTestVideo(t, db, author.ID, "测试视频", false)
	svc := newCommentService(db)

	top, err := svc.Create(author.ID, video.ID, &dto.CommentCreateRequest{Content: "顶层"})
	if err != nil {
		t.Fatalf("create top: %v", err)
	}
	for i := 1; i <= 5; i++ {
		if _, err := svc.Create(replier.ID, video.ID, &dto.CommentCreateRequest{Content: fmt.Sprintf("回复%d", i), ParentID: &top.ID}); err != nil {
			t.Fatalf("create reply %d: %v", i, err)
		}
	}

	data, err := svc.ListReplies(top.ID, 1, 3)
	if err != nil {
		t.Fatalf("ListReplies page 1: %v", err)
	}
	if data.Total != 5 || data.TotalPages != 2 {
		t.Errorf("total/pages = %d/%d, want 5/2", data.Total, data.TotalPages)
	}
	if len(data.Comments) != 3 {
		t.Fatalf("page 1 replies = %d, want 3", len(data.Comments))
	}
	// 回复正序：最早的在前
	if data.Comments[0].Content != "回复1" || data.Comments[2].Content != "回复3" {
		t.Errorf("page 1 order = [%q .. %q], want [回复1 .. 回复3]", data.Comments[0].Content, data.Comments[2].Content)
	}
	if data.Comments[0].Username == nil || *data.Comments[0].Username != "replier" {
		t.Errorf("reply author = %v, want replier", data.Comments[0].Username)
	}

	data, err = svc.ListReplies(top.ID, 2, 3)
	if err != nil {
		t.Fatalf("ListReplies page 2: %v", err)
	}
	if len(data.Comments) != 2 || data.Comments[1].Content != "回复5" {
		t.Errorf("page 2 = %d replies, want 2 ending with 回复5", len(data.Comments))
	}

	// 回复没有下级，对回复取回复得到空页
	replyID := data.Comments[0].ID
	data, err = svc.ListReplies(replyID, 1, 10)
	if err != nil {
		t.Fatalf("ListReplies of reply: %v", err)
	}
	if data.Total != 0 || len(data.Comments) != 0 {
		t.Errorf("replies of a reply = %d/%d, want empty", data.Total, len(data.Comments))
	}

	if _, err := svc.ListReplies(9999, 1, 10); !errors.Is(err, ErrCommentNotFound) {
		t.Errorf("missing comment err = %v, want ErrCommentNotFound", err)
	}
}

func TestCommentListByUser(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	other := createTestUser(t, db, "other")
	video := createTestVideo(t, db, author.ID, "测试视频", false)
	svc := newCommentService(db)

	for i := 1; i <= 3; i++ {
		if _, err := svc.Create(author.ID, video.ID, &dto.CommentCreateRequest{Content: fmt.Sprintf("我的评论%d", i)}); err != nil {
			t.Fatalf("create comment %d: %v", i, err)
		}
	}
	if _, err := svc.Create(other.ID, video.ID, &dto.CommentCreateRequest{Content: "别人的评论"}); err != nil {
		t.Fatalf("create other comment: %v", err)
	}

	data, err := svc.ListByUser(author.ID, 1, 10)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if data.Total != 3 || len(data.Comments) != 3 {
		t.Fatalf("total/items = %d/%d, want 3/3", data.Total, len(data.Comments))
	}
	for _, item := range data.Comments {
		if item.UserID != author.ID {
			t.Errorf("comment %d belongs to user %d, want %d", item.ID, item.UserID, author.ID)
		}
		if item.VideoTitle == nil || *item.VideoTitle != "测试视频" {
			t.Errorf("comment %d video_title = %v, want 测试视频", item.ID, item.VideoTitle)
		}
	}
}

func TestCommentUpdate(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	intruder := createTestUser(t, db, "intruder")
	video := createTestVideo(t, db, author.ID, "测试视频", false)
	svc := newCommentService(db)

	top, err := svc.Create(author.ID, video.ID, &dto.CommentCreateRequest{Content: "原始内容"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(top.ID, author.ID, &dto.CommentUpdateRequest{Content: "修改后"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Content != "修改后" {
		t.Errorf("content = %q, want 修改后", updated.Content)
	}

	if _, err := svc.Update(top.ID, intruder.ID, &dto.CommentUpdateRequest{Content: "越权"}); !errors.Is(err, ErrCommentNoPermission) {
		t.Errorf("non-owner update err = %v, want ErrCommentNoPermission", err)
	}
}

func TestCommentDeleteCascade(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	replier := createTestUser(t, db, "replier")
	video := createTestVideo(t, db, author.ID, "测试视频", false)
	svc := newCommentService(db)

	top, err := svc.Create(author.ID, video.ID, &dto.CommentCreateRequest{Content: "顶层"})
	if err != nil {
		t.Fatalf("create top: %v", err)
	}
	// 回复来自他人，删顶层时也要连带删除
	for i := 0; i < 2; i++ {
		if _, err := svc.Create(replier.ID, video.ID, &dto.CommentCreateRequest{Content: "回复", ParentID: &top.ID}); err != nil {
			t.Fatalf("create reply: %v", err)
		}
	}

	if _, err := svc.Delete(top.ID, replier.ID); !errors.Is(err, ErrCommentNoPermission) {
		t.Fatalf("non-owner delete err = %v, want ErrCommentNoPermission", err)
	}

	removed, err := svc.Delete(top.ID, author.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if removed != 3 {
		t.Errorf("removed = %d, want 3", removed)
	}
	if got := videoCommentCount(t, db, video.ID); got != 0 {
		t.Errorf("video comment_count = %d, want 0", got)
	}

	var left int64
	if err := db.Model(&model.Comment{}).Where("video_id = ?", video.ID).Count(&left).Error; err != nil {
		t.Fatalf("count comments: %v", err)
	}
	if left != 0 {
		t.Errorf("comments left = %d, want 0", left)
	}

	if _, err := svc.Delete(top.ID, author.ID); !errors.Is(err, ErrCommentNotFound) {
		t.Errorf("delete missing err = %v, want ErrCommentNotFound", err)
	}
}

func TestCommentDeleteSingleReply(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	video := createTestVideo(t, db, author.ID, "测试视频", false)
	svc := newCommentService(db)

	top, err := svc.Create(author.ID, video.ID, &dto.CommentCreateRequest{Content: "顶层"})
	if err != nil {
		t.Fatalf("create top: %v", err)
	}
	reply, err := svc.Create(author.ID, video.ID, &dto.CommentCreateRequest{Content: "回复", ParentID: &top.ID})
	if err != nil {
		t.Fatalf("create reply: %v", err)
	}

	removed, err := svc.Delete(reply.ID, author.ID)
	if err != nil {
		t.Fatalf("Delete reply: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if got := videoCommentCount(t, db, video.ID); got != 1 {
		t.Errorf("video comment_count = %d, want 1", got)
	}

	if _, err := svc.Tree(video.ID); err != nil {
		t.Fatalf("Tree after reply delete: %v", err)
	}
}

func TestCommentDeleteCountFloor(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	video := createTestVideo(t, db, author.ID, "测试视频", false)
	svc := newCommentService(db)

	top, err := svc.Create(author.ID, video.ID, &dto.CommentCreateRequest{Content: "顶层"})
	if err != nil {
		t.Fatalf("create top: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := svc.Create(author.ID, video.ID, &dto.CommentCreateRequest{Content: "回复", ParentID: &top.ID}); err != nil {
			t.Fatalf("create reply: %v", err)
		}
	}

	// 计数被外部改小后，级联删除不能把它扣成负数
	if err := db.Model(&model.Video{}).Where("id = ?", video.ID).Update("comment_count", 1).Error; err != nil {
		t.Fatalf("shrink comment_count: %v", err)
	}

	removed, err := svc.Delete(top.ID, author.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if removed != 3 {
		t.Errorf("removed = %d, want 3", removed)
	}
	if got := videoCommentCount(t, db, video.ID); got != 0 {
		t.Errorf("video comment_count = %d, want 0 (not negative)", got)
	}
}

func TestCommentLike(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	video := createTestVideo(t, db, author.ID, "测试视频", false)
	svc := newCommentService(db)

	top, err := svc.Create(author.ID, video.ID, &dto.CommentCreateRequest{Content: "顶层"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Like(top.ID); err != nil {
		t.Fatalf("first like: %v", err)
	}
	liked, err := svc.Like(top.ID)
	if err != nil {
		t.Fatalf("second like: %v", err)
	}
	if liked.LikeCount != 2 {
		t.Errorf("like_count = %d, want 2", liked.LikeCount)
	}

	if _, err := svc.Like(9999); !errors.Is(err, ErrCommentNotFound) {
		t.Errorf("like missing err = %v, want ErrCommentNotFound", err)
	}
}
