package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"reelgo/internal/model"
	"reelgo/pkg/logger"

	"go.uber.org/zap"
)

// videoDoc 索引里的视频文档
type videoDoc struct {
	ID           int64   `json:"id"`
	AuthorID     int64   `json:"author_id"`
	AuthorName   string  `json:"author_name"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	IsPrivate    bool    `json:"is_private"`
	ViewCount    int64   `json:"view_count"`
	LikeCount    int64   `json:"like_count"`
	DislikeCount int64   `json:"dislike_count"`
	CommentCount int64   `json:"comment_count"`
	HotScore     float64 `json:"hot_score"`
	Duration     int     `json:"duration"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// hotScore 浏览、点赞、评论的加权热度，检索排序用
func hotScore(view, like, comment int64) float64 {
	return (float64(view)*0.5 + float64(like)*2.0 + float64(comment)*1.5) / 1000
}

func newVideoDoc(v *model.Video, authorName string) *videoDoc {
	return &videoDoc{
		ID:           v.ID,
		AuthorID:     v.AuthorID,
		AuthorName:   authorName,
		Title:        v.Title,
		Description:  v.Description,
		IsPrivate:    v.IsPrivate,
		ViewCount:    v.ViewCount,
		LikeCount:    v.LikeCount,
		DislikeCount: v.DislikeCount,
		CommentCount: v.CommentCount,
		HotScore:     hotScore(v.ViewCount, v.LikeCount, v.CommentCount),
		Duration:     v.Duration,
		CreatedAt:    v.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    v.UpdatedAt.Format(time.RFC3339),
	}
}

func docID(videoID int64) string {
	return strconv.FormatInt(videoID, 10)
}

// SyncVideo 将单个视频写入索引，文档已存在时整体覆盖
func SyncVideo(ctx context.Context, v *model.Video, authorName string) error {
	body, err := json.Marshal(newVideoDoc(v, authorName))
	if err != nil {
		return err
	}

	resp, err := Index(ctx, VideosIndex(), docID(v.ID), bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("index document failed: %s", resp.String())
	}

	logger.Debug("Video synced to ES", zap.Int64("video_id", v.ID))
	return nil
}

// DeleteVideo 从索引移除视频，文档本就不在不算错误
func DeleteVideo(ctx context.Context, videoID int64) error {
	resp, err := Delete(ctx, VideosIndex(), docID(videoID))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.IsError() && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete document failed: %s", resp.String())
	}
	return nil
}

// BulkSyncVideos 批量重建视频索引，返回成功与失败条数
func BulkSyncVideos(ctx context.Context, videos []model.Video, authorNames map[int64]string) (success, failed int, err error) {
	if len(videos) == 0 {
		return 0, 0, nil
	}

	index := VideosIndex()
	var buf bytes.Buffer
	for i := range videos {
		v := &videos[i]
		docBody, mErr := json.Marshal(newVideoDoc(v, authorNames[v.AuthorID]))
		if mErr != nil {
			failed++
			continue
		}
		fmt.Fprintf(&buf, "{\"index\":{\"_index\":%q,\"_id\":%q}}\n", index, docID(v.ID))
		buf.Write(docBody)
		buf.WriteByte('\n')
	}

	resp, err := Bulk(ctx, &buf)
	if err != nil {
		return 0, len(videos), err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return 0, len(videos), fmt.Errorf("bulk failed: %s", resp.String())
	}

	var bulkResp struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				Status int `json:"status"`
			} `json:"index"`
		} `json:"items"`
	}
	// 整体 2xx 但逐条结果解析不出来时按全部成功计
	if decodeErr := json.NewDecoder(resp.Body).Decode(&bulkResp); decodeErr != nil {
		return len(videos) - failed, failed, nil
	}

	for _, item := range bulkResp.Items {
		if item.Index.Status >= 200 && item.Index.Status < 300 {
			success++
		} else {
			failed++
		}
	}

	logger.Info("Bulk sync to ES completed", zap.Int("success", success), zap.Int("failed", failed))
	return success, failed, nil
}
