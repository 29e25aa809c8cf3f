package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"reelgo/internal/api/dto"
	"reelgo/internal/config"
	infraES "reelgo/internal/infra/elasticsearch"
	infraKafka "reelgo/internal/infra/kafka"
	infraMinio "reelgo/internal/infra/minio"
	"reelgo/internal/media"
	"reelgo/internal/model"
	"reelgo/internal/repository"
	"reelgo/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrVideoNotFound     = errors.New("视频不存在")
	ErrVideoNoPermission = errors.New("没有权限操作该视频")
	ErrVideoFormat       = errors.New("不支持的视频格式")
	ErrVideoTooLarge     = errors.New("视频文件过大")
	ErrVideoTooLong      = errors.New("视频时长超过限制")
	ErrNoFieldsToUpdate  = errors.New("没有需要更新的字段")
)

type VideoService struct {
	videoRepo *repository.VideoRepository
}

func NewVideoService(videoRepo *repository.VideoRepository) *VideoService {
	return &VideoService{videoRepo: videoRepo}
}

// Upload 上传视频
// 先落对象存储再写库，写库失败时回收已上传的对象，保证不产生游离记录；
// 探测元信息和截取封面失败不阻塞上传，仅时长超限会拒绝
func (s *VideoService) Upload(authorID int64, req *dto.VideoUploadRequest, fileReader io.Reader, fileSize int64, fileFormat string) (*dto.VideoInfo, error) {
	videoCfg := config.GetVideo()

	if !formatAllowed(fileFormat, videoCfg.AllowedFormats) {
		return nil, ErrVideoFormat
	}
	if videoCfg.MaxFileSizeMB > 0 && fileSize > videoCfg.MaxFileSize() {
		return nil, ErrVideoTooLarge
	}

	// 先写临时文件，ffprobe 需要本地路径
	tmpFile, err := os.CreateTemp("", "upload-*."+fileFormat)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmpFile, fileReader); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("save upload: %w", err)
	}
	tmpFile.Close()

	video := &model.Video{
		AuthorID:    authorID,
		Title:       req.Title,
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
		FileSize:    fileSize,
		FileFormat:  fileFormat,
	}

	probe, err := media.Probe(tmpPath)
	if err != nil {
		logger.Warn("Probe video failed, continue without metadata",
			zap.Int64("author_id", authorID), zap.Error(err))
	} else {
		if videoCfg.MaxDurationSeconds > 0 && probe.Duration > videoCfg.MaxDurationSeconds {
			return nil, ErrVideoTooLong
		}
		video.Duration = probe.Duration
		video.Width = probe.Width
		video.Height = probe.Height
		video.Bitrate = probe.Bitrate
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	baseName := fmt.Sprintf("%d/%d", authorID, time.Now().UnixNano())
	objectName := fmt.Sprintf("%s.%s", baseName, fileFormat)

	srcFile, err := os.Open(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("reopen temp file: %w", err)
	}
	defer srcFile.Close()

	contentType := "video/" + fileFormat
	if _, err := infraMinio.UploadFile(ctx, infraMinio.PublicVideoBucket, objectName, srcFile, fileSize, contentType); err != nil {
		return nil, fmt.Errorf("上传文件失败: %w", err)
	}

	minioCfg := config.GetMinIO()
	video.PlayURL = infraMinio.GetPublicURL(minioCfg.Endpoint, minioCfg.UseSSL, infraMinio.PublicVideoBucket, objectName)

	// 封面尽力而为，失败不拦截
	coverObject := s.uploadCover(ctx, tmpPath, baseName)
	if coverObject != "" {
		video.CoverURL = infraMinio.GetPublicURL(minioCfg.Endpoint, minioCfg.UseSSL, infraMinio.PublicVideoBucket, coverObject)
	}

	if err := s.videoRepo.Create(video); err != nil {
		// 写库失败，回收已上传的对象
		if rmErr := infraMinio.RemoveFile(ctx, infraMinio.PublicVideoBucket, objectName); rmErr != nil {
			logger.Error("Cleanup uploaded object failed",
				zap.String("object", objectName), zap.Error(rmErr))
		}
		if coverObject != "" {
			_ = infraMinio.RemoveFile(ctx, infraMinio.PublicVideoBucket, coverObject)
		}
		return nil, err
	}

	// 异步优化（统一编码、faststart），失败只记日志
	kafkaCfg := config.GetKafka()
	task := &infraKafka.OptimizeTask{
		VideoID:    video.ID,
		ObjectName: objectName,
		Bucket:     infraMinio.PublicVideoBucket,
		FileFormat: fileFormat,
		FileSize:   fileSize,
	}
	if err := infraKafka.SendOptimizeTask(ctx, kafkaCfg.Topics["video_optimize"], task); err != nil {
		logger.Warn("Send optimize task failed", zap.Int64("video_id", video.ID), zap.Error(err))
	}

	s.syncToES(video.ID)

	return toVideoInfo(video, false), nil
}

// uploadCover 截取首帧并上传，返回封面对象名，失败返回空串
func (s *VideoService) uploadCover(ctx context.Context, videoPath, baseName string) string {
	coverPath := videoPath + ".jpg"
	defer os.Remove(coverPath)

	if err := media.ExtractCover(videoPath, coverPath); err != nil {
		logger.Warn("Extract cover failed", zap.Error(err))
		return ""
	}

	coverFile, err := os.Open(coverPath)
	if err != nil {
		return ""
	}
	defer coverFile.Close()

	stat, err := coverFile.Stat()
	if err != nil {
		return ""
	}

	coverObject := baseName + ".jpg"
	if _, err := infraMinio.UploadFile(ctx, infraMinio.PublicVideoBucket, coverObject, coverFile, stat.Size(), "image/jpeg"); err != nil {
		logger.Warn("Upload cover failed", zap.Error(err))
		return ""
	}
	return coverObject
}

// syncToES 把库里的最新状态写进搜索索引，尽力而为
// 重新查一次是为了带上作者名，调用方手里的 video 往往没有预加载 Author
func (s *VideoService) syncToES(videoID int64) {
	video, err := s.videoRepo.GetByIDWithAuthor(videoID)
	if err != nil {
		logger.Debug("Load video for ES sync failed", zap.Int64("video_id", videoID), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := infraES.SyncVideo(ctx, video, videoAuthorName(video)); err != nil {
		logger.Debug("Sync video to ES failed", zap.Int64("video_id", videoID), zap.Error(err))
	}
}

// HandleOptimizeResult 处理 worker 回传的优化结果
func (s *VideoService) HandleOptimizeResult(result *infraKafka.OptimizeResult) error {
	if result.Status != "optimized" {
		logger.Warn("Video optimize failed, keep original",
			zap.Int64("video_id", result.VideoID),
			zap.String("error", result.Error),
		)
		return nil
	}

	updates := map[string]interface{}{
		"play_url":    result.PlayURL,
		"file_format": "mp4",
	}
	if result.FileSize > 0 {
		updates["file_size"] = result.FileSize
	}
	if result.Bitrate > 0 {
		updates["bitrate"] = result.Bitrate
	}

	if _, err := s.videoRepo.Update(result.VideoID, updates); err != nil {
		return fmt.Errorf("update video %d after optimize failed: %w", result.VideoID, err)
	}

	logger.Info("Video optimize result processed", zap.Int64("video_id", result.VideoID))
	return nil
}

// GetDetail 获取视频详情
// 私密视频仅作者可见；每次成功访问都累加播放量，不做去重
func (s *VideoService) GetDetail(videoID int64, viewerID *int64) (*dto.VideoInfo, error) {
	video, err := s.videoRepo.GetByIDWithAuthor(videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	if video.IsPrivate && (viewerID == nil || *viewerID != video.AuthorID) {
		return nil, ErrVideoNoPermission
	}

	_ = s.videoRepo.IncrementViewCount(videoID)
	video.ViewCount++

	return toVideoInfo(video, true), nil
}

// Like 视频点赞（纯计数，不记录点赞人）
func (s *VideoService) Like(videoID int64) (*dto.VideoInfo, error) {
	if _, err := s.videoRepo.GetByID(videoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	if err := s.videoRepo.IncrementLikeCount(videoID); err != nil {
		return nil, err
	}

	video, err := s.videoRepo.GetByID(videoID)
	if err != nil {
		return nil, err
	}
	return toVideoInfo(video, false), nil
}

// Dislike 视频点踩（纯计数）
func (s *VideoService) Dislike(videoID int64) (*dto.VideoInfo, error) {
	if _, err := s.videoRepo.GetByID(videoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	if err := s.videoRepo.IncrementDislikeCount(videoID); err != nil {
		return nil, err
	}

	video, err := s.videoRepo.GetByID(videoID)
	if err != nil {
		return nil, err
	}
	return toVideoInfo(video, false), nil
}

// Update 更新视频信息（仅作者本人）
func (s *VideoService) Update(videoID, currentUserID int64, req *dto.VideoUpdateRequest) (*dto.VideoInfo, error) {
	if _, err := s.videoRepo.GetByIDAndAuthor(videoID, currentUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNoPermission
		}
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsPrivate != nil {
		updates["is_private"] = *req.IsPrivate
	}

	if len(updates) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	video, err := s.videoRepo.Update(videoID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	s.syncToES(videoID)

	return toVideoInfo(video, false), nil
}

// Delete 删除视频（仅作者本人），评论在同一事务内级联删除
// 对象存储和搜索索引的清理尽力而为
func (s *VideoService) Delete(videoID, currentUserID int64) error {
	video, err := s.videoRepo.GetByIDAndAuthor(videoID, currentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVideoNoPermission
		}
		return err
	}

	if err := s.videoRepo.DeleteCascade(videoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVideoNotFound
		}
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, rawURL := range []string{video.PlayURL, video.CoverURL} {
		object := objectNameFromURL(rawURL, infraMinio.PublicVideoBucket)
		if object == "" {
			continue
		}
		if err := infraMinio.RemoveFile(ctx, infraMinio.PublicVideoBucket, object); err != nil {
			logger.Warn("Remove video object failed",
				zap.Int64("video_id", videoID),
				zap.String("object", object),
				zap.Error(err),
			)
		}
	}

	if err := infraES.DeleteVideo(ctx, videoID); err != nil {
		logger.Debug("Delete video from ES failed", zap.Int64("video_id", videoID), zap.Error(err))
	}

	return nil
}

// GetMyVideos 获取当前用户的视频列表（含私密）
func (s *VideoService) GetMyVideos(userID int64, page, pageSize int) (*dto.VideoListData, error) {
	skip := (page - 1) * pageSize
	videos, total, err := s.videoRepo.ListVideos(skip, pageSize, &userID, true, nil, false)
	if err != nil {
		return nil, err
	}
	return buildVideoListData(videos, total, page, pageSize, false), nil
}

// GetUserVideos 获取指定用户的视频列表，非本人只能看到公开视频
func (s *VideoService) GetUserVideos(targetUserID int64, viewerID *int64, page, pageSize int) (*dto.VideoListData, error) {
	includePrivate := viewerID != nil && *viewerID == targetUserID
	skip := (page - 1) * pageSize
	videos, total, err := s.videoRepo.ListVideos(skip, pageSize, &targetUserID, includePrivate, nil, true)
	if err != nil {
		return nil, err
	}
	return buildVideoListData(videos, total, page, pageSize, true), nil
}

func formatAllowed(format string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, f := range allowed {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}

// objectNameFromURL 从公开访问 URL 还原对象名
func objectNameFromURL(rawURL, bucket string) string {
	marker := "/" + bucket + "/"
	idx := strings.Index(rawURL, marker)
	if idx < 0 {
		return ""
	}
	return rawURL[idx+len(marker):]
}

// toVideoInfo 将 model.Video 转换为 dto.VideoInfo
func toVideoInfo(video *model.Video, includeAuthor bool) *dto.VideoInfo {
	info := &dto.VideoInfo{
		ID:           video.ID,
		AuthorID:     video.AuthorID,
		Title:        video.Title,
		Description:  video.Description,
		PlayURL:      video.PlayURL,
		CoverURL:     video.CoverURL,
		Duration:     video.Duration,
		FileSize:     video.FileSize,
		FileFormat:   video.FileFormat,
		Width:        video.Width,
		Height:       video.Height,
		IsPrivate:    video.IsPrivate,
		ViewCount:    video.ViewCount,
		LikeCount:    video.LikeCount,
		DislikeCount: video.DislikeCount,
		CommentCount: video.CommentCount,
		CreatedAt:    video.CreatedAt,
		UpdatedAt:    video.UpdatedAt,
	}

	if includeAuthor {
		info.Author = toAuthorBrief(&video.Author)
	}

	return info
}

// toAuthorBrief 视频作者摘要，作者已注销时用占位作者
func toAuthorBrief(author *model.User) *dto.AuthorBrief {
	if author == nil || author.ID == 0 || author.IsDelete != 0 {
		return &dto.AuthorBrief{ID: 0, Username: "unknown"}
	}
	return &dto.AuthorBrief{
		ID:       author.ID,
		Username: author.UserName,
		Name:     author.Name,
		Avatar:   author.Avatar,
	}
}

func buildVideoListData(videos []model.Video, total int64, page, pageSize int, includeAuthor bool) *dto.VideoListData {
	items := make([]dto.VideoInfo, 0, len(videos))
	for i := range videos {
		items = append(items, *toVideoInfo(&videos[i], includeAuthor))
	}

	return &dto.VideoListData{
		Videos:   items,
		PageInfo: dto.NewPageInfo(total, page, pageSize),
	}
}
