package handler

import (
	"errors"
	"strconv"
	"strings"

	"reelgo/internal/api/dto"
	"reelgo/internal/api/middleware"
	"reelgo/internal/api/response"
	"reelgo/internal/service"
	"reelgo/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type VideoHandler struct {
	videoService *service.VideoService
}

func NewVideoHandler(videoService *service.VideoService) *VideoHandler {
	return &VideoHandler{videoService: videoService}
}

// Upload POST /api/v1/videos/upload
func (h *VideoHandler) Upload(c *gin.Context) {
	var req dto.VideoUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	file, err := c.FormFile("video_file")
	if err != nil {
		response.BadRequest(c, "请上传视频文件")
		return
	}
	if file.Size == 0 {
		response.BadRequest(c, "视频文件不能为空")
		return
	}

	ext := ""
	if idx := strings.LastIndexByte(file.Filename, '.'); idx >= 0 {
		ext = file.Filename[idx+1:]
	}
	if ext == "" {
		response.BadRequest(c, "无法识别文件格式")
		return
	}

	currentUserID, _ := middleware.GetCurrentUserID(c)

	f, err := file.Open()
	if err != nil {
		response.InternalError(c, "打开上传文件失败")
		return
	}
	defer f.Close()

	info, err := h.videoService.Upload(currentUserID, &req, f, file.Size, ext)
	if err != nil {
		handleVideoError(c, err)
		return
	}

	response.Created(c, "视频上传成功", info)
}

// GetDetail GET /api/v1/videos/:id
// 私有视频仅作者本人可见，观看计数无条件累加
func (h *VideoHandler) GetDetail(c *gin.Context) {
	videoID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的视频ID")
		return
	}

	var viewerID *int64
	if id, ok := middleware.GetCurrentUserID(c); ok {
		viewerID = &id
	}

	info, err := h.videoService.GetDetail(videoID, viewerID)
	if err != nil {
		handleVideoError(c, err)
		return
	}

	response.OK(c, "获取视频详情成功", info)
}

// Like POST /api/v1/videos/:id/like
func (h *VideoHandler) Like(c *gin.Context) {
	videoID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的视频ID")
		return
	}

	info, err := h.videoService.Like(videoID)
	if err != nil {
		handleVideoError(c, err)
		return
	}

	response.OK(c, "点赞成功", gin.H{
		"video_id":   info.ID,
		"like_count": info.LikeCount,
	})
}

// Dislike POST /api/v1/videos/:id/dislike
func (h *VideoHandler) Dislike(c *gin.Context) {
	videoID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的视频ID")
		return
	}

	info, err := h.videoService.Dislike(videoID)
	if err != nil {
		handleVideoError(c, err)
		return
	}

	response.OK(c, "点踩成功", gin.H{
		"video_id":      info.ID,
		"dislike_count": info.DislikeCount,
	})
}

// GetMyVideos GET /api/v1/videos/my/list
func (h *VideoHandler) GetMyVideos(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)
	page, pageSize := parsePagination(c)

	data, err := h.videoService.GetMyVideos(currentUserID, page, pageSize)
	if err != nil {
		logger.Error("Get my videos failed", zap.Error(err))
		response.InternalError(c, "获取我的视频列表失败")
		return
	}

	response.OK(c, "获取我的视频列表成功", data)
}

// GetUserVideos GET /api/v1/videos/user/:id
// 本人查看时包含私有视频，其他人只能看到公开视频
func (h *VideoHandler) GetUserVideos(c *gin.Context) {
	targetID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	var viewerID *int64
	if id, ok := middleware.GetCurrentUserID(c); ok {
		viewerID = &id
	}

	page, pageSize := parsePagination(c)

	data, err := h.videoService.GetUserVideos(targetID, viewerID, page, pageSize)
	if err != nil {
		logger.Error("Get user videos failed", zap.Error(err), zap.Int64("user_id", targetID))
		response.InternalError(c, "获取用户视频列表失败")
		return
	}

	response.OK(c, "获取用户视频列表成功", data)
}

// UpdateVideo PUT /api/v1/videos/:id
func (h *VideoHandler) UpdateVideo(c *gin.Context) {
	videoID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的视频ID")
		return
	}

	var req dto.VideoUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	currentUserID, _ := middleware.GetCurrentUserID(c)

	info, err := h.videoService.Update(videoID, currentUserID, &req)
	if err != nil {
		handleVideoError(c, err)
		return
	}

	response.OK(c, "更新视频成功", info)
}

// DeleteVideo DELETE /api/v1/videos/:id
func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	videoID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的视频ID")
		return
	}

	currentUserID, _ := middleware.GetCurrentUserID(c)

	if err := h.videoService.Delete(videoID, currentUserID); err != nil {
		handleVideoError(c, err)
		return
	}

	response.OK(c, "删除视频成功", nil)
}

func handleVideoError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrVideoNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrVideoNoPermission):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrVideoFormat):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrVideoTooLarge):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrVideoTooLong):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrNoFieldsToUpdate):
		response.BadRequest(c, err.Error())
	default:
		logger.Error("Video operation failed", zap.Error(err))
		response.InternalError(c, "操作失败，请稍后重试")
	}
}
