package handler

import (
	"strconv"

	"reelgo/internal/api/middleware"
	"reelgo/internal/api/response"
	"reelgo/internal/service"
	"reelgo/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FeedHandler struct {
	feedService *service.FeedService
}

func NewFeedHandler(feedService *service.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// GetFeed GET /api/v1/videos/feed
// cursor 从 0 开始，负数按 0 处理；会话标识取 X-Session-ID 头，缺省时退回
// session_id 查询参数。不带会话标识的请求不会收到广告。
func (h *FeedHandler) GetFeed(c *gin.Context) {
	cursor, err := strconv.Atoi(c.DefaultQuery("cursor", "0"))
	if err != nil {
		response.BadRequest(c, "无效的游标")
		return
	}

	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))

	sessionID := c.GetHeader("X-Session-ID")
	if sessionID == "" {
		sessionID = c.Query("session_id")
	}

	var viewerID *int64
	if id, ok := middleware.GetCurrentUserID(c); ok {
		viewerID = &id
	}

	page, err := h.feedService.GetPage(c.Request.Context(), viewerID, sessionID, cursor, pageSize)
	if err != nil {
		logger.Error("Get feed failed", zap.Error(err))
		response.InternalError(c, "获取推荐流失败")
		return
	}

	response.OK(c, "获取推荐流成功", page)
}
