package handler

import (
	"reelgo/internal/api/dto"
	"reelgo/internal/api/response"
	"reelgo/internal/service"
	"reelgo/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SearchHandler struct {
	searchService *service.SearchService
}

func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// validSearchSorts 允许的排序方式，空串等价 relevance
var validSearchSorts = map[string]bool{
	"":          true,
	"relevance": true,
	"time":      true,
	"hot":       true,
}

// SearchVideos 站内视频检索
// @Summary 搜索视频
// @Description 按关键词检索公开视频，可限定作者、指定排序；ES 不可用时降级为数据库模糊匹配
// @Tags 搜索
// @Produce json
// @Param q query string false "检索关键词"
// @Param author_id query int false "限定作者的用户ID"
// @Param video_id query int false "限定单个视频"
// @Param sort query string false "排序方式: relevance, time, hot" default(relevance)
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=dto.SearchVideoData} "搜索成功"
// @Failure 400 {object} response.ErrorResponse "请求参数无效"
// @Router /search/videos [get]
func (h *SearchHandler) SearchVideos(c *gin.Context) {
	var req dto.SearchVideoRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}
	if !validSearchSorts[req.Sort] {
		response.BadRequest(c, "无效的排序方式")
		return
	}

	data, err := h.searchService.SearchVideos(&req)
	if err != nil {
		logger.Error("Video search failed", zap.Error(err))
		response.InternalError(c, "搜索失败")
		return
	}

	response.OK(c, "搜索成功", data)
}

// RebuildIndex 全量重建视频搜索索引
// @Summary 重建搜索索引（管理员）
// @Description 全量拉取公开视频重建 Elasticsearch 索引，返回写入成功与失败的条数
// @Tags 搜索
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response "重建完成"
// @Failure 500 {object} response.ErrorResponse "重建失败"
// @Router /search/sync [post]
func (h *SearchHandler) RebuildIndex(c *gin.Context) {
	synced, failed, err := h.searchService.RebuildIndex()
	if err != nil {
		logger.Error("Rebuild search index failed", zap.Error(err))
		response.InternalError(c, "索引重建失败")
		return
	}

	response.OK(c, "索引重建完成", gin.H{
		"synced": synced,
		"failed": failed,
	})
}
