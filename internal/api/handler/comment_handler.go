package handler

import (
	"errors"
	"strconv"

	"reelgo/internal/api/dto"
	"reelgo/internal/api/middleware"
	"reelgo/internal/api/response"
	"reelgo/internal/service"
	"reelgo/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// parseVideoIDParam 解析路径里的 video_id
func parseVideoIDParam(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("video_id"), 10, 64)
}

// Create 发表评论
// @Summary 发表评论
// @Description 对视频发表顶层评论，或带 parent_id 回复某条评论；对回复的回复会挂到同一条顶层评论下
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param video_id path int true "视频ID"
// @Param request body dto.CommentCreateRequest true "评论内容"
// @Success 200 {object} response.Response{data=dto.CommentInfo} "发表评论成功"
// @Failure 400 {object} response.ErrorResponse "请求参数无效"
// @Failure 404 {object} response.ErrorResponse "视频或父评论不存在"
// @Router /comments/video/{video_id} [post]
func (h *CommentHandler) Create(c *gin.Context) {
	videoID, err := parseVideoIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的视频ID")
		return
	}

	var req dto.CommentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	info, err := h.commentService.Create(userID, videoID, &req)
	if err != nil {
		handleCommentError(c, err)
		return
	}

	response.OK(c, "发表评论成功", info)
}

// Update 修改评论
// @Summary 修改评论
// @Description 修改自己发表的评论内容
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "评论ID"
// @Param request body dto.CommentUpdateRequest true "新的评论内容"
// @Success 200 {object} response.Response{data=dto.CommentInfo} "更新评论成功"
// @Failure 403 {object} response.ErrorResponse "不是评论作者"
// @Failure 404 {object} response.ErrorResponse "评论不存在"
// @Router /comments/{id} [put]
func (h *CommentHandler) Update(c *gin.Context) {
	commentID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的评论ID")
		return
	}

	var req dto.CommentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	info, err := h.commentService.Update(commentID, userID, &req)
	if err != nil {
		handleCommentError(c, err)
		return
	}

	response.OK(c, "更新评论成功", info)
}

// Delete 删除评论
// @Summary 删除评论
// @Description 删除自己发表的评论；删顶层评论会连带删掉其全部回复，返回实际删除条数
// @Tags 评论
// @Produce json
// @Security BearerAuth
// @Param id path int true "评论ID"
// @Success 200 {object} response.Response "删除评论成功"
// @Failure 403 {object} response.ErrorResponse "不是评论作者"
// @Failure 404 {object} response.ErrorResponse "评论不存在"
// @Router /comments/{id} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的评论ID")
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	removed, err := h.commentService.Delete(commentID, userID)
	if err != nil {
		handleCommentError(c, err)
		return
	}

	response.OK(c, "删除评论成功", gin.H{
		"deleted_count": removed,
	})
}

// Like 评论点赞
// @Summary 评论点赞
// @Description 给评论点赞，匿名可用，纯计数不去重
// @Tags 评论
// @Produce json
// @Param id path int true "评论ID"
// @Success 200 {object} response.Response "点赞评论成功"
// @Failure 404 {object} response.ErrorResponse "评论不存在"
// @Router /comments/{id}/like [post]
func (h *CommentHandler) Like(c *gin.Context) {
	commentID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的评论ID")
		return
	}

	info, err := h.commentService.Like(commentID)
	if err != nil {
		handleCommentError(c, err)
		return
	}

	response.OK(c, "点赞评论成功", gin.H{
		"comment_id": info.ID,
		"like_count": info.LikeCount,
	})
}

// GetTree 获取评论树
// @Summary 获取视频评论树
// @Description 返回两级评论树，顶层按时间倒序，回复按时间正序挂在所属顶层评论下
// @Tags 评论
// @Produce json
// @Param video_id path int true "视频ID"
// @Success 200 {object} response.Response{data=dto.CommentTreeData} "获取评论树成功"
// @Failure 404 {object} response.ErrorResponse "视频不存在"
// @Router /comments/video/{video_id} [get]
func (h *CommentHandler) GetTree(c *gin.Context) {
	videoID, err := parseVideoIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的视频ID")
		return
	}

	data, err := h.commentService.Tree(videoID)
	if err != nil {
		handleCommentError(c, err)
		return
	}

	response.OK(c, "获取评论树成功", data)
}

// GetReplies 获取回复列表
// @Summary 获取回复列表
// @Description 分页返回某条顶层评论下的回复，按时间正序
// @Tags 评论
// @Produce json
// @Param id path int true "顶层评论ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=dto.CommentListData} "获取回复列表成功"
// @Failure 404 {object} response.ErrorResponse "评论不存在"
// @Router /comments/{id}/replies [get]
func (h *CommentHandler) GetReplies(c *gin.Context) {
	commentID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的评论ID")
		return
	}

	page, pageSize := parsePagination(c)

	data, err := h.commentService.ListReplies(commentID, page, pageSize)
	if err != nil {
		handleCommentError(c, err)
		return
	}

	response.OK(c, "获取回复列表成功", data)
}

// ListMyComments 我的评论列表
// @Summary 我的评论列表
// @Description 分页返回当前用户发表过的评论，带所属视频信息，按时间倒序
// @Tags 评论
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=dto.CommentListData} "获取我的评论列表成功"
// @Router /comments/my/list [get]
func (h *CommentHandler) ListMyComments(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)
	page, pageSize := parsePagination(c)

	data, err := h.commentService.ListByUser(userID, page, pageSize)
	if err != nil {
		logger.Error("List my comments failed", zap.Error(err))
		response.InternalError(c, "获取我的评论列表失败")
		return
	}

	response.OK(c, "获取我的评论列表成功", data)
}

func handleCommentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrVideoNotFound),
		errors.Is(err, service.ErrParentNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrCommentNoPermission):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrParentVideoMismatch),
		errors.Is(err, service.ErrCommentEmpty),
		errors.Is(err, service.ErrCommentTooLong):
		response.BadRequest(c, err.Error())
	default:
		logger.Error("Comment operation failed", zap.Error(err))
		response.InternalError(c, "操作失败，请稍后重试")
	}
}
