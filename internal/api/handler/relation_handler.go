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

type RelationHandler struct {
	relationService *service.RelationService
}

func NewRelationHandler(relationService *service.RelationService) *RelationHandler {
	return &RelationHandler{relationService: relationService}
}

// relationListFn 分页取某个用户的关系列表
type relationListFn func(userID int64, page, pageSize int) (*dto.RelationListData, error)

// respondRelationList 四个列表端点共用的出口
func respondRelationList(c *gin.Context, userID int64, list relationListFn, okMsg string) {
	page, pageSize := parsePagination(c)

	data, err := list(userID, page, pageSize)
	if err != nil {
		handleRelationError(c, err)
		return
	}
	response.OK(c, okMsg, data)
}

// Follow 关注用户
// @Summary 关注目标用户
// @Description 给目标用户加关注并同步修正双方计数，重复关注按无操作处理
// @Tags 关注
// @Produce json
// @Security BearerAuth
// @Param id path int true "目标用户ID"
// @Success 200 {object} response.Response{data=dto.FollowResult} "关注成功"
// @Failure 400 {object} response.ErrorResponse "不能关注自己"
// @Failure 404 {object} response.ErrorResponse "用户不存在"
// @Router /relations/follow/{id} [post]
func (h *RelationHandler) Follow(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)
	targetID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	result, created, err := h.relationService.Follow(currentUserID, targetID)
	if err != nil {
		handleRelationError(c, err)
		return
	}

	msg := "关注成功"
	if !created {
		msg = "已关注该用户"
	}
	response.OK(c, msg, result)
}

// Unfollow 取消关注
// @Summary 取消关注目标用户
// @Description 删除关注关系并同步修正双方计数，本来就没关注时按无操作处理
// @Tags 关注
// @Produce json
// @Security BearerAuth
// @Param id path int true "目标用户ID"
// @Success 200 {object} response.Response{data=dto.FollowResult} "取消关注成功"
// @Failure 404 {object} response.ErrorResponse "用户不存在"
// @Router /relations/unfollow/{id} [post]
func (h *RelationHandler) Unfollow(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)
	targetID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	result, removed, err := h.relationService.Unfollow(currentUserID, targetID)
	if err != nil {
		handleRelationError(c, err)
		return
	}

	msg := "取消关注成功"
	if !removed {
		msg = "未关注该用户"
	}
	response.OK(c, msg, result)
}

// GetFollowing 关注列表
// @Summary 某用户的关注列表
// @Description 分页返回该用户关注的人，按关注时间倒序
// @Tags 关注
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=dto.RelationListData} "获取成功"
// @Failure 404 {object} response.ErrorResponse "用户不存在"
// @Router /relations/following/{id} [get]
func (h *RelationHandler) GetFollowing(c *gin.Context) {
	userID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的用户ID")
		return
	}
	respondRelationList(c, userID, h.relationService.GetFollowingList, "获取关注列表成功")
}

// GetFollowers 粉丝列表
// @Summary 某用户的粉丝列表
// @Description 分页返回关注该用户的人，按关注时间倒序
// @Tags 关注
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=dto.RelationListData} "获取成功"
// @Failure 404 {object} response.ErrorResponse "用户不存在"
// @Router /relations/followers/{id} [get]
func (h *RelationHandler) GetFollowers(c *gin.Context) {
	userID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的用户ID")
		return
	}
	respondRelationList(c, userID, h.relationService.GetFollowerList, "获取粉丝列表成功")
}

// GetMyFollowing 我的关注列表
// @Summary 我的关注列表
// @Description 分页返回当前用户关注的人
// @Tags 关注
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=dto.RelationListData} "获取成功"
// @Router /relations/following/my/list [get]
func (h *RelationHandler) GetMyFollowing(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)
	respondRelationList(c, currentUserID, h.relationService.GetFollowingList, "获取我的关注列表成功")
}

// GetMyFollowers 我的粉丝列表
// @Summary 我的粉丝列表
// @Description 分页返回关注当前用户的人
// @Tags 关注
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=dto.RelationListData} "获取成功"
// @Router /relations/followers/my/list [get]
func (h *RelationHandler) GetMyFollowers(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)
	respondRelationList(c, currentUserID, h.relationService.GetFollowerList, "获取我的粉丝列表成功")
}

// GetFollowStatus 单个关注状态
// @Summary 查询对某用户的关注状态
// @Description 返回当前用户是否关注了目标用户
// @Tags 关注
// @Produce json
// @Security BearerAuth
// @Param id path int true "目标用户ID"
// @Success 200 {object} response.Response "查询关注状态成功"
// @Router /relations/following/{id}/status [get]
func (h *RelationHandler) GetFollowStatus(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)
	targetID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	isFollowing, err := h.relationService.GetFollowStatus(currentUserID, targetID)
	if err != nil {
		logger.Error("Get follow status failed", zap.Error(err))
		response.InternalError(c, "查询关注状态失败")
		return
	}

	response.OK(c, "查询关注状态成功", gin.H{
		"is_following": isFollowing,
		"follow_id":    targetID,
	})
}

// GetMutualFollows 互关列表
// @Summary 互相关注列表
// @Description 分页返回与当前用户互相关注的人
// @Tags 关注
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=dto.RelationListData} "获取成功"
// @Router /relations/mutual [get]
func (h *RelationHandler) GetMutualFollows(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)
	respondRelationList(c, currentUserID, h.relationService.GetMutualFollows, "获取互相关注列表成功")
}

// BatchFollowStatus 批量关注状态
// @Summary 批量查询关注状态
// @Description 一次查询当前用户对一批用户的关注状态，返回 user_id 到布尔值的映射
// @Tags 关注
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BatchFollowStatusRequest true "目标用户ID列表"
// @Success 200 {object} response.Response "批量查询关注状态成功"
// @Router /relations/batch/status [post]
func (h *RelationHandler) BatchFollowStatus(c *gin.Context) {
	currentUserID, _ := middleware.GetCurrentUserID(c)

	var req dto.BatchFollowStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	statusMap, err := h.relationService.BatchCheckFollowStatus(currentUserID, req.UserIDs)
	if err != nil {
		logger.Error("Batch follow status failed", zap.Error(err))
		response.InternalError(c, "批量查询关注状态失败")
		return
	}

	response.OK(c, "批量查询关注状态成功", gin.H{
		"follow_status": statusMap,
	})
}

// parsePagination 解析 page / page_size，越界回落到默认值
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func handleRelationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCannotFollowSelf):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, err.Error())
	default:
		logger.Error("Relation operation failed", zap.Error(err))
		response.InternalError(c, "操作失败，请稍后重试")
	}
}
