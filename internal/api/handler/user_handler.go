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

type UserHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

func NewUserHandler(userService *service.UserService, authService *service.AuthService) *UserHandler {
	return &UserHandler{
		userService: userService,
		authService: authService,
	}
}

// currentUser 取当前登录用户，取不到时直接写 401 并返回 nil
// token 有效但账号已被注销的情况也落在这里
func (h *UserHandler) currentUser(c *gin.Context) *dto.UserInfo {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "无法获取当前用户")
		return nil
	}
	user, err := h.authService.GetCurrentUser(userID)
	if err != nil {
		response.Unauthorized(c, "无法获取当前用户")
		return nil
	}
	return user
}

// GetMe 当前用户信息
// @Summary 当前用户的完整信息
// @Description 按 token 身份返回账号完整信息，含关注计数和账号状态
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=dto.UserFullInfo} "获取成功"
// @Failure 401 {object} response.ErrorResponse "未授权"
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "无法获取当前用户")
		return
	}

	info, err := h.userService.GetUserByID(userID)
	if err != nil {
		handleUserError(c, err)
		return
	}

	response.OK(c, "获取成功", info)
}

// GetUser 指定用户信息
// @Summary 查看指定用户的完整信息
// @Description 仅本人或管理员可看，其余请求返回 403
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response{data=dto.UserFullInfo} "获取成功"
// @Failure 403 {object} response.ErrorResponse "无权限"
// @Failure 404 {object} response.ErrorResponse "用户不存在"
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	targetID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	viewer := h.currentUser(c)
	if viewer == nil {
		return
	}

	info, err := h.userService.GetUserFor(viewer, targetID)
	if err != nil {
		handleUserError(c, err)
		return
	}

	response.OK(c, "获取成功", info)
}

// UpdateUser 修改用户资料
// @Summary 修改用户资料
// @Description 改用户名、昵称、头像或背景图，仅本人或管理员可用；传空体则原样返回
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param request body dto.UserUpdateRequest true "更新信息"
// @Success 200 {object} response.Response{data=dto.UserFullInfo} "更新成功"
// @Failure 400 {object} response.ErrorResponse "请求参数无效"
// @Failure 403 {object} response.ErrorResponse "无权限"
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	targetID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	var req dto.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	operator := h.currentUser(c)
	if operator == nil {
		return
	}

	info, err := h.userService.UpdateUser(targetID, operator, &req)
	if err != nil {
		handleUserError(c, err)
		return
	}

	response.OK(c, "更新成功", info)
}

// DeleteUser 注销账号
// @Summary 注销指定账号（管理员）
// @Description 软删账号并清理其全部关注关系，对端计数同步修正
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response "注销成功"
// @Failure 404 {object} response.ErrorResponse "用户不存在"
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	targetID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	if err := h.userService.SoftDeleteUser(targetID); err != nil {
		handleUserError(c, err)
		return
	}

	response.OK(c, "注销成功", nil)
}

// RestoreUser 恢复账号
// @Summary 恢复已注销账号（管理员）
// @Description 把软删账号恢复为在用状态，注销时清掉的关注关系不找回
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response "账号已恢复"
// @Failure 404 {object} response.ErrorResponse "用户不存在"
// @Router /users/{id}/restore [post]
func (h *UserHandler) RestoreUser(c *gin.Context) {
	targetID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	if err := h.userService.RestoreUser(targetID); err != nil {
		handleUserError(c, err)
		return
	}

	response.OK(c, "账号已恢复", nil)
}

// SetAdmin 授予管理员
// @Summary 授予管理员角色（管理员）
// @Description 把指定用户的角色置为 admin，即刻生效
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response{data=dto.UserFullInfo} "已授予管理员角色"
// @Failure 404 {object} response.ErrorResponse "用户不存在"
// @Router /users/{id}/set-admin [post]
func (h *UserHandler) SetAdmin(c *gin.Context) {
	targetID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	info, err := h.userService.SetAdminRole(targetID)
	if err != nil {
		handleUserError(c, err)
		return
	}

	response.OK(c, "已授予管理员角色", info)
}

// ListUsers 用户列表
// @Summary 分页查询用户（管理员）
// @Description 按用户名子串、角色和账号状态筛选，含已注销账号
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Param username query string false "用户名筛选（子串匹配）"
// @Param user_role query string false "角色筛选"
// @Param status query string false "账号状态筛选" Enums(active, deleted)
// @Success 200 {object} response.Response{data=dto.UserListData} "获取成功"
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, pageSize := parsePagination(c)

	var username, userRole *string
	if v := c.Query("username"); v != "" {
		username = &v
	}
	if v := c.Query("user_role"); v != "" {
		userRole = &v
	}
	status := c.Query("status")
	if status != "" && status != "active" && status != "deleted" {
		response.BadRequest(c, "无效的账号状态筛选")
		return
	}

	data, err := h.userService.ListUsers(page, pageSize, username, userRole, status)
	if err != nil {
		logger.Error("List users failed", zap.Error(err))
		response.InternalError(c, "获取用户列表失败")
		return
	}

	response.OK(c, "获取成功", data)
}

// parseIDParam 从 URL 路径参数中解析 int64 ID
func parseIDParam(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrUsernameExists):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrUserNoPermission):
		response.Forbidden(c, err.Error())
	default:
		logger.Error("User operation failed", zap.Error(err))
		response.InternalError(c, "操作失败，请稍后重试")
	}
}
