package handler

import (
	"errors"
	"time"

	"reelgo/internal/api/dto"
	"reelgo/internal/api/middleware"
	"reelgo/internal/api/response"
	"reelgo/internal/service"
	"reelgo/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdHandler struct {
	adService *service.AdService
}

func NewAdHandler(adService *service.AdService) *AdHandler {
	return &AdHandler{adService: adService}
}

// GetRandomAd 随机获取一条广告
// @Summary 随机获取广告
// @Description 按展示概率随机返回一条投放中的广告并计入当日配额，未命中或配额已满时 ad 为 null
// @Tags 广告
// @Produce json
// @Param session_id query string false "会话标识，也可通过 X-Session-ID 头传递"
// @Success 200 {object} response.Response "获取成功"
// @Failure 400 {object} response.ErrorResponse "缺少会话标识"
// @Router /ads/random [get]
func (h *AdHandler) GetRandomAd(c *gin.Context) {
	sessionID := c.GetHeader("X-Session-ID")
	if sessionID == "" {
		sessionID = c.Query("session_id")
	}
	if sessionID == "" {
		response.BadRequest(c, "缺少会话标识")
		return
	}

	var userID *int64
	if id, ok := middleware.GetCurrentUserID(c); ok {
		userID = &id
	}

	ad, err := h.adService.Random(userID, sessionID, time.Now())
	if err != nil {
		logger.Error("Get random ad failed", zap.Error(err))
		response.InternalError(c, "获取广告失败")
		return
	}

	if ad == nil {
		response.OK(c, "本次无广告", gin.H{"ad": nil})
		return
	}
	response.OK(c, "获取广告成功", gin.H{"ad": ad})
}

// RecordView 广告展示上报
// @Summary 广告展示上报
// @Description 客户端展示广告后上报一次曝光，当日配额已满时不入库
// @Tags 广告
// @Accept json
// @Produce json
// @Param request body dto.AdViewRequest true "展示信息"
// @Success 200 {object} response.Response "上报成功"
// @Failure 400 {object} response.ErrorResponse "请求参数无效"
// @Failure 404 {object} response.ErrorResponse "广告不存在"
// @Router /ads/views [post]
func (h *AdHandler) RecordView(c *gin.Context) {
	var req dto.AdViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = c.GetHeader("X-Session-ID")
	}
	if sessionID == "" {
		response.BadRequest(c, "缺少会话标识")
		return
	}

	var userID *int64
	if id, ok := middleware.GetCurrentUserID(c); ok {
		userID = &id
	}

	view, recorded, err := h.adService.RecordView(userID, sessionID, req.AdID, time.Now())
	if err != nil {
		handleAdError(c, err)
		return
	}

	if !recorded {
		response.OK(c, "当日展示配额已满", gin.H{"recorded": false})
		return
	}
	response.OK(c, "展示上报成功", gin.H{
		"recorded": true,
		"view":     view,
	})
}

// Click 广告点击上报
// @Summary 广告点击上报
// @Description 记录一次广告点击并返回最新点击数
// @Tags 广告
// @Produce json
// @Param id path int true "广告ID"
// @Success 200 {object} response.Response "上报成功"
// @Failure 404 {object} response.ErrorResponse "广告不存在"
// @Router /ads/{id}/click [post]
func (h *AdHandler) Click(c *gin.Context) {
	adID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的广告ID")
		return
	}

	info, err := h.adService.Click(adID)
	if err != nil {
		handleAdError(c, err)
		return
	}

	response.OK(c, "点击上报成功", gin.H{
		"ad_id":       info.ID,
		"click_count": info.ClickCount,
	})
}

// GetAd 获取广告详情
// @Summary 获取广告详情（管理员）
// @Description 根据广告ID获取广告信息
// @Tags 广告
// @Produce json
// @Security BearerAuth
// @Param id path int true "广告ID"
// @Success 200 {object} response.Response{data=dto.AdInfo} "获取成功"
// @Failure 404 {object} response.ErrorResponse "广告不存在"
// @Router /ads/{id} [get]
func (h *AdHandler) GetAd(c *gin.Context) {
	adID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的广告ID")
		return
	}

	info, err := h.adService.GetByID(adID)
	if err != nil {
		handleAdError(c, err)
		return
	}

	response.OK(c, "获取广告成功", info)
}

// CreateAd 创建广告
// @Summary 创建广告（管理员）
// @Description 创建新广告，默认投放中
// @Tags 广告
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AdCreateRequest true "广告信息"
// @Success 201 {object} response.Response{data=dto.AdInfo} "创建成功"
// @Failure 400 {object} response.ErrorResponse "请求参数无效"
// @Router /ads [post]
func (h *AdHandler) CreateAd(c *gin.Context) {
	var req dto.AdCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	info, err := h.adService.Create(&req)
	if err != nil {
		handleAdError(c, err)
		return
	}

	response.Created(c, "创建广告成功", info)
}

// UpdateAd 更新广告
// @Summary 更新广告（管理员）
// @Description 更新广告信息或上下线状态
// @Tags 广告
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "广告ID"
// @Param request body dto.AdUpdateRequest true "更新信息"
// @Success 200 {object} response.Response{data=dto.AdInfo} "更新成功"
// @Failure 404 {object} response.ErrorResponse "广告不存在"
// @Router /ads/{id} [put]
func (h *AdHandler) UpdateAd(c *gin.Context) {
	adID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的广告ID")
		return
	}

	var req dto.AdUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	info, err := h.adService.Update(adID, &req)
	if err != nil {
		handleAdError(c, err)
		return
	}

	response.OK(c, "更新广告成功", info)
}

// DeleteAd 删除广告
// @Summary 删除广告（管理员）
// @Description 删除广告，历史曝光记录保留用于配额统计
// @Tags 广告
// @Produce json
// @Security BearerAuth
// @Param id path int true "广告ID"
// @Success 200 {object} response.Response "删除成功"
// @Failure 404 {object} response.ErrorResponse "广告不存在"
// @Router /ads/{id} [delete]
func (h *AdHandler) DeleteAd(c *gin.Context) {
	adID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的广告ID")
		return
	}

	if err := h.adService.Delete(adID); err != nil {
		handleAdError(c, err)
		return
	}

	response.OK(c, "删除广告成功", nil)
}

// ListAds 获取广告列表
// @Summary 获取广告列表（管理员）
// @Description 分页获取广告列表
// @Tags 广告
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Param only_active query bool false "仅看投放中" default(false)
// @Success 200 {object} response.Response{data=dto.AdListData} "获取成功"
// @Router /ads [get]
func (h *AdHandler) ListAds(c *gin.Context) {
	page, pageSize := parsePagination(c)
	onlyActive := c.Query("only_active") == "true"

	data, err := h.adService.List(page, pageSize, onlyActive)
	if err != nil {
		logger.Error("List ads failed", zap.Error(err))
		response.InternalError(c, "获取广告列表失败")
		return
	}

	response.OK(c, "获取广告列表成功", data)
}

func handleAdError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAdNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrNoFieldsToUpdate):
		response.BadRequest(c, err.Error())
	default:
		logger.Error("Ad operation failed", zap.Error(err))
		response.InternalError(c, "操作失败，请稍后重试")
	}
}
