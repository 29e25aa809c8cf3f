package service

import (
	"errors"
	"math/rand"
	"time"

	"reelgo/internal/api/dto"
	"reelgo/internal/model"
	"reelgo/internal/repository"
	"reelgo/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrAdNotFound = errors.New("广告不存在")

// 配额统计使用的日期格式
const adViewDateLayout = "2006-01-02"

type AdService struct {
	adRepo     *repository.AdRepository
	adViewRepo *repository.AdViewRepository

	dailyLimit      int
	showProbability float64

	// 测试时替换成固定值
	rng func() float64
}

func NewAdService(adRepo *repository.AdRepository, adViewRepo *repository.AdViewRepository, dailyLimit int, showProbability float64) *AdService {
	return &AdService{
		adRepo:          adRepo,
		adViewRepo:      adViewRepo,
		dailyLimit:      dailyLimit,
		showProbability: showProbability,
		rng:             rand.Float64,
	}
}

// Random 按概率随机取一条投放中的广告并记录展示
// 以下情况返回 nil：会话当日配额已满、概率未命中、无可投广告
func (s *AdService) Random(userID *int64, sessionID string, now time.Time) (*dto.AdInfo, error) {
	if sessionID == "" {
		return nil, nil
	}

	viewDate := now.Format(adViewDateLayout)
	count, err := s.adViewRepo.CountBySessionAndDate(sessionID, viewDate)
	if err != nil {
		return nil, err
	}
	if count >= int64(s.dailyLimit) {
		return nil, nil
	}

	if s.rng() >= s.showProbability {
		return nil, nil
	}

	ad, err := s.adRepo.Random()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	view := &model.AdView{
		AdID:      ad.ID,
		UserID:    userID,
		SessionID: sessionID,
		ViewDate:  viewDate,
	}
	created, err := s.adViewRepo.CreateUnderQuota(view, s.dailyLimit)
	if err != nil {
		return nil, err
	}
	if !created {
		// 并发请求抢先用完了配额
		logger.Debug("Ad view quota exhausted concurrently", zap.String("session_id", sessionID))
		return nil, nil
	}

	ad.ViewCount++
	return toAdInfo(ad), nil
}

// RecordView 客户端上报一次广告展示，当日配额内才写入
// 返回是否入库；配额已满返回 false，不作为错误处理
func (s *AdService) RecordView(userID *int64, sessionID string, adID int64, now time.Time) (*dto.AdViewInfo, bool, error) {
	ad, err := s.adRepo.GetByID(adID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrAdNotFound
		}
		return nil, false, err
	}

	view := &model.AdView{
		AdID:      ad.ID,
		UserID:    userID,
		SessionID: sessionID,
		ViewDate:  now.Format(adViewDateLayout),
	}
	created, err := s.adViewRepo.CreateUnderQuota(view, s.dailyLimit)
	if err != nil {
		return nil, false, err
	}
	if !created {
		return nil, false, nil
	}

	return &dto.AdViewInfo{
		ID:        view.ID,
		AdID:      view.AdID,
		UserID:    view.UserID,
		SessionID: view.SessionID,
		ViewDate:  view.ViewDate,
		ViewedAt:  view.ViewedAt,
	}, true, nil
}

// Click 广告点击计数，返回落地页信息
func (s *AdService) Click(adID int64) (*dto.AdInfo, error) {
	if err := s.adRepo.IncrementClickCount(adID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdNotFound
		}
		return nil, err
	}

	ad, err := s.adRepo.GetByID(adID)
	if err != nil {
		return nil, err
	}
	return toAdInfo(ad), nil
}

// GetByID 广告详情
func (s *AdService) GetByID(adID int64) (*dto.AdInfo, error) {
	ad, err := s.adRepo.GetByID(adID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdNotFound
		}
		return nil, err
	}
	return toAdInfo(ad), nil
}

// Create 新建广告（管理端）
func (s *AdService) Create(req *dto.AdCreateRequest) (*dto.AdInfo, error) {
	ad := &model.Ad{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		BrandName:   req.BrandName,
		BrandLogo:   req.BrandLogo,
		TargetURL:   req.TargetURL,
		IsActive:    true,
	}
	if req.IsActive != nil {
		ad.IsActive = *req.IsActive
	}

	if err := s.adRepo.Create(ad); err != nil {
		return nil, err
	}
	return toAdInfo(ad), nil
}

// Update 更新广告（管理端）
func (s *AdService) Update(adID int64, req *dto.AdUpdateRequest) (*dto.AdInfo, error) {
	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.BrandName != nil {
		updates["brand_name"] = *req.BrandName
	}
	if req.BrandLogo != nil {
		updates["brand_logo"] = *req.BrandLogo
	}
	if req.TargetURL != nil {
		updates["target_url"] = *req.TargetURL
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	ad, err := s.adRepo.Update(adID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdNotFound
		}
		return nil, err
	}
	return toAdInfo(ad), nil
}

// Delete 删除广告（管理端），历史展示记录保留用于配额统计
func (s *AdService) Delete(adID int64) error {
	if err := s.adRepo.Delete(adID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAdNotFound
		}
		return err
	}
	return nil
}

// List 广告列表（管理端分页）
func (s *AdService) List(page, pageSize int, onlyActive bool) (*dto.AdListData, error) {
	skip := (page - 1) * pageSize
	ads, total, err := s.adRepo.List(skip, pageSize, onlyActive)
	if err != nil {
		return nil, err
	}

	items := make([]dto.AdInfo, 0, len(ads))
	for i := range ads {
		items = append(items, *toAdInfo(&ads[i]))
	}

	return &dto.AdListData{
		Ads:      items,
		PageInfo: dto.NewPageInfo(total, page, pageSize),
	}, nil
}

func toAdInfo(ad *model.Ad) *dto.AdInfo {
	return &dto.AdInfo{
		ID:          ad.ID,
		Title:       ad.Title,
		Description: ad.Description,
		ImageURL:    ad.ImageURL,
		BrandName:   ad.BrandName,
		BrandLogo:   ad.BrandLogo,
		TargetURL:   ad.TargetURL,
		IsActive:    ad.IsActive,
		ViewCount:   ad.ViewCount,
		ClickCount:  ad.ClickCount,
		CreatedAt:   ad.CreatedAt,
		UpdatedAt:   ad.UpdatedAt,
	}
}
