package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"reelgo/internal/api/dto"
	"reelgo/internal/repository"
	"reelgo/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// 广告插在第 adInsertInterval 个视频之后
const adInsertInterval = 3

type FeedService struct {
	videoRepo *repository.VideoRepository
	adService *AdService
	redis     *redis.Client

	defaultPageSize int
	maxPageSize     int
	cacheTTL        time.Duration
	adCooldown      time.Duration
}

func NewFeedService(
	videoRepo *repository.VideoRepository,
	adService *AdService,
	redisClient *redis.Client,
	defaultPageSize, maxPageSize int,
	cacheTTL, adCooldown time.Duration,
) *FeedService {
	return &FeedService{
		videoRepo:       videoRepo,
		adService:       adService,
		redis:           redisClient,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		cacheTTL:        cacheTTL,
		adCooldown:      adCooldown,
	}
}

// GetPage 组装一页信息流
// cursor 从 0 开始，返回的视频数不足 pageSize 即到底；
// 每逢第 adInsertInterval 个视频之后询问一次投放决策，冷却标记、
// 当日配额与概率共同决定是否出广告，广告环节出错不拦截视频流
func (s *FeedService) GetPage(ctx context.Context, viewerID *int64, sessionID string, cursor, pageSize int) (*dto.FeedPage, error) {
	if pageSize <= 0 {
		pageSize = s.defaultPageSize
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}
	if cursor < 0 {
		cursor = 0
	}

	videos, err := s.loadVideos(ctx, viewerID, cursor, pageSize)
	if err != nil {
		return nil, err
	}

	hasMore := len(videos) == pageSize

	var pick adPicker
	if sessionID != "" && !s.adRecentlyShown(ctx, sessionID) {
		pick = func() *dto.AdInfo {
			ad, pickErr := s.adService.Random(viewerID, sessionID, time.Now())
			if pickErr != nil {
				logger.Warn("Pick feed ad failed", zap.Error(pickErr))
				return nil
			}
			return ad
		}
	}

	items, placed := assembleFeedItems(videos, pick)
	if placed {
		s.markAdShown(ctx, sessionID)
	}

	page := &dto.FeedPage{
		Items:    items,
		PageSize: pageSize,
		HasMore:  hasMore,
	}
	if hasMore {
		next := cursor + 1
		page.NextCursor = &next
	}
	return page, nil
}

// loadVideos 取一页视频，匿名首页走短时缓存减轻热点查询
func (s *FeedService) loadVideos(ctx context.Context, viewerID *int64, cursor, pageSize int) ([]dto.VideoInfo, error) {
	cacheable := viewerID == nil && cursor == 0 && s.redis != nil && s.cacheTTL > 0
	cacheKey := fmt.Sprintf("feed:videos:c%d:s%d", cursor, pageSize)

	if cacheable {
		if raw, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var cached []dto.VideoInfo
			if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
				return cached, nil
			}
		}
	}

	videos, err := s.videoRepo.ListFeed(cursor*pageSize, pageSize)
	if err != nil {
		return nil, err
	}

	infos := make([]dto.VideoInfo, 0, len(videos))
	for i := range videos {
		infos = append(infos, *toVideoInfo(&videos[i], true))
	}

	if cacheable {
		if raw, err := json.Marshal(infos); err == nil {
			if setErr := s.redis.Set(ctx, cacheKey, raw, s.cacheTTL).Err(); setErr != nil {
				logger.Debug("Cache feed page failed", zap.Error(setErr))
			}
		}
	}
	return infos, nil
}

// adRecentlyShown 会话冷却期内是否已出过广告
// Redis 不可用时按未出过处理，配额兜底在数据库侧
func (s *FeedService) adRecentlyShown(ctx context.Context, sessionID string) bool {
	if s.redis == nil || s.adCooldown <= 0 {
		return false
	}
	n, err := s.redis.Exists(ctx, adShownKey(sessionID)).Result()
	if err != nil {
		logger.Debug("Check ad cooldown failed", zap.Error(err))
		return false
	}
	return n > 0
}

func (s *FeedService) markAdShown(ctx context.Context, sessionID string) {
	if s.redis == nil || s.adCooldown <= 0 {
		return
	}
	if err := s.redis.Set(ctx, adShownKey(sessionID), "1", s.adCooldown).Err(); err != nil {
		logger.Debug("Mark ad cooldown failed", zap.Error(err))
	}
}

func adShownKey(sessionID string) string {
	return "feed:ad_shown:" + sessionID
}

// adPicker 返回一条可投放的广告，无广告可投时返回 nil
type adPicker func() *dto.AdInfo

// assembleFeedItems 视频与广告交织成一页
// 每逢第 adInsertInterval 个视频之后询问一次投放决策，命中即插入；
// 一页最多一条广告，未命中则在下一个插入点继续询问
func assembleFeedItems(videos []dto.VideoInfo, pick adPicker) ([]dto.FeedItem, bool) {
	items := make([]dto.FeedItem, 0, len(videos)+1)
	placed := false
	for i := range videos {
		items = append(items, dto.FeedItem{Type: dto.FeedItemTypeVideo, Video: &videos[i]})
		if placed || pick == nil || (i+1)%adInsertInterval != 0 {
			continue
		}
		if ad := pick(); ad != nil {
			items = append(items, dto.FeedItem{Type: dto.FeedItemTypeAd, Ad: ad})
			placed = true
		}
	}
	return items, placed
}
