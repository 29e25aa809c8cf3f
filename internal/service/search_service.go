package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"reelgo/internal/api/dto"
	infraES "reelgo/internal/infra/elasticsearch"
	"reelgo/internal/model"
	"reelgo/internal/repository"
	"reelgo/pkg/logger"

	"go.uber.org/zap"
)

const (
	esSearchTimeout   = 10 * time.Second
	esBulkSyncTimeout = 60 * time.Second
)

type SearchService struct {
	videoRepo *repository.VideoRepository
}

func NewSearchService(videoRepo *repository.VideoRepository) *SearchService {
	return &SearchService{videoRepo: videoRepo}
}

// videoAuthorName 作者未预加载或已不存在时返回空串
func videoAuthorName(v *model.Video) string {
	if v.Author.ID == 0 {
		return ""
	}
	return v.Author.UserName
}

// SearchVideos 搜索视频，ES 不可用时降级到数据库模糊查询
func (s *SearchService) SearchVideos(req *dto.SearchVideoRequest) (*dto.SearchVideoData, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	data, err := s.searchFromES(req)
	if err != nil {
		logger.Warn("ES search failed, fallback to DB", zap.Error(err))
		return s.searchFromDB(req)
	}
	return data, nil
}

// esHit 单条命中，_source 只取文档 ID
type esHit struct {
	Source struct {
		ID int64 `json:"id"`
	} `json:"_source"`
	Highlight map[string][]string `json:"highlight"`
}

type esSearchResult struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []esHit `json:"hits"`
	} `json:"hits"`
}

// videoIDs 命中的视频 ID，保持 ES 返回顺序
func (r *esSearchResult) videoIDs() []int64 {
	ids := make([]int64, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		ids = append(ids, h.Source.ID)
	}
	return ids
}

func (r *esSearchResult) highlights() map[int64]map[string][]string {
	hl := make(map[int64]map[string][]string)
	for _, h := range r.Hits.Hits {
		if len(h.Highlight) > 0 {
			hl[h.Source.ID] = h.Highlight
		}
	}
	return hl
}

func (s *SearchService) searchFromES(req *dto.SearchVideoRequest) (*dto.SearchVideoData, error) {
	queryJSON, err := json.Marshal(s.buildESQuery(req))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), esSearchTimeout)
	defer cancel()

	resp, err := infraES.Search(ctx, infraES.VideosIndex(), bytes.NewReader(queryJSON))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return nil, fmt.Errorf("ES search error: %s", resp.String())
	}

	var result esSearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	ids := result.videoIDs()
	total := result.Hits.Total.Value
	if len(ids) == 0 {
		return s.buildSearchData(nil, nil, total, req.Page, req.PageSize), nil
	}

	// 命中结果回表取最新字段，顺序以 ES 打分为准
	videos, err := s.videoRepo.GetByIDsWithAuthor(ids)
	if err != nil {
		return nil, err
	}

	return s.buildSearchData(orderByIDs(videos, ids), result.highlights(), total, req.Page, req.PageSize), nil
}

// orderByIDs 按给定 ID 顺序重排回表结果，库里已不存在的 ID 直接跳过
func orderByIDs(videos []model.Video, ids []int64) []model.Video {
	byID := make(map[int64]*model.Video, len(videos))
	for i := range videos {
		byID[videos[i].ID] = &videos[i]
	}
	ordered := make([]model.Video, 0, len(ids))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			ordered = append(ordered, *v)
		}
	}
	return ordered
}

// textClause 关键字匹配子句；极短词召回优先，长词要求一半以上词元命中
func textClause(q string) (clause map[string]interface{}, strict bool) {
	match := map[string]interface{}{
		"query":    q,
		"fields":   []string{"title^3", "description^1"},
		"type":     "best_fields",
		"operator": "or",
	}
	if len(q) > 2 {
		match["minimum_should_match"] = "50%"
		strict = true
	}
	return map[string]interface{}{"multi_match": match}, strict
}

// sortClauses 排序规则，默认按相关度再按时间
func sortClauses(sort string) []interface{} {
	switch sort {
	case "time":
		return []interface{}{
			map[string]interface{}{"created_at": map[string]string{"order": "desc"}},
		}
	case "hot":
		return []interface{}{
			map[string]interface{}{"hot_score": map[string]string{"order": "desc"}},
		}
	default:
		return []interface{}{
			map[string]interface{}{"_score": map[string]string{"order": "desc"}},
			map[string]interface{}{"created_at": map[string]string{"order": "desc"}},
		}
	}
}

func highlightClause() map[string]interface{} {
	return map[string]interface{}{
		"fields": map[string]interface{}{
			"title":       map[string]interface{}{},
			"description": map[string]interface{}{},
		},
		"pre_tags":  []string{"<em>"},
		"post_tags": []string{"</em>"},
	}
}

func (s *SearchService) buildESQuery(req *dto.SearchVideoRequest) map[string]interface{} {
	filters := []interface{}{
		map[string]interface{}{"term": map[string]interface{}{"is_private": false}},
	}
	if req.AuthorID != nil {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"author_id": *req.AuthorID}})
	}
	if req.VideoID != nil {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"id": *req.VideoID}})
	}

	boolQ := map[string]interface{}{
		"filter": filters,
		"must":   []interface{}{},
	}

	keyword := strings.TrimSpace(req.Q)
	if keyword != "" {
		clause, strict := textClause(keyword)
		if strict {
			boolQ["must"] = []interface{}{clause}
		} else {
			boolQ["should"] = []interface{}{clause}
			boolQ["minimum_should_match"] = 1
		}
	}

	query := map[string]interface{}{
		"query":   map[string]interface{}{"bool": boolQ},
		"_source": []string{"id"},
		"from":    (req.Page - 1) * req.PageSize,
		"size":    req.PageSize,
		"sort":    sortClauses(req.Sort),
	}
	if keyword != "" {
		query["highlight"] = highlightClause()
	}
	return query
}

func (s *SearchService) buildSearchData(videos []model.Video, highlights map[int64]map[string][]string, total int64, page, pageSize int) *dto.SearchVideoData {
	items := make([]dto.SearchVideoInfo, 0, len(videos))
	for i := range videos {
		v := &videos[i]
		items = append(items, dto.SearchVideoInfo{
			ID:           v.ID,
			AuthorID:     v.AuthorID,
			AuthorName:   videoAuthorName(v),
			Title:        v.Title,
			Description:  v.Description,
			PlayURL:      v.PlayURL,
			CoverURL:     v.CoverURL,
			ViewCount:    v.ViewCount,
			LikeCount:    v.LikeCount,
			CommentCount: v.CommentCount,
			CreatedAt:    v.CreatedAt,
			Highlight:    highlights[v.ID],
		})
	}

	return &dto.SearchVideoData{
		Videos:   items,
		PageInfo: dto.NewPageInfo(total, page, pageSize),
	}
}

// searchFromDB 数据库兜底检索，只有子串匹配，没有高亮和热度排序
func (s *SearchService) searchFromDB(req *dto.SearchVideoRequest) (*dto.SearchVideoData, error) {
	skip := (req.Page - 1) * req.PageSize

	var search *string
	if q := strings.TrimSpace(req.Q); q != "" {
		search = &q
	}

	videos, total, err := s.videoRepo.ListVideos(skip, req.PageSize, req.AuthorID, false, search, true)
	if err != nil {
		return nil, err
	}

	if req.VideoID != nil {
		filtered := make([]model.Video, 0, 1)
		total = 0
		for i := range videos {
			if videos[i].ID == *req.VideoID {
				filtered = append(filtered, videos[i])
				total = 1
				break
			}
		}
		videos = filtered
	}

	return s.buildSearchData(videos, nil, total, req.Page, req.PageSize), nil
}

// RebuildIndex 全量重建公开视频索引，管理端手动触发
// 日常的单条同步由视频服务在写路径上顺带完成
func (s *SearchService) RebuildIndex() (synced, failed int, err error) {
	videos, _, err := s.videoRepo.ListVideos(0, 10000, nil, false, nil, true)
	if err != nil {
		return 0, 0, err
	}
	if len(videos) == 0 {
		return 0, 0, nil
	}

	authorNames := make(map[int64]string, len(videos))
	for i := range videos {
		if name := videoAuthorName(&videos[i]); name != "" {
			authorNames[videos[i].AuthorID] = name
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), esBulkSyncTimeout)
	defer cancel()

	return infraES.BulkSyncVideos(ctx, videos, authorNames)
}
