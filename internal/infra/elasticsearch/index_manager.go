package elasticsearch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"reelgo/internal/config"
	"reelgo/pkg/logger"

	"go.uber.org/zap"
)

const defaultVideosIndex = "videos"

// videosIndexMapping 视频索引结构，标题和简介走 IK 分词以支持中文检索
const videosIndexMapping = `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0,
    "analysis": {
      "analyzer": {
        "ik_max_word_analyzer": {"type": "custom", "tokenizer": "ik_max_word", "filter": ["lowercase"]},
        "ik_smart_analyzer": {"type": "custom", "tokenizer": "ik_smart", "filter": ["lowercase"]}
      }
    }
  },
  "mappings": {
    "properties": {
      "id": {"type": "long"},
      "author_id": {"type": "long"},
      "author_name": {"type": "keyword"},
      "title": {
        "type": "text",
        "analyzer": "ik_max_word",
        "search_analyzer": "ik_smart",
        "fields": {"keyword": {"type": "keyword", "ignore_above": 200}}
      },
      "description": {"type": "text", "analyzer": "ik_max_word", "search_analyzer": "ik_smart"},
      "is_private": {"type": "boolean"},
      "view_count": {"type": "long"},
      "like_count": {"type": "long"},
      "dislike_count": {"type": "long"},
      "comment_count": {"type": "long"},
      "hot_score": {"type": "float"},
      "duration": {"type": "integer"},
      "created_at": {"type": "date", "format": "strict_date_optional_time||epoch_millis"},
      "updated_at": {"type": "date", "format": "strict_date_optional_time||epoch_millis"}
    }
  }
}`

// VideosIndex 返回视频索引名，未在配置里指定时用默认名
func VideosIndex() string {
	if name := config.GetElasticsearch().Index["videos"]; name != "" {
		return name
	}
	return defaultVideosIndex
}

// ensureIndex 索引不存在时按给定 mapping 创建，已存在则原样保留
func ensureIndex(ctx context.Context, name, mapping string) error {
	exists, err := IndicesExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", name, err)
	}
	if exists {
		logger.Info("Elasticsearch index already exists", zap.String("index", name))
		return nil
	}

	resp, err := IndicesCreate(ctx, name, strings.NewReader(mapping))
	if err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("create index %s failed: %s", name, resp.String())
	}

	logger.Info("Elasticsearch index created", zap.String("index", name))
	return nil
}

// InitIndexes 启动时确保全部索引就绪
func InitIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return ensureIndex(ctx, VideosIndex(), videosIndexMapping)
}
