package elasticsearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reelgo/internal/config"
	"reelgo/pkg/logger"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

var (
	client *elasticsearch.Client

	errNotInitialized = errors.New("elasticsearch client not initialized")
)

// ready 返回可用的客户端，未初始化时报错，调用方不用各自判空
func ready() (*elasticsearch.Client, error) {
	if client == nil {
		return nil, errNotInitialized
	}
	return client, nil
}

// normalizeHosts 去掉空白项并为裸地址补上 http 协议头
func normalizeHosts(raw []string) []string {
	hosts := make([]string, 0, len(raw))
	for _, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if !strings.HasPrefix(h, "http") {
			h = "http://" + h
		}
		hosts = append(hosts, h)
	}
	return hosts
}

// Init 初始化 Elasticsearch 客户端并做一次连通性探测
func Init(cfg *config.ElasticsearchConfig) error {
	hosts := normalizeHosts(cfg.Hosts)
	if len(hosts) == 0 {
		return fmt.Errorf("elasticsearch hosts is empty")
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     hosts,
		RetryOnStatus: []int{502, 503, 504},
		MaxRetries:    3,
		RetryBackoff:  func(i int) time.Duration { return time.Duration(i) * time.Second },
	})
	if err != nil {
		return fmt.Errorf("create elasticsearch client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	resp, err := es.Ping(es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping elasticsearch: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", resp.String())
	}

	client = es
	logger.Info("Elasticsearch connected", zap.Strings("hosts", hosts))
	return nil
}

// Search 执行搜索，body 为 JSON 查询体
func Search(ctx context.Context, index string, body io.Reader) (*esapi.Response, error) {
	es, err := ready()
	if err != nil {
		return nil, err
	}
	return es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(body),
	)
}

// Index 写入或覆盖一篇文档
func Index(ctx context.Context, index, id string, body io.Reader) (*esapi.Response, error) {
	es, err := ready()
	if err != nil {
		return nil, err
	}
	return es.Index(
		index,
		body,
		es.Index.WithContext(ctx),
		es.Index.WithDocumentID(id),
	)
}

// Delete 删除一篇文档
func Delete(ctx context.Context, index, id string) (*esapi.Response, error) {
	es, err := ready()
	if err != nil {
		return nil, err
	}
	return es.Delete(
		index,
		id,
		es.Delete.WithContext(ctx),
	)
}

// IndicesCreate 创建索引
func IndicesCreate(ctx context.Context, index string, body io.Reader) (*esapi.Response, error) {
	es, err := ready()
	if err != nil {
		return nil, err
	}
	return es.Indices.Create(
		index,
		es.Indices.Create.WithContext(ctx),
		es.Indices.Create.WithBody(body),
	)
}

// IndicesExists 检查索引是否存在
func IndicesExists(ctx context.Context, index string) (bool, error) {
	es, err := ready()
	if err != nil {
		return false, err
	}
	resp, err := es.Indices.Exists(
		[]string{index},
		es.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

// Bulk 批量写入，body 为 NDJSON
func Bulk(ctx context.Context, body io.Reader) (*esapi.Response, error) {
	es, err := ready()
	if err != nil {
		return nil, err
	}
	return es.Bulk(
		body,
		es.Bulk.WithContext(ctx),
	)
}

// Close 丢弃客户端引用，之后的调用都会拿到未初始化错误
func Close() error {
	client = nil
	logger.Info("Elasticsearch client closed")
	return nil
}
