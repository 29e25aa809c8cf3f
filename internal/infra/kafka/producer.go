package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"reelgo/internal/config"
	"reelgo/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var (
	producer *kafka.Writer

	errProducerNotInitialized = errors.New("kafka producer not initialized")
)

// OptimizeTask 视频优化任务消息体
// 上传后视频立即可播，优化（统一转 H.264/AAC、faststart）由 worker 异步完成
type OptimizeTask struct {
	VideoID    int64  `json:"video_id"`
	ObjectName string `json:"object_name"`
	Bucket     string `json:"bucket"`
	FileFormat string `json:"file_format"`
	FileSize   int64  `json:"file_size"`
}

// OptimizeResult 视频优化结果消息体
type OptimizeResult struct {
	VideoID  int64  `json:"video_id"`
	Status   string `json:"status"`
	PlayURL  string `json:"play_url,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
	Bitrate  int    `json:"bitrate,omitempty"`
	Error    string `json:"error,omitempty"`
}

// videoKey 同一视频的消息落在同一分区，任务和结果各自保持有序
func videoKey(videoID int64) []byte {
	return []byte(fmt.Sprintf("video-%d", videoID))
}

// InitProducer 初始化 Kafka 生产者
func InitProducer(cfg *config.KafkaConfig) error {
	producer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	logger.Info("Kafka producer initialized",
		zap.Strings("brokers", cfg.Brokers),
	)

	return nil
}

// send 序列化消息体并写入指定 topic
func send(ctx context.Context, topic string, videoID int64, payload interface{}) error {
	if producer == nil {
		return errProducerNotInitialized
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal kafka payload: %w", err)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   videoKey(videoID),
		Value: value,
	}
	if err := producer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}
	return nil
}

// SendOptimizeTask 投递一条视频优化任务
func SendOptimizeTask(ctx context.Context, topic string, task *OptimizeTask) error {
	if err := send(ctx, topic, task.VideoID, task); err != nil {
		return err
	}

	logger.Info("Optimize task sent",
		zap.Int64("video_id", task.VideoID),
		zap.String("topic", topic),
		zap.String("object", task.ObjectName),
	)
	return nil
}

// SendOptimizeResult 回报一条优化结果
func SendOptimizeResult(ctx context.Context, topic string, result *OptimizeResult) error {
	return send(ctx, topic, result.VideoID, result)
}

// CloseProducer 关闭生产者
func CloseProducer() error {
	if producer == nil {
		return nil
	}
	logger.Info("Kafka producer closed")
	return producer.Close()
}
