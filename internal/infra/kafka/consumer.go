package kafka

import (
	"context"
	"encoding/json"
	"time"

	"reelgo/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// readBackoff 读失败后的重试间隔
const readBackoff = time.Second

// ResultHandler 处理优化结果的回调函数
type ResultHandler func(result *OptimizeResult) error

// handleResultMessage 解出结果并交给回调，坏消息记日志后跳过
func handleResultMessage(msg kafka.Message, handler ResultHandler) {
	var result OptimizeResult
	if err := json.Unmarshal(msg.Value, &result); err != nil {
		logger.Error("Failed to unmarshal optimize result",
			zap.Error(err),
			zap.ByteString("value", msg.Value),
		)
		return
	}

	logger.Info("Received optimize result",
		zap.Int64("video_id", result.VideoID),
		zap.String("status", result.Status),
	)

	if err := handler(&result); err != nil {
		logger.Error("Failed to handle optimize result",
			zap.Int64("video_id", result.VideoID),
			zap.Error(err),
		)
	}
}

// StartOptimizeResultConsumer 启动优化结果消费者（阻塞，需在 goroutine 中运行）
// ctx 取消后会自动停止
func StartOptimizeResultConsumer(ctx context.Context, brokers []string, topic, groupID string, handler ResultHandler) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	})

	defer func() {
		if err := reader.Close(); err != nil {
			logger.Error("Failed to close kafka consumer", zap.Error(err))
		}
		logger.Info("Kafka optimize result consumer stopped")
	}()

	logger.Info("Kafka optimize result consumer started",
		zap.String("topic", topic),
		zap.String("group", groupID),
	)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("Failed to read kafka message", zap.Error(err))
			time.Sleep(readBackoff)
			continue
		}
		handleResultMessage(msg, handler)
	}
}
