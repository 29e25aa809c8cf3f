package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"reelgo/internal/config"
	infraKafka "reelgo/internal/infra/kafka"
	infraMinio "reelgo/internal/infra/minio"
	"reelgo/internal/media"
	"reelgo/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const workerGroupID = "reelgo-optimize-worker"

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.FilePath); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	if err := infraMinio.Init(&cfg.MinIO); err != nil {
		logger.Fatal("Failed to init minio", zap.Error(err))
	}

	if err := infraKafka.InitProducer(&cfg.Kafka); err != nil {
		logger.Fatal("Failed to init kafka producer", zap.Error(err))
	}
	defer infraKafka.CloseProducer()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runWorker(ctx, &cfg.Kafka)
	logger.Info("Optimize worker stopped")
}

// runWorker 消费优化任务直到 ctx 取消
func runWorker(ctx context.Context, kafkaCfg *config.KafkaConfig) {
	topic := kafkaCfg.Topics["video_optimize"]

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        kafkaCfg.Brokers,
		Topic:          topic,
		GroupID:        workerGroupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	})
	defer reader.Close()

	logger.Info("Optimize worker started",
		zap.String("topic", topic),
		zap.String("group", workerGroupID),
		zap.Strings("brokers", kafkaCfg.Brokers),
	)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("Failed to read kafka message", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		processTask(msg.Value)
	}
}

// processTask 解出任务并执行，结果消息由 HandleTask 负责回报
func processTask(value []byte) {
	var task infraKafka.OptimizeTask
	if err := json.Unmarshal(value, &task); err != nil {
		logger.Error("Failed to unmarshal optimize task",
			zap.Error(err),
			zap.ByteString("value", value),
		)
		return
	}

	logger.Info("Processing optimize task",
		zap.Int64("video_id", task.VideoID),
		zap.String("object", task.ObjectName),
	)

	if err := media.HandleTask(&task); err != nil {
		logger.Error("Optimize task failed", zap.Int64("video_id", task.VideoID), zap.Error(err))
		return
	}
	logger.Info("Optimize task completed", zap.Int64("video_id", task.VideoID))
}
