package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"reelgo/internal/config"
	infraKafka "reelgo/internal/infra/kafka"
	infraMinio "reelgo/internal/infra/minio"
	"reelgo/pkg/logger"

	"go.uber.org/zap"
)

const workDir = "/tmp/reelgo-optimize"

// HandleTask 处理一个优化任务的完整流程：
//  1. 从 MinIO 下载原始视频
//  2. FFmpeg 统一转为 mp4 (H.264 + AAC, faststart)
//  3. 上传优化结果到 MinIO
//  4. 发送优化结果消息到 Kafka
//
// 上传时视频已经可播，优化失败不影响原始播放地址
func HandleTask(task *infraKafka.OptimizeTask) error {
	taskDir := filepath.Join(workDir, fmt.Sprintf("%d", task.VideoID))
	if err := os.MkdirAll(taskDir, 0755); err != nil {
		return sendFailure(task.VideoID, fmt.Errorf("create work dir: %w", err))
	}
	defer os.RemoveAll(taskDir)

	srcFile := filepath.Join(taskDir, fmt.Sprintf("raw.%s", task.FileFormat))
	dstFile := filepath.Join(taskDir, "output.mp4")

	logger.Info("Optimize task started",
		zap.Int64("video_id", task.VideoID),
		zap.String("object", task.ObjectName),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := infraMinio.DownloadFile(ctx, task.Bucket, task.ObjectName, srcFile); err != nil {
		return sendFailure(task.VideoID, fmt.Errorf("download from minio: %w", err))
	}

	if err := optimizeVideo(srcFile, dstFile); err != nil {
		return sendFailure(task.VideoID, fmt.Errorf("optimize: %w", err))
	}

	stat, err := os.Stat(dstFile)
	if err != nil {
		return sendFailure(task.VideoID, fmt.Errorf("stat output: %w", err))
	}

	bitrate := 0
	if probe, probeErr := Probe(dstFile); probeErr == nil {
		bitrate = probe.Bitrate
	}

	// 优化结果写到原对象旁边，原始对象保留到结果消息处理完
	ext := filepath.Ext(task.ObjectName)
	dstObjectName := strings.TrimSuffix(task.ObjectName, ext) + "_opt.mp4"

	if err := uploadToMinIO(ctx, task.Bucket, dstObjectName, dstFile, "video/mp4"); err != nil {
		return sendFailure(task.VideoID, fmt.Errorf("upload optimized video: %w", err))
	}

	minioCfg := config.GetMinIO()
	playURL := infraMinio.GetPublicURL(minioCfg.Endpoint, minioCfg.UseSSL, task.Bucket, dstObjectName)

	result := &infraKafka.OptimizeResult{
		VideoID:  task.VideoID,
		Status:   "optimized",
		PlayURL:  playURL,
		FileSize: stat.Size(),
		Bitrate:  bitrate,
	}

	return sendResult(result)
}

func optimizeVideo(srcFile, dstFile string) error {
	// H.264 + AAC, 分辨率保持不变, 中等质量 CRF 23
	args := []string{
		"-i", srcFile,
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
		"-y",
		dstFile,
	}

	cmd := exec.Command("ffmpeg", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg optimize failed: %w\noutput: %s", err, string(output))
	}

	logger.Info("FFmpeg optimize completed", zap.String("dst", dstFile))
	return nil
}

func uploadToMinIO(ctx context.Context, bucket, objectName, filePath, contentType string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	_, err = infraMinio.UploadFile(ctx, bucket, objectName, f, info.Size(), contentType)
	return err
}

func sendResult(result *infraKafka.OptimizeResult) error {
	topic := config.GetKafka().Topics["video_optimized"]

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return infraKafka.SendOptimizeResult(ctx, topic, result)
}

func sendFailure(videoID int64, originalErr error) error {
	logger.Error("Optimize task failed", zap.Int64("video_id", videoID), zap.Error(originalErr))

	result := &infraKafka.OptimizeResult{
		VideoID: videoID,
		Status:  "optimize_failed",
		Error:   originalErr.Error(),
	}

	if err := sendResult(result); err != nil {
		logger.Error("Failed to send failure result", zap.Error(err))
		return err
	}
	return originalErr
}
