package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"reelgo/internal/config"
	"reelgo/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// PublicVideoBucket 公开读的视频服务桶，播放地址和封面地址都指向这里
const PublicVideoBucket = "public-videos"

const initTimeout = 10 * time.Second

var (
	client *minio.Client

	errNotInitialized = errors.New("minio client not initialized")
)

// publicReadPolicy 允许匿名 GetObject 的桶策略
func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}

// ensureBuckets 配置里列出的桶不存在则创建
func ensureBuckets(ctx context.Context, c *minio.Client, buckets []string) error {
	for _, bucket := range buckets {
		exists, err := c.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("check bucket %s: %w", bucket, err)
		}
		if exists {
			continue
		}
		if err := c.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucket, err)
		}
		logger.Info("MinIO bucket created", zap.String("bucket", bucket))
	}
	return nil
}

// Init 初始化客户端，确保桶就绪并把服务桶设为公开读
func Init(cfg *config.MinIOConfig) error {
	c, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	if err := ensureBuckets(ctx, c, cfg.Buckets); err != nil {
		return err
	}
	if err := c.SetBucketPolicy(ctx, PublicVideoBucket, publicReadPolicy(PublicVideoBucket)); err != nil {
		return fmt.Errorf("set public policy for %s: %w", PublicVideoBucket, err)
	}

	client = c
	logger.Info("MinIO connected",
		zap.String("endpoint", cfg.Endpoint),
		zap.Int("buckets", len(cfg.Buckets)),
	)
	return nil
}

// UploadFile 上传对象，返回对象名
func UploadFile(ctx context.Context, bucket, objectName string, reader io.Reader, fileSize int64, contentType string) (string, error) {
	if client == nil {
		return "", errNotInitialized
	}
	_, err := client.PutObject(ctx, bucket, objectName, reader, fileSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload object %s/%s: %w", bucket, objectName, err)
	}
	return objectName, nil
}

// DownloadFile 把对象落到本地文件，目标已存在时覆盖
func DownloadFile(ctx context.Context, bucket, objectName, destPath string) error {
	if client == nil {
		return errNotInitialized
	}
	if err := client.FGetObject(ctx, bucket, objectName, destPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("download object %s/%s: %w", bucket, objectName, err)
	}
	return nil
}

// RemoveFile 删除对象
func RemoveFile(ctx context.Context, bucket, objectName string) error {
	if client == nil {
		return errNotInitialized
	}
	if err := client.RemoveObject(ctx, bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s/%s: %w", bucket, objectName, err)
	}
	return nil
}

// GetPublicURL 拼出对象的公开访问地址，桶需要是公开读
func GetPublicURL(endpoint string, useSSL bool, bucket, objectName string) string {
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, endpoint, bucket, objectName)
}
