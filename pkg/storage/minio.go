// Package storage 通过 MinIO 为附件生成临时下载地址。
package storage

import (
	"context"
	"fmt"
	"net/url"
	"qa-session-go/internal/config"
	"qa-session-go/internal/model"
	"qa-session-go/pkg/log"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// presigner 是 minio.Client 中被用到的部分。
type presigner interface {
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
}

// AttachmentResolver 为只带对象键的附件补全预签名下载地址。
type AttachmentResolver struct {
	client presigner
	bucket string
	expiry time.Duration
}

// NewAttachmentResolver 初始化 MinIO 客户端。
func NewAttachmentResolver(cfg config.MinIOConfig) (*AttachmentResolver, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 MinIO 客户端失败: %w", err)
	}
	log.Infof("MinIO 客户端初始化成功, bucket=%s", cfg.BucketName)
	return &AttachmentResolver{client: client, bucket: cfg.BucketName, expiry: cfg.URLExpiry}, nil
}

// Resolve 返回补全了 URL 的附件副本；单个附件签名失败时保留原样。
func (r *AttachmentResolver) Resolve(ctx context.Context, attachments []model.Attachment) []model.Attachment {
	out := make([]model.Attachment, len(attachments))
	copy(out, attachments)
	for i := range out {
		if out[i].URL != "" || out[i].ObjectKey == "" {
			continue
		}
		u, err := r.client.PresignedGetObject(ctx, r.bucket, out[i].ObjectKey, r.expiry, nil)
		if err != nil {
			log.Errorf("[Storage] 生成附件下载地址失败: %s, err=%v", out[i].ObjectKey, err)
			continue
		}
		out[i].URL = u.String()
	}
	return out
}
