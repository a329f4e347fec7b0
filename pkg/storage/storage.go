package storage

import (
	"context"
	"fmt"
	"mime"
	"path"
	"path/filepath"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/1F47E/go-framereel/pkg/config"
	"github.com/1F47E/go-framereel/pkg/meta"
)

// Storage uploads finished videos to an S3 compatible bucket.
type Storage struct {
	client *miniogo.Client
	bucket string
	prefix string
}

func NewStorage(cfg config.Upload) (*Storage, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &Storage{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

func (s *Storage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, miniogo.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// Publish uploads the video at localPath with its metadata as object
// metadata and returns "bucket/key".
func (s *Storage) Publish(ctx context.Context, localPath string, m meta.Metadata) (string, error) {
	key := ObjectKey(s.prefix, m.RunID, localPath)
	_, err := s.client.FPutObject(ctx, s.bucket, key, localPath, miniogo.PutObjectOptions{
		ContentType:  ContentType(localPath),
		UserMetadata: m.Tags(),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filepath.Base(localPath), err)
	}
	return s.bucket + "/" + key, nil
}

// ObjectKey is <prefix>/<run>/<file name>, empty parts left out.
func ObjectKey(prefix, run, localPath string) string {
	return path.Join(prefix, run, filepath.Base(localPath))
}

func ContentType(localPath string) string {
	if t := mime.TypeByExtension(filepath.Ext(localPath)); t != "" {
		return t
	}
	return "application/octet-stream"
}
