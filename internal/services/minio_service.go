package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioService interface {
	ObjectStore
	EnsureBucketExists(ctx context.Context) error
}

type minioClient struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinioService serves objects from a bucket. prefix is prepended to every
// key so that an "uploads/" folder inside a shared bucket can act as the root.
func NewMinioService(endpoint, accessKey, secretKey string, useSSL bool, bucket, prefix string) (MinioService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioClient{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}, nil
}

func (m *minioClient) objectName(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: invalid object key %q", ErrPathRejected, key)
	}
	name := strings.TrimPrefix(clean, "/")
	if m.prefix != "" {
		name = m.prefix + "/" + name
	}
	return name, nil
}

func (m *minioClient) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	name, err := m.objectName(key)
	if err != nil {
		return nil, err
	}
	stat, err := m.client.StatObject(ctx, m.bucket, name, minio.StatObjectOptions{})
	if err != nil {
		return nil, translateMinioErr(err)
	}
	return &ObjectInfo{
		Key:         key,
		Size:        stat.Size,
		ModTime:     stat.LastModified,
		ContentType: stat.ContentType,
	}, nil
}

func (m *minioClient) Open(ctx context.Context, key string) (io.ReadSeekCloser, *ObjectInfo, error) {
	name, err := m.objectName(key)
	if err != nil {
		return nil, nil, err
	}
	obj, err := m.client.GetObject(ctx, m.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, translateMinioErr(err)
	}
	// GetObject is lazy; Stat surfaces a missing key.
	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, nil, translateMinioErr(err)
	}
	return obj, &ObjectInfo{
		Key:         key,
		Size:        stat.Size,
		ModTime:     stat.LastModified,
		ContentType: stat.ContentType,
	}, nil
}

func (m *minioClient) Ping(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("bucket %s does not exist", m.bucket)
	}
	return nil
}

func (m *minioClient) EnsureBucketExists(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func translateMinioErr(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return ErrObjectNotFound
	}
	return err
}
