// Package minio stores raw ruling documents and archived pipeline
// artifacts in object storage.
package minio

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/turtacn/CaseLaw-Intelligence/internal/config"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

// Default bucket names when config leaves them empty.
const (
	DefaultRawBucket       = "caselaw-raw"
	DefaultArtifactsBucket = "caselaw-artifacts"
)

// StorageAPI is the narrow object-store surface the repositories use.
// Client implements it over minio-go; tests substitute fakes.
type StorageAPI interface {
	ListObjects(ctx context.Context, bucket, prefix string) <-chan minio.ObjectInfo
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error
	StatObject(ctx context.Context, bucket, key string) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucket, key string) error
	PresignedGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}

// Client wraps minio-go with bucket bootstrap and logging.
type Client struct {
	api    *minio.Client
	config config.MinIOConfig
	logger logging.Logger
}

// NewClient connects to the endpoint and ensures both buckets exist.
func NewClient(ctx context.Context, cfg config.MinIOConfig, log logging.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.InvalidParam("minio.endpoint")
	}
	if cfg.RawBucket == "" {
		cfg.RawBucket = DefaultRawBucket
	}
	if cfg.ArtifactsBucket == "" {
		cfg.ArtifactsBucket = DefaultArtifactsBucket
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	api, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "create minio client")
	}

	c := &Client{api: api, config: cfg, logger: log.Named("minio")}

	ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	for _, bucket := range []string{cfg.RawBucket, cfg.ArtifactsBucket} {
		if err := c.ensureBucket(ensureCtx, bucket); err != nil {
			return nil, err
		}
	}

	log.Info("minio connected",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("raw_bucket", cfg.RawBucket),
		logging.String("artifacts_bucket", cfg.ArtifactsBucket))
	return c, nil
}

func (c *Client) ensureBucket(ctx context.Context, bucket string) error {
	exists, err := c.api.BucketExists(ctx, bucket)
	if err != nil {
		return errors.Wrapf(err, errors.ErrCodeServiceUnavailable, "check bucket %s", bucket)
	}
	if exists {
		return nil
	}
	if err := c.api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return errors.Wrapf(err, errors.ErrCodeStorageError, "create bucket %s", bucket)
	}
	c.logger.Info("bucket created", logging.String("bucket", bucket))
	return nil
}

// RawBucket returns the configured raw-document bucket name.
func (c *Client) RawBucket() string { return c.config.RawBucket }

// ArtifactsBucket returns the configured artifacts bucket name.
func (c *Client) ArtifactsBucket() string { return c.config.ArtifactsBucket }

// StorageAPI implementation.

func (c *Client) ListObjects(ctx context.Context, bucket, prefix string) <-chan minio.ObjectInfo {
	return c.api.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true})
}

func (c *Client) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := c.api.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (c *Client) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	_, err := c.api.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

func (c *Client) StatObject(ctx context.Context, bucket, key string) (minio.ObjectInfo, error) {
	return c.api.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
}

func (c *Client) RemoveObject(ctx context.Context, bucket, key string) error {
	return c.api.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{})
}

func (c *Client) PresignedGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = c.config.PresignExpiry
	}
	if expiry <= 0 {
		expiry = time.Hour
	}
	u, err := c.api.PresignedGetObject(ctx, bucket, key, expiry, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
