// Package objectstore provides the object storage client backing audit
// archive exports.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/halcyon-pay/authengine-go/internal/platform/env"
)

type Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	Region        string
	BucketArchive string
}

func ConfigFromEnv() (Config, error) {
	useSSL, err := env.Bool("OBJECTSTORE_USE_SSL", false)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Endpoint:      env.String("OBJECTSTORE_ENDPOINT", ""),
		AccessKey:     env.String("OBJECTSTORE_ACCESS_KEY", ""),
		SecretKey:     env.String("OBJECTSTORE_SECRET_KEY", ""),
		UseSSL:        useSSL,
		Region:        env.String("OBJECTSTORE_REGION", ""),
		BucketArchive: env.String("OBJECTSTORE_BUCKET_AUDIT_ARCHIVE", "authengine-audit-archive"),
	}
	// An unset OBJECTSTORE_ENDPOINT disables the component entirely.
	if !cfg.Enabled() {
		return cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Enabled reports whether an endpoint was configured at all.
func (c Config) Enabled() bool { return c.Endpoint != "" }

func (c Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("OBJECTSTORE_ENDPOINT is required")
	}
	if c.AccessKey == "" {
		return errors.New("OBJECTSTORE_ACCESS_KEY is required")
	}
	if c.SecretKey == "" {
		return errors.New("OBJECTSTORE_SECRET_KEY is required")
	}
	if c.BucketArchive == "" {
		return errors.New("OBJECTSTORE_BUCKET_AUDIT_ARCHIVE is required")
	}
	return nil
}

func NewClient(cfg Config) (*minio.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: newTransport(),
	}
	return minio.New(cfg.Endpoint, opts)
}

func EnsureArchiveBucket(ctx context.Context, client *minio.Client, cfg Config) error {
	exists, err := client.BucketExists(ctx, cfg.BucketArchive)
	if err != nil {
		return fmt.Errorf("archive bucket exists: %w", err)
	}
	if exists {
		return nil
	}
	return client.MakeBucket(ctx, cfg.BucketArchive, minio.MakeBucketOptions{Region: cfg.Region})
}

// Store is the narrow write interface the audit exporter needs.
type Store interface {
	Put(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error
}

type MinioStore struct {
	client *minio.Client
}

func NewMinioStore(client *minio.Client) (*MinioStore, error) {
	if client == nil {
		return nil, fmt.Errorf("minio client is required")
	}
	return &MinioStore{client: client}, nil
}

func (s *MinioStore) Put(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("minio store not initialized")
	}
	opts := minio.PutObjectOptions{ContentType: contentType}
	_, err := s.client.PutObject(ctx, bucket, key, body, size, opts)
	return err
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
