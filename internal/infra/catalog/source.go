package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

//go:embed default_catalog.json
var defaultCatalog []byte

// Source yields the raw catalog document.
type Source interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Default returns the catalog shipped with the binary.
func Default() *Catalog {
	c, err := DecodeBytes(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded document is invalid: %v", err))
	}
	return c
}

// Load reads and validates the document from src. Transient read failures are
// retried; a malformed document is not.
func Load(ctx context.Context, src Source, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxElapsedTime = 30 * time.Second

	var out *Catalog
	op := func() error {
		rc, err := src.Open(ctx)
		if err != nil {
			return err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("catalog: read: %w", err)
		}
		c, err := DecodeBytes(data)
		if err != nil {
			return backoff.Permanent(err)
		}
		out = c
		return nil
	}
	notify := func(err error, next time.Duration) {
		logger.WarnContext(ctx, "catalog load failed, retrying", "source", src.Name(), "error", err, "next_attempt_in", next)
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(policy, ctx), notify); err != nil {
		return nil, fmt.Errorf("catalog: load from %s: %w", src.Name(), err)
	}
	logger.InfoContext(ctx, "catalog loaded", "source", src.Name(),
		"extras", len(out.Pricing.Extras), "menu_items", len(out.Menu.Items))
	return out, nil
}

// EmbeddedSource serves the document compiled into the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) Name() string { return "embedded" }

func (EmbeddedSource) Open(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(defaultCatalog)), nil
}

// FileSource reads the document from the local filesystem.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Open(context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	return f, nil
}

// S3Source reads the document from an S3-compatible bucket.
type S3Source struct {
	client *minio.Client
	bucket string
	key    string
}

// NewS3Source configures a MinIO client for the given endpoint and credentials.
func NewS3Source(endpoint string, useSSL bool, accessKey, secretKey, bucket, key string) (*S3Source, error) {
	cleanEndpoint := strings.TrimSpace(endpoint)
	if cleanEndpoint == "" {
		return nil, errors.New("catalog: s3 endpoint is required")
	}
	if bucket = strings.TrimSpace(bucket); bucket == "" {
		return nil, errors.New("catalog: s3 bucket is required")
	}
	if key = strings.Trim(strings.TrimSpace(key), "/"); key == "" {
		return nil, errors.New("catalog: s3 object key is required")
	}
	client, err := minio.New(parseEndpoint(cleanEndpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(accessKey), strings.TrimSpace(secretKey), ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: create s3 client: %w", err)
	}
	return &S3Source{client: client, bucket: bucket, key: key}, nil
}

func (s *S3Source) Name() string { return "s3://" + s.bucket + "/" + s.key }

func (s *S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("catalog: get object: %w", err)
	}
	// GetObject is lazy; Stat surfaces a missing object before decoding starts.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, backoff.Permanent(fmt.Errorf("catalog: stat object: %w", err))
		}
		return nil, fmt.Errorf("catalog: stat object: %w", err)
	}
	return obj, nil
}

func parseEndpoint(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}
