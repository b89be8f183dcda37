// Package minio provides a BlobStore backed by an S3-compatible bucket.
package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
	"github.com/custodia-labs/jelly-cli/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore lists and downloads jelly images with minio-go.
type BlobStore struct {
	client *minio.Client
	bucket string
}

// New creates a BlobStore from storage settings.
func New(cfg domain.StorageSettings) (*BlobStore, error) {
	if !cfg.IsConfigured() {
		return nil, fmt.Errorf("blob store: %w", domain.ErrNotConfigured)
	}

	endpoint, secure, err := parseEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	return &BlobStore{client: client, bucket: cfg.Bucket}, nil
}

// List returns every object under path, recursively.
func (s *BlobStore) List(ctx context.Context, path string) ([]domain.ItemRef, error) {
	prefix := strings.TrimSuffix(path, "/") + "/"

	var refs []domain.ItemRef
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, classify(obj.Err)
		}
		// Zero-byte "folder" markers are not images.
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		refs = append(refs, domain.ItemRef{Path: obj.Key, Size: obj.Size})
	}
	return refs, nil
}

// Download reads one object, stopping once it exceeds maxBytes.
func (s *BlobStore) Download(ctx context.Context, ref domain.ItemRef, maxBytes int64) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, ref.Path, minio.GetObjectOptions{})
	if err != nil {
		return nil, classify(err)
	}
	defer obj.Close()

	data, err := readCapped(obj, maxBytes)
	if err != nil {
		return nil, classify(err)
	}
	return data, nil
}

// readCapped reads r fully unless it holds more than maxBytes.
// A non-positive maxBytes disables the cap.
func readCapped(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, domain.ErrImageTooLarge
	}
	return data, nil
}

// parseEndpoint accepts host[:port] or a URL. An https scheme forces TLS.
func parseEndpoint(raw string, useSSL bool) (string, bool, error) {
	if !strings.Contains(raw, "://") {
		return raw, useSSL, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false, fmt.Errorf("invalid storage endpoint %q: %w", raw, err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("invalid storage endpoint %q: missing host", raw)
	}
	return u.Host, useSSL || u.Scheme == "https", nil
}

// classify maps S3 error codes onto domain errors.
func classify(err error) error {
	if errors.Is(err, domain.ErrImageTooLarge) {
		return err
	}
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}
	return err
}
