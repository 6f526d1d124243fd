package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/hlecates/artifact-ijcar26-luna/internal/conf"
	"github.com/hlecates/artifact-ijcar26-luna/internal/constants"
	errs "github.com/hlecates/artifact-ijcar26-luna/pkg/errors"
)

// Store mirrors benchmark-set files from an S3-compatible bucket into the
// local benchmark directory, so every cluster user runs against the same
// published sets.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// New connects to the configured endpoint.
func New(cfg conf.StoreConfig) (*Store, error) {
	if cfg.Endpoint == "" {
		return nil, errs.New(errs.ErrCodeConfig, "store.endpoint is not configured")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errs.NewStoreError(fmt.Sprintf("connect to %s", cfg.Endpoint), err)
	}
	return &Store{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Sync downloads every object under the configured prefix that is missing
// locally or differs in size, and reports how many files were written.
func (s *Store) Sync(ctx context.Context, localDir string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.StoreRequestTimeout)
	defer cancel()

	if err := os.MkdirAll(localDir, constants.WorkDirPerm); err != nil {
		return 0, errs.NewStoreError(fmt.Sprintf("create %s", localDir), err)
	}

	downloaded := 0
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return downloaded, errs.NewStoreError("list objects", object.Err)
		}
		name := strings.TrimPrefix(strings.TrimPrefix(object.Key, s.prefix), "/")
		if name == "" || strings.HasSuffix(object.Key, "/") {
			continue
		}
		local := filepath.Join(localDir, filepath.FromSlash(name))
		if fi, err := os.Stat(local); err == nil && fi.Size() == object.Size {
			continue // already current
		}
		if err := s.download(ctx, object.Key, local); err != nil {
			return downloaded, err
		}
		downloaded++
		zap.L().Info("benchmark set downloaded",
			zap.String("object", object.Key),
			zap.String("path", local),
			zap.Int64("size", object.Size),
		)
	}

	zap.L().Info("benchmark store synced",
		zap.String("bucket", s.bucket),
		zap.String("prefix", s.prefix),
		zap.Int("downloaded", downloaded),
	)
	return downloaded, nil
}

// download fetches one object into path, creating parent directories.
func (s *Store) download(ctx context.Context, key, path string) error {
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return errs.NewStoreError(fmt.Sprintf("get object %s", key), err)
	}
	defer object.Close()

	if err := os.MkdirAll(filepath.Dir(path), constants.WorkDirPerm); err != nil {
		return errs.NewStoreError(fmt.Sprintf("create %s", filepath.Dir(path)), err)
	}
	file, err := os.Create(path)
	if err != nil {
		return errs.NewStoreError(fmt.Sprintf("create %s", path), err)
	}
	defer file.Close()

	if _, err := io.Copy(file, object); err != nil {
		os.Remove(path) // do not leave a partial download behind
		return errs.NewStoreError(fmt.Sprintf("download %s", key), err)
	}
	return nil
}
