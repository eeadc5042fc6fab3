package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectGetter is the slice of the S3 API the downloader uses.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Downloader streams completed results from the object store into the
// local media tree.
type Downloader struct {
	client ObjectGetter
	store  *FileStore
}

// NewDownloader wires an S3 client to a FileStore.
func NewDownloader(client ObjectGetter, store *FileStore) *Downloader {
	return &Downloader{client: client, store: store}
}

// Download fetches s3URI into subdir/filename and returns the absolute
// local path. The object is streamed to a temporary file and renamed into
// place on success; a failed transfer never leaves a truncated file behind.
func (d *Downloader) Download(ctx context.Context, s3URI, subdir, filename string) (string, error) {
	bucket, key, err := parseS3URI(s3URI)
	if err != nil {
		return "", err
	}

	out, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("storage: fetch %s: %w", s3URI, err)
	}
	defer out.Body.Close()

	dest, err := d.store.target(subdir, filename)
	if err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".part-*")
	if err != nil {
		return "", fmt.Errorf("storage: create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, out.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("storage: stream %s: %w", s3URI, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("storage: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("storage: finalize download: %w", err)
	}
	return dest, nil
}

// parseS3URI splits s3://bucket/key/path into bucket and key.
func parseS3URI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("storage: invalid S3 URI format: %s", uri)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("storage: invalid S3 URI format: %s", uri)
	}
	return bucket, key, nil
}
