package uploads

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

const gcsHost = "https://storage.googleapis.com/"

type GCSStore struct {
	client *storage.Client
	bucket string
}

func NewGCSStore(client *storage.Client, bucket string) *GCSStore {
	return &GCSStore{client: client, bucket: bucket}
}

func (s *GCSStore) Save(ctx context.Context, folder Folder, name, contentType string, r io.Reader) (string, error) {
	objectName := string(folder) + "/" + name
	wc := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(wc, r); err != nil {
		wc.Close()
		return "", fmt.Errorf("failed to copy file to GCS: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}
	return gcsHost + s.bucket + "/" + objectName, nil
}

func (s *GCSStore) Delete(ctx context.Context, ref string) error {
	prefix := gcsHost + s.bucket + "/"
	if !strings.HasPrefix(ref, prefix) {
		return fmt.Errorf("invalid GCS URL format or bucket mismatch")
	}
	if err := s.client.Bucket(s.bucket).Object(strings.TrimPrefix(ref, prefix)).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
