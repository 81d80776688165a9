package uploads

import (
	"context"
	"fmt"
	"io"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
)

type SupabaseStore struct {
	client *storage_go.Client
	bucket string
}

func NewSupabaseStore(client *storage_go.Client, bucket string) *SupabaseStore {
	return &SupabaseStore{client: client, bucket: bucket}
}

func (s *SupabaseStore) Save(ctx context.Context, folder Folder, name, contentType string, r io.Reader) (string, error) {
	objectPath := string(folder) + "/" + name
	upsert := false
	_, err := s.client.UploadFile(s.bucket, objectPath, r, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("supabase upload failed: %w", err)
	}
	return s.client.GetPublicUrl(s.bucket, objectPath).SignedURL, nil
}

func (s *SupabaseStore) Delete(ctx context.Context, ref string) error {
	marker := "/object/public/" + s.bucket + "/"
	i := strings.Index(ref, marker)
	if i < 0 {
		return fmt.Errorf("not a supabase object url: %s", ref)
	}
	if _, err := s.client.RemoveFile(s.bucket, []string{ref[i+len(marker):]}); err != nil {
		return fmt.Errorf("supabase remove failed: %w", err)
	}
	return nil
}
