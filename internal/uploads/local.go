package uploads

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const PublicPrefix = "/uploads"

// LocalStore writes files under a root directory served statically at PublicPrefix.
type LocalStore struct {
	root    string
	baseURL string
}

func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("error creating upload dir: %w", err)
	}
	return &LocalStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) Save(ctx context.Context, folder Folder, name, contentType string, r io.Reader) (string, error) {
	dir := filepath.Join(s.root, string(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating folder: %w", err)
	}
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("error creating file: %w", err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		return "", fmt.Errorf("error writing file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("error closing file: %w", err)
	}
	return s.baseURL + path.Join(PublicPrefix, string(folder), name), nil
}

func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	i := strings.Index(ref, PublicPrefix+"/")
	if i < 0 {
		return fmt.Errorf("not a local upload: %s", ref)
	}
	rel := path.Clean(ref[i+len(PublicPrefix)+1:])
	if strings.HasPrefix(rel, "..") {
		return fmt.Errorf("invalid upload path: %s", ref)
	}
	if err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel))); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
