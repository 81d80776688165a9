// Package uploads validates multipart files and hands them to a storage backend.
package uploads

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/joshua-takyi/servicios/internal/apperr"
)

type Folder string

const (
	FolderProfile      Folder = "profile"
	FolderDNI          Folder = "dni"
	FolderCertificates Folder = "certificates"
	FolderPortfolio    Folder = "portfolio"
	FolderProblems     Folder = "problems"
)

var fieldFolders = map[string]Folder{
	"profilePhoto": FolderProfile,
	"dniFront":     FolderDNI,
	"dniBack":      FolderDNI,
	"certificates": FolderCertificates,
	"portfolio":    FolderPortfolio,
	"images":       FolderProblems,
}

var imageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

var allowedTypes = map[Folder][]string{
	FolderProfile:      imageTypes,
	FolderPortfolio:    imageTypes,
	FolderProblems:     imageTypes,
	FolderDNI:          append(append([]string{}, imageTypes...), "application/pdf"),
	FolderCertificates: append(append([]string{}, imageTypes...), "application/pdf"),
}

// Store persists an already validated file and returns the reference clients use to fetch it.
type Store interface {
	Save(ctx context.Context, folder Folder, name, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
}

func FolderFor(field string) (Folder, bool) {
	f, ok := fieldFolders[field]
	return f, ok
}

type Uploader struct {
	store    Store
	maxBytes int64
}

func NewUploader(store Store, maxBytes int64) *Uploader {
	return &Uploader{store: store, maxBytes: maxBytes}
}

// Save validates one file from the named form field and stores it in that field's folder.
func (u *Uploader) Save(ctx context.Context, field string, fh *multipart.FileHeader) (string, error) {
	folder, ok := FolderFor(field)
	if !ok {
		return "", apperr.Upload(fmt.Sprintf("campo de archivo no permitido: %s", field), nil)
	}
	if fh.Size > u.maxBytes {
		return "", apperr.Upload(fmt.Sprintf("el archivo %s supera el tamaño máximo de %d MB", fh.Filename, u.maxBytes/(1024*1024)), nil)
	}

	f, err := fh.Open()
	if err != nil {
		return "", apperr.Upload("no se pudo leer el archivo", err)
	}
	defer f.Close()

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		return "", apperr.Upload("no se pudo leer el archivo", err)
	}
	if !allowed(folder, mime) {
		return "", apperr.Upload(fmt.Sprintf("tipo de archivo no permitido: %s", mime.String()), nil)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", apperr.Upload("no se pudo leer el archivo", err)
	}

	name := uuid.NewString() + mime.Extension()
	ref, err := u.store.Save(ctx, folder, name, baseType(mime.String()), io.LimitReader(f, u.maxBytes))
	if err != nil {
		return "", apperr.Upload("no se pudo guardar el archivo", err)
	}
	return ref, nil
}

// SaveAll stores every file of a field; on failure the files already stored are removed.
func (u *Uploader) SaveAll(ctx context.Context, field string, files []*multipart.FileHeader) ([]string, error) {
	refs := make([]string, 0, len(files))
	for _, fh := range files {
		ref, err := u.Save(ctx, field, fh)
		if err != nil {
			u.Discard(ctx, refs)
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Discard removes stored files whose owning record was never written.
func (u *Uploader) Discard(ctx context.Context, refs []string) {
	for _, ref := range refs {
		if err := u.store.Delete(ctx, ref); err != nil {
			slog.Warn("failed to remove orphaned upload", "ref", ref, "error", err)
		}
	}
}

func allowed(folder Folder, mime *mimetype.MIME) bool {
	for _, t := range allowedTypes[folder] {
		if mime.Is(t) {
			return true
		}
	}
	return false
}

func baseType(contentType string) string {
	if i := strings.Index(contentType, ";"); i >= 0 {
		return contentType[:i]
	}
	return contentType
}
