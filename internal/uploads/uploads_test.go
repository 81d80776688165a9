package uploads

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joshua-takyi/servicios/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF\n")
)

func fileHeader(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	return form.File[field][0]
}

func newLocalUploader(t *testing.T, maxBytes int64) (*Uploader, string) {
	t.Helper()
	root := t.TempDir()
	store, err := NewLocalStore(root, "")
	require.NoError(t, err)
	return NewUploader(store, maxBytes), root
}

func TestSaveRoutesFieldToFolder(t *testing.T) {
	up, root := newLocalUploader(t, 1<<20)

	ref, err := up.Save(context.Background(), "profilePhoto", fileHeader(t, "profilePhoto", "me.png", pngBytes))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/uploads/profile/"), ref)
	assert.True(t, strings.HasSuffix(ref, ".png"), ref)

	_, err = os.Stat(filepath.Join(root, "profile", filepath.Base(ref)))
	assert.NoError(t, err)
}

func TestSaveAcceptsPDFOnlyForDocuments(t *testing.T) {
	up, _ := newLocalUploader(t, 1<<20)
	ctx := context.Background()

	ref, err := up.Save(ctx, "dniFront", fileHeader(t, "dniFront", "dni.pdf", pdfBytes))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/uploads/dni/"), ref)

	_, err = up.Save(ctx, "portfolio", fileHeader(t, "portfolio", "trabajo.pdf", pdfBytes))
	assert.True(t, apperr.Is(err, apperr.KindUpload))
}

func TestSaveRejects(t *testing.T) {
	up, _ := newLocalUploader(t, 32)
	ctx := context.Background()

	_, err := up.Save(ctx, "profilePhoto", fileHeader(t, "profilePhoto", "big.png", pngBytes))
	assert.True(t, apperr.Is(err, apperr.KindUpload), "oversize")

	_, err = up.Save(ctx, "profilePhoto", fileHeader(t, "profilePhoto", "a.txt", []byte("hola")))
	assert.True(t, apperr.Is(err, apperr.KindUpload), "text file")

	_, err = up.Save(ctx, "avatar", fileHeader(t, "avatar", "a.png", []byte("\x89PNG\r\n\x1a\n")))
	assert.True(t, apperr.Is(err, apperr.KindUpload), "unknown field")
}

func TestSaveAllRemovesEarlierFilesOnFailure(t *testing.T) {
	up, root := newLocalUploader(t, 1<<20)

	files := []*multipart.FileHeader{
		fileHeader(t, "portfolio", "a.png", pngBytes),
		fileHeader(t, "portfolio", "b.txt", []byte("texto plano")),
	}
	_, err := up.SaveAll(context.Background(), "portfolio", files)
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(root, "portfolio"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStoreDeleteRejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	assert.Error(t, store.Delete(context.Background(), "http://localhost:8080/uploads/../../etc/passwd"))
	assert.Error(t, store.Delete(context.Background(), "https://elsewhere.example.com/x.png"))
}

func TestCloudinaryPublicID(t *testing.T) {
	id, err := cloudinaryPublicID("https://res.cloudinary.com/demo/image/upload/v1712345/servicios/profile/abc.png")
	require.NoError(t, err)
	assert.Equal(t, "servicios/profile/abc", id)

	id, err = cloudinaryPublicID("https://res.cloudinary.com/demo/raw/upload/servicios/dni/x.pdf")
	require.NoError(t, err)
	assert.Equal(t, "servicios/dni/x", id)

	_, err = cloudinaryPublicID("https://res.cloudinary.com/demo/image/upload/")
	assert.Error(t, err)
}
