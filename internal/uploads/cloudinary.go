package uploads

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const cloudinaryRoot = "servicios"

var cloudinaryVersion = regexp.MustCompile(`^v\d+$`)

type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStore(cld *cloudinary.Cloudinary) *CloudinaryStore {
	return &CloudinaryStore{cld: cld}
}

func (s *CloudinaryStore) Save(ctx context.Context, folder Folder, name, contentType string, r io.Reader) (string, error) {
	res, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:       cloudinaryRoot + "/" + string(folder),
		PublicID:     strings.TrimSuffix(name, path.Ext(name)),
		ResourceType: "auto",
		Tags:         []string{cloudinaryRoot, string(folder)},
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload failed: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload failed: %s", res.Error.Message)
	}
	return res.SecureURL, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, ref string) error {
	publicID, err := cloudinaryPublicID(ref)
	if err != nil {
		return err
	}
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("cloudinary destroy failed: %w", err)
	}
	return nil
}

// cloudinaryPublicID extracts "folder/name" from a delivery URL such as
// https://res.cloudinary.com/demo/image/upload/v123/servicios/profile/abc.png.
func cloudinaryPublicID(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid cloudinary url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, p := range parts {
		if p != "upload" {
			continue
		}
		rest := parts[i+1:]
		if len(rest) > 0 && cloudinaryVersion.MatchString(rest[0]) {
			rest = rest[1:]
		}
		if len(rest) == 0 {
			break
		}
		id := strings.Join(rest, "/")
		return strings.TrimSuffix(id, path.Ext(id)), nil
	}
	return "", fmt.Errorf("invalid cloudinary url: %s", ref)
}
