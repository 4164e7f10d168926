package filemgr

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"dorax/utils"

	"github.com/disintegration/imaging"
)

const experiencePicDir = "./static/experiencepic"

var supportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// SaveExperienceImage stores an uploaded experience photo as JPEG together
// with a 300px-wide thumbnail. Returns the URL paths of both.
func SaveExperienceImage(file multipart.File, header *multipart.FileHeader) (string, string, error) {
	if !supportedImageTypes[header.Header.Get("Content-Type")] {
		return "", "", fmt.Errorf("unsupported image type %q", header.Header.Get("Content-Type"))
	}

	img, err := imaging.Decode(file)
	if err != nil {
		return "", "", fmt.Errorf("failed to decode image: %w", err)
	}

	fileName := utils.GenerateRandomString(16) + ".jpg"
	thumbDir := filepath.Join(experiencePicDir, "thumb")
	if err := ensureDir(experiencePicDir); err != nil {
		return "", "", err
	}
	if err := ensureDir(thumbDir); err != nil {
		return "", "", err
	}

	if err := imaging.Save(img, filepath.Join(experiencePicDir, fileName)); err != nil {
		return "", "", fmt.Errorf("failed to save image: %w", err)
	}

	thumb := imaging.Resize(img, 300, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(thumbDir, fileName)); err != nil {
		return "", "", fmt.Errorf("failed to save thumbnail: %w", err)
	}

	return "/static/experiencepic/" + fileName, "/static/experiencepic/thumb/" + fileName, nil
}
