package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
)

// maxPhotoWidth keeps uploaded photos at a reasonable size. Anything wider
// is scaled down with the aspect ratio preserved.
const maxPhotoWidth = 1200

type ImageProcessor struct {
	MaxSize int64 // bytes
}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{MaxSize: 5 * 1024 * 1024} // 5MB
}

// ValidateImage checks size and format (jpeg/png only).
func (p *ImageProcessor) ValidateImage(data []byte) error {
	if int64(len(data)) > p.MaxSize {
		return fmt.Errorf("image exceeds %dMB", p.MaxSize/(1024*1024))
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("not an image: %w", err)
	}
	switch format {
	case "jpeg", "png":
		return nil
	default:
		return fmt.Errorf("image format %s not allowed (only jpeg/png)", format)
	}
}

// ProcessPhoto scales the image down to maxPhotoWidth if needed and
// re-encodes it as JPEG quality 90.
func (p *ImageProcessor) ProcessPhoto(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot decode image: %w", err)
	}

	if img.Bounds().Dx() > maxPhotoWidth {
		// height 0 keeps the aspect ratio
		img = imaging.Resize(img, maxPhotoWidth, 0, imaging.Lanczos)
	}

	b := new(bytes.Buffer)
	if err := jpeg.Encode(b, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("cannot encode photo: %w", err)
	}
	return b.Bytes(), nil
}
