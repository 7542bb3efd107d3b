package util

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/model"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/pkg/apierror"
)

const maxImagePixels = 40_000_000

var imageFormats = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
}

// ImageInfo describes an uploaded image after its header has been decoded.
type ImageInfo struct {
	MimeType string
	Width    int
	Height   int
}

// CheckImage decodes the image header of data and rejects anything that is not a
// supported raster format.
func CheckImage(data []byte) (ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, unsupported(http.DetectContentType(data))
	}

	mimeType, ok := imageFormats[format]
	if !ok {
		return ImageInfo{}, unsupported(format)
	}

	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxImagePixels {
		return ImageInfo{}, apierror.New("INVALID_IMAGE", "image dimensions are out of range",
			fmt.Sprintf("%dx%d", cfg.Width, cfg.Height), http.StatusBadRequest)
	}

	return ImageInfo{MimeType: mimeType, Width: cfg.Width, Height: cfg.Height}, nil
}

func unsupported(detected string) error {
	return fmt.Errorf("%w: %w", model.ErrUnsupportedImage,
		apierror.New("UNSUPPORTED_IMAGE", "only JPEG, PNG, GIF, WebP and BMP images are accepted", detected, http.StatusBadRequest))
}
