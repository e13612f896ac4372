package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"strings"

	_ "golang.org/x/image/bmp" // Register BMP format decoder
)

// DefaultMaxPixels bounds Width*Height of an upload when no limit is configured.
const DefaultMaxPixels int64 = 178956970

// ErrTooManyPixels is returned when an image declares more pixels than allowed.
var ErrTooManyPixels = errors.New("image exceeds pixel limit")

// ImageInfo describes a decoded upload.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the upper-case decoder tag: "PNG", "JPEG", "GIF" or "BMP".
	// It comes from the file contents, never from the declared MIME type.
	Format string `json:"format"`
}

// Decode decodes raw image bytes and reports their dimensions and format.
// It applies DefaultMaxPixels; see DecodeLimited.
func Decode(data []byte) (image.Image, ImageInfo, error) {
	return DecodeLimited(data, DefaultMaxPixels)
}

// DecodeLimited decodes raw image bytes after checking the declared
// dimensions against maxPixels.
//
// Parameters:
//   - data: The complete encoded image. Supported formats are PNG, JPEG,
//     GIF and BMP.
//   - maxPixels: Upper bound for Width*Height. Zero or negative means
//     DefaultMaxPixels.
//
// Returns:
//   - image.Image: The decoded image. For animated GIFs this is the first frame.
//   - ImageInfo: Dimensions and the detected format.
//   - error: Non-nil if the bytes are empty, truncated, not a known format,
//     or declare more pixels than allowed (wraps ErrTooManyPixels).
func DecodeLimited(data []byte, maxPixels int64) (image.Image, ImageInfo, error) {
	if len(data) == 0 {
		return nil, ImageInfo{}, fmt.Errorf("failed to decode image: empty input")
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	// The header is read first so the raster is never allocated for oversized images
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ImageInfo{}, fmt.Errorf("failed to decode image: %w", err)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > maxPixels {
		return nil, ImageInfo{}, fmt.Errorf("failed to decode image: %w: %dx%d is %d pixels, limit %d",
			ErrTooManyPixels, cfg.Width, cfg.Height, pixels, maxPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ImageInfo{}, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	return img, ImageInfo{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: strings.ToUpper(format),
	}, nil
}

// DetectFormat returns the registered decoder name for data without decoding
// the pixels, or "" when no decoder recognizes it.
func DetectFormat(data []byte) string {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	return format
}
