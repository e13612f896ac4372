package imaging

import (
	"bytes"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// darkBackgroundLightness is the mean L* below which AutoInvert flips the image.
const darkBackgroundLightness = 0.5

// lightnessSamples bounds the number of pixels visited by MeanLightness.
const lightnessSamples = 4096

// PreprocessOptions selects the clean-up steps applied before recognition.
// The zero value (with Scale 0 or 1) leaves the image untouched.
type PreprocessOptions struct {
	Grayscale  bool
	Scale      float64
	Threshold  uint8
	AutoInvert bool
}

// Enabled reports whether any step would change the image.
func (o PreprocessOptions) Enabled() bool {
	return o.Grayscale || o.AutoInvert || o.Threshold > 0 || (o.Scale > 0 && o.Scale != 1.0)
}

// Preprocess applies the enabled steps in a fixed order: invert dark
// backgrounds, convert to grayscale, rescale, then binarize.
func Preprocess(img image.Image, opts PreprocessOptions) image.Image {
	out := img

	if opts.AutoInvert && MeanLightness(out) < darkBackgroundLightness {
		out = imaging.Invert(out)
	}

	if opts.Grayscale {
		out = imaging.Grayscale(out)
	}

	if opts.Scale > 0 && opts.Scale != 1.0 {
		b := out.Bounds()
		newWidth := int(float64(b.Dx()) * opts.Scale)
		newHeight := int(float64(b.Dy()) * opts.Scale)
		if newWidth > 0 && newHeight > 0 {
			out = imaging.Resize(out, newWidth, newHeight, imaging.Lanczos)
		}
	}

	if opts.Threshold > 0 {
		out = segment.Threshold(out, opts.Threshold)
	}

	return out
}

// EncodePNG encodes img losslessly for handing to the OCR engine.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode preprocessed image: %w", err)
	}
	return buf.Bytes(), nil
}

// MeanLightness returns the average CIE L* lightness of img in the range
// 0 (black) to 1 (white). Large images are sampled on a regular grid.
// Fully transparent pixels are ignored.
func MeanLightness(img image.Image) float64 {
	bounds := img.Bounds()
	if bounds.Empty() {
		return 0
	}

	step := 1
	for (bounds.Dx()/step)*(bounds.Dy()/step) > lightnessSamples {
		step++
	}

	var sum float64
	var n int
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			l, _, _ := c.Lab()
			sum += l
			n++
		}
	}

	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
