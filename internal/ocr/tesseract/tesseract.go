// Package tesseract implements ocr.Engine with the Tesseract library via
// gosseract.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Building this package requires cgo.
//
// # Concurrency
//
// A new gosseract client is created for every call, so one Engine can serve
// concurrent requests. Tesseract offers no way to interrupt a running
// recognition; a call that outlives its context finishes in the background.
package tesseract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/ocr-gateway/internal/ocr"
)

// Options configures the Tesseract client used for each call.
type Options struct {
	// Language is the Tesseract language code, e.g. "eng" or "eng+deu".
	Language string

	// TessdataPrefix overrides the directory holding *.traineddata files.
	// Empty uses the library default or the TESSDATA_PREFIX environment variable.
	TessdataPrefix string

	// PageSegMode is Tesseract's page segmentation mode. Zero keeps the
	// library default.
	PageSegMode int
}

// Engine runs Tesseract word-level recognition.
type Engine struct {
	opts Options
}

// New creates a Tesseract engine.
func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Name identifies the backend.
func (e *Engine) Name() string {
	return "tesseract"
}

// Version reports the linked Tesseract library version.
func Version() string {
	return gosseract.Version()
}

// Recognize runs Tesseract on encoded image bytes and returns one token per
// word in reading order.
func (e *Engine) Recognize(ctx context.Context, image []byte) ([]ocr.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if e.opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(e.opts.TessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}

	if e.opts.Language != "" {
		if err := client.SetLanguage(e.opts.Language); err != nil {
			return nil, fmt.Errorf("failed to set language: %w", err)
		}
	}

	if e.opts.PageSegMode > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(e.opts.PageSegMode)); err != nil {
			return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
		}
	}

	if err := client.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	tokens := make([]ocr.Token, 0, len(boxes))
	for _, box := range boxes {
		tokens = append(tokens, ocr.Token{
			Text:       box.Word,
			Confidence: int(box.Confidence),
		})
	}
	return tokens, nil
}
