package ocr

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ironsheep/ocr-gateway/internal/imaging"
	"github.com/ironsheep/ocr-gateway/internal/models"
)

// DefaultTimeout bounds a single engine call when none is configured.
const DefaultTimeout = 10 * time.Second

// Recognizer decodes uploads and runs them through an Engine.
// It is safe for concurrent use if the Engine is.
type Recognizer struct {
	engine     Engine
	timeout    time.Duration
	preprocess imaging.PreprocessOptions
	maxPixels  int64
	debug      bool
}

// NewRecognizer creates a Recognizer. A non-positive timeout selects
// DefaultTimeout.
func NewRecognizer(engine Engine, timeout time.Duration, preprocess imaging.PreprocessOptions) *Recognizer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Recognizer{
		engine:     engine,
		timeout:    timeout,
		preprocess: preprocess,
		maxPixels:  imaging.DefaultMaxPixels,
	}
}

// SetDebug enables per-call timing logs.
func (r *Recognizer) SetDebug(debug bool) {
	r.debug = debug
}

// SetMaxPixels bounds the declared Width*Height of an upload. Larger images
// fail with ErrUnreadableImage before their pixels are decoded.
func (r *Recognizer) SetMaxPixels(n int64) {
	if n <= 0 {
		n = imaging.DefaultMaxPixels
	}
	r.maxPixels = n
}

// Engine returns the backend this Recognizer drives.
func (r *Recognizer) Engine() Engine {
	return r.engine
}

// Recognize extracts text, confidence and metadata from encoded image bytes.
func (r *Recognizer) Recognize(ctx context.Context, data []byte) (*models.OCRResult, error) {
	img, info, err := imaging.DecodeLimited(data, r.maxPixels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableImage, err)
	}

	input := data
	if r.preprocess.Enabled() {
		input, err = imaging.EncodePNG(imaging.Preprocess(img, r.preprocess))
		if err != nil {
			return nil, &ProcessingError{Err: err}
		}
	}

	start := time.Now()
	tokens, err := r.run(ctx, input)
	if err != nil {
		return nil, err
	}
	if r.debug {
		log.Printf("[ocr] %s returned %d tokens for %dx%d %s in %s",
			r.engine.Name(), len(tokens), info.Width, info.Height, info.Format, time.Since(start))
	}

	text, confidence := Aggregate(tokens)
	return &models.OCRResult{
		Text:       Normalize(text),
		Confidence: confidence,
		Metadata: models.ImageMetadata{
			Width:  info.Width,
			Height: info.Height,
			Format: info.Format,
		},
	}, nil
}

type engineResult struct {
	tokens []Token
	err    error
}

// run calls the engine in its own goroutine so a stuck engine cannot hold the
// caller past the timeout. The goroutine is abandoned on timeout; it exits
// when the engine eventually returns.
func (r *Recognizer) run(ctx context.Context, input []byte) ([]Token, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan engineResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- engineResult{err: fmt.Errorf("engine panic: %v", p)}
			}
		}()
		tokens, err := r.engine.Recognize(ctx, input)
		done <- engineResult{tokens: tokens, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, r.classify(res.err)
		}
		return res.tokens, nil
	case <-ctx.Done():
		return nil, r.classify(ctx.Err())
	}
}

func (r *Recognizer) classify(err error) error {
	var perr *ProcessingError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &ProcessingError{Err: fmt.Errorf("%w after %s", ErrTimeout, r.timeout)}
	case errors.Is(err, ErrUnreadableImage), errors.As(err, &perr):
		return err
	default:
		return &ProcessingError{Err: err}
	}
}
