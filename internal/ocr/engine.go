package ocr

import "context"

// Token is one recognized word. Confidence is on the engine's 0-100 scale;
// -1 marks layout elements that carry no text.
type Token struct {
	Text       string
	Confidence int
}

// Engine is an OCR backend.
type Engine interface {
	// Name identifies the backend in health output and logs.
	Name() string

	// Recognize returns the tokens found in an encoded image. Implementations
	// should return promptly when ctx is done if the backend allows it.
	Recognize(ctx context.Context, image []byte) ([]Token, error)
}
