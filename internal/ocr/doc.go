// Package ocr turns encoded image bytes into an OCRResult.
//
// The package is split in two layers:
//
//   - Engine is the capability boundary around an OCR library. It receives
//     encoded image bytes and returns word tokens with integer confidences.
//     The Tesseract binding lives in the tesseract subpackage so the rest of
//     the gateway builds and tests without cgo.
//   - Recognizer decodes the upload, optionally preprocesses it, calls the
//     Engine under a timeout and aggregates the tokens into normalized text
//     and a mean confidence.
//
// # Aggregation
//
// Tokens are consumed in emission order. A token contributes only when its
// confidence is greater than -1 and its trimmed text is non-empty. The kept
// texts are joined with single spaces and the confidence is the arithmetic
// mean of the kept confidences divided by 100, rounded to two decimals.
// When nothing is kept the result is ("", 0).
//
// # Error Handling
//
// Recognize classifies failures so callers can map them to responses:
//   - ErrUnreadableImage: the bytes could not be decoded as an image
//   - ErrTimeout: the engine did not finish within the configured timeout
//   - *ProcessingError: any other engine failure, including panics
//
// ErrTimeout is always wrapped in a *ProcessingError, so callers that only
// distinguish unreadable input from everything else need a single errors.Is
// check.
package ocr
