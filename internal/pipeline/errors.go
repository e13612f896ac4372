package pipeline

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ironsheep/ocr-gateway/internal/ocr"
)

var (
	// ErrUnsupportedMediaType rejects uploads whose declared MIME type is not allowed.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrPayloadTooLarge rejects uploads above the configured size limit.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrBatchTooLarge rejects batches with more items than allowed.
	ErrBatchTooLarge = errors.New("batch too large")
)

// RequestError is a client error with the exact message shown to the caller.
// It unwraps to one of the sentinel errors above.
type RequestError struct {
	Err     error
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Messages for recognition failures.
const (
	unreadableMessage = "Corrupt or unreadable image file"
	processingPrefix  = "Internal Processing Error: "
)

// Classify maps a pipeline error to an HTTP status and the message returned
// to the client.
func Classify(err error) (int, string) {
	var reqErr *RequestError
	switch {
	case errors.As(err, &reqErr):
		if errors.Is(reqErr.Err, ErrPayloadTooLarge) {
			return http.StatusRequestEntityTooLarge, reqErr.Message
		}
		return http.StatusBadRequest, reqErr.Message
	case ocr.IsUnreadable(err):
		return http.StatusBadRequest, unreadableMessage
	default:
		return http.StatusInternalServerError, processingPrefix + err.Error()
	}
}

func batchLimitMessage(limit int) string {
	return fmt.Sprintf("Batch limit exceeded (Max %d images)", limit)
}
