package ocr

import "errors"

var (
	// ErrUnreadableImage is returned when the upload cannot be decoded.
	ErrUnreadableImage = errors.New("corrupt or unreadable image file")

	// ErrTimeout is returned when the engine exceeds the recognition timeout.
	ErrTimeout = errors.New("ocr engine timed out")
)

// ProcessingError wraps an engine failure other than unreadable input.
type ProcessingError struct {
	Err error
}

func (e *ProcessingError) Error() string {
	return e.Err.Error()
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// IsUnreadable reports whether err means the upload was not a decodable image.
func IsUnreadable(err error) bool {
	return errors.Is(err, ErrUnreadableImage)
}
