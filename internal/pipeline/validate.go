package pipeline

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultMaxFileSize is the single-upload size limit in bytes.
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// DefaultAllowedMIMETypes are the declared content types accepted by the
// single-image endpoint.
var DefaultAllowedMIMETypes = []string{"image/jpeg", "image/jpg", "image/png", "image/gif"}

// Validator checks declared metadata of an upload before any byte of it is
// hashed or decoded.
type Validator struct {
	allowed     map[string]bool
	maxSize     int64
	formatError string
	sizeError   string
}

// NewValidator creates a Validator. A nil allow-list selects
// DefaultAllowedMIMETypes and a non-positive maxSize selects
// DefaultMaxFileSize.
func NewValidator(allowed []string, maxSize int64) *Validator {
	if allowed == nil {
		allowed = DefaultAllowedMIMETypes
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	set := make(map[string]bool, len(allowed))
	names := make([]string, 0, len(allowed))
	for _, m := range allowed {
		m = strings.ToLower(strings.TrimSpace(m))
		if m == "" || set[m] {
			continue
		}
		set[m] = true
		names = append(names, m)
	}
	sort.Strings(names)

	return &Validator{
		allowed:     set,
		maxSize:     maxSize,
		formatError: "Invalid format. Allowed: " + strings.Join(names, ", "),
		sizeError:   fmt.Sprintf("File size exceeds %s limit", formatLimit(maxSize)),
	}
}

// Check validates the declared MIME type first, then the size.
func (v *Validator) Check(contentType string, size int) error {
	if !v.allowed[mediaType(contentType)] {
		return &RequestError{Err: ErrUnsupportedMediaType, Message: v.formatError}
	}
	if int64(size) > v.maxSize {
		return &RequestError{Err: ErrPayloadTooLarge, Message: v.sizeError}
	}
	return nil
}

// MaxSize returns the configured size limit in bytes.
func (v *Validator) MaxSize() int64 {
	return v.maxSize
}

// Validate checks an upload against the default allow-list and maxSize.
func Validate(contentType string, size int, maxSize int64) error {
	return NewValidator(nil, maxSize).Check(contentType, size)
}

// mediaType strips parameters such as "; charset=binary" from a Content-Type.
func mediaType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

func formatLimit(size int64) string {
	const mb = 1024 * 1024
	if size%mb == 0 {
		return fmt.Sprintf("%dMB", size/mb)
	}
	return fmt.Sprintf("%d bytes", size)
}
