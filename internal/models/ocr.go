package models

// ImageMetadata describes the decoded upload. Format is the upper-case
// decoder tag: "JPEG", "PNG", "GIF" or "BMP".
type ImageMetadata struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// OCRResult is the output of a single recognition pass.
type OCRResult struct {
	Text       string        `json:"text"`
	Confidence float64       `json:"confidence"` // 0.0 to 1.0, two decimals
	Metadata   ImageMetadata `json:"metadata"`
}

// OCRResponse is the payload returned by the extract endpoint and the value
// stored in the result cache. Cached and ProcessingTimeMs describe the request
// that produced the response, not the stored computation.
type OCRResponse struct {
	Success          bool          `json:"success"`
	Text             string        `json:"text"`
	Confidence       float64       `json:"confidence"`
	Metadata         ImageMetadata `json:"metadata"`
	Cached           bool          `json:"cached"`
	ProcessingTimeMs int64         `json:"processing_time_ms"`

	// Fingerprint is the cache key of the upload. It is never serialized.
	Fingerprint string `json:"-"`
}

// NewOCRResponse wraps a recognition result in a successful response.
func NewOCRResponse(r *OCRResult) OCRResponse {
	return OCRResponse{
		Success:    true,
		Text:       r.Text,
		Confidence: r.Confidence,
		Metadata:   r.Metadata,
	}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
