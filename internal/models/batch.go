package models

// BatchItemResult reports the outcome for one upload of a batch request.
// Exactly one of Data and Error is set.
type BatchItemResult struct {
	Filename string       `json:"filename"`
	Success  bool         `json:"success"`
	Data     *OCRResponse `json:"data"`
	Error    *string      `json:"error"`
}

// BatchResponse preserves the order of the uploaded files.
type BatchResponse struct {
	BatchResults []BatchItemResult `json:"batch_results"`
}

// BatchSuccess builds a successful batch item.
func BatchSuccess(filename string, data OCRResponse) BatchItemResult {
	return BatchItemResult{Filename: filename, Success: true, Data: &data}
}

// BatchFailure builds a failed batch item carrying the error message.
func BatchFailure(filename string, err error) BatchItemResult {
	msg := err.Error()
	return BatchItemResult{Filename: filename, Success: false, Error: &msg}
}
