// handlers_ocr.go - Text extraction handlers
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ironsheep/ocr-gateway/internal/audit"
	"github.com/ironsheep/ocr-gateway/internal/models"
	"github.com/ironsheep/ocr-gateway/internal/pipeline"
)

// Form fields of the OCR endpoints.
const (
	fieldImage  = "image"
	fieldImages = "images"
)

// Extractor is the part of the pipeline the OCR handlers drive.
type Extractor interface {
	ExtractText(ctx context.Context, u pipeline.Upload) (models.OCRResponse, error)
	ExtractBatch(ctx context.Context, uploads []pipeline.Upload) (models.BatchResponse, error)
	CheckBatchSize(n int) error
}

// OCRHandlerImpl implements the OCRHandler interface
type OCRHandlerImpl struct {
	extractor Extractor
	audit     audit.Recorder
}

// NewOCRHandler creates a new OCR handler. recorder may be nil.
func NewOCRHandler(extractor Extractor, recorder audit.Recorder) OCRHandler {
	return &OCRHandlerImpl{
		extractor: extractor,
		audit:     recorder,
	}
}

// HandleExtractText runs one uploaded image through the pipeline.
func (h *OCRHandlerImpl) HandleExtractText(c echo.Context) error {
	fh, err := c.FormFile(fieldImage)
	if err != nil {
		return formError(fieldImage, err)
	}

	data, err := readFile(fh)
	if err != nil {
		return NewValidationError(fmt.Sprintf("could not read field %q: %v", fieldImage, err))
	}

	upload := pipeline.Upload{
		Data:        data,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Filename:    fh.Filename,
	}

	resp, err := h.extractor.ExtractText(c.Request().Context(), upload)
	if err != nil {
		apiErr := FromPipelineError(err)
		h.record(c, models.AuditEntry{
			Filename:   fh.Filename,
			StatusCode: apiErr.Status,
			Error:      apiErr.Message,
		})
		return apiErr
	}

	h.record(c, models.AuditEntry{
		Filename:         fh.Filename,
		Fingerprint:      resp.Fingerprint,
		StatusCode:       http.StatusOK,
		Cached:           resp.Cached,
		ProcessingTimeMs: resp.ProcessingTimeMs,
	})
	return respond(c, http.StatusOK, resp)
}

// HandleBatchExtract runs every uploaded image through the recognizer and
// reports per-file outcomes in upload order. Parts are read as they arrive so
// an oversized batch is rejected before the rest of the body is consumed.
func (h *OCRHandlerImpl) HandleBatchExtract(c echo.Context) error {
	mr, err := c.Request().MultipartReader()
	if err != nil {
		return formError(fieldImages, err)
	}

	var uploads []pipeline.Upload
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return formError(fieldImages, err)
		}

		// Plain form values share the field name but carry no file
		if part.FormName() != fieldImages || part.FileName() == "" {
			_ = part.Close()
			continue
		}

		// The rejected part is left unread
		if err := h.extractor.CheckBatchSize(len(uploads) + 1); err != nil {
			apiErr := FromPipelineError(err)
			h.record(c, models.AuditEntry{StatusCode: apiErr.Status, Error: apiErr.Message})
			return apiErr
		}

		data, err := io.ReadAll(part)
		_ = part.Close()
		if err != nil {
			return formError(fieldImages, err)
		}
		uploads = append(uploads, pipeline.Upload{
			Data:        data,
			ContentType: part.Header.Get(echo.HeaderContentType),
			Filename:    part.FileName(),
		})
	}

	if len(uploads) == 0 {
		return formError(fieldImages, http.ErrMissingFile)
	}

	start := time.Now()
	resp, err := h.extractor.ExtractBatch(c.Request().Context(), uploads)
	if err != nil {
		return FromPipelineError(err)
	}
	elapsed := time.Since(start).Milliseconds()

	for _, item := range resp.BatchResults {
		entry := models.AuditEntry{
			Filename:         item.Filename,
			StatusCode:       http.StatusOK,
			ProcessingTimeMs: elapsed,
		}
		if item.Error != nil {
			entry.Error = *item.Error
		}
		h.record(c, entry)
	}

	return respond(c, http.StatusOK, resp)
}

// record writes an audit entry. Failures are logged and never affect the
// response.
func (h *OCRHandlerImpl) record(c echo.Context, entry models.AuditEntry) {
	if h.audit == nil {
		return
	}
	entry.RequestID = c.Response().Header().Get(echo.HeaderXRequestID)
	entry.Endpoint = c.Path()
	if entry.Endpoint == "" {
		entry.Endpoint = c.Request().URL.Path
	}
	if err := h.audit.Log(context.WithoutCancel(c.Request().Context()), entry); err != nil {
		log.Printf("[audit] failed to record %s: %v", entry.Endpoint, err)
	}
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// formError maps multipart parsing failures to 422 responses. A body larger
// than the server limit keeps its 413 status.
func formError(field string, err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return echo.ErrStatusRequestEntityTooLarge
	}
	if errors.Is(err, http.ErrMissingFile) {
		return NewValidationError(fmt.Sprintf("field required: %s", field))
	}
	return NewValidationError(fmt.Sprintf("invalid multipart body: %v", err))
}
