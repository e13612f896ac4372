// Package pipeline runs uploads through validation, the result cache and the
// OCR recognizer.
package pipeline

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ironsheep/ocr-gateway/internal/cache"
	"github.com/ironsheep/ocr-gateway/internal/models"
)

// Recognizer produces an OCRResult from encoded image bytes.
type Recognizer interface {
	Recognize(ctx context.Context, data []byte) (*models.OCRResult, error)
}

// Upload is one received file. Err is set when the file could not be read
// from the request; such uploads fail in a batch without being processed.
type Upload struct {
	Data        []byte
	ContentType string
	Filename    string
	Err         error
}

// Options configures a Pipeline.
type Options struct {
	MaxFileSize      int64
	AllowedMIMETypes []string
	BatchMaxItems    int
	BatchConcurrency int
	Debug            bool
}

// Pipeline is safe for concurrent use.
type Pipeline struct {
	recognizer  Recognizer
	cache       cache.ResultCache
	validator   *Validator
	group       singleflight.Group
	maxBatch    int
	concurrency int
	debug       bool

	fingerprint func([]byte) string
	now         func() time.Time
}

// New creates a Pipeline.
func New(recognizer Recognizer, results cache.ResultCache, opts Options) *Pipeline {
	if opts.BatchMaxItems <= 0 {
		opts.BatchMaxItems = 10
	}
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = 1
	}
	return &Pipeline{
		recognizer:  recognizer,
		cache:       results,
		validator:   NewValidator(opts.AllowedMIMETypes, opts.MaxFileSize),
		maxBatch:    opts.BatchMaxItems,
		concurrency: opts.BatchConcurrency,
		debug:       opts.Debug,
		fingerprint: cache.Fingerprint,
		now:         time.Now,
	}
}

// CacheStats returns the result cache counters.
func (p *Pipeline) CacheStats() cache.Stats {
	return p.cache.Stats()
}

type flightResult struct {
	resp   models.OCRResponse
	cached bool
}

// ExtractText validates an upload and returns its recognition result,
// replaying a cached result for content seen before. Concurrent requests for
// the same content share one recognition; every caller but the one that ran
// it receives the result marked as cached.
func (p *Pipeline) ExtractText(ctx context.Context, u Upload) (models.OCRResponse, error) {
	start := p.now()

	if err := p.validator.Check(u.ContentType, len(u.Data)); err != nil {
		return models.OCRResponse{}, err
	}

	fp := p.fingerprint(u.Data)

	if resp, ok := p.cache.Lookup(fp); ok {
		if p.debug {
			log.Printf("[pipeline] cache hit %s", fp)
		}
		return p.replay(resp, start), nil
	}

	var led bool
	v, err, _ := p.group.Do(fp, func() (any, error) {
		led = true

		// Another flight may have stored the result between our lookup and now
		if resp, ok := p.cache.Peek(fp); ok {
			return flightResult{resp: resp, cached: true}, nil
		}

		// The computation is shared, so one caller going away must not abort it
		result, err := p.recognizer.Recognize(context.WithoutCancel(ctx), u.Data)
		if err != nil {
			return nil, err
		}

		resp := models.NewOCRResponse(result)
		resp.ProcessingTimeMs = p.elapsed(start)
		resp.Fingerprint = fp
		p.cache.Store(fp, resp)
		return flightResult{resp: resp}, nil
	})
	if err != nil {
		return models.OCRResponse{}, err
	}

	res := v.(flightResult)
	if !led || res.cached {
		return p.replay(res.resp, start), nil
	}
	return res.resp, nil
}

func (p *Pipeline) replay(resp models.OCRResponse, start time.Time) models.OCRResponse {
	resp.Cached = true
	resp.ProcessingTimeMs = p.elapsed(start)
	return resp
}

func (p *Pipeline) elapsed(start time.Time) int64 {
	return p.now().Sub(start).Milliseconds()
}

// ExtractBatch recognizes every upload and reports per-item outcomes in input
// order. Items are neither validated nor cached. A single failing item does
// not affect the others.
func (p *Pipeline) ExtractBatch(ctx context.Context, uploads []Upload) (models.BatchResponse, error) {
	if err := p.CheckBatchSize(len(uploads)); err != nil {
		return models.BatchResponse{}, err
	}

	results := make([]models.BatchItemResult, len(uploads))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, u := range uploads {
		i, u := i, u
		g.Go(func() error {
			results[i] = p.extractItem(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	return models.BatchResponse{BatchResults: results}, nil
}

// CheckBatchSize rejects a batch of n items when it exceeds the limit. Front
// ends call it before reading any upload.
func (p *Pipeline) CheckBatchSize(n int) error {
	if n > p.maxBatch {
		return &RequestError{Err: ErrBatchTooLarge, Message: batchLimitMessage(p.maxBatch)}
	}
	return nil
}

func (p *Pipeline) extractItem(ctx context.Context, u Upload) models.BatchItemResult {
	if u.Err != nil {
		return models.BatchFailure(u.Filename, u.Err)
	}

	result, err := p.recognizer.Recognize(context.WithoutCancel(ctx), u.Data)
	if err != nil {
		if p.debug {
			log.Printf("[pipeline] batch item %q failed: %v", u.Filename, err)
		}
		return models.BatchFailure(u.Filename, err)
	}

	// Batch items always report zero processing time
	return models.BatchSuccess(u.Filename, models.NewOCRResponse(result))
}
