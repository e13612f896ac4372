package main

import (
	"fmt"
	"log"

	"github.com/ironsheep/ocr-gateway/internal/audit"
	"github.com/ironsheep/ocr-gateway/internal/cache"
	"github.com/ironsheep/ocr-gateway/internal/config"
	"github.com/ironsheep/ocr-gateway/internal/imaging"
	"github.com/ironsheep/ocr-gateway/internal/ocr"
	"github.com/ironsheep/ocr-gateway/internal/ocr/tesseract"
	"github.com/ironsheep/ocr-gateway/internal/pipeline"
)

// gateway bundles the components shared by every front end.
type gateway struct {
	recognizer *ocr.Recognizer
	pipeline   *pipeline.Pipeline
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newGateway(cfg *config.Config) (*gateway, error) {
	engine := tesseract.New(tesseract.Options{
		Language:       cfg.OCR.Language,
		TessdataPrefix: cfg.OCR.TessdataPrefix,
		PageSegMode:    cfg.OCR.PageSegMode,
	})

	rec := ocr.NewRecognizer(engine, cfg.OCR.Timeout, imaging.PreprocessOptions{
		Grayscale:  cfg.Preprocess.Grayscale,
		Scale:      cfg.Preprocess.Scale,
		Threshold:  cfg.Preprocess.Threshold,
		AutoInvert: cfg.Preprocess.AutoInvert,
	})
	rec.SetDebug(cfg.Debug())
	rec.SetMaxPixels(cfg.Validation.MaxPixels)

	results, err := cache.New(cfg.Cache.Enabled, cfg.Cache.Capacity, cfg.Cache.Policy, cfg.Cache.TTL)
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}

	p := pipeline.New(rec, results, pipeline.Options{
		MaxFileSize:      cfg.Validation.MaxFileSize,
		AllowedMIMETypes: cfg.Validation.AllowedMIMETypes,
		BatchMaxItems:    cfg.Batch.MaxItems,
		BatchConcurrency: cfg.Batch.Concurrency,
		Debug:            cfg.Debug(),
	})

	if cfg.Debug() {
		log.Printf("ocr-gateway %s (built %s, commit %s), tesseract %s, cache %s/%d",
			Version, BuildTime, GitCommit, tesseract.Version(), results.Stats().Policy, cfg.Cache.Capacity)
	}

	return &gateway{recognizer: rec, pipeline: p}, nil
}

// openAudit opens the audit log, or returns nil when it is disabled.
func openAudit(cfg *config.Config) (*audit.Logger, error) {
	if cfg.Audit.DBPath == "" {
		return nil, nil
	}
	l, err := audit.New(cfg.Audit.DBPath)
	if err != nil {
		return nil, fmt.Errorf("init audit log: %w", err)
	}
	return l, nil
}
