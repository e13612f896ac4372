package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/ocr-gateway/internal/api"
	"github.com/ironsheep/ocr-gateway/internal/audit"
	"github.com/ironsheep/ocr-gateway/internal/ocr/tesseract"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			gw, err := newGateway(cfg)
			if err != nil {
				return err
			}

			auditLog, err := openAudit(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = auditLog.Close() }()

			// A nil *audit.Logger inside the interface would still be non-nil
			var recorder audit.Recorder
			if auditLog != nil {
				recorder = auditLog
			}

			srv := api.NewServer(cfg, &api.Dependencies{
				Extractor:     gw.pipeline,
				Stats:         gw.pipeline,
				Audit:         recorder,
				Version:       Version,
				EngineName:    gw.recognizer.Engine().Name(),
				EngineVersion: tesseract.Version(),
			})

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Printf("starting ocr-gateway with config: %s", *configPath)
			return srv.ListenAndServe(ctx)
		},
	}
}
