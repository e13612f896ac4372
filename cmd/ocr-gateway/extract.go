package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/ocr-gateway/internal/pipeline"
	"github.com/ironsheep/ocr-gateway/internal/server"
)

func newExtractCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "extract FILE...",
		Short: "Extract text from local image files and print the batch result as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			gw, err := newGateway(cfg)
			if err != nil {
				return err
			}

			if err := gw.pipeline.CheckBatchSize(len(args)); err != nil {
				return err
			}

			uploads := make([]pipeline.Upload, len(args))
			for i, path := range args {
				uploads[i] = server.LoadUpload(path)
			}

			resp, err := gw.pipeline.ExtractBatch(cmd.Context(), uploads)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}
}
