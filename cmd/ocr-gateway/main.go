package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/ocr-gateway/internal/config"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Logs go to stderr; stdout carries MCP traffic and extract output
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "ocr-gateway",
		Short:         "HTTP and MCP gateway for Tesseract text extraction",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(fmt.Sprintf("ocr-gateway %s\n  Build time: %s\n  Git commit: %s\n", Version, BuildTime, GitCommit))
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to config file")

	root.AddCommand(
		newServeCmd(&configPath),
		newExtractCmd(&configPath),
		newMCPCmd(&configPath),
		newAuditCmd(&configPath),
	)
	return root
}
