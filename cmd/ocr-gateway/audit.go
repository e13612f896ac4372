package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ironsheep/ocr-gateway/internal/models"
)

func newAuditCmd(configPath *string) *cobra.Command {
	var (
		endpoint string
		since    string
		limit    int
		stats    bool
		prune    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show or prune the request audit log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			l, err := openAudit(cfg)
			if err != nil {
				return err
			}
			if l == nil {
				return errors.New("audit log is disabled (set audit.db_path or OCR_GATEWAY_AUDIT_DB)")
			}
			defer func() { _ = l.Close() }()

			ctx := context.Background()

			if prune > 0 {
				deleted, err := l.Cleanup(ctx, prune)
				if err != nil {
					return err
				}
				fmt.Printf("Deleted %d entries older than %s.\n", deleted, prune)
				return nil
			}

			if stats {
				rows, err := l.Stats(ctx)
				if err != nil {
					return err
				}
				fmt.Print(formatAuditStats(rows))
				return nil
			}

			opts := models.AuditQueryOpts{Endpoint: endpoint, Limit: limit}
			if since != "" {
				t, err := time.Parse("2006-01-02", since)
				if err != nil {
					return fmt.Errorf("invalid --since date (use YYYY-MM-DD): %w", err)
				}
				opts.Since = t
			}

			entries, err := l.Query(ctx, opts)
			if err != nil {
				return err
			}
			fmt.Print(formatAuditEntries(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "filter by endpoint, e.g. /extract-text")
	cmd.Flags().StringVar(&since, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 50, "max entries to return")
	cmd.Flags().BoolVar(&stats, "stats", false, "show counts by endpoint and status instead of entries")
	cmd.Flags().DurationVar(&prune, "prune", 0, "delete entries older than this age, e.g. 720h")

	return cmd
}

func formatAuditEntries(entries []models.AuditEntry) string {
	if len(entries) == 0 {
		return "No audit entries found.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-20s  %-14s  %-24s  %6s  %6s  %7s  %s\n",
		"TIME", "ENDPOINT", "FILE", "STATUS", "CACHED", "MS", "ERROR")
	for _, e := range entries {
		fmt.Fprintf(&b, "%-20s  %-14s  %-24s  %6d  %6t  %7d  %s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			e.Endpoint,
			truncate(e.Filename, 24),
			e.StatusCode,
			e.Cached,
			e.ProcessingTimeMs,
			e.Error)
	}
	return b.String()
}

func formatAuditStats(stats []models.AuditStat) string {
	if len(stats) == 0 {
		return "No audit entries found.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-14s  %6s  %8s  %8s\n", "ENDPOINT", "STATUS", "COUNT", "CACHED")
	for _, s := range stats {
		fmt.Fprintf(&b, "%-14s  %6d  %8d  %8d\n", s.Endpoint, s.StatusCode, s.Count, s.CachedHits)
	}
	return b.String()
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
