package main

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/ironsheep/ocr-gateway/internal/config"
	"github.com/ironsheep/ocr-gateway/internal/models"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "extract", "mcp", "audit"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %s not registered", name)
		}
	}
	if f := root.PersistentFlags().ShorthandLookup("c"); f == nil || f.DefValue != config.DefaultPath {
		t.Errorf("expected -c/--config flag defaulting to %s", config.DefaultPath)
	}
}

func TestExtractRequiresFiles(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"extract"})
	if err := root.Execute(); err == nil {
		t.Error("extract without files should fail")
	}
}

func TestFormatAuditEntries(t *testing.T) {
	if got := formatAuditEntries(nil); got != "No audit entries found.\n" {
		t.Errorf("unexpected empty output: %q", got)
	}

	out := formatAuditEntries([]models.AuditEntry{{
		Endpoint:         "/extract-text",
		Filename:         "a-rather-long-receipt-file-name.png",
		StatusCode:       200,
		Cached:           true,
		ProcessingTimeMs: 12,
		CreatedAt:        time.Now(),
	}})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "/extract-text") || !strings.Contains(lines[1], "true") {
		t.Errorf("row missing fields: %q", lines[1])
	}
	if strings.Contains(lines[1], "file-name.png") {
		t.Errorf("long filename should be truncated: %q", lines[1])
	}
}

func TestFormatAuditStats(t *testing.T) {
	out := formatAuditStats([]models.AuditStat{{Endpoint: "/batch-extract", StatusCode: 200, Count: 3}})
	if !strings.Contains(out, "/batch-extract") || !strings.Contains(out, "3") {
		t.Errorf("unexpected stats output: %q", out)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"abcdefghij", 6, "abc..."},
		{"日本語のファイル名.png", 6, "日本語..."},
		{"レシート.png", 8, "レシート.png"},
		{"çàéèñü-receipt.png", 9, "çàéèñü..."},
	}

	for _, tt := range tests {
		got := truncate(tt.in, tt.n)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.in, tt.n)
		}
	}
}
