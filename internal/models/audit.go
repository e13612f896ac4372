package models

import "time"

// AuditEntry records one processed upload.
type AuditEntry struct {
	ID               string    `json:"id"`
	RequestID        string    `json:"request_id"`
	Endpoint         string    `json:"endpoint"`
	Filename         string    `json:"filename"`
	Fingerprint      string    `json:"fingerprint,omitempty"`
	StatusCode       int       `json:"status_code"`
	Cached           bool      `json:"cached"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
	Error            string    `json:"error,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// AuditQueryOpts filters audit queries.
type AuditQueryOpts struct {
	Endpoint    string
	Fingerprint string
	Since       time.Time
	Limit       int
}

// AuditStat is an aggregate count of audit rows.
type AuditStat struct {
	Endpoint   string `json:"endpoint"`
	StatusCode int    `json:"status_code"`
	Count      int64  `json:"count"`
	CachedHits int64  `json:"cached_hits"`
}
