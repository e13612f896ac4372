// Package audit records processed uploads in a SQLite database.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ironsheep/ocr-gateway/internal/models"
)

// Recorder accepts audit entries. A nil *Logger is a valid Recorder that
// drops everything.
type Recorder interface {
	Log(ctx context.Context, entry models.AuditEntry) error
}

// Logger writes and queries audit entries in a dedicated SQLite database.
type Logger struct {
	db *sql.DB
}

// New opens the audit SQLite database and creates the schema.
func New(dbPath string) (*Logger, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate audit db: %w", err)
	}

	return &Logger{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS audit_log (
		id                 TEXT PRIMARY KEY,
		request_id         TEXT,
		endpoint           TEXT NOT NULL,
		filename           TEXT,
		fingerprint        TEXT,
		status_code        INTEGER NOT NULL,
		cached             INTEGER NOT NULL DEFAULT 0,
		processing_time_ms INTEGER NOT NULL DEFAULT 0,
		error              TEXT,
		created_at         DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_audit_created ON audit_log(created_at)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_audit_fingerprint ON audit_log(fingerprint)`)
	return err
}

// Log inserts an audit entry. Missing IDs and timestamps are filled in.
func (l *Logger) Log(ctx context.Context, entry models.AuditEntry) error {
	if l == nil || l.db == nil {
		return nil
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO audit_log
		(id, request_id, endpoint, filename, fingerprint, status_code,
		 cached, processing_time_ms, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.RequestID, entry.Endpoint, entry.Filename, entry.Fingerprint,
		entry.StatusCode, entry.Cached, entry.ProcessingTimeMs, entry.Error, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Query returns audit entries matching opts, newest first.
func (l *Logger) Query(ctx context.Context, opts models.AuditQueryOpts) ([]models.AuditEntry, error) {
	q := `SELECT id, request_id, endpoint, filename, fingerprint, status_code,
		cached, processing_time_ms, error, created_at
		FROM audit_log WHERE 1=1`
	var args []any

	if opts.Endpoint != "" {
		q += " AND endpoint = ?"
		args = append(args, opts.Endpoint)
	}
	if opts.Fingerprint != "" {
		q += " AND fingerprint = ?"
		args = append(args, opts.Fingerprint)
	}
	if !opts.Since.IsZero() {
		q += " AND created_at >= ?"
		args = append(args, opts.Since)
	}

	q += " ORDER BY created_at DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	q += " LIMIT ?"
	args = append(args, limit)

	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		var requestID, filename, fingerprint, errMsg sql.NullString
		if err := rows.Scan(
			&e.ID, &requestID, &e.Endpoint, &filename, &fingerprint, &e.StatusCode,
			&e.Cached, &e.ProcessingTimeMs, &errMsg, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		e.RequestID = requestID.String
		e.Filename = filename.String
		e.Fingerprint = fingerprint.String
		e.Error = errMsg.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats returns counts grouped by endpoint and status code.
func (l *Logger) Stats(ctx context.Context) ([]models.AuditStat, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT endpoint, status_code, count(*), sum(cached)
		 FROM audit_log GROUP BY endpoint, status_code ORDER BY endpoint, status_code`)
	if err != nil {
		return nil, fmt.Errorf("audit stats: %w", err)
	}
	defer rows.Close()

	var stats []models.AuditStat
	for rows.Next() {
		var s models.AuditStat
		var cached sql.NullInt64
		if err := rows.Scan(&s.Endpoint, &s.StatusCode, &s.Count, &cached); err != nil {
			return nil, fmt.Errorf("scan audit stat: %w", err)
		}
		s.CachedHits = cached.Int64
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// Cleanup deletes entries older than the given age.
func (l *Logger) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	res, err := l.db.ExecContext(ctx,
		`DELETE FROM audit_log WHERE created_at < ?`, time.Now().UTC().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("audit cleanup: %w", err)
	}
	return res.RowsAffected()
}

// Close releases the database connection.
func (l *Logger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}
