// Package audit persists detection events to Postgres.
//
// Entries are buffered in memory and written in batches, either when
// the buffer fills or on a timer, so the detection path never waits on
// the database. The store is optional: the service runs without it
// when no database is configured.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	SendBatch(context.Context, *pgx.Batch) pgx.BatchResults
}

// Entry is one recorded detection.
type Entry struct {
	ID        string        `json:"id"`
	Code      string        `json:"code"`
	Language  string        `json:"language"`
	Reliable  bool          `json:"reliable"`
	TextChars int           `json:"textChars"`
	Took      time.Duration `json:"tookMs"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Config controls buffering and query behavior.
type Config struct {
	BufferSize    int
	FlushInterval time.Duration
	QueryLimit    int
}

// Store buffers detection entries and writes them in pgx batches.
type Store struct {
	db  DBTX
	cfg Config

	mu   sync.Mutex
	buf  []Entry
	kick chan struct{}
}

// NewStore creates a Store over db.
func NewStore(db DBTX, cfg Config) *Store {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.QueryLimit <= 0 {
		cfg.QueryLimit = 100
	}
	return &Store{
		db:   db,
		cfg:  cfg,
		buf:  make([]Entry, 0, cfg.BufferSize),
		kick: make(chan struct{}, 1),
	}
}

// One statement per entry: pgx's extended protocol does not accept
// multi-statement strings.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS detection_log (
		id         uuid PRIMARY KEY,
		code       text NOT NULL,
		language   text NOT NULL,
		reliable   boolean NOT NULL,
		text_chars integer NOT NULL,
		took_ms    bigint NOT NULL,
		created_at timestamptz NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS detection_log_created_at_idx
		ON detection_log (created_at DESC)`,
}

// EnsureSchema creates the detection_log table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure audit schema: %w", err)
		}
	}
	return nil
}

// Record buffers one detection entry. ID and CreatedAt are filled in
// when unset. A full buffer nudges the background flusher; Record
// itself never blocks on the database.
func (s *Store) Record(e Entry) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.buf = append(s.buf, e)
	full := len(s.buf) >= s.cfg.BufferSize
	s.mu.Unlock()

	if full {
		select {
		case s.kick <- struct{}{}:
		default:
		}
	}
}

// Pending returns the number of buffered, unwritten entries.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf)
}

// Flush writes all buffered entries in a single batch. Entries that
// fail to write are dropped; the audit log is best-effort.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	if len(s.buf) == 0 {
		s.mu.Unlock()
		return nil
	}
	pending := s.buf
	s.buf = make([]Entry, 0, s.cfg.BufferSize)
	s.mu.Unlock()

	batch := &pgx.Batch{}
	for _, e := range pending {
		batch.Queue(
			`INSERT INTO detection_log (id, code, language, reliable, text_chars, took_ms, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			e.ID, e.Code, e.Language, e.Reliable, e.TextChars, e.Took.Milliseconds(), e.CreatedAt,
		)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range pending {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("write audit batch: %w", err)
		}
	}
	return nil
}

// Run flushes on a timer until ctx is cancelled, then performs a final
// flush so shutdown does not lose buffered entries.
func (s *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := s.Flush(flushCtx); err != nil {
				slog.Error("final audit flush failed", "error", err)
			}
			cancel()
			return
		case <-ticker.C:
		case <-s.kick:
		}

		if err := s.Flush(ctx); err != nil {
			slog.Error("audit flush failed", "error", err)
		}
	}
}

// Recent returns the newest entries, newest first. limit is clamped to
// the configured query limit; zero means the configured limit.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > s.cfg.QueryLimit {
		limit = s.cfg.QueryLimit
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, code, language, reliable, text_chars, took_ms, created_at
		 FROM detection_log
		 ORDER BY created_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var tookMS int64
		if err := rows.Scan(&e.ID, &e.Code, &e.Language, &e.Reliable, &e.TextChars, &tookMS, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Took = time.Duration(tookMS) * time.Millisecond
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit log: %w", err)
	}

	return out, nil
}
