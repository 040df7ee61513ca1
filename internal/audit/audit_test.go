package audit

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeDB captures batches instead of talking to Postgres.
type fakeDB struct {
	batches []*pgx.Batch
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeDB) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	f.batches = append(f.batches, b)
	return &fakeBatchResults{n: b.Len()}
}

type fakeBatchResults struct {
	n int
}

func (r *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (r *fakeBatchResults) Query() (pgx.Rows, error) { return nil, pgx.ErrNoRows }
func (r *fakeBatchResults) QueryRow() pgx.Row        { return nil }
func (r *fakeBatchResults) Close() error             { return nil }

func TestStoreRecordAndFlush(t *testing.T) {
	db := &fakeDB{}
	store := NewStore(db, Config{BufferSize: 10, FlushInterval: time.Minute})

	store.Record(Entry{Code: "en", Language: "English", Reliable: true, TextChars: 12, Took: 3 * time.Millisecond})
	store.Record(Entry{Code: "de", Language: "German", TextChars: 40})

	if got := store.Pending(); got != 2 {
		t.Fatalf("Pending() = %d, want 2", got)
	}

	if err := store.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	if got := store.Pending(); got != 0 {
		t.Errorf("Pending() after flush = %d, want 0", got)
	}
	if len(db.batches) != 1 {
		t.Fatalf("batches sent = %d, want 1", len(db.batches))
	}
	if got := db.batches[0].Len(); got != 2 {
		t.Errorf("batch size = %d, want 2", got)
	}

	// Record must have filled in the entry id and timestamp.
	args := db.batches[0].QueuedQueries[0].Arguments
	if id, ok := args[0].(string); !ok || id == "" {
		t.Errorf("entry id not assigned: %v", args[0])
	}
	if ts, ok := args[6].(time.Time); !ok || ts.IsZero() {
		t.Errorf("entry timestamp not assigned: %v", args[6])
	}
}

func TestStoreFlush_Empty(t *testing.T) {
	db := &fakeDB{}
	store := NewStore(db, Config{})

	if err := store.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if len(db.batches) != 0 {
		t.Errorf("empty flush sent %d batches", len(db.batches))
	}
}

func TestStoreRun_FinalFlush(t *testing.T) {
	db := &fakeDB{}
	store := NewStore(db, Config{BufferSize: 100, FlushInterval: time.Hour})
	store.Record(Entry{Code: "fr", Language: "French"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	if got := store.Pending(); got != 0 {
		t.Errorf("Pending() after shutdown = %d, want 0", got)
	}
	if len(db.batches) != 1 {
		t.Errorf("batches sent = %d, want 1", len(db.batches))
	}
}
