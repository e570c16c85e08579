package storage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/span-lab/uwb-radar/internal/capture"
	"github.com/span-lab/uwb-radar/internal/dw1000"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()
	store := NewSqliteStore(filepath.Join(t.TempDir(), "captures.sqlite"))
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("closing store: %v", err)
		}
	})
	return store
}

func TestCreateAndReadSession(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	id, err := store.CreateSession(ctx, "bench1", dw1000.DefaultConfig())
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	sess, err := store.Session(ctx, id)
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if sess.Experiment != "bench1" {
		t.Errorf("experiment = %q, want bench1", sess.Experiment)
	}
	if sess.Config == nil || !strings.Contains(*sess.Config, `"channel":5`) {
		t.Errorf("device config not recorded: %v", sess.Config)
	}

	sessions, err := store.Sessions(ctx)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != id {
		t.Errorf("Sessions = %v, want one session with ID %d", sessions, id)
	}
}

func TestStoreAndListCaptures(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	sessionID, err := store.CreateSession(ctx, "bench2", nil)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	rec := &capture.Record{
		FrameIndex:  3,
		RXTimestamp: 0xFFFFFFFFFF, // bit pattern must survive the signed column
		CIR:         make([]capture.Sample, 1016),
		Diagnostics: &dw1000.Diagnostics{FirstPath: 48000, StdNoise: 70, MaxNoise: 310},
	}

	if _, err = store.StoreCapture(ctx, sessionID, rec, "bench2_3_cir.bin"); err != nil {
		t.Fatalf("StoreCapture: %v", err)
	}

	noDiag := &capture.Record{FrameIndex: 4, RXTimestamp: 1, CIR: make([]capture.Sample, 1016)}
	if _, err = store.StoreCapture(ctx, sessionID, noDiag, "bench2_4_cir.bin"); err != nil {
		t.Fatalf("StoreCapture without diagnostics: %v", err)
	}

	captures, err := store.Captures(ctx, sessionID)
	if err != nil {
		t.Fatalf("Captures: %v", err)
	}
	if len(captures) != 2 {
		t.Fatalf("captures = %d, want 2", len(captures))
	}

	got := captures[0]
	if got.FrameIndex != 3 || got.RXTimestamp != 0xFFFFFFFFFF || got.Samples != 1016 {
		t.Errorf("capture row = %+v", got)
	}
	if got.Filename != "bench2_3_cir.bin" {
		t.Errorf("filename = %q", got.Filename)
	}
	if got.FirstPath == nil || *got.FirstPath != 48000 {
		t.Errorf("first path = %v, want 48000", got.FirstPath)
	}
	if captures[1].FirstPath != nil {
		t.Errorf("diagnostics should be null when not drained, got %v", *captures[1].FirstPath)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	store := NewSqliteStore(filepath.Join(t.TempDir(), "captures.sqlite"))
	if _, err := store.CreateSession(context.Background(), "x", nil); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
