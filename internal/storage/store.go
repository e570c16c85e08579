// Package storage maintains the capture index: a sqlite database holding one
// row per capture session and one row per captured frame, including the
// diagnostics snapshot and the record file each frame was written to. The
// record files themselves stay flat on disk; the index makes them queryable.
package storage

import (
	"context"

	_ "github.com/mattn/go-sqlite3"

	"github.com/span-lab/uwb-radar/internal/capture"
)

// Store is the capture index interface. All writes are atomic; the sqlite
// implementation keeps separate write and read-only connections.
type Store interface {
	// CreateSession inserts a session row for the experiment and returns
	// its ID. deviceConfig may be a string, []byte or any JSON-serializable
	// value and is stored verbatim with the session.
	CreateSession(ctx context.Context, experiment string, deviceConfig any) (sessionID int64, err error)

	// Session retrieves one session by ID.
	Session(ctx context.Context, id int64) (*Session, error)

	// Sessions lists all sessions, oldest first.
	Sessions(ctx context.Context) ([]*Session, error)

	// StoreCapture inserts one capture row for the session and returns its
	// ID. The CIR itself is not stored; filename points at the record file
	// holding it.
	StoreCapture(ctx context.Context, sessionID int64, rec *capture.Record, filename string) (captureID int64, err error)

	// Captures lists the captures of a session in insertion order.
	Captures(ctx context.Context, sessionID int64) ([]*Capture, error)

	// Close releases all database connections. Safe to call more than once.
	Close() error
}
