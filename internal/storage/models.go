package storage

import (
	"database/sql"
	"time"
)

// Session is one capture session: an experiment run against a configured
// device.
type Session struct {
	ID         int64
	StartTime  time.Time
	Experiment string
	Config     *string // device configuration as recorded, JSON or raw
}

// Capture is the index row for one captured frame. The CIR lives in the
// record file named by Filename; diagnostics are denormalised here because
// the record format has no room for them.
type Capture struct {
	ID          int64
	SessionID   int64
	Timestamp   time.Time
	FrameIndex  int32
	RXTimestamp uint64
	Samples     int
	Filename    string

	FirstPath *uint16
	StdNoise  *uint16
	MaxNoise  *uint16
}

type captureRow struct {
	ID          int64
	SessionID   int64
	Timestamp   time.Time
	FrameIndex  int64
	RXTimestamp int64 // sqlite has no unsigned 64-bit; stored as the signed bit pattern
	Samples     int64
	Filename    string
	FirstPath   sql.NullInt64
	StdNoise    sql.NullInt64
	MaxNoise    sql.NullInt64
}

func (r *captureRow) toCapture() *Capture {
	c := &Capture{
		ID:          r.ID,
		SessionID:   r.SessionID,
		Timestamp:   r.Timestamp,
		FrameIndex:  int32(r.FrameIndex),
		RXTimestamp: uint64(r.RXTimestamp),
		Samples:     int(r.Samples),
		Filename:    r.Filename,
	}
	if r.FirstPath.Valid {
		v := uint16(r.FirstPath.Int64)
		c.FirstPath = &v
	}
	if r.StdNoise.Valid {
		v := uint16(r.StdNoise.Int64)
		c.StdNoise = &v
	}
	if r.MaxNoise.Valid {
		v := uint16(r.MaxNoise.Int64)
		c.MaxNoise = &v
	}
	return c
}
