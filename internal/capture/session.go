package capture

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"
)

// Index receives session and capture metadata as a session runs. It is
// satisfied by storage.Store; a nil Index disables indexing and the session
// only produces record files.
type Index interface {
	CreateSession(ctx context.Context, experiment string, deviceConfig any) (int64, error)
	StoreCapture(ctx context.Context, sessionID int64, rec *Record, filename string) (int64, error)
}

// WithMaxFrames bounds the session to n successful captures. Zero means
// unbounded: the session runs until the context is cancelled.
func WithMaxFrames(n int) func(*Session) {
	return func(s *Session) {
		s.maxFrames = n
	}
}

// WithOutputDir sets the directory record files are written into.
func WithOutputDir(dir string) func(*Session) {
	return func(s *Session) {
		s.outputDir = dir
	}
}

// WithIndex attaches a capture index. deviceConfig is recorded on the
// session row so captures stay interpretable later.
func WithIndex(index Index, deviceConfig any) func(*Session) {
	return func(s *Session) {
		s.index = index
		s.deviceConfig = deviceConfig
	}
}

// WithSessionLogger sets the logger for the session.
func WithSessionLogger(logger *slog.Logger) func(*Session) {
	return func(s *Session) {
		s.logger = logger
	}
}

// Session runs the capture loop for one experiment: receive a frame, write
// its record file, index it, repeat until the frame bound is reached or the
// context ends. The successful-frame counter is the only state carried
// across cycles and only advances after a record has been written out.
type Session struct {
	rx         *Receiver
	experiment string
	outputDir  string
	maxFrames  int

	index        Index
	deviceConfig any

	logger *slog.Logger

	frames       int
	bytesWritten uint64
}

// NewSession creates a session for the given experiment name. The name
// becomes part of every record filename.
func NewSession(rx *Receiver, experiment string, options ...func(*Session)) *Session {
	s := &Session{
		rx:         rx,
		experiment: experiment,
		outputDir:  ".",
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Frames returns the number of fully captured and written frames.
func (s *Session) Frames() int {
	return s.frames
}

// Run executes the capture loop. A cancelled context ends the session
// cleanly; everything captured up to that point stays on disk.
func (s *Session) Run(ctx context.Context) error {
	var sessionID int64
	if s.index != nil {
		id, err := s.index.CreateSession(ctx, s.experiment, s.deviceConfig)
		if err != nil {
			return err
		}
		sessionID = id
	}

	if s.maxFrames > 0 {
		s.logger.Info("recording bounded session",
			slog.String("experiment", s.experiment), slog.Int("maxFrames", s.maxFrames))
	} else {
		s.logger.Info("recording unbounded session", slog.String("experiment", s.experiment))
	}

	for s.maxFrames == 0 || s.frames < s.maxFrames {
		rec, err := s.rx.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				s.logger.Info("session interrupted", slog.Int("frames", s.frames))
				return nil
			}
			return err
		}

		filename := RecordFilename(s.outputDir, s.experiment, rec.FrameIndex)
		if err = rec.WriteFile(filename); err != nil {
			// The capture for this frame is lost; the session goes on and
			// the counter does not move.
			s.logger.Error("failed to write record, dropping capture",
				slog.String("file", filename), slog.String("error", err.Error()))
			continue
		}

		s.frames++
		s.bytesWritten += uint64(rec.Size())

		if s.index != nil {
			if _, err = s.index.StoreCapture(ctx, sessionID, rec, filename); err != nil {
				s.logger.Error("failed to index capture", slog.String("error", err.Error()))
			}
		}

		s.logger.Info("frame captured",
			slog.Int("frameIndex", int(rec.FrameIndex)),
			slog.Uint64("rxTimestamp", rec.RXTimestamp),
			slog.String("file", filename),
			slog.Int("frames", s.frames),
			slog.String("written", humanize.Bytes(s.bytesWritten)))
	}

	s.logger.Info("session complete", slog.Int("frames", s.frames), slog.String("written", humanize.Bytes(s.bytesWritten)))
	return nil
}
