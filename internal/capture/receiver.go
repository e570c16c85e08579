package capture

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/span-lab/uwb-radar/internal/dw1000"
)

const (
	// frameBufLen caps the RX frame buffer. The radar blink frame is 14
	// bytes including CRC; anything longer than this is foreign traffic
	// and gets dropped.
	frameBufLen = 24

	// frameIndexOffset is the payload offset of the 32-bit frame index in
	// the blink frame (0xC5, seq, 'D', 'E', 'C', 'A', index...).
	frameIndexOffset = 6

	// errorLogInterval limits how often a run of consecutive RX errors is
	// reported.
	errorLogInterval = 100
)

// ErrPollTimeout is returned by Receive when a poll timeout is configured
// and no receiver event arrives within it.
var ErrPollTimeout = errors.New("capture: timed out waiting for receiver event")

// WithPollTimeout bounds each wait for a receiver event. Zero (the default)
// spins forever, matching the hardware polling loop; cancellation then only
// happens through the context.
func WithPollTimeout(d time.Duration) func(*Receiver) {
	return func(rx *Receiver) {
		rx.pollTimeout = d
	}
}

// WithReceiverLogger sets the logger for the receiver.
func WithReceiverLogger(logger *slog.Logger) func(*Receiver) {
	return func(rx *Receiver) {
		rx.logger = logger
	}
}

// Receiver drives the reception cycle against a device: arm, poll for an
// event, classify it, and on a good frame pull out the payload, timestamp,
// CIR and diagnostics. Exactly one capture is in flight at a time; the frame
// and CIR buffers are reused and zero-filled every cycle so a truncated
// frame can never leak stale bytes from an earlier one.
type Receiver struct {
	dev dw1000.Device

	frameBuf []byte
	cirBuf   []byte
	samples  int

	pollTimeout time.Duration
	logger      *slog.Logger

	consecutiveErrors int
}

// NewReceiver creates a receiver whose CIR buffer is sized for the
// configured PRF.
func NewReceiver(dev dw1000.Device, cfg dw1000.Config, options ...func(*Receiver)) *Receiver {
	samples := cfg.PRF.CIRSamples()
	rx := &Receiver{
		dev:      dev,
		frameBuf: make([]byte, frameBufLen),
		cirBuf:   make([]byte, 4*samples),
		samples:  samples,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, option := range options {
		option(rx)
	}
	return rx
}

// Receive runs reception cycles until one frame with a good CRC has been
// fully captured, and returns its record. RX errors reset the receiver and
// re-arm immediately; frames longer than the buffer are dropped silently.
// Device I/O failures and context cancellation abort the call.
func (rx *Receiver) Receive(ctx context.Context) (*Record, error) {
	for {
		clear(rx.frameBuf)
		clear(rx.cirBuf)

		if err := rx.dev.EnableReceiver(); err != nil {
			return nil, fmt.Errorf("enabling receiver: %w", err)
		}

		status, err := rx.awaitEvent(ctx)
		if err != nil {
			return nil, err
		}

		if status&dw1000.StatusRXFCG != 0 {
			rec, ok, err := rx.capture()
			if err != nil {
				return nil, err
			}
			rx.consecutiveErrors = 0
			if !ok {
				continue // oversized frame, dropped
			}
			return rec, nil
		}

		if err := rx.rxError(status); err != nil {
			return nil, err
		}
	}
}

// awaitEvent polls the status register until a good-frame or error bit is
// set. There is no sleep between polls; the context is checked on every
// iteration so an unbounded wait stays cancellable.
func (rx *Receiver) awaitEvent(ctx context.Context) (uint32, error) {
	var deadline time.Time
	if rx.pollTimeout > 0 {
		deadline = time.Now().Add(rx.pollTimeout)
	}
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		status, err := rx.dev.ReadStatus()
		if err != nil {
			return 0, fmt.Errorf("reading status: %w", err)
		}
		if status&dw1000.StatusRXEvent != 0 {
			return status, nil
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return 0, ErrPollTimeout
		}
	}
}

// capture handles the good-frame path. ok is false when the reported frame
// length exceeds the buffer and the frame was dropped.
func (rx *Receiver) capture() (rec *Record, ok bool, err error) {
	if err = rx.dev.ClearStatus(dw1000.StatusRXFCG); err != nil {
		return nil, false, fmt.Errorf("clearing good frame status: %w", err)
	}

	frameLen, err := rx.dev.FrameLength()
	if err != nil {
		return nil, false, fmt.Errorf("reading frame length: %w", err)
	}
	if frameLen > len(rx.frameBuf) {
		rx.logger.Debug("dropping oversized frame", slog.Int("frameLen", frameLen), slog.Int("capacity", len(rx.frameBuf)))
		// Diagnostics are only valid right after the event; drain them
		// even though the frame is being dropped.
		if _, err = rx.dev.ReadDiagnostics(); err != nil {
			return nil, false, fmt.Errorf("reading diagnostics: %w", err)
		}
		return nil, false, nil
	}

	if err = rx.dev.ReadFrame(rx.frameBuf[:frameLen]); err != nil {
		return nil, false, fmt.Errorf("reading frame: %w", err)
	}
	frameIndex := int32(binary.LittleEndian.Uint32(rx.frameBuf[frameIndexOffset:]))

	ts, err := rx.dev.ReadRXTimestamp()
	if err != nil {
		return nil, false, fmt.Errorf("reading RX timestamp: %w", err)
	}

	if err = readAccumulator(rx.dev, rx.cirBuf, 0); err != nil {
		return nil, false, err
	}

	diag, err := rx.dev.ReadDiagnostics()
	if err != nil {
		return nil, false, fmt.Errorf("reading diagnostics: %w", err)
	}

	rec = &Record{
		FrameIndex:  frameIndex,
		RXTimestamp: ts.Uint64(),
		CIR:         make([]Sample, rx.samples),
		Diagnostics: diag,
	}
	for i := range rec.CIR {
		rec.CIR[i].Real = int16(binary.LittleEndian.Uint16(rx.cirBuf[4*i:]))
		rec.CIR[i].Imag = int16(binary.LittleEndian.Uint16(rx.cirBuf[4*i+2:]))
	}
	return rec, true, nil
}

// rxError handles the error path: clear every RX error bit and soft-reset
// the receiver so leading edge detection reinitialises. The next cycle
// re-arms immediately, no backoff.
func (rx *Receiver) rxError(status uint32) error {
	rx.consecutiveErrors++
	if rx.consecutiveErrors%errorLogInterval == 0 {
		rx.logger.Warn("receiver errors persist",
			slog.Int("consecutive", rx.consecutiveErrors),
			slog.String("status", fmt.Sprintf("%#08x", status)))
	}

	if _, err := rx.dev.ReadDiagnostics(); err != nil {
		return fmt.Errorf("reading diagnostics: %w", err)
	}
	if err := rx.dev.ClearStatus(dw1000.StatusAllRXErr); err != nil {
		return fmt.Errorf("clearing error status: %w", err)
	}
	if err := rx.dev.ResetReceiver(); err != nil {
		return fmt.Errorf("resetting receiver: %w", err)
	}
	return nil
}
