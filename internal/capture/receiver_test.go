package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/span-lab/uwb-radar/internal/dw1000"
)

func newTestReceiver(dev dw1000.Device, options ...func(*Receiver)) *Receiver {
	return NewReceiver(dev, dw1000.DefaultConfig(), options...)
}

func TestReceiveGoodFrame(t *testing.T) {
	frame := goodFrame(1234)
	dev := newFakeDevice(rxEvent{status: dw1000.StatusRXFCG, frame: frame, frameLen: len(frame)})
	rx := newTestReceiver(dev)

	rec, err := rx.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}

	if rec.FrameIndex != 1234 {
		t.Errorf("frame index = %d, want 1234", rec.FrameIndex)
	}
	if rec.RXTimestamp != 0x0504030201 {
		t.Errorf("timestamp = %#x, want 0x0504030201", rec.RXTimestamp)
	}
	if len(rec.CIR) != 1016 {
		t.Errorf("CIR samples = %d, want 1016", len(rec.CIR))
	}
	if rec.Diagnostics == nil {
		t.Error("diagnostics not attached to record")
	}
	if dev.diagReads != 1 {
		t.Errorf("diagnostics drained %d times, want 1", dev.diagReads)
	}

	// dev.acc[i] = 7i+3, little-endian pairs
	wantReal := int16(uint16(dev.acc[0]) | uint16(dev.acc[1])<<8)
	wantImag := int16(uint16(dev.acc[2]) | uint16(dev.acc[3])<<8)
	if rec.CIR[0].Real != wantReal || rec.CIR[0].Imag != wantImag {
		t.Errorf("first sample = %+v, want {%d %d}", rec.CIR[0], wantReal, wantImag)
	}

	if len(dev.clearMasks) == 0 || dev.clearMasks[0] != dw1000.StatusRXFCG {
		t.Errorf("good frame bit not cleared first, masks: %#x", dev.clearMasks)
	}
}

func TestReceiveErrorThenGoodFrame(t *testing.T) {
	frame := goodFrame(5)
	dev := newFakeDevice(
		rxEvent{status: dw1000.StatusRXFCE},
		rxEvent{status: dw1000.StatusRXFCG, frame: frame, frameLen: len(frame)},
	)
	rx := newTestReceiver(dev)

	rec, err := rx.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if rec.FrameIndex != 5 {
		t.Errorf("frame index = %d, want 5", rec.FrameIndex)
	}

	if dev.resets != 1 {
		t.Errorf("receiver resets = %d, want 1", dev.resets)
	}
	if dev.clearMasks[0] != dw1000.StatusAllRXErr {
		t.Errorf("error path cleared %#x, want all RX error bits %#x", dev.clearMasks[0], dw1000.StatusAllRXErr)
	}
	if dev.status&dw1000.StatusAllRXErr != 0 {
		t.Errorf("error bits still set for next cycle: %#x", dev.status)
	}
	if dev.diagReads != 2 {
		t.Errorf("diagnostics drained %d times, want 2 (every cycle)", dev.diagReads)
	}
	if dev.enables != 2 {
		t.Errorf("receiver armed %d times, want 2", dev.enables)
	}
}

func TestReceiveDropsOversizedFrame(t *testing.T) {
	frame := goodFrame(9)
	dev := newFakeDevice(
		rxEvent{status: dw1000.StatusRXFCG, frame: make([]byte, 120), frameLen: 120},
		rxEvent{status: dw1000.StatusRXFCG, frame: frame, frameLen: len(frame)},
	)
	rx := newTestReceiver(dev)

	rec, err := rx.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if rec.FrameIndex != 9 {
		t.Errorf("frame index = %d, want 9 (oversized frame must be dropped)", rec.FrameIndex)
	}
	if dev.resets != 0 {
		t.Errorf("oversized frame is not an error path, got %d resets", dev.resets)
	}
	if dev.diagReads != 2 {
		t.Errorf("diagnostics drained %d times, want 2", dev.diagReads)
	}
}

func TestReceiveAbortsOnChunkReadFailure(t *testing.T) {
	frame := goodFrame(3)
	dev := newFakeDevice(rxEvent{status: dw1000.StatusRXFCG, frame: frame, frameLen: len(frame)})
	dev.accFailAt = 5
	rx := newTestReceiver(dev)

	if _, err := rx.Receive(context.Background()); err == nil {
		t.Fatal("expected error when the accumulator transfer fails mid-way")
	}
}

func TestReceivePollTimeout(t *testing.T) {
	dev := newFakeDevice(rxEvent{status: 0}) // armed but nothing ever arrives
	rx := newTestReceiver(dev, WithPollTimeout(20*time.Millisecond))

	_, err := rx.Receive(context.Background())
	if !errors.Is(err, ErrPollTimeout) {
		t.Fatalf("Receive error = %v, want ErrPollTimeout", err)
	}
}

func TestReceiveContextCancellation(t *testing.T) {
	dev := newFakeDevice(rxEvent{status: 0})
	rx := newTestReceiver(dev)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := rx.Receive(ctx)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Receive error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Receive did not observe cancellation")
	}
}

func TestReceiveClearsStaleBuffers(t *testing.T) {
	// A long frame followed by a short one: bytes past the short frame's
	// length must be zero, not remnants of the long frame.
	long := goodFrame(1)
	long = append(long, 0xEE, 0xEE, 0xEE, 0xEE)
	short := goodFrame(2)[:10]
	dev := newFakeDevice(
		rxEvent{status: dw1000.StatusRXFCG, frame: long, frameLen: len(long)},
		rxEvent{status: dw1000.StatusRXFCG, frame: short, frameLen: len(short)},
	)
	rx := newTestReceiver(dev)

	if _, err := rx.Receive(context.Background()); err != nil {
		t.Fatalf("first Receive: %v", err)
	}
	if _, err := rx.Receive(context.Background()); err != nil {
		t.Fatalf("second Receive: %v", err)
	}
	for i := len(short); i < len(rx.frameBuf); i++ {
		if rx.frameBuf[i] != 0 {
			t.Fatalf("stale byte %#x at frame buffer offset %d", rx.frameBuf[i], i)
		}
	}
}
