// Package sim is a DW1000 driver that synthesizes receiver events without
// hardware. It emits the same blink frames the radar transmitter sends
// (0xC5 blink, "DECA" tag, 32-bit frame index) at a fixed interval, with a
// noisy two-path CIR around a plausible first path index, so the whole
// capture pipeline can run on a bench with no radio attached.
package sim

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/span-lab/uwb-radar/internal/dw1000"
)

const (
	// DriverName is the name the package registers itself under.
	DriverName = "sim"

	frameInterval = 100 * time.Millisecond

	frameIndexOffset = 6
	frameLen         = 14 // 12 byte blink + 2 byte CRC

	firstPathIdx = 750 // typical LDE result for the default config

	ticksPerSecond = 128 * 499.2e6
)

func init() {
	dw1000.RegisterDriver(DriverName, func(cfg dw1000.Config) (dw1000.Device, error) {
		return New(cfg), nil
	})
}

// Device simulates the receive-side register interface of a DW1000.
type Device struct {
	cfg dw1000.Config

	mu         sync.Mutex
	rng        *rand.Rand
	armedAt    time.Time
	armed      bool
	status     uint32
	frame      []byte
	frameIndex uint32
	acc        []byte
	closed     bool
}

// New creates a simulated device. The zero seed path uses the current time,
// so two devices do not replay the same noise.
func New(cfg dw1000.Config) *Device {
	d := &Device{
		cfg: cfg,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		acc: make([]byte, 4*cfg.PRF.CIRSamples()),
	}
	return d
}

func (d *Device) EnableReceiver() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return fmt.Errorf("sim: device closed")
	}
	d.armed = true
	d.armedAt = time.Now()
	return nil
}

func (d *Device) ResetReceiver() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.armed = false
	d.status = 0
	return nil
}

// ReadStatus reports a good frame once the simulated inter-frame interval
// has elapsed since arming. The event latches until cleared, like the
// hardware status register.
func (d *Device) ReadStatus() (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, fmt.Errorf("sim: device closed")
	}
	if d.armed && time.Since(d.armedAt) >= frameInterval {
		d.armed = false
		d.frameIndex++
		d.synthesize()
		d.status |= dw1000.StatusRXPRD | dw1000.StatusRXSFDD | dw1000.StatusLDEDone |
			dw1000.StatusRXPHD | dw1000.StatusRXDFR | dw1000.StatusRXFCG
	}
	return d.status, nil
}

func (d *Device) ClearStatus(mask uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status &^= mask
	return nil
}

func (d *Device) FrameLength() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.frame), nil
}

func (d *Device) ReadFrame(buf []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(buf) > len(d.frame) {
		return fmt.Errorf("sim: frame read of %d bytes exceeds frame length %d", len(buf), len(d.frame))
	}
	copy(buf, d.frame)
	return nil
}

// ReadAccumulator mimics the hardware quirk: the first byte written to buf
// is garbage, followed by n meaningful accumulator bytes.
func (d *Device) ReadAccumulator(buf []byte, n, offset int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(buf) < n+1 {
		return fmt.Errorf("sim: accumulator read buffer too small: %d < %d", len(buf), n+1)
	}
	if offset+n > len(d.acc) {
		return fmt.Errorf("sim: accumulator read of %d bytes at %d exceeds memory size %d", n, offset, len(d.acc))
	}
	buf[0] = byte(d.rng.Intn(256)) // dummy byte
	copy(buf[1:n+1], d.acc[offset:offset+n])
	return nil
}

func (d *Device) ReadRXTimestamp() (dw1000.Timestamp, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ticks := uint64(float64(time.Now().UnixNano()) / 1e9 * ticksPerSecond)
	var ts dw1000.Timestamp
	for i := 0; i < len(ts); i++ {
		ts[i] = byte(ticks >> (8 * i))
	}
	return ts, nil
}

func (d *Device) ReadDiagnostics() (*dw1000.Diagnostics, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return &dw1000.Diagnostics{
		FirstPath:     firstPathIdx*64 + uint16(d.rng.Intn(64)),
		FirstPathAmp1: 12000 + uint16(d.rng.Intn(2000)),
		FirstPathAmp2: 9000 + uint16(d.rng.Intn(2000)),
		FirstPathAmp3: 6000 + uint16(d.rng.Intn(2000)),
		StdNoise:      60 + uint16(d.rng.Intn(20)),
		MaxNoise:      300 + uint16(d.rng.Intn(100)),
		MaxGrowthCIR:  2000 + uint16(d.rng.Intn(500)),
		RXPreamCount:  uint16(d.cfg.PreambleLength),
	}, nil
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// synthesize builds the blink frame and a CIR with noise, a direct path at
// firstPathIdx and a weaker reflection a few taps later.
func (d *Device) synthesize() {
	frame := make([]byte, frameLen)
	frame[0] = 0xC5
	frame[1] = byte(d.frameIndex) // sequence number, wraps at 255
	copy(frame[2:6], "DECA")
	binary.LittleEndian.PutUint32(frame[frameIndexOffset:], d.frameIndex)
	d.frame = frame

	samples := d.cfg.PRF.CIRSamples()
	for i := 0; i < samples; i++ {
		re := d.rng.NormFloat64() * 50
		im := d.rng.NormFloat64() * 50
		re += pathAmp(i, firstPathIdx, 12000)
		im += pathAmp(i, firstPathIdx, 4000)
		re += pathAmp(i, firstPathIdx+9, 3500)
		im += pathAmp(i, firstPathIdx+9, 1500)
		binary.LittleEndian.PutUint16(d.acc[4*i:], uint16(int16(clamp16(re))))
		binary.LittleEndian.PutUint16(d.acc[4*i+2:], uint16(int16(clamp16(im))))
	}
}

// pathAmp is a narrow Gaussian pulse centered on the path tap.
func pathAmp(i, center int, amp float64) float64 {
	d := float64(i - center)
	return amp * math.Exp(-d*d/2)
}

func clamp16(v float64) float64 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return v
}
