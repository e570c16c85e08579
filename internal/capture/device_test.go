package capture

import (
	"errors"
	"fmt"

	"github.com/span-lab/uwb-radar/internal/dw1000"
)

var errScriptExhausted = errors.New("fake device: event script exhausted")

// rxEvent is one scripted reception outcome. status is what ReadStatus
// reports after arming; frameLen may exceed len(frame) to simulate a frame
// the buffer cannot hold.
type rxEvent struct {
	status   uint32
	frame    []byte
	frameLen int
}

// fakeDevice plays back a scripted sequence of receiver events. Each
// EnableReceiver call consumes the next event; ReadStatus latches its status
// word until bits are cleared. With repeatGood set it ignores the script and
// synthesizes an endless stream of good frames instead.
type fakeDevice struct {
	events []rxEvent
	cursor int

	repeatGood bool
	goodLimit  int32 // with repeatGood, stop producing events after this many frames (0 = endless)
	nextIndex  int32

	acc       []byte
	accReads  []accRead
	accFailAt int // 1-based read count to fail on, 0 = never

	ts dw1000.Timestamp

	status   uint32
	frame    []byte
	frameLen int

	enables    int
	resets     int
	diagReads  int
	lastDiag   *dw1000.Diagnostics
	clearMasks []uint32
}

type accRead struct {
	n, offset int
}

func goodFrame(frameIndex int32) []byte {
	frame := make([]byte, 14)
	frame[0] = 0xC5
	frame[1] = byte(frameIndex)
	copy(frame[2:6], "DECA")
	frame[6] = byte(frameIndex)
	frame[7] = byte(frameIndex >> 8)
	frame[8] = byte(frameIndex >> 16)
	frame[9] = byte(frameIndex >> 24)
	return frame
}

func newFakeDevice(events ...rxEvent) *fakeDevice {
	acc := make([]byte, 4*dw1000.PRF64M.CIRSamples())
	for i := range acc {
		acc[i] = byte(i*7 + 3)
	}
	return &fakeDevice{
		events: events,
		acc:    acc,
		ts:     dw1000.Timestamp{0x01, 0x02, 0x03, 0x04, 0x05},
	}
}

func (d *fakeDevice) EnableReceiver() error {
	d.enables++
	if d.repeatGood {
		if d.goodLimit > 0 && d.nextIndex >= d.goodLimit {
			d.status = 0 // radio stays armed, no further events
			return nil
		}
		d.nextIndex++
		d.frame = goodFrame(d.nextIndex)
		d.frameLen = len(d.frame)
		d.status = dw1000.StatusRXFCG
		return nil
	}
	if d.cursor >= len(d.events) {
		return errScriptExhausted
	}
	ev := d.events[d.cursor]
	d.cursor++
	d.status = ev.status
	d.frame = ev.frame
	d.frameLen = ev.frameLen
	return nil
}

func (d *fakeDevice) ResetReceiver() error {
	d.resets++
	return nil
}

func (d *fakeDevice) ReadStatus() (uint32, error) {
	return d.status, nil
}

func (d *fakeDevice) ClearStatus(mask uint32) error {
	d.clearMasks = append(d.clearMasks, mask)
	d.status &^= mask
	return nil
}

func (d *fakeDevice) FrameLength() (int, error) {
	return d.frameLen, nil
}

func (d *fakeDevice) ReadFrame(buf []byte) error {
	if len(buf) > len(d.frame) {
		return fmt.Errorf("fake device: read of %d bytes from %d byte frame", len(buf), len(d.frame))
	}
	copy(buf, d.frame)
	return nil
}

func (d *fakeDevice) ReadAccumulator(buf []byte, n, offset int) error {
	d.accReads = append(d.accReads, accRead{n: n, offset: offset})
	if d.accFailAt > 0 && len(d.accReads) >= d.accFailAt {
		return errors.New("fake device: accumulator read failed")
	}
	if len(buf) < n+1 {
		return fmt.Errorf("fake device: buffer %d too small for %d meaningful bytes", len(buf), n)
	}
	if offset+n > len(d.acc) {
		return fmt.Errorf("fake device: read past end of accumulator: %d+%d > %d", offset, n, len(d.acc))
	}
	buf[0] = 0xA5 // dummy byte, must never reach the destination
	copy(buf[1:n+1], d.acc[offset:offset+n])
	return nil
}

func (d *fakeDevice) ReadRXTimestamp() (dw1000.Timestamp, error) {
	return d.ts, nil
}

func (d *fakeDevice) ReadDiagnostics() (*dw1000.Diagnostics, error) {
	d.diagReads++
	d.lastDiag = &dw1000.Diagnostics{
		FirstPath: 750 * 64,
		StdNoise:  64,
		MaxNoise:  320,
	}
	return d.lastDiag, nil
}

func (d *fakeDevice) Close() error { return nil }

var _ dw1000.Device = (*fakeDevice)(nil)
