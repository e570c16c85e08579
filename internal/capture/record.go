package capture

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/span-lab/uwb-radar/internal/dw1000"
)

const recordHeaderLen = 4 + 8 // int32 frame index + uint64 timestamp

// Sample is one complex channel impulse response value.
type Sample struct {
	Real int16
	Imag int16
}

// Record is one capture: the frame index carried in the received payload,
// the raw 40-bit receive timestamp widened to 64 bits, and the full CIR read
// from accumulator memory. Records are created fresh per received frame and
// discarded once written; nothing is retained across cycles.
type Record struct {
	FrameIndex  int32
	RXTimestamp uint64
	CIR         []Sample

	// Diagnostics is the snapshot drained from the device for this frame.
	// It is indexed in the session store but never part of the record file.
	Diagnostics *dw1000.Diagnostics
}

// Size returns the encoded length in bytes.
func (r *Record) Size() int {
	return recordHeaderLen + 4*len(r.CIR)
}

// MarshalBinary encodes the record little-endian with no padding, length
// prefix or trailer: int32 frame index, uint64 timestamp, then each sample
// as int16 real, int16 imaginary.
func (r *Record) MarshalBinary() ([]byte, error) {
	buf := make([]byte, r.Size())
	binary.LittleEndian.PutUint32(buf[0:4], uint32(r.FrameIndex))
	binary.LittleEndian.PutUint64(buf[4:12], r.RXTimestamp)
	off := recordHeaderLen
	for _, s := range r.CIR {
		binary.LittleEndian.PutUint16(buf[off:], uint16(s.Real))
		binary.LittleEndian.PutUint16(buf[off+2:], uint16(s.Imag))
		off += 4
	}
	return buf, nil
}

// UnmarshalBinaryRecord decodes a record file. The sample count is not
// framed; it follows from the data length.
func UnmarshalBinaryRecord(data []byte) (*Record, error) {
	if len(data) < recordHeaderLen {
		return nil, fmt.Errorf("record too short: %d bytes", len(data))
	}
	body := len(data) - recordHeaderLen
	if body%4 != 0 {
		return nil, fmt.Errorf("record body of %d bytes is not a whole number of samples", body)
	}
	r := &Record{
		FrameIndex:  int32(binary.LittleEndian.Uint32(data[0:4])),
		RXTimestamp: binary.LittleEndian.Uint64(data[4:12]),
		CIR:         make([]Sample, body/4),
	}
	off := recordHeaderLen
	for i := range r.CIR {
		r.CIR[i].Real = int16(binary.LittleEndian.Uint16(data[off:]))
		r.CIR[i].Imag = int16(binary.LittleEndian.Uint16(data[off+2:]))
		off += 4
	}
	return r, nil
}

// WriteFile writes the record to path, truncating any existing file.
func (r *Record) WriteFile(path string) error {
	data, err := r.MarshalBinary()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating record file: %w", err)
	}
	if _, err = f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing record file: %w", err)
	}
	return f.Close()
}

// ReadRecordFile loads one record file written by WriteFile.
func ReadRecordFile(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r, err := UnmarshalBinaryRecord(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// RecordFilename derives the record file name from the experiment name and
// the frame index extracted from the payload, so files stay self-describing
// even when frames are dropped mid-session.
func RecordFilename(dir, experiment string, frameIndex int32) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%d_cir.bin", experiment, frameIndex))
}
