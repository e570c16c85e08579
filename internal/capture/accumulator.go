package capture

import (
	"fmt"

	"github.com/span-lab/uwb-radar/internal/dw1000"
)

// accChunkSize is the number of meaningful accumulator bytes retrieved per
// device read. The device prepends one garbage byte to every accumulator
// read, so the raw transfer is accChunkSize+1 bytes.
const accChunkSize = 64

// readAccumulator fills dst with len(dst) clean accumulator bytes starting
// at the given device memory offset, reading in accChunkSize pieces and
// discarding the leading dummy byte of each raw chunk. Any device error
// aborts the transfer; dst contents are then undefined and must not be used.
func readAccumulator(dev dw1000.Device, dst []byte, offset int) error {
	raw := make([]byte, accChunkSize+1)
	remaining := len(dst)
	cursor := 0
	for remaining > accChunkSize {
		if err := dev.ReadAccumulator(raw, accChunkSize, offset+cursor); err != nil {
			return fmt.Errorf("accumulator read of %d bytes at %d: %w", accChunkSize, offset+cursor, err)
		}
		copy(dst[cursor:cursor+accChunkSize], raw[1:accChunkSize+1])
		cursor += accChunkSize
		remaining -= accChunkSize
	}
	if err := dev.ReadAccumulator(raw, remaining, offset+cursor); err != nil {
		return fmt.Errorf("accumulator read of %d bytes at %d: %w", remaining, offset+cursor, err)
	}
	copy(dst[cursor:], raw[1:remaining+1])
	return nil
}
